package events

import (
	"context"
	"time"

	"fitforge/internal/session"
)

// Processing stage markers carried on every outbound event.
const (
	StageComplete = "smpl-complete"
	StageError    = "smpl-error"
)

// GuidanceAssetKeys names the uploaded guidance artifacts for downstream
// rendering.
type GuidanceAssetKeys struct {
	DepthMapKey     string `json:"depthMapKey"`
	NormalMapKey    string `json:"normalMapKey"`
	PoseMapKey      string `json:"poseMapKey"`
	SegmentationKey string `json:"segmentationKey"`
	PromptKey       string `json:"promptKey"`
}

// AssetKeysFromSession converts the uploaded key map into the event shape.
func AssetKeysFromSession(keys session.UploadedKeys) GuidanceAssetKeys {
	return GuidanceAssetKeys{
		DepthMapKey:     keys[session.AssetDepth],
		NormalMapKey:    keys[session.AssetNormals],
		PoseMapKey:      keys[session.AssetPose],
		SegmentationKey: keys[session.AssetSegments],
		PromptKey:       keys[session.AssetPrompt],
	}
}

// MeshMetadata summarizes the body-mesh fit for downstream consumers.
type MeshMetadata struct {
	PoseConfidence        float64            `json:"poseConfidence"`
	BodyShape             []float64          `json:"bodyShape"`
	EstimatedMeasurements map[string]float64 `json:"estimatedMeasurements"`
	Gender                string             `json:"gender"`
}

// MeshMetadataFromFit converts a mesh fit into the event shape.
func MeshMetadataFromFit(fit *session.MeshFit) MeshMetadata {
	if fit == nil {
		return MeshMetadata{Gender: string(session.GenderNeutral)}
	}
	return MeshMetadata{
		PoseConfidence:        fit.FitConfidence,
		BodyShape:             fit.ShapeParams,
		EstimatedMeasurements: fit.Measurements,
		Gender:                string(fit.Gender),
	}
}

// Completion is published when a session produced and uploaded all guidance
// assets.
type Completion struct {
	SessionID       string            `json:"sessionId"`
	UserID          string            `json:"userId"`
	GuidanceAssets  GuidanceAssetKeys `json:"guidanceAssets"`
	SMPLMetadata    MeshMetadata      `json:"smplMetadata"`
	Timestamp       time.Time         `json:"timestamp"`
	ProcessingStage string            `json:"processingStage"`
}

// Failure is published when a session aborted at any pipeline stage.
type Failure struct {
	SessionID       string    `json:"sessionId"`
	UserID          string    `json:"userId"`
	Error           string    `json:"error"`
	Timestamp       time.Time `json:"timestamp"`
	ProcessingStage string    `json:"processingStage"`
}

// Publisher is the outbound event surface exposed to the orchestrator.
type Publisher interface {
	PublishCompletion(ctx context.Context, event Completion) error
	PublishFailure(ctx context.Context, event Failure) error
}

// NopPublisher discards all events. Used when no event bus is configured.
type NopPublisher struct{}

func (NopPublisher) PublishCompletion(context.Context, Completion) error { return nil }
func (NopPublisher) PublishFailure(context.Context, Failure) error       { return nil }
