package session

import (
	"fmt"
	"strings"
	"time"
)

// Request identifies one pipeline run. Session ids must be unique per run;
// that is the caller's responsibility.
type Request struct {
	SessionID  string `json:"sessionId"`
	UserID     string `json:"userId"`
	AvatarKey  string `json:"avatarImageKey"`
	GarmentKey string `json:"garmentImageKey"`
}

// Validate reports the first missing field, if any.
func (r Request) Validate() error {
	for _, field := range []struct {
		name  string
		value string
	}{
		{"sessionId", r.SessionID},
		{"userId", r.UserID},
		{"avatarImageKey", r.AvatarKey},
		{"garmentImageKey", r.GarmentKey},
	} {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("request field %s must not be empty", field.name)
		}
	}
	return nil
}

// InputImages holds the validated local copies of the two source images.
type InputImages struct {
	AvatarPath  string
	GarmentPath string
}

// Joint counts are fixed by the estimation contract: estimators always emit
// this shape regardless of image content.
const (
	JointCount3D    = 24
	KeypointCount2D = 17
)

// PoseEstimate is the pose-estimation collaborator's output. Downstream
// stages treat it as opaque except for Confidence and PersonDetected.
type PoseEstimate struct {
	Joints3D       [][3]float64
	Keypoints2D    [][2]float64
	Confidence     float64
	BoundingBox    [4]float64 // x, y, w, h in pixels
	PersonDetected bool
}

// Gender is the mesh-fitting collaborator's body-model selection.
type Gender string

const (
	GenderFemale  Gender = "female"
	GenderMale    Gender = "male"
	GenderNeutral Gender = "neutral"
)

// Valid reports whether g is one of the three body-model genders.
func (g Gender) Valid() bool {
	switch g {
	case GenderFemale, GenderMale, GenderNeutral:
		return true
	}
	return false
}

// Body-model parameter vector lengths and the standard mesh vertex count.
const (
	ShapeParamCount = 10
	PoseParamCount  = 72
	MeshVertexCount = 6890
)

// MeshFit is the body-mesh fitting output: shape and pose parameters plus
// derived measurements in centimeters.
type MeshFit struct {
	ShapeParams   []float64
	PoseParams    []float64
	GlobalOrient  [3]float64
	Translation   [3]float64
	Gender        Gender
	FitConfidence float64
	VertexCount   int
	Measurements  map[string]float64
}

// AssetKind names one of the five guidance artifacts.
type AssetKind string

const (
	AssetDepth    AssetKind = "depth"
	AssetNormals  AssetKind = "normals"
	AssetPose     AssetKind = "pose"
	AssetSegments AssetKind = "segments"
	AssetPrompt   AssetKind = "prompt"
)

// AssetKinds returns the guidance asset kinds in generation order.
func AssetKinds() []AssetKind {
	return []AssetKind{AssetDepth, AssetNormals, AssetPose, AssetSegments, AssetPrompt}
}

// AssetSet maps asset kind to a local file path inside the workspace.
type AssetSet map[AssetKind]string

// UploadedKeys maps asset kind to its remote storage locator.
type UploadedKeys map[AssetKind]string

// Status is the terminal outcome of a session.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Result is the terminal, immutable outcome returned to the caller on
// success and embedded in the completion event.
type Result struct {
	Status         Status
	SessionID      string
	ProcessingTime time.Duration
	AssetKeys      UploadedKeys
	Mesh           *MeshFit
}

// State is the mutable carrier a session threads through the stage handlers.
// Each stage consumes the fields its predecessors populated and writes its
// own output before handing off.
type State struct {
	Request   Request
	WorkDir   string
	StartedAt time.Time

	Inputs *InputImages
	Pose   *PoseEstimate
	Mesh   *MeshFit
	Assets AssetSet
	Keys   UploadedKeys
}
