package bodymodel

import (
	"context"
	"encoding/binary"
	"hash"
	"hash/fnv"
	"log/slog"
	"math"
	"math/rand"

	"fitforge/internal/logging"
	"fitforge/internal/services"
	"fitforge/internal/session"
)

// Fitter fits body-model parameters to a pose estimate. The estimate acts as
// a prior; implementations must fill every MeshFit field, including derived
// measurements in centimeters.
type Fitter interface {
	Fit(ctx context.Context, handles Handles, estimate *session.PoseEstimate) (*session.MeshFit, error)
}

// ParametricFitter derives shape and pose parameters from keypoint geometry.
// Fully deterministic for a given estimate.
type ParametricFitter struct {
	logger *slog.Logger
}

// NewParametricFitter returns a fitter logging through logger. A nil logger
// disables logging.
func NewParametricFitter(logger *slog.Logger) *ParametricFitter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ParametricFitter{logger: logger}
}

// COCO keypoint indices used for proportional measurements.
const (
	kpLeftShoulder  = 5
	kpRightShoulder = 6
	kpLeftHip       = 11
	kpRightHip      = 12
	kpLeftAnkle     = 15
	kpRightAnkle    = 16
	kpNose          = 0
)

// Gender selection bands on the shoulder-to-hip width ratio.
const (
	maleRatioFloor    = 1.42
	femaleRatioCeil   = 1.22
	referenceHeightCM = 172.0
)

func (f *ParametricFitter) Fit(ctx context.Context, handles Handles, estimate *session.PoseEstimate) (*session.MeshFit, error) {
	if err := ctx.Err(); err != nil {
		return nil, services.Wrap(services.ErrProcessing, "bodymodel", "fit", "fit canceled", err)
	}
	if estimate == nil {
		return nil, services.Wrap(services.ErrProcessing, "bodymodel", "fit", "pose estimate required", nil)
	}
	if len(estimate.Keypoints2D) != session.KeypointCount2D {
		return nil, services.Wrap(services.ErrProcessing, "bodymodel", "fit", "pose estimate has wrong keypoint count", nil)
	}

	gender := session.GenderNeutral
	measurements := defaultMeasurements()
	if estimate.PersonDetected {
		gender = classifyGender(estimate.Keypoints2D)
		measurements = measureFrom(estimate)
	}

	rng := rand.New(rand.NewSource(estimateSeed(estimate)))
	fit := &session.MeshFit{
		ShapeParams:   shapeParams(measurements, rng),
		PoseParams:    poseParams(estimate, rng),
		GlobalOrient:  [3]float64{0, 0, 0},
		Translation:   [3]float64{0, 0, 2.2},
		Gender:        gender,
		FitConfidence: fitConfidence(estimate),
		VertexCount:   session.MeshVertexCount,
		Measurements:  measurements,
	}

	f.logger.DebugContext(ctx, "mesh fitted",
		logging.String("gender", string(gender)),
		logging.Float64("fit_confidence", fit.FitConfidence))
	return fit, nil
}

func classifyGender(keypoints [][2]float64) session.Gender {
	shoulderWidth := math.Abs(keypoints[kpRightShoulder][0] - keypoints[kpLeftShoulder][0])
	hipWidth := math.Abs(keypoints[kpRightHip][0] - keypoints[kpLeftHip][0])
	if hipWidth <= 0 {
		return session.GenderNeutral
	}
	ratio := shoulderWidth / hipWidth
	switch {
	case ratio >= maleRatioFloor:
		return session.GenderMale
	case ratio <= femaleRatioCeil:
		return session.GenderFemale
	default:
		return session.GenderNeutral
	}
}

// measureFrom scales pixel-space proportions to centimeters assuming a
// reference stature. Height comes from the nose-to-ankle span; girths from
// shoulder and hip widths via elliptical approximation.
func measureFrom(estimate *session.PoseEstimate) map[string]float64 {
	kp := estimate.Keypoints2D
	ankleY := (kp[kpLeftAnkle][1] + kp[kpRightAnkle][1]) / 2
	spanPx := ankleY - kp[kpNose][1]
	if spanPx <= 0 {
		return defaultMeasurements()
	}
	// Nose-to-ankle covers roughly 88% of full stature.
	scale := referenceHeightCM * 0.88 / spanPx

	shoulderPx := math.Abs(kp[kpRightShoulder][0] - kp[kpLeftShoulder][0])
	hipPx := math.Abs(kp[kpRightHip][0] - kp[kpLeftHip][0])

	height := spanPx * scale / 0.88
	chest := ellipseGirth(shoulderPx*scale*0.92, shoulderPx*scale*0.55)
	hip := ellipseGirth(hipPx*scale*1.35, hipPx*scale*0.80)
	waist := chest*0.82 - 4

	return map[string]float64{
		"height": round1(height),
		"chest":  round1(chest),
		"waist":  round1(waist),
		"hip":    round1(hip),
	}
}

func defaultMeasurements() map[string]float64 {
	return map[string]float64{
		"height": 172.0,
		"chest":  94.0,
		"waist":  80.0,
		"hip":    98.0,
	}
}

// ellipseGirth approximates a body cross-section circumference from its two
// axis diameters (Ramanujan).
func ellipseGirth(width, depth float64) float64 {
	a, b := width/2, depth/2
	h := math.Pow(a-b, 2) / math.Pow(a+b, 2)
	return math.Pi * (a + b) * (1 + 3*h/(10+math.Sqrt(4-3*h)))
}

func shapeParams(measurements map[string]float64, rng *rand.Rand) []float64 {
	params := make([]float64, session.ShapeParamCount)
	// First two components track stature and girth deviation from the mean.
	params[0] = (measurements["height"] - referenceHeightCM) / 6.5
	params[1] = (measurements["chest"] - 94.0) / 8.0
	for i := 2; i < session.ShapeParamCount; i++ {
		params[i] = (rng.Float64()*2 - 1) * 0.4
	}
	return params
}

func poseParams(estimate *session.PoseEstimate, rng *rand.Rand) []float64 {
	params := make([]float64, session.PoseParamCount)
	if !estimate.PersonDetected {
		return params
	}
	for i := range params {
		params[i] = (rng.Float64()*2 - 1) * 0.18
	}
	return params
}

func fitConfidence(estimate *session.PoseEstimate) float64 {
	if !estimate.PersonDetected {
		return 0.3
	}
	return math.Min(0.55+estimate.Confidence*0.4, 0.99)
}

func estimateSeed(estimate *session.PoseEstimate) int64 {
	h := fnv.New64a()
	for _, kp := range estimate.Keypoints2D {
		writeFloat(h, kp[0])
		writeFloat(h, kp[1])
	}
	for _, v := range estimate.BoundingBox {
		writeFloat(h, v)
	}
	return int64(h.Sum64())
}

func writeFloat(h hash.Hash, v float64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
	h.Write(buf[:])
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
