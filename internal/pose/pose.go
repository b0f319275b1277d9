// Package pose estimates human body pose from a single image. The estimator
// emits a fixed-shape result: 24 3D joints and 17 2D keypoints, always, so
// downstream consumers never branch on output dimensions. An image with no
// discernible person is a successful estimate with PersonDetected false.
package pose

import (
	"context"
	"hash/fnv"
	"image"
	"log/slog"
	"math"
	"math/rand"

	"github.com/disintegration/imaging"

	"fitforge/internal/logging"
	"fitforge/internal/services"
	"fitforge/internal/session"
)

// Estimator produces a pose estimate for the person in the image at path.
// Implementations must return the fixed joint and keypoint counts from
// session (JointCount3D, KeypointCount2D) on every successful call.
type Estimator interface {
	Estimate(ctx context.Context, path string) (*session.PoseEstimate, error)
}

// HeuristicEstimator locates the dominant foreground figure by contrast
// against the image border and fits a canonical skeleton into its bounding
// box. It is fully deterministic: the same image bytes always yield the same
// estimate.
type HeuristicEstimator struct {
	logger *slog.Logger
}

// NewHeuristicEstimator returns an estimator logging through logger. A nil
// logger disables logging.
func NewHeuristicEstimator(logger *slog.Logger) *HeuristicEstimator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &HeuristicEstimator{logger: logger}
}

// Foreground segmentation thresholds. A region is treated as a person when it
// covers a plausible share of the frame and is taller than it is wide.
const (
	luminanceDelta   = 0.12
	minCoverage      = 0.02
	maxCoverage      = 0.90
	minAspect        = 1.15
	analysisMaxWidth = 256
)

func (e *HeuristicEstimator) Estimate(ctx context.Context, path string) (*session.PoseEstimate, error) {
	if err := ctx.Err(); err != nil {
		return nil, services.Wrap(services.ErrProcessing, "pose", "estimate", "estimation canceled", err)
	}

	img, err := imaging.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrProcessing, "pose", "decode", "decode input image", err)
	}

	full := img.Bounds()
	scaled := img
	if full.Dx() > analysisMaxWidth {
		scaled = imaging.Resize(img, analysisMaxWidth, 0, imaging.NearestNeighbor)
	}
	gray := imaging.Grayscale(scaled)

	region, coverage := foregroundRegion(gray)
	scaleX := float64(full.Dx()) / float64(gray.Bounds().Dx())
	scaleY := float64(full.Dy()) / float64(gray.Bounds().Dy())
	box := [4]float64{
		float64(region.Min.X) * scaleX,
		float64(region.Min.Y) * scaleY,
		float64(region.Dx()) * scaleX,
		float64(region.Dy()) * scaleY,
	}

	aspect := 0.0
	if region.Dx() > 0 {
		aspect = float64(region.Dy()) / float64(region.Dx())
	}
	detected := coverage >= minCoverage && coverage <= maxCoverage && aspect >= minAspect

	estimate := &session.PoseEstimate{
		BoundingBox:    box,
		PersonDetected: detected,
	}
	if !detected {
		estimate.Joints3D = make([][3]float64, session.JointCount3D)
		estimate.Keypoints2D = make([][2]float64, session.KeypointCount2D)
		e.logger.DebugContext(ctx, "no person detected",
			logging.Float64("coverage", coverage),
			logging.Float64("aspect", aspect))
		return estimate, nil
	}

	rng := rand.New(rand.NewSource(imageSeed(gray)))
	estimate.Joints3D = projectJoints3D(rng)
	estimate.Keypoints2D = projectKeypoints2D(box, rng)
	estimate.Confidence = confidenceFor(coverage, aspect)

	e.logger.DebugContext(ctx, "pose estimated",
		logging.Float64("confidence", estimate.Confidence),
		logging.Float64("coverage", coverage))
	return estimate, nil
}

// foregroundRegion returns the bounding box of pixels that deviate from the
// border luminance, plus the fraction of the frame those pixels cover. An
// empty mask yields the full frame with zero coverage.
func foregroundRegion(gray *image.NRGBA) (image.Rectangle, float64) {
	bounds := gray.Bounds()
	border := borderLuminance(gray)

	minX, minY := bounds.Max.X, bounds.Max.Y
	maxX, maxY := bounds.Min.X, bounds.Min.Y
	count := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if math.Abs(luminanceAt(gray, x, y)-border) < luminanceDelta {
				continue
			}
			count++
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	if count == 0 {
		return bounds, 0
	}
	region := image.Rect(minX, minY, maxX+1, maxY+1)
	total := bounds.Dx() * bounds.Dy()
	return region, float64(count) / float64(total)
}

func borderLuminance(gray *image.NRGBA) float64 {
	bounds := gray.Bounds()
	sum := 0.0
	count := 0
	for x := bounds.Min.X; x < bounds.Max.X; x++ {
		sum += luminanceAt(gray, x, bounds.Min.Y) + luminanceAt(gray, x, bounds.Max.Y-1)
		count += 2
	}
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		sum += luminanceAt(gray, bounds.Min.X, y) + luminanceAt(gray, bounds.Max.X-1, y)
		count += 2
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func luminanceAt(gray *image.NRGBA, x, y int) float64 {
	offset := gray.PixOffset(x, y)
	return float64(gray.Pix[offset]) / 255.0
}

// imageSeed hashes the analysis-resolution pixels so identical inputs always
// produce identical parameter jitter.
func imageSeed(gray *image.NRGBA) int64 {
	h := fnv.New64a()
	h.Write(gray.Pix)
	return int64(h.Sum64())
}

func confidenceFor(coverage, aspect float64) float64 {
	// Peak confidence near 25% frame coverage with a clearly upright figure.
	coverageScore := 1.0 - math.Min(math.Abs(coverage-0.25)/0.25, 1.0)
	aspectScore := math.Min((aspect-minAspect)/1.5, 1.0)
	if aspectScore < 0 {
		aspectScore = 0
	}
	conf := 0.45 + 0.35*coverageScore + 0.20*aspectScore
	return math.Min(math.Max(conf, 0), 1)
}
