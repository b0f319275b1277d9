package pose

import (
	"math/rand"

	"fitforge/internal/session"
)

// Canonical T-pose body-joint positions in a meter-scale body frame: x right,
// y up, z toward the camera, pelvis at the origin. Indexed per the standard
// 24-joint body-model ordering.
var canonicalJoints3D = [session.JointCount3D][3]float64{
	{0.00, 0.00, 0.00},   // pelvis
	{-0.09, -0.06, 0.01}, // left hip
	{0.09, -0.06, 0.01},  // right hip
	{0.00, 0.11, -0.01},  // spine1
	{-0.10, -0.49, 0.00}, // left knee
	{0.10, -0.49, 0.00},  // right knee
	{0.00, 0.24, 0.00},   // spine2
	{-0.10, -0.88, -0.03}, // left ankle
	{0.10, -0.88, -0.03},  // right ankle
	{0.00, 0.30, 0.01},   // spine3
	{-0.11, -0.95, 0.09}, // left foot
	{0.11, -0.95, 0.09},  // right foot
	{0.00, 0.45, -0.02},  // neck
	{-0.08, 0.41, -0.01}, // left collar
	{0.08, 0.41, -0.01},  // right collar
	{0.00, 0.53, 0.03},   // head
	{-0.17, 0.40, -0.02}, // left shoulder
	{0.17, 0.40, -0.02},  // right shoulder
	{-0.43, 0.39, -0.02}, // left elbow
	{0.43, 0.39, -0.02},  // right elbow
	{-0.68, 0.39, -0.02}, // left wrist
	{0.68, 0.39, -0.02},  // right wrist
	{-0.77, 0.39, -0.02}, // left hand
	{0.77, 0.39, -0.02},  // right hand
}

// Canonical 2D keypoints in COCO ordering (nose, eyes, ears, shoulders,
// elbows, wrists, hips, knees, ankles), normalized to a unit box with the
// origin at the top-left of the figure.
var canonicalKeypoints2D = [session.KeypointCount2D][2]float64{
	{0.50, 0.06}, // nose
	{0.46, 0.05}, // left eye
	{0.54, 0.05}, // right eye
	{0.42, 0.06}, // left ear
	{0.58, 0.06}, // right ear
	{0.34, 0.20}, // left shoulder
	{0.66, 0.20}, // right shoulder
	{0.27, 0.36}, // left elbow
	{0.73, 0.36}, // right elbow
	{0.24, 0.50}, // left wrist
	{0.76, 0.50}, // right wrist
	{0.40, 0.52}, // left hip
	{0.60, 0.52}, // right hip
	{0.39, 0.74}, // left knee
	{0.61, 0.74}, // right knee
	{0.38, 0.95}, // left ankle
	{0.62, 0.95}, // right ankle
}

// Per-joint jitter keeps estimates plausibly non-rigid while remaining
// deterministic for a given image seed.
const (
	jointJitter3D    = 0.015
	keypointJitterPx = 0.01
)

func projectJoints3D(rng *rand.Rand) [][3]float64 {
	joints := make([][3]float64, session.JointCount3D)
	for i, joint := range canonicalJoints3D {
		for axis := 0; axis < 3; axis++ {
			joints[i][axis] = joint[axis] + (rng.Float64()*2-1)*jointJitter3D
		}
	}
	return joints
}

func projectKeypoints2D(box [4]float64, rng *rand.Rand) [][2]float64 {
	x, y, w, h := box[0], box[1], box[2], box[3]
	points := make([][2]float64, session.KeypointCount2D)
	for i, kp := range canonicalKeypoints2D {
		jx := (rng.Float64()*2 - 1) * keypointJitterPx * w
		jy := (rng.Float64()*2 - 1) * keypointJitterPx * h
		points[i][0] = x + kp[0]*w + jx
		points[i][1] = y + kp[1]*h + jy
	}
	return points
}
