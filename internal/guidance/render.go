package guidance

import (
	"image"
	"image/color"
	"math"

	"fitforge/internal/session"
)

// COCO limb topology: keypoint index pairs connected by skeleton lines.
var skeletonLimbs = [][2]int{
	{5, 7}, {7, 9}, // left arm
	{6, 8}, {8, 10}, // right arm
	{5, 6},           // shoulder line
	{5, 11}, {6, 12}, // torso sides
	{11, 12},           // hip line
	{11, 13}, {13, 15}, // left leg
	{12, 14}, {14, 16}, // right leg
	{0, 5}, {0, 6}, // neck
}

var limbColors = []color.NRGBA{
	{255, 85, 0, 255}, {255, 170, 0, 255},
	{255, 255, 0, 255}, {170, 255, 0, 255},
	{85, 255, 0, 255},
	{0, 255, 85, 255}, {0, 255, 170, 255},
	{0, 255, 255, 255},
	{0, 170, 255, 255}, {0, 85, 255, 255},
	{85, 0, 255, 255}, {170, 0, 255, 255},
	{255, 0, 255, 255}, {255, 0, 170, 255},
}

// renderDepthMap encodes distance as grayscale: the figure is brighter than
// the background, peaking at the torso axis and falling off toward the
// silhouette edges.
func renderDepthMap(width, height int, state *session.State) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	fillBackground(img, color.NRGBA{12, 12, 12, 255})

	box := state.Pose.BoundingBox
	if !state.Pose.PersonDetected || box[2] <= 0 || box[3] <= 0 {
		return img
	}

	cx := box[0] + box[2]/2
	halfW := box[2] / 2
	for y := int(box[1]); y < int(box[1]+box[3]); y++ {
		for x := int(box[0]); x < int(box[0]+box[2]); x++ {
			if x < 0 || x >= width || y < 0 || y >= height {
				continue
			}
			// Cylindrical falloff across the body axis.
			dx := math.Abs(float64(x)-cx) / halfW
			if dx > 1 {
				dx = 1
			}
			depth := math.Sqrt(1 - dx*dx)
			v := uint8(40 + depth*200)
			img.SetNRGBA(x, y, color.NRGBA{v, v, v, 255})
		}
	}
	return img
}

// renderNormalMap encodes per-pixel surface orientation in the usual RGB
// convention: x in red, y in green, z in blue, each mapped from [-1,1] to
// [0,255]. The background faces the camera.
func renderNormalMap(width, height int, state *session.State) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	fillBackground(img, color.NRGBA{128, 128, 255, 255})

	box := state.Pose.BoundingBox
	if !state.Pose.PersonDetected || box[2] <= 0 || box[3] <= 0 {
		return img
	}

	cx := box[0] + box[2]/2
	halfW := box[2] / 2
	for y := int(box[1]); y < int(box[1]+box[3]); y++ {
		for x := int(box[0]); x < int(box[0]+box[2]); x++ {
			if x < 0 || x >= width || y < 0 || y >= height {
				continue
			}
			nx := (float64(x) - cx) / halfW
			if nx < -1 {
				nx = -1
			} else if nx > 1 {
				nx = 1
			}
			nz := math.Sqrt(1 - nx*nx)
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8((nx + 1) / 2 * 255),
				G: 128,
				B: uint8((nz + 1) / 2 * 255),
				A: 255,
			})
		}
	}
	return img
}

// renderPoseMap draws the skeleton over a black canvas in the OpenPose color
// scheme: one color per limb, joints as filled discs.
func renderPoseMap(width, height int, state *session.State) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	fillBackground(img, color.NRGBA{0, 0, 0, 255})

	if !state.Pose.PersonDetected {
		return img
	}

	kp := state.Pose.Keypoints2D
	for i, limb := range skeletonLimbs {
		a, b := kp[limb[0]], kp[limb[1]]
		drawLine(img, int(a[0]), int(a[1]), int(b[0]), int(b[1]), limbColors[i%len(limbColors)], 3)
	}
	for _, p := range kp {
		drawDisc(img, int(p[0]), int(p[1]), 4, color.NRGBA{255, 255, 255, 255})
	}
	return img
}

// Segment fill colors, one per body region.
var (
	segHead  = color.NRGBA{192, 64, 64, 255}
	segTorso = color.NRGBA{64, 160, 64, 255}
	segArms  = color.NRGBA{64, 64, 192, 255}
	segLegs  = color.NRGBA{192, 160, 64, 255}
)

// renderSegmentMap paints coarse body regions as flat colors: head above the
// shoulders, torso between shoulders and hips, limbs as thick strokes.
func renderSegmentMap(width, height int, state *session.State) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	fillBackground(img, color.NRGBA{0, 0, 0, 255})

	if !state.Pose.PersonDetected {
		return img
	}

	kp := state.Pose.Keypoints2D
	shoulderY := (kp[5][1] + kp[6][1]) / 2
	strokeW := int(math.Max(state.Pose.BoundingBox[2]/8, 6))

	// Torso quadrilateral approximated by its bounding rectangle.
	torso := image.Rect(
		int(math.Min(kp[5][0], kp[11][0]))-strokeW/2,
		int(shoulderY),
		int(math.Max(kp[6][0], kp[12][0]))+strokeW/2,
		int(math.Max(kp[11][1], kp[12][1])),
	)
	fillRect(img, torso, segTorso)

	// Head disc centered between the ears, sized from the ear spread.
	headCX := (kp[3][0] + kp[4][0]) / 2
	headCY := (kp[1][1] + kp[2][1]) / 2
	headR := math.Max(math.Abs(kp[4][0]-kp[3][0]), 8)
	drawDisc(img, int(headCX), int(headCY), int(headR), segHead)

	for _, limb := range [][2]int{{5, 7}, {7, 9}, {6, 8}, {8, 10}} {
		a, b := kp[limb[0]], kp[limb[1]]
		drawLine(img, int(a[0]), int(a[1]), int(b[0]), int(b[1]), segArms, strokeW)
	}
	for _, limb := range [][2]int{{11, 13}, {13, 15}, {12, 14}, {14, 16}} {
		a, b := kp[limb[0]], kp[limb[1]]
		drawLine(img, int(a[0]), int(a[1]), int(b[0]), int(b[1]), segLegs, strokeW)
	}
	return img
}

func fillBackground(img *image.NRGBA, c color.NRGBA) {
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

func fillRect(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

// drawLine rasterizes a thick segment by stamping discs along the Bresenham
// path.
func drawLine(img *image.NRGBA, x0, y0, x1, y1 int, c color.NRGBA, thickness int) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 >= x1 {
		sx = -1
	}
	sy := 1
	if y0 >= y1 {
		sy = -1
	}
	err := dx + dy
	r := thickness / 2
	if r < 1 {
		r = 1
	}
	for {
		drawDisc(img, x0, y0, r, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func drawDisc(img *image.NRGBA, cx, cy, r int, c color.NRGBA) {
	bounds := img.Bounds()
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			if x < bounds.Min.X || x >= bounds.Max.X || y < bounds.Min.Y || y >= bounds.Max.Y {
				continue
			}
			ddx, ddy := x-cx, y-cy
			if ddx*ddx+ddy*ddy <= r*r {
				img.SetNRGBA(x, y, c)
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
