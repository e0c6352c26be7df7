package render

import (
	"fmt"
	"image"
	"math"

	"github.com/swdee/go-openpose"
	"gocv.io/x/gocv"
)

// Heatmap blends a color mapped rendering of the joint's heatmap layer over
// the image.  Alpha is the weight given to the heatmap
func Heatmap(img *gocv.Mat, t *openpose.Tensor, joint openpose.JointType,
	colormap gocv.ColormapTypes, alpha float64) error {

	if !joint.Valid() {
		return fmt.Errorf("invalid joint type %d", int(joint))
	}

	return overlay(img, normalizeU8(t.Heatmap(joint)), t.Width(), t.Height(),
		colormap, alpha)
}

// PAFMagnitude blends a color mapped rendering of the magnitude of the
// limb's Part Affinity Field over the image
func PAFMagnitude(img *gocv.Mat, t *openpose.Tensor, limb openpose.LimbType,
	colormap gocv.ColormapTypes, alpha float64) error {

	if !limb.Valid() {
		return fmt.Errorf("invalid limb type %d", int(limb))
	}

	x, y := t.PAF(limb)
	mag := make([]float32, len(x))

	for i := range x {
		mag[i] = float32(math.Hypot(float64(x[i]), float64(y[i])))
	}

	return overlay(img, normalizeU8(mag), t.Width(), t.Height(), colormap, alpha)
}

// overlay colors the grayscale layer, resizes it to the image and blends it
// over the image
func overlay(img *gocv.Mat, gray []byte, width, height int,
	colormap gocv.ColormapTypes, alpha float64) error {

	u8Mat, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8U, gray)

	if err != nil {
		return fmt.Errorf("failed to create layer mat: %w", err)
	}

	defer u8Mat.Close()

	colored := gocv.NewMat()
	defer colored.Close()
	gocv.ApplyColorMap(u8Mat, &colored, colormap)

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(colored, &resized, image.Pt(img.Cols(), img.Rows()), 0, 0,
		gocv.InterpolationLinear)

	gocv.AddWeighted(*img, 1-alpha, resized, alpha, 0, img)

	return nil
}

// normalizeU8 scales the layer values to [0,255] using the min/max over the
// layer.  Non finite values and constant layers render as black
func normalizeU8(layer []float32) []byte {

	out := make([]byte, len(layer))
	minV := float32(math.Inf(1))
	maxV := float32(math.Inf(-1))

	for _, v := range layer {
		if !isFinite32(v) {
			continue
		}
		minV = min(minV, v)
		maxV = max(maxV, v)
	}

	den := maxV - minV

	if !isFinite32(minV) || !isFinite32(maxV) || den <= 0 {
		return out
	}

	for i, v := range layer {
		if !isFinite32(v) {
			continue
		}
		out[i] = byte((v - minV) / den * 255.0)
	}

	return out
}

// isFinite32 returns true if v is neither NaN nor +/-Inf
func isFinite32(v float32) bool {
	return !math.IsNaN(float64(v)) && !math.IsInf(float64(v), 0)
}
