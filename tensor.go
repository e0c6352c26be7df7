package openpose

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Tensor is a read only view over the flat network output buffer laid out
// as [layers, height, width] in row-major order
type Tensor struct {
	data   []float32
	layers int
	height int
	width  int
}

// NewTensor wraps the flat buffer in a Tensor of the given shape.  The
// buffer is not copied.  An error wrapping ErrMalformedTensor is returned if
// the shape does not match the MPI model constants or the buffer length
func NewTensor(data []float32, layers, height, width int) (*Tensor, error) {

	t := &Tensor{
		data:   data,
		layers: layers,
		height: height,
		width:  width,
	}

	if err := t.validate(); err != nil {
		return nil, err
	}

	return t, nil
}

// validate checks the shape matches the MPI model constants and the buffer
// holds exactly one value per element
func (t *Tensor) validate() error {

	if t.layers != LayersCount || t.height != HeatmapHeight || t.width != HeatmapWidth {
		return fmt.Errorf("%w: shape [%d, %d, %d], expected [%d, %d, %d]",
			ErrMalformedTensor, t.layers, t.height, t.width,
			LayersCount, HeatmapHeight, HeatmapWidth)
	}

	if len(t.data) != t.layers*t.height*t.width {
		return fmt.Errorf("%w: buffer length %d, expected %d",
			ErrMalformedTensor, len(t.data), t.layers*t.height*t.width)
	}

	return nil
}

// NewMPITensor wraps a flat buffer with the fixed MPI output shape
func NewMPITensor(data []float32) (*Tensor, error) {
	return NewTensor(data, LayersCount, HeatmapHeight, HeatmapWidth)
}

// Layers returns the number of layers in the tensor
func (t *Tensor) Layers() int {
	return t.layers
}

// Width returns the width of each layer
func (t *Tensor) Width() int {
	return t.width
}

// Height returns the height of each layer
func (t *Tensor) Height() int {
	return t.height
}

// Index converts a (layer, row, col) coordinate into a linear index into
// the buffer.  Coordinates are clamped into the tensor bounds
func (t *Tensor) Index(layer, row, col int) int {
	layer = clampInt(layer, 0, t.layers-1)
	row = clampInt(row, 0, t.height-1)
	col = clampInt(col, 0, t.width-1)
	return (layer*t.height+row)*t.width + col
}

// At returns the value at (layer, row, col) with coordinates clamped into
// the tensor bounds
func (t *Tensor) At(layer, row, col int) float32 {
	return t.data[t.Index(layer, row, col)]
}

// Layer returns the slice of the buffer holding the given layer
func (t *Tensor) Layer(layer int) []float32 {
	layer = clampInt(layer, 0, t.layers-1)
	size := t.height * t.width
	return t.data[layer*size : (layer+1)*size]
}

// Heatmap returns the heatmap layer for the joint type
func (t *Tensor) Heatmap(j JointType) []float32 {
	return t.Layer(j.Layer())
}

// PAF returns the x and y vector field channels of the limb type
func (t *Tensor) PAF(l LimbType) (x, y []float32) {
	lx, ly := l.PAFLayers()
	return t.Layer(lx), t.Layer(ly)
}

// HeatmapStats are summary statistics over all joint heatmap layers,
// excluding the background layer
type HeatmapStats struct {
	Mean   float64
	StdDev float64
}

// HeatmapStats calculates the mean and standard deviation over the joint
// heatmap region of the tensor
func (t *Tensor) HeatmapStats() HeatmapStats {

	region := t.data[:BackgroundLayerIndex*t.height*t.width]
	vals := make([]float64, len(region))

	for i, v := range region {
		vals[i] = float64(v)
	}

	mean, std := stat.MeanStdDev(vals, nil)

	return HeatmapStats{
		Mean:   mean,
		StdDev: std,
	}
}

// clampInt restricts val to be within the range min and max
func clampInt(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
