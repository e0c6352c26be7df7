package postprocess

import (
	"context"
	"fmt"

	"github.com/swdee/go-openpose"
	"github.com/swdee/go-rknnlite"
	"gocv.io/x/gocv"
)

// OpenPose defines the struct for OpenPose MPI model inference post processing
type OpenPose struct {
	// Params are the Model configuration parameters
	Params OpenPoseParams
	// pipeline assembles the skeletons from the output tensor
	pipeline *openpose.Pipeline
}

// OpenPoseParams defines the struct containing the OpenPose parameters to use
// for post processing operations
type OpenPoseParams struct {
	// Pipeline are the skeleton assembly parameters
	Pipeline openpose.Params
	// OutputIndex is the index of the Model output tensor holding the
	// heatmap and PAF layers
	OutputIndex int
}

// OpenPoseMPIParams returns an instance of OpenPoseParams configured with
// default values for a Model trained on the MPI dataset featuring:
// - Joints: 15 plus background
// - Limbs: 14
// - Output Tensor: [44, 64, 64]
func OpenPoseMPIParams() OpenPoseParams {
	return OpenPoseParams{
		Pipeline:    openpose.MPIParams(),
		OutputIndex: 0,
	}
}

// NewOpenPose returns an instance of the OpenPose post processor
func NewOpenPose(p OpenPoseParams) (*OpenPose, error) {

	pipeline, err := openpose.NewPipeline(p.Pipeline)

	if err != nil {
		return nil, fmt.Errorf("error creating pipeline: %w", err)
	}

	return &OpenPose{
		Params:   p,
		pipeline: pipeline,
	}, nil
}

// DetectSkeletons takes the RKNN outputs and runs the skeleton assembly
// process then returns the results.  The output buffer is copied so the
// outputs can be freed once this returns
func (o *OpenPose) DetectSkeletons(ctx context.Context,
	outputs *rknnlite.Outputs) (openpose.Result, error) {

	if err := ctx.Err(); err != nil {
		return openpose.Result{}, err
	}

	idx := o.Params.OutputIndex

	if idx < 0 || idx >= len(outputs.Output) {
		return openpose.Result{}, fmt.Errorf("%w: output index %d not in %d outputs",
			openpose.ErrMalformedTensor, idx, len(outputs.Output))
	}

	attrs := outputs.OutputAttributes()

	data, err := tensorData(outputs.Output[idx],
		int(attrs.DimHeights[idx]), int(attrs.DimWidths[idx]),
		attrs.ZPs[idx], attrs.Scales[idx])

	if err != nil {
		return openpose.Result{}, err
	}

	tensor, err := openpose.NewMPITensor(data)

	if err != nil {
		return openpose.Result{}, err
	}

	return o.pipeline.Process(ctx, tensor)
}

// Inference returns an openpose.InferenceFunc that runs the Model on the
// given mats with the RKNN runtime and returns a copy of the output tensor
// data, freeing the RKNN outputs before returning
func (o *OpenPose) Inference(rt *rknnlite.Runtime, mats []gocv.Mat) openpose.InferenceFunc {
	return func(ctx context.Context) ([]float32, error) {

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		outputs, err := rt.Inference(mats)

		if err != nil {
			return nil, fmt.Errorf("runtime inferencing failed: %w", err)
		}

		defer outputs.Free()

		idx := o.Params.OutputIndex
		attrs := rt.OutputAttrs()

		if idx < 0 || idx >= len(outputs.Output) || idx >= len(attrs) {
			return nil, fmt.Errorf("%w: output index %d not in %d outputs",
				openpose.ErrMalformedTensor, idx, len(outputs.Output))
		}

		attr := attrs[idx]

		return tensorData(outputs.Output[idx], int(attr.Dims[2]), int(attr.Dims[3]),
			attr.ZP, attr.Scale)
	}
}

// Detect runs inference with the RKNN runtime and assembles the skeletons.
// If inference fails an empty result is returned with an error wrapping
// openpose.ErrInferenceUnavailable
func (o *OpenPose) Detect(ctx context.Context, rt *rknnlite.Runtime,
	mats []gocv.Mat) (openpose.Result, error) {
	return o.pipeline.Detect(ctx, o.Inference(rt, mats))
}

// tensorData copies an NCHW output buffer of height x width layers into a
// new float32 slice, dequantizing it if the output was left as int8
func tensorData(out rknnlite.Output, height, width int, zp int32,
	scale float32) ([]float32, error) {

	size := height * width

	if size <= 0 {
		return nil, fmt.Errorf("%w: output dimensions %dx%d",
			openpose.ErrMalformedTensor, height, width)
	}

	switch {
	case len(out.BufFloat) > 0:
		if len(out.BufFloat)%size != 0 {
			return nil, fmt.Errorf("%w: float output length %d not a multiple of %dx%d",
				openpose.ErrMalformedTensor, len(out.BufFloat), height, width)
		}

		data := make([]float32, len(out.BufFloat))
		copy(data, out.BufFloat)
		return data, nil

	case len(out.BufInt) > 0:
		if len(out.BufInt)%size != 0 {
			return nil, fmt.Errorf("%w: int8 output length %d not a multiple of %dx%d",
				openpose.ErrMalformedTensor, len(out.BufInt), height, width)
		}

		data := make([]float32, len(out.BufInt))

		for i, v := range out.BufInt {
			data[i] = deqntAffineToF32(v, zp, scale)
		}

		return data, nil
	}

	return nil, fmt.Errorf("%w: output %d has no data",
		openpose.ErrInferenceUnavailable, out.Index)
}
