package openpose

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// Pipeline assembles skeletons from OpenPose MPI network output tensors
type Pipeline struct {
	// Params are the pipeline configuration parameters
	Params Params
}

// NewPipeline returns an instance of the Pipeline.  An error is returned if
// the params are invalid or the static topology does not fit the tensor
// shape constants
func NewPipeline(p Params) (*Pipeline, error) {

	if topologyErr != nil {
		return nil, fmt.Errorf("invalid topology: %w", topologyErr)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return &Pipeline{
		Params: p,
	}, nil
}

// Timing records how long each stage of a pipeline run took
type Timing struct {
	Extract  time.Duration
	Match    time.Duration
	Assemble time.Duration
	Total    time.Duration
}

// String returns the timing formatted for logging
func (t Timing) String() string {
	return fmt.Sprintf("extract=%s, match=%s, assemble=%s, total=%s",
		t.Extract.String(), t.Match.String(), t.Assemble.String(), t.Total.String())
}

// Result is the output of a single pipeline run
type Result struct {
	// Skeletons are the detected people in creation order
	Skeletons []*Skeleton
	// Candidates are the NMS filtered joint candidates indexed by JointType.
	// The Background entry is always empty
	Candidates [JointCount][]JointCandidate
	// Limbs are the scored and accepted connections indexed by LimbType
	Limbs [LimbCount]LimbMatch
	// Threshold is the candidate confidence threshold derived for the frame
	Threshold float32
	// Stats are the heatmap statistics the threshold was derived from
	Stats HeatmapStats
	// Timing of the pipeline stages
	Timing Timing
}

// Connections returns the connections of each skeleton keyed by the
// skeleton index.  An empty map means no people were detected
func (r Result) Connections() map[int][]ScoredConnection {
	out := make(map[int][]ScoredConnection, len(r.Skeletons))

	for i, s := range r.Skeletons {
		out[i] = s.Connections()
	}

	return out
}

// InferenceFunc runs the network and returns the flat output tensor buffer
type InferenceFunc func(ctx context.Context) ([]float32, error)

// Detect runs inference and then processes the resulting tensor.  If
// inference fails, is cancelled or yields no data, an empty Result is
// returned along with an error wrapping ErrInferenceUnavailable
func (p *Pipeline) Detect(ctx context.Context, infer InferenceFunc) (Result, error) {

	data, err := infer(ctx)

	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrInferenceUnavailable, err)
	}

	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrInferenceUnavailable, err)
	}

	if len(data) == 0 {
		return Result{}, fmt.Errorf("%w: no tensor data", ErrInferenceUnavailable)
	}

	t, err := NewMPITensor(data)

	if err != nil {
		return Result{}, err
	}

	return p.Process(ctx, t)
}

// Process runs candidate extraction, limb matching and skeleton assembly
// over the tensor.  A tensor not created by NewTensor is refused with an
// error wrapping ErrMalformedTensor
func (p *Pipeline) Process(ctx context.Context, t *Tensor) (Result, error) {

	if t == nil {
		return Result{}, fmt.Errorf("%w: nil tensor", ErrMalformedTensor)
	}

	if err := t.validate(); err != nil {
		return Result{}, err
	}

	start := time.Now()
	res := Result{}

	res.Stats = t.HeatmapStats()
	res.Threshold = p.Params.Threshold(res.Stats.Mean)

	err := p.forEach(ctx, BackgroundLayerIndex, func(i int) {
		j := JointType(i)
		res.Candidates[j] = ExtractCandidates(t.Heatmap(j), t.Width(), t.Height(),
			j, res.Threshold, p.Params)
	})

	if err != nil {
		return Result{}, err
	}

	res.Candidates[Background] = []JointCandidate{}
	endExtract := time.Now()

	err = p.forEach(ctx, LimbCount, func(i int) {
		l := LimbType(i)
		from, to := l.Joints()
		pafX, pafY := t.PAF(l)
		res.Limbs[l] = MatchLimb(l, res.Candidates[from], res.Candidates[to],
			pafX, pafY, t.Width(), p.Params.OutlierFactor)
	})

	if err != nil {
		return Result{}, err
	}

	endMatch := time.Now()

	// assembly depends on limb order so it always runs sequentially
	conns := make([]ScoredConnection, 0)

	for _, l := range AllLimbs() {
		conns = append(conns, res.Limbs[l].Accepted...)
	}

	res.Skeletons = AssembleSkeletons(conns)
	end := time.Now()

	res.Timing = Timing{
		Extract:  endExtract.Sub(start),
		Match:    endMatch.Sub(endExtract),
		Assemble: end.Sub(endMatch),
		Total:    end.Sub(start),
	}

	return res, nil
}

// forEach calls fn for every index in [0, n), concurrently if the Parallel
// param is set.  Each call must only write to its own index
func (p *Pipeline) forEach(ctx context.Context, n int, fn func(i int)) error {

	if !p.Params.Parallel {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return ctx.Err()
	}

	g, gctx := errgroup.WithContext(ctx)

	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(i)
			return nil
		})
	}

	return g.Wait()
}
