package openpose

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// personJoints places a single upright person in heatmap space
var personJoints = map[JointType]Point{
	Head:      {32, 6},
	Neck:      {32, 14},
	RShoulder: {24, 16},
	RElbow:    {20, 26},
	RWrist:    {18, 36},
	LShoulder: {40, 16},
	LElbow:    {44, 26},
	LWrist:    {46, 36},
	Chest:     {32, 28},
	RHip:      {27, 40},
	RKnee:     {26, 50},
	RAnkle:    {26, 60},
	LHip:      {37, 40},
	LKnee:     {38, 50},
	LAnkle:    {38, 60},
}

// newPersonTensor returns a tensor with a single strong peak for each joint
// and a unit vector field painted along every limb
func newPersonTensor(t *testing.T) *Tensor {
	t.Helper()

	data := make([]float32, LayersCount*HeatmapHeight*HeatmapWidth)
	tensor, err := NewMPITensor(data)

	if err != nil {
		t.Fatalf("NewMPITensor returned error: %v", err)
	}

	for j, p := range personJoints {
		tensor.Heatmap(j)[p.Row*HeatmapWidth+p.Col] = 0.9
	}

	for _, l := range AllLimbs() {
		from, to := l.Joints()
		paintLimb(tensor, l, personJoints[from], personJoints[to])
	}

	return tensor
}

// paintLimb writes the limb's unit direction vector into its PAF channels
// along the line between a and b with a 3x3 brush
func paintLimb(tensor *Tensor, l LimbType, a, b Point) {
	pafX, pafY := tensor.PAF(l)

	dCol := float64(b.Col - a.Col)
	dRow := float64(b.Row - a.Row)
	length := math.Hypot(dCol, dRow)
	ux, uy := float32(dCol/length), float32(dRow/length)
	steps := int(math.Max(math.Abs(dCol), math.Abs(dRow)))

	for i := 0; i <= steps; i++ {
		frac := float64(i) / float64(steps)
		col := a.Col + int(math.Round(frac*dCol))
		row := a.Row + int(math.Round(frac*dRow))

		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				idx := tensor.Index(0, row+dr, col+dc)
				pafX[idx] = ux
				pafY[idx] = uy
			}
		}
	}
}

func TestPipelineSinglePerson(t *testing.T) {
	p, err := NewPipeline(MPIParams())

	if err != nil {
		t.Fatalf("NewPipeline returned error: %v", err)
	}

	res, err := p.Process(context.Background(), newPersonTensor(t))

	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}

	if res.Threshold != MPIParams().ThresholdMin {
		t.Errorf("threshold = %v, expected lower bound", res.Threshold)
	}

	for j, p := range personJoints {
		cands := res.Candidates[j]

		if len(cands) != 1 || cands[0].Point() != p {
			t.Errorf("joint %s candidates %v, expected single at %v", j, cands, p)
		}
	}

	if len(res.Skeletons) != 1 {
		t.Fatalf("expected 1 skeleton, got %d", len(res.Skeletons))
	}

	s := res.Skeletons[0]

	if s.Len() != JointCount-1 {
		t.Errorf("skeleton has %d joints, expected %d", s.Len(), JointCount-1)
	}

	for j, p := range personJoints {
		if !s.Contains(p) {
			t.Errorf("skeleton missing joint %s at %v", j, p)
		}
	}

	conns := res.Connections()

	if len(conns) != 1 || len(conns[0]) != LimbCount {
		t.Fatalf("expected 1 skeleton with %d connections, got %v", LimbCount, conns)
	}

	for i, c := range conns[0] {
		if c.Limb != LimbType(i) {
			t.Errorf("connection %d is limb %s, expected %s", i, c.Limb, LimbType(i))
		}

		if c.Score <= 0 {
			t.Errorf("connection %s has score %v", c.Limb, c.Score)
		}
	}
}

func TestPipelineIdempotent(t *testing.T) {
	seq, err := NewPipeline(MPIParams())

	if err != nil {
		t.Fatalf("NewPipeline returned error: %v", err)
	}

	parParams := MPIParams()
	parParams.Parallel = true
	par, err := NewPipeline(parParams)

	if err != nil {
		t.Fatalf("NewPipeline returned error: %v", err)
	}

	tensor := newPersonTensor(t)
	ctx := context.Background()

	first, err := seq.Process(ctx, tensor)
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}

	second, err := seq.Process(ctx, tensor)
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}

	parallel, err := par.Process(ctx, tensor)
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}

	if diff := cmp.Diff(first.Connections(), second.Connections()); diff != "" {
		t.Errorf("repeated run mismatch (-first +second):\n%s", diff)
	}

	if diff := cmp.Diff(first.Connections(), parallel.Connections()); diff != "" {
		t.Errorf("parallel run mismatch (-sequential +parallel):\n%s", diff)
	}

	if diff := cmp.Diff(first.Candidates, parallel.Candidates); diff != "" {
		t.Errorf("parallel candidates mismatch (-sequential +parallel):\n%s", diff)
	}

	if diff := cmp.Diff(first.Limbs, parallel.Limbs); diff != "" {
		t.Errorf("parallel limbs mismatch (-sequential +parallel):\n%s", diff)
	}
}

func TestPipelineEmptyTensor(t *testing.T) {
	p, err := NewPipeline(MPIParams())

	if err != nil {
		t.Fatalf("NewPipeline returned error: %v", err)
	}

	tensor, err := NewMPITensor(make([]float32, LayersCount*HeatmapHeight*HeatmapWidth))

	if err != nil {
		t.Fatalf("NewMPITensor returned error: %v", err)
	}

	res, err := p.Process(context.Background(), tensor)

	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}

	if len(res.Skeletons) != 0 || len(res.Connections()) != 0 {
		t.Errorf("expected no skeletons, got %d", len(res.Skeletons))
	}
}

func TestPipelineDetect(t *testing.T) {
	p, err := NewPipeline(MPIParams())

	if err != nil {
		t.Fatalf("NewPipeline returned error: %v", err)
	}

	person := newPersonTensor(t)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name      string
		ctx       context.Context
		infer     InferenceFunc
		wantErr   error
		skeletons int
	}{
		{
			name: "success",
			ctx:  context.Background(),
			infer: func(ctx context.Context) ([]float32, error) {
				return person.data, nil
			},
			skeletons: 1,
		},
		{
			name: "inference failed",
			ctx:  context.Background(),
			infer: func(ctx context.Context) ([]float32, error) {
				return nil, errors.New("npu timeout")
			},
			wantErr: ErrInferenceUnavailable,
		},
		{
			name: "no tensor",
			ctx:  context.Background(),
			infer: func(ctx context.Context) ([]float32, error) {
				return nil, nil
			},
			wantErr: ErrInferenceUnavailable,
		},
		{
			name: "cancelled",
			ctx:  cancelled,
			infer: func(ctx context.Context) ([]float32, error) {
				return person.data, nil
			},
			wantErr: ErrInferenceUnavailable,
		},
		{
			name: "malformed",
			ctx:  context.Background(),
			infer: func(ctx context.Context) ([]float32, error) {
				return make([]float32, 19*46*46), nil
			},
			wantErr: ErrMalformedTensor,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := p.Detect(tt.ctx, tt.infer)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			if len(res.Skeletons) != tt.skeletons {
				t.Errorf("got %d skeletons, expected %d", len(res.Skeletons), tt.skeletons)
			}
		})
	}
}

func TestNewPipelineInvalidParams(t *testing.T) {
	p := MPIParams()
	p.OutlierFactor = 0.5

	if _, err := NewPipeline(p); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("expected ErrInvalidParams, got %v", err)
	}
}

func TestProcessMalformedTensor(t *testing.T) {
	p, err := NewPipeline(MPIParams())

	if err != nil {
		t.Fatalf("NewPipeline returned error: %v", err)
	}

	tests := []struct {
		name   string
		tensor *Tensor
	}{
		{"nil", nil},
		{"zero value", &Tensor{}},
		{"short buffer", &Tensor{
			data:   make([]float32, 10),
			layers: LayersCount,
			height: HeatmapHeight,
			width:  HeatmapWidth,
		}},
		{"wrong shape", &Tensor{
			data:   make([]float32, 19*46*46),
			layers: 19,
			height: 46,
			width:  46,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := p.Process(context.Background(), tt.tensor)

			if !errors.Is(err, ErrMalformedTensor) {
				t.Errorf("expected ErrMalformedTensor, got %v", err)
			}

			if len(res.Skeletons) != 0 {
				t.Errorf("expected no skeletons, got %d", len(res.Skeletons))
			}
		})
	}
}
