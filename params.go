package openpose

import (
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Params defines the tunable values used by the Pipeline
type Params struct {
	// ThresholdScale is the multiplier applied to the mean heatmap value to
	// derive the candidate confidence threshold for a frame
	ThresholdScale float32 `yaml:"threshold_scale"`
	// ThresholdMin is the lower bound of the derived threshold
	ThresholdMin float32 `yaml:"threshold_min"`
	// ThresholdMax is the upper bound of the derived threshold
	ThresholdMax float32 `yaml:"threshold_max"`
	// NMSWindow is the side length in pixels of the square window placed
	// around each joint candidate for Non-Maximum Suppression
	NMSWindow int `yaml:"nms_window"`
	// NMSThreshold is the maximum allowed Intersection Over Union (IoU)
	// between two candidate windows for both to be kept
	NMSThreshold float32 `yaml:"nms_threshold"`
	// OutlierFactor is the ratio between the best sample along a limb and
	// any other sample above which that sample is penalised
	OutlierFactor float32 `yaml:"outlier_factor"`
	// Parallel runs candidate extraction and limb matching for each type
	// concurrently.  Results are identical to the sequential run
	Parallel bool `yaml:"parallel"`
}

// MPIParams returns an instance of Params configured with the default
// values for the OpenPose MPI body model featuring:
// - Threshold: clamp(mean * 4, 0.1, 0.3)
// - NMS Window: 5x5
// - NMS Threshold: 0.3
// - Outlier Factor: 2
func MPIParams() Params {
	return Params{
		ThresholdScale: 4,
		ThresholdMin:   0.1,
		ThresholdMax:   0.3,
		NMSWindow:      5,
		NMSThreshold:   0.3,
		OutlierFactor:  2,
		Parallel:       false,
	}
}

// Validate checks the params are within usable ranges
func (p Params) Validate() error {

	for name, v := range map[string]float32{
		"threshold_scale": p.ThresholdScale,
		"threshold_min":   p.ThresholdMin,
		"threshold_max":   p.ThresholdMax,
		"nms_threshold":   p.NMSThreshold,
		"outlier_factor":  p.OutlierFactor,
	} {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidParams, name)
		}
	}

	if p.ThresholdMin > p.ThresholdMax {
		return fmt.Errorf("%w: threshold_min %v greater than threshold_max %v",
			ErrInvalidParams, p.ThresholdMin, p.ThresholdMax)
	}

	if p.NMSWindow <= 0 || p.NMSWindow%2 == 0 {
		return fmt.Errorf("%w: nms_window must be a positive odd number, got %d",
			ErrInvalidParams, p.NMSWindow)
	}

	if p.NMSThreshold < 0 || p.NMSThreshold > 1 {
		return fmt.Errorf("%w: nms_threshold must be in [0, 1], got %v",
			ErrInvalidParams, p.NMSThreshold)
	}

	if p.OutlierFactor <= 1 {
		return fmt.Errorf("%w: outlier_factor must be greater than 1, got %v",
			ErrInvalidParams, p.OutlierFactor)
	}

	return nil
}

// LoadParams decodes YAML encoded params from r.  Fields not present keep
// their MPIParams default
func LoadParams(r io.Reader) (Params, error) {

	p := MPIParams()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(&p); err != nil && err != io.EOF {
		return Params{}, fmt.Errorf("error decoding params: %w", err)
	}

	if err := p.Validate(); err != nil {
		return Params{}, err
	}

	return p, nil
}

// LoadParamsFile reads YAML encoded params from the named file
func LoadParamsFile(path string) (Params, error) {

	f, err := os.Open(path)

	if err != nil {
		return Params{}, fmt.Errorf("error opening params file: %w", err)
	}

	defer f.Close()

	return LoadParams(f)
}
