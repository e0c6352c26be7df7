package openpose

import "fmt"

// Tensor shape constants for the MPI body model.  These are bound to the
// JointType and LimbType tables below and checked by validateTopology
const (
	// LayersCount is the total number of layers in the network output tensor
	LayersCount = 44
	// BackgroundLayerIndex is the layer holding the background heatmap
	BackgroundLayerIndex = 15
	// PAFLayerStartIndex is the first Part Affinity Field layer
	PAFLayerStartIndex = 16
	// HeatmapWidth is the width of each output layer in pixels
	HeatmapWidth = 64
	// HeatmapHeight is the height of each output layer in pixels
	HeatmapHeight = 64
)

// JointType is a body part of the MPI model.  Its value is the index of the
// heatmap layer in the output tensor
type JointType int

const (
	Head JointType = iota
	Neck
	RShoulder
	RElbow
	RWrist
	LShoulder
	LElbow
	LWrist
	RHip
	RKnee
	RAnkle
	LHip
	LKnee
	LAnkle
	Chest
	Background

	// JointCount is the number of joint types including Background
	JointCount = int(Background) + 1
)

var jointNames = [JointCount]string{
	Head:       "head",
	Neck:       "neck",
	RShoulder:  "rShoulder",
	RElbow:     "rElbow",
	RWrist:     "rWrist",
	LShoulder:  "lShoulder",
	LElbow:     "lElbow",
	LWrist:     "lWrist",
	RHip:       "rHip",
	RKnee:      "rKnee",
	RAnkle:     "rAnkle",
	LHip:       "lHip",
	LKnee:      "lKnee",
	LAnkle:     "lAnkle",
	Chest:      "chest",
	Background: "background",
}

// String returns the name of the joint
func (j JointType) String() string {
	if !j.Valid() {
		return fmt.Sprintf("joint(%d)", int(j))
	}
	return jointNames[j]
}

// Valid returns true if j is one of the defined joint types
func (j JointType) Valid() bool {
	return j >= 0 && int(j) < JointCount
}

// Layer returns the tensor layer index holding the heatmap for this joint
func (j JointType) Layer() int {
	return int(j)
}

// LimbType is a connection between two joints of the MPI model
type LimbType int

const (
	HeadNeck LimbType = iota
	NeckRShoulder
	RShoulderRElbow
	RElbowRWrist
	NeckLShoulder
	LShoulderLElbow
	LElbowLWrist
	NeckChest
	ChestRHip
	RHipRKnee
	RKneeRAnkle
	ChestLHip
	LHipLKnee
	LKneeLAnkle

	// LimbCount is the number of limb types
	LimbCount = int(LKneeLAnkle) + 1
)

// limbDef describes the anatomical endpoints of a limb and the offsets of
// its PAF x and y channels from PAFLayerStartIndex
type limbDef struct {
	name string
	from JointType
	to   JointType
	pafX int
	pafY int
}

// limbs is the static MPI limb table, listed in processing order
var limbs = [LimbCount]limbDef{
	HeadNeck:        {"head-neck", Head, Neck, 0, 1},
	NeckRShoulder:   {"neck-rShoulder", Neck, RShoulder, 2, 3},
	RShoulderRElbow: {"rShoulder-rElbow", RShoulder, RElbow, 4, 5},
	RElbowRWrist:    {"rElbow-rWrist", RElbow, RWrist, 6, 7},
	NeckLShoulder:   {"neck-lShoulder", Neck, LShoulder, 8, 9},
	LShoulderLElbow: {"lShoulder-lElbow", LShoulder, LElbow, 10, 11},
	LElbowLWrist:    {"lElbow-lWrist", LElbow, LWrist, 12, 13},
	NeckChest:       {"neck-chest", Neck, Chest, 14, 15},
	ChestRHip:       {"chest-rHip", Chest, RHip, 16, 17},
	RHipRKnee:       {"rHip-rKnee", RHip, RKnee, 18, 19},
	RKneeRAnkle:     {"rKnee-rAnkle", RKnee, RAnkle, 20, 21},
	ChestLHip:       {"chest-lHip", Chest, LHip, 22, 23},
	LHipLKnee:       {"lHip-lKnee", LHip, LKnee, 24, 25},
	LKneeLAnkle:     {"lKnee-lAnkle", LKnee, LAnkle, 26, 27},
}

// String returns the name of the limb
func (l LimbType) String() string {
	if !l.Valid() {
		return fmt.Sprintf("limb(%d)", int(l))
	}
	return limbs[l].name
}

// Valid returns true if l is one of the defined limb types
func (l LimbType) Valid() bool {
	return l >= 0 && int(l) < LimbCount
}

// Joints returns the start and end joint types of the limb
func (l LimbType) Joints() (from, to JointType) {
	return limbs[l].from, limbs[l].to
}

// PAFLayers returns the absolute tensor layer indices of the limb's PAF x
// and y channels
func (l LimbType) PAFLayers() (x, y int) {
	return PAFLayerStartIndex + limbs[l].pafX, PAFLayerStartIndex + limbs[l].pafY
}

// AllLimbs returns every limb type in processing order
func AllLimbs() []LimbType {
	out := make([]LimbType, LimbCount)
	for i := range out {
		out[i] = LimbType(i)
	}
	return out
}

// topologyErr holds the result of checking the static tables against the
// tensor constants, NewPipeline refuses to run if it is set
var topologyErr = validateTopology()

// validateTopology checks that the joint and limb tables address layers
// that exist in a tensor of the fixed shape
func validateTopology() error {

	if Background.Layer() != BackgroundLayerIndex {
		return fmt.Errorf("background joint layer %d does not match background layer index %d",
			Background.Layer(), BackgroundLayerIndex)
	}

	if PAFLayerStartIndex <= BackgroundLayerIndex {
		return fmt.Errorf("PAF start layer %d overlaps joint layers", PAFLayerStartIndex)
	}

	used := make(map[int]LimbType)

	for _, l := range AllLimbs() {
		from, to := l.Joints()

		if from == to || !from.Valid() || !to.Valid() ||
			from == Background || to == Background {
			return fmt.Errorf("limb %s has invalid endpoints %s, %s", l, from, to)
		}

		x, y := l.PAFLayers()

		for _, layer := range []int{x, y} {
			if layer < PAFLayerStartIndex || layer >= LayersCount {
				return fmt.Errorf("limb %s PAF layer %d out of range [%d, %d)",
					l, layer, PAFLayerStartIndex, LayersCount)
			}

			if other, ok := used[layer]; ok {
				return fmt.Errorf("limb %s PAF layer %d already used by limb %s",
					l, layer, other)
			}

			used[layer] = l
		}
	}

	return nil
}
