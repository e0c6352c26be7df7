package render

import (
	"image/color"

	"github.com/swdee/go-openpose"
)

var (
	// jointColors are the colors used to paint each joint type, indexed by
	// openpose.JointType
	jointColors = [openpose.JointCount]color.RGBA{
		{R: 255, G: 0, B: 0, A: 255},     // head
		{R: 255, G: 85, B: 0, A: 255},    // neck
		{R: 255, G: 170, B: 0, A: 255},   // rShoulder
		{R: 255, G: 255, B: 0, A: 255},   // rElbow
		{R: 170, G: 255, B: 0, A: 255},   // rWrist
		{R: 85, G: 255, B: 0, A: 255},    // lShoulder
		{R: 0, G: 255, B: 0, A: 255},     // lElbow
		{R: 0, G: 255, B: 85, A: 255},    // lWrist
		{R: 0, G: 255, B: 170, A: 255},   // rHip
		{R: 0, G: 255, B: 255, A: 255},   // rKnee
		{R: 0, G: 170, B: 255, A: 255},   // rAnkle
		{R: 0, G: 85, B: 255, A: 255},    // lHip
		{R: 0, G: 0, B: 255, A: 255},     // lKnee
		{R: 85, G: 0, B: 255, A: 255},    // lAnkle
		{R: 170, G: 0, B: 255, A: 255},   // chest
		{R: 128, G: 128, B: 128, A: 255}, // background
	}

	// limbColors are the colors used to paint each limb type, indexed by
	// openpose.LimbType
	limbColors = [openpose.LimbCount]color.RGBA{
		{R: 255, G: 56, B: 56, A: 255},   // #FF3838
		{R: 255, G: 112, B: 31, A: 255},  // #FF701F
		{R: 255, G: 178, B: 29, A: 255},  // #FFB21D
		{R: 207, G: 210, B: 49, A: 255},  // #CFD231
		{R: 72, G: 249, B: 10, A: 255},   // #48F90A
		{R: 26, G: 147, B: 52, A: 255},   // #1A9334
		{R: 0, G: 212, B: 187, A: 255},   // #00D4BB
		{R: 0, G: 194, B: 255, A: 255},   // #00C2FF
		{R: 52, G: 69, B: 147, A: 255},   // #344593
		{R: 100, G: 115, B: 255, A: 255}, // #6473FF
		{R: 0, G: 24, B: 236, A: 255},    // #0018EC
		{R: 132, G: 56, B: 255, A: 255},  // #8438FF
		{R: 82, G: 0, B: 133, A: 255},    // #520085
		{R: 255, G: 149, B: 200, A: 255}, // #FF95C8
	}
)

// JointColor returns the color used to paint the joint type
func JointColor(j openpose.JointType) color.RGBA {
	if !j.Valid() {
		return jointColors[openpose.Background]
	}
	return jointColors[j]
}

// LimbColor returns the color used to paint the limb type
func LimbColor(l openpose.LimbType) color.RGBA {
	if !l.Valid() {
		return jointColors[openpose.Background]
	}
	return limbColors[l]
}
