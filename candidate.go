package openpose

import (
	"math"
	"slices"
)

// Point is a pixel coordinate in heatmap space
type Point struct {
	Col int
	Row int
}

// JointCandidate is a possible location of a joint found on its heatmap
type JointCandidate struct {
	Col   int
	Row   int
	Joint JointType
	// Confidence is the raw heatmap value at the candidate location
	Confidence float32
}

// Point returns the location of the candidate
func (c JointCandidate) Point() Point {
	return Point{Col: c.Col, Row: c.Row}
}

// Threshold derives the candidate confidence threshold for a frame from
// the mean value of its joint heatmaps
func (p Params) Threshold(mean float64) float32 {
	th := float32(mean) * p.ThresholdScale

	if th < p.ThresholdMin {
		return p.ThresholdMin
	}

	if th > p.ThresholdMax {
		return p.ThresholdMax
	}

	return th
}

// ExtractCandidates finds the joint candidates on a single heatmap layer.
// Every pixel above threshold becomes a raw candidate which are then
// filtered with Non-Maximum Suppression.  The returned candidates are in
// NMS selection order, highest confidence first
func ExtractCandidates(heatmap []float32, width, height int, joint JointType,
	threshold float32, p Params) []JointCandidate {

	raw := make([]JointCandidate, 0)

	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			idx := row*width + col

			if idx >= len(heatmap) {
				break
			}

			if v := heatmap[idx]; v > threshold {
				raw = append(raw, JointCandidate{
					Col:        col,
					Row:        row,
					Joint:      joint,
					Confidence: v,
				})
			}
		}
	}

	if len(raw) == 0 {
		return []JointCandidate{}
	}

	return suppress(raw, width, height, p.NMSWindow, p.NMSThreshold)
}

// suppress runs greedy Non-Maximum Suppression over the raw candidates using
// a square window of size window centred on each candidate
func suppress(raw []JointCandidate, width, height, window int,
	threshold float32) []JointCandidate {

	// sort by confidence descending, ties remain in scan order
	slices.SortStableFunc(raw, func(a, b JointCandidate) int {
		switch {
		case a.Confidence > b.Confidence:
			return -1
		case a.Confidence < b.Confidence:
			return 1
		}
		return 0
	})

	boxes := make([]windowBox, len(raw))

	for i, c := range raw {
		boxes[i] = newWindowBox(c.Col, c.Row, width, height, window)
	}

	removed := make([]bool, len(raw))
	kept := make([]JointCandidate, 0)

	for i := range raw {
		if removed[i] {
			continue
		}

		kept = append(kept, raw[i])

		for j := i + 1; j < len(raw); j++ {
			if removed[j] {
				continue
			}

			if boxes[i].overlap(boxes[j]) > threshold {
				removed[j] = true
			}
		}
	}

	return kept
}

// windowBox is an inclusive pixel box
type windowBox struct {
	xmin, ymin, xmax, ymax float32
}

// newWindowBox returns the window of the given size centred on col, row
// clamped to the layer edges
func newWindowBox(col, row, width, height, window int) windowBox {
	half := window / 2

	return windowBox{
		xmin: float32(clampInt(col-half, 0, width-1)),
		ymin: float32(clampInt(row-half, 0, height-1)),
		xmax: float32(clampInt(col+half, 0, width-1)),
		ymax: float32(clampInt(row+half, 0, height-1)),
	}
}

// overlap works out the Intersection over Union (IoU) value of two windows
func (a windowBox) overlap(b windowBox) float32 {

	w := math.Max(0.0, math.Min(float64(a.xmax), float64(b.xmax))-math.Max(float64(a.xmin), float64(b.xmin))+1.0)
	h := math.Max(0.0, math.Min(float64(a.ymax), float64(b.ymax))-math.Max(float64(a.ymin), float64(b.ymin))+1.0)
	intersection := w * h

	// area of both windows with added 1.0 for inclusive pixel calculation
	area0 := (a.xmax - a.xmin + 1) * (a.ymax - a.ymin + 1)
	area1 := (b.xmax - b.xmin + 1) * (b.ymax - b.ymin + 1)

	union := area0 + area1 - float32(intersection)

	if union <= 0 {
		return 0.0
	}

	return float32(intersection) / union
}
