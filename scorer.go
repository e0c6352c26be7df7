package openpose

import "math"

// ScoreLimb scores a possible connection between the joints at p1 and p2 by
// walking the line between them and sampling the limb's PAF x and y
// channels.  Each of the count samples reads three taps across the line
// which are summed per channel, giving a sample value of |Σx| + |Σy|.
//
// Any sample smaller than the best sample by more than outlierFactor is
// replaced by the negative of the best sample, so connections that cross
// field belonging to another limb score poorly.  The sum of all samples is
// returned along with the number of samples taken.  A connection with a
// score <= 0 should be discarded
func ScoreLimb(p1, p2 Point, pafX, pafY []float32, stride int,
	outlierFactor float32) (float32, int) {

	dCol := p2.Col - p1.Col
	dRow := p2.Row - p1.Row
	count := max(absInt(dCol), absInt(dRow)) + 1

	// taps are taken perpendicular to the dominant axis of the line, so a
	// horizontal line samples the rows above and below
	tap := 1
	if absInt(dCol) >= absInt(dRow) {
		tap = stride
	}

	samples := make([]float32, count)
	localMax := float32(0)

	for i := 0; i < count; i++ {
		col, row := p1.Col, p1.Row

		if count > 1 {
			frac := float64(i) / float64(count-1)
			col = p1.Col + int(math.Round(frac*float64(dCol)))
			row = p1.Row + int(math.Round(frac*float64(dRow)))
		}

		base := row*stride + col
		var sumX, sumY float32

		for _, off := range [3]int{-tap, 0, tap} {
			sumX += sampleAt(pafX, base+off)
			sumY += sampleAt(pafY, base+off)
		}

		s := abs32(sumX) + abs32(sumY)
		samples[i] = s

		if s > localMax {
			localMax = s
		}
	}

	if localMax <= 0 {
		return 0, count
	}

	var score float32

	for _, s := range samples {
		if localMax > s*outlierFactor {
			s = -localMax
		}
		score += s
	}

	return score, count
}

// sampleAt returns buf[idx] with idx clamped into the buffer.  Non finite
// values read as 0
func sampleAt(buf []float32, idx int) float32 {
	if len(buf) == 0 {
		return 0
	}

	v := buf[clampInt(idx, 0, len(buf)-1)]

	if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
		return 0
	}

	return v
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
