package openpose

import "slices"

// ScoredConnection is a scored possible instance of a limb between two
// joint candidates
type ScoredConnection struct {
	Limb        LimbType
	Score       float32
	SampleCount int
	// CandidateIndex1 is the index of the start joint in the candidate list
	// of the limb's start joint type
	CandidateIndex1 int
	// CandidateIndex2 is the index of the end joint in the candidate list
	// of the limb's end joint type
	CandidateIndex2 int
	Point1          Point
	Point2          Point
}

// LimbMatch is the result of matching one limb type
type LimbMatch struct {
	// Accepted are the connections selected one-to-one, in descending score
	// order
	Accepted []ScoredConnection
	// Scored are all connections with a positive score, in enumeration order
	Scored []ScoredConnection
}

// MatchLimb scores every pairing of the from and to candidates for the limb
// and greedily selects the highest scoring connections such that no
// candidate is used more than once
func MatchLimb(limb LimbType, from, to []JointCandidate, pafX, pafY []float32,
	stride int, outlierFactor float32) LimbMatch {

	if len(from) == 0 || len(to) == 0 {
		return LimbMatch{
			Accepted: []ScoredConnection{},
			Scored:   []ScoredConnection{},
		}
	}

	scored := make([]ScoredConnection, 0, len(from)*len(to))

	for i, a := range from {
		for j, b := range to {
			score, count := ScoreLimb(a.Point(), b.Point(), pafX, pafY,
				stride, outlierFactor)

			// also drops NaN
			if !(score > 0) {
				continue
			}

			scored = append(scored, ScoredConnection{
				Limb:            limb,
				Score:           score,
				SampleCount:     count,
				CandidateIndex1: i,
				CandidateIndex2: j,
				Point1:          a.Point(),
				Point2:          b.Point(),
			})
		}
	}

	return LimbMatch{
		Accepted: selectGreedy(scored, len(from), len(to)),
		Scored:   scored,
	}
}

// selectGreedy accepts connections in descending score order skipping any
// whose start or end candidate has already been used
func selectGreedy(scored []ScoredConnection, fromCount, toCount int) []ScoredConnection {

	order := slices.Clone(scored)

	// stable so equal scores keep enumeration order
	slices.SortStableFunc(order, func(a, b ScoredConnection) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})

	usedFrom := make([]bool, fromCount)
	usedTo := make([]bool, toCount)
	accepted := make([]ScoredConnection, 0, min(fromCount, toCount))

	for _, c := range order {
		if usedFrom[c.CandidateIndex1] || usedTo[c.CandidateIndex2] {
			continue
		}

		usedFrom[c.CandidateIndex1] = true
		usedTo[c.CandidateIndex2] = true
		accepted = append(accepted, c)
	}

	return accepted
}
