package openpose

import (
	"math"
	"math/rand"
	"testing"
)

func TestMatchLimbEmpty(t *testing.T) {
	cands := []JointCandidate{{Col: 1, Row: 1, Joint: Neck, Confidence: 0.5}}

	got := MatchLimb(NeckChest, cands, nil, newHeatmap(), newHeatmap(), HeatmapWidth, 2)

	if len(got.Accepted) != 0 || len(got.Scored) != 0 {
		t.Errorf("expected empty match, got %+v", got)
	}

	got = MatchLimb(NeckChest, nil, cands, newHeatmap(), newHeatmap(), HeatmapWidth, 2)

	if len(got.Accepted) != 0 || len(got.Scored) != 0 {
		t.Errorf("expected empty match, got %+v", got)
	}
}

func TestMatchLimbTwoPeople(t *testing.T) {
	pafX := newHeatmap()
	pafY := newHeatmap()

	// two vertical upper arms at columns 10 and 40
	fillRect(pafY, 9, 10, 11, 20, 1)
	fillRect(pafY, 39, 10, 41, 20, 1)

	from := []JointCandidate{
		{Col: 40, Row: 10, Joint: RShoulder, Confidence: 0.9},
		{Col: 10, Row: 10, Joint: RShoulder, Confidence: 0.8},
	}
	to := []JointCandidate{
		{Col: 10, Row: 20, Joint: RElbow, Confidence: 0.9},
		{Col: 40, Row: 20, Joint: RElbow, Confidence: 0.7},
	}

	got := MatchLimb(RShoulderRElbow, from, to, pafX, pafY, HeatmapWidth, 2)

	if len(got.Accepted) != 2 {
		t.Fatalf("expected 2 accepted connections, got %+v", got.Accepted)
	}

	pairs := map[[2]int]bool{}

	for _, c := range got.Accepted {
		pairs[[2]int{c.CandidateIndex1, c.CandidateIndex2}] = true

		if c.Limb != RShoulderRElbow {
			t.Errorf("connection has limb %s", c.Limb)
		}

		if c.Point1 != from[c.CandidateIndex1].Point() || c.Point2 != to[c.CandidateIndex2].Point() {
			t.Errorf("connection points do not match candidates: %+v", c)
		}
	}

	if !pairs[[2]int{0, 1}] || !pairs[[2]int{1, 0}] {
		t.Errorf("expected vertical pairings, got %+v", got.Accepted)
	}

	// cross pairings pass through empty field and are dropped
	for _, c := range got.Scored {
		if c.Point1.Col != c.Point2.Col {
			t.Errorf("unexpected positive score for cross connection %+v", c)
		}
	}
}

func TestSelectGreedyTies(t *testing.T) {
	scored := []ScoredConnection{
		{Score: 5, CandidateIndex1: 0, CandidateIndex2: 0},
		{Score: 5, CandidateIndex1: 0, CandidateIndex2: 1},
		{Score: 5, CandidateIndex1: 1, CandidateIndex2: 0},
		{Score: 4, CandidateIndex1: 1, CandidateIndex2: 1},
	}

	got := selectGreedy(scored, 2, 2)

	// equal scores keep enumeration order, so (0,0) wins and blocks the
	// other two ties leaving (1,1)
	if len(got) != 2 {
		t.Fatalf("expected 2 accepted, got %+v", got)
	}

	if got[0].CandidateIndex1 != 0 || got[0].CandidateIndex2 != 0 ||
		got[1].CandidateIndex1 != 1 || got[1].CandidateIndex2 != 1 {
		t.Errorf("unexpected selection %+v", got)
	}
}

func TestSelectGreedyNeverReusesCandidate(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))

	for run := 0; run < 200; run++ {
		fromCount := 1 + rnd.Intn(8)
		toCount := 1 + rnd.Intn(8)
		scored := make([]ScoredConnection, 0)

		for i := 0; i < fromCount; i++ {
			for j := 0; j < toCount; j++ {
				if rnd.Intn(4) == 0 {
					continue
				}
				scored = append(scored, ScoredConnection{
					Score:           float32(rnd.Intn(10)) + rnd.Float32(),
					CandidateIndex1: i,
					CandidateIndex2: j,
				})
			}
		}

		got := selectGreedy(scored, fromCount, toCount)
		usedFrom := map[int]bool{}
		usedTo := map[int]bool{}

		for k, c := range got {
			if usedFrom[c.CandidateIndex1] || usedTo[c.CandidateIndex2] {
				t.Fatalf("run %d: candidate reused in %+v", run, got)
			}

			usedFrom[c.CandidateIndex1] = true
			usedTo[c.CandidateIndex2] = true

			if k > 0 && c.Score > got[k-1].Score {
				t.Fatalf("run %d: accepted connections not in descending score order", run)
			}
		}

		// greedy selection is maximal, every rejected connection conflicts
		for _, c := range scored {
			if !usedFrom[c.CandidateIndex1] && !usedTo[c.CandidateIndex2] {
				t.Fatalf("run %d: connection %+v left unmatched", run, c)
			}
		}
	}
}

func TestMatchLimbRandomField(t *testing.T) {
	rnd := rand.New(rand.NewSource(99))

	for run := 0; run < 20; run++ {
		pafX := newHeatmap()
		pafY := newHeatmap()

		for i := range pafX {
			pafX[i] = rnd.Float32()*2 - 1
			pafY[i] = rnd.Float32()*2 - 1
		}

		from := make([]JointCandidate, 1+rnd.Intn(6))
		to := make([]JointCandidate, 1+rnd.Intn(6))

		for i := range from {
			from[i] = JointCandidate{Col: rnd.Intn(HeatmapWidth), Row: rnd.Intn(HeatmapHeight), Joint: LHip}
		}
		for i := range to {
			to[i] = JointCandidate{Col: rnd.Intn(HeatmapWidth), Row: rnd.Intn(HeatmapHeight), Joint: LKnee}
		}

		got := MatchLimb(LHipLKnee, from, to, pafX, pafY, HeatmapWidth, 2)
		seen1 := map[int]bool{}
		seen2 := map[int]bool{}

		for _, c := range got.Accepted {
			if seen1[c.CandidateIndex1] || seen2[c.CandidateIndex2] {
				t.Fatalf("run %d: candidate reused in %+v", run, got.Accepted)
			}
			seen1[c.CandidateIndex1] = true
			seen2[c.CandidateIndex2] = true
		}

		for _, c := range got.Scored {
			if c.Score <= 0 {
				t.Fatalf("run %d: non positive score kept %+v", run, c)
			}
		}
	}
}

func TestMatchLimbNaNFieldDiscarded(t *testing.T) {
	pafX := newHeatmap()
	pafY := newHeatmap()

	for i := range pafX {
		pafX[i] = float32(math.NaN())
		pafY[i] = float32(math.NaN())
	}

	from := []JointCandidate{{Col: 0, Row: 5, Joint: RShoulder, Confidence: 0.9}}
	to := []JointCandidate{{Col: 10, Row: 5, Joint: RElbow, Confidence: 0.9}}

	got := MatchLimb(RShoulderRElbow, from, to, pafX, pafY, HeatmapWidth, 2)

	if len(got.Scored) != 0 || len(got.Accepted) != 0 {
		t.Errorf("expected no connections on a NaN field, got %+v", got)
	}
}
