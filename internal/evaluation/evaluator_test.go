package evaluation

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var approx = cmpopts.EquateApprox(0, 1e-12)

func TestEvaluateReport_SecondRankHit(t *testing.T) {
	e := NewEvaluator([]int{1, 3}, nil)

	got, ok := e.EvaluateReport(RankedReport{
		Filename:    "ZOOKEEPER-1.json",
		Ranked:      []string{"X", "Y", "Z"},
		GroundTruth: []string{"Y"},
	})
	if !ok {
		t.Fatal("EvaluateReport() ok = false, want true")
	}

	want := ReportResult{
		Filename:     "ZOOKEEPER-1.json",
		AP:           0.5,
		FirstHitRank: 2,
		Hits:         1,
		TopN:         map[int]bool{1: false, 3: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("EvaluateReport() mismatch (-want +got):\n%s", diff)
	}

	summary := e.Summarize([]ReportResult{got})
	wantSummary := Summary{
		MAP: 0.5,
		MRR: 0.5,
		TopN: map[int]TopNStat{
			1: {Fraction: 0, Count: 0},
			3: {Fraction: 1, Count: 1},
		},
		TotalCases: 1,
	}
	if diff := cmp.Diff(wantSummary, summary); diff != "" {
		t.Errorf("Summarize() mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaluateReport_EmptyGroundTruthExcluded(t *testing.T) {
	e := NewEvaluator([]int{1, 3}, nil)

	if _, ok := e.EvaluateReport(RankedReport{Filename: "A.json", Ranked: []string{"X"}}); ok {
		t.Error("EvaluateReport() ok = true for empty ground truth")
	}

	acc := e.Evaluate([]RankedReport{
		{Filename: "A.json", Ranked: []string{"X", "Y"}, GroundTruth: []string{"X"}},
		{Filename: "B.json", Ranked: []string{"X", "Y"}, GroundTruth: nil},
		{Filename: "C.json", Ranked: []string{"X", "Y"}, GroundTruth: []string{}},
	})

	want := Summary{
		MAP:        1,
		MRR:        1,
		TopN:       map[int]TopNStat{1: {Fraction: 1, Count: 1}, 3: {Fraction: 1, Count: 1}},
		TotalCases: 1,
	}
	if diff := cmp.Diff(want, acc.Summary()); diff != "" {
		t.Errorf("Summary() mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaluate_MRRExcludesReportsWithoutHits(t *testing.T) {
	e := NewEvaluator([]int{1}, nil)

	acc := e.Evaluate([]RankedReport{
		{Filename: "A.json", Ranked: []string{"X", "Y"}, GroundTruth: []string{"a.Y"}},
		{Filename: "B.json", Ranked: []string{"X", "Y"}, GroundTruth: []string{"a.Q"}},
	})

	got := acc.Summary()
	want := Summary{
		MAP:        0.25,
		MRR:        0.5,
		TopN:       map[int]TopNStat{1: {Fraction: 0, Count: 0}},
		TotalCases: 2,
	}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("Summary() mismatch (-want +got):\n%s", diff)
	}
}

func TestNewEvaluator_Thresholds(t *testing.T) {
	if diff := cmp.Diff([]int{1, 3, 5, 10}, NewEvaluator(nil, nil).Thresholds()); diff != "" {
		t.Errorf("default thresholds mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 5, 10}, NewEvaluator([]int{10, 1, 5, 1, 0, -3}, nil).Thresholds()); diff != "" {
		t.Errorf("normalized thresholds mismatch (-want +got):\n%s", diff)
	}
}
