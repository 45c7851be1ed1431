package evaluation

import (
	"fmt"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ricesearch/bugeval/internal/pkg/errors"
)

func sampleReports() []RankedReport {
	reports := make([]RankedReport, 0, 12)
	for i := 0; i < 12; i++ {
		ranked := []string{"A.a", "B.b", "C.c", "D.d", "E.e", "F.f"}
		var gt []string
		switch i % 4 {
		case 0:
			gt = []string{"p.A.a"}
		case 1:
			gt = []string{"p.C.c", "p.F.f"}
		case 2:
			gt = []string{"p.Z.z"}
		case 3:
			if i%3 == 0 {
				gt = nil
			} else {
				gt = []string{"p.B.b", "p.E.e"}
			}
		}
		reports = append(reports, RankedReport{
			Filename:    fmt.Sprintf("HIVE-%d.json", i),
			Ranked:      ranked,
			GroundTruth: gt,
		})
	}
	return reports
}

func TestAccumulator_MergeIsAssociative(t *testing.T) {
	e := NewEvaluator([]int{1, 3, 5, 10}, nil)
	reports := sampleReports()

	full := e.Evaluate(reports).Summary()

	for split := 0; split <= len(reports); split++ {
		left := e.Evaluate(reports[:split])
		right := e.Evaluate(reports[split:])

		merged, err := left.Merge(right)
		if err != nil {
			t.Fatalf("Merge() error = %v", err)
		}
		if diff := cmp.Diff(full, merged.Summary(), approx); diff != "" {
			t.Errorf("split at %d: merged summary mismatch (-full +merged):\n%s", split, diff)
		}
	}
}

func TestAccumulator_MergeGroupingIndependent(t *testing.T) {
	e := NewEvaluator([]int{1, 3}, nil)
	reports := sampleReports()

	a := e.Evaluate(reports[:3])
	b := e.Evaluate(reports[3:7])
	c := e.Evaluate(reports[7:])

	ab, _ := a.Merge(b)
	abc1, _ := ab.Merge(c)

	bc, _ := b.Merge(c)
	abc2, _ := a.Merge(bc)

	ca, _ := c.Merge(a)
	abc3, _ := ca.Merge(b)

	if diff := cmp.Diff(abc1.Summary(), abc2.Summary(), approx); diff != "" {
		t.Errorf("(a+b)+c != a+(b+c):\n%s", diff)
	}
	if diff := cmp.Diff(abc1.Summary(), abc3.Summary(), approx); diff != "" {
		t.Errorf("(a+b)+c != (c+a)+b:\n%s", diff)
	}
}

func TestAccumulator_AddDoesNotMutate(t *testing.T) {
	acc := NewAccumulator([]int{1})
	next := acc.Add(ReportResult{AP: 1, FirstHitRank: 1, TopN: map[int]bool{1: true}})

	if acc.Total() != 0 {
		t.Errorf("receiver Total() = %d after Add, want 0", acc.Total())
	}
	if next.Total() != 1 {
		t.Errorf("Total() = %d, want 1", next.Total())
	}
	if got := acc.Summary().TopN[1].Count; got != 0 {
		t.Errorf("receiver Top@1 count = %d after Add, want 0", got)
	}
}

func TestAccumulator_MergeIdentityAndMismatch(t *testing.T) {
	acc := NewAccumulator([]int{1, 3}).Add(ReportResult{AP: 0.5, FirstHitRank: 2, TopN: map[int]bool{3: true}})

	merged, err := Accumulator{}.Merge(acc)
	if err != nil {
		t.Fatalf("Merge(identity) error = %v", err)
	}
	if diff := cmp.Diff(acc.Summary(), merged.Summary()); diff != "" {
		t.Errorf("identity merge mismatch:\n%s", diff)
	}

	_, err = acc.Merge(NewAccumulator([]int{5}).Add(ReportResult{}))
	if !errors.IsValidation(err) {
		t.Errorf("Merge(mismatched thresholds) error = %v, want validation error", err)
	}
}

func TestAccumulator_EmptySummary(t *testing.T) {
	got := NewAccumulator([]int{1, 3}).Summary()
	want := Summary{
		TopN: map[int]TopNStat{1: {}, 3: {}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("empty Summary() mismatch (-want +got):\n%s", diff)
	}
}

func TestAccumulator_Overall(t *testing.T) {
	acc := NewAccumulator([]int{1, 3}).
		Add(ReportResult{AP: 1, FirstHitRank: 1, TopN: map[int]bool{1: true, 3: true}}).
		Add(ReportResult{AP: 0, TopN: map[int]bool{}})

	want := OverallSummary{
		Metrics: OverallMetrics{
			MAP:  0.5,
			MRR:  1,
			TopN: map[int]float64{1: 0.5, 3: 0.5},
		},
		TopNCounts: map[string]int{"Top-1": 1, "Top-3": 1},
		TotalCases: 2,
	}
	if diff := cmp.Diff(want, acc.Overall()); diff != "" {
		t.Errorf("Overall() mismatch (-want +got):\n%s", diff)
	}
}

func TestAccumulator_OverallMRRPooled(t *testing.T) {
	hit := func(rank int) ReportResult {
		return ReportResult{FirstHitRank: rank, TopN: map[int]bool{}}
	}
	zookeeper := NewAccumulator([]int{1}).Add(hit(1)).Add(hit(2))
	hive := NewAccumulator([]int{1}).Add(hit(1)).Add(ReportResult{TopN: map[int]bool{}})

	merged, err := zookeeper.Merge(hive)
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}

	// Mean over the three reports with a hit, not the report-weighted mean of
	// the per-project MRRs (0.875).
	want := (1 + 0.5 + 1) / 3.0
	if got := merged.Overall().Metrics.MRR; math.Abs(got-want) > 1e-12 {
		t.Errorf("Overall MRR = %v, want %v", got, want)
	}
}
