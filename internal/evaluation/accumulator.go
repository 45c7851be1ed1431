package evaluation

import (
	"fmt"
	"slices"

	"github.com/ricesearch/bugeval/internal/pkg/errors"
)

// Accumulator is a mergeable reduction of ReportResults.
//
// It keeps sums rather than means: MAP is the AP sum over all reports and MRR
// the reciprocal-rank sum over reports with a hit, each divided only when a
// Summary is taken. Merging partial accumulators is therefore exact and
// independent of how reports were grouped.
//
// Add and Merge return new values and leave their receivers untouched.
type Accumulator struct {
	thresholds []int
	total      int
	apSum      float64
	rrSum      float64
	rrCount    int
	topN       map[int]int
}

// NewAccumulator creates an empty accumulator counting Top@N for thresholds.
func NewAccumulator(thresholds []int) Accumulator {
	return Accumulator{
		thresholds: normalizeThresholds(thresholds),
		topN:       make(map[int]int),
	}
}

// Add folds one report into the accumulator.
func (a Accumulator) Add(r ReportResult) Accumulator {
	out := a.clone()
	out.total++
	out.apSum += r.AP
	if r.HasHit() {
		out.rrSum += 1.0 / float64(r.FirstHitRank)
		out.rrCount++
	}
	for _, n := range out.thresholds {
		if r.TopN[n] {
			out.topN[n]++
		}
	}
	return out
}

// Merge combines two accumulators. Both must count the same thresholds; an
// accumulator with no thresholds and no reports is the identity.
func (a Accumulator) Merge(b Accumulator) (Accumulator, error) {
	if a.isIdentity() {
		return b.clone(), nil
	}
	if b.isIdentity() {
		return a.clone(), nil
	}
	if !slices.Equal(a.thresholds, b.thresholds) {
		return Accumulator{}, errors.ValidationError(
			fmt.Sprintf("cannot merge Top@N thresholds %v with %v", a.thresholds, b.thresholds))
	}

	out := a.clone()
	out.total += b.total
	out.apSum += b.apSum
	out.rrSum += b.rrSum
	out.rrCount += b.rrCount
	for n, c := range b.topN {
		out.topN[n] += c
	}
	return out, nil
}

// Total returns the number of reports folded in.
func (a Accumulator) Total() int {
	return a.total
}

// Thresholds returns the Top@N thresholds, ascending.
func (a Accumulator) Thresholds() []int {
	return slices.Clone(a.thresholds)
}

// Summary computes MAP, MRR and Top@N. All values are zero for an empty
// accumulator.
func (a Accumulator) Summary() Summary {
	s := Summary{
		TopN:       make(map[int]TopNStat, len(a.thresholds)),
		TotalCases: a.total,
	}
	for _, n := range a.thresholds {
		s.TopN[n] = TopNStat{Count: a.topN[n]}
	}
	if a.total == 0 {
		return s
	}

	s.MAP = a.apSum / float64(a.total)
	// Pooled over every report with a hit, also across merged projects.
	if a.rrCount > 0 {
		s.MRR = a.rrSum / float64(a.rrCount)
	}
	for _, n := range a.thresholds {
		c := a.topN[n]
		s.TopN[n] = TopNStat{Fraction: float64(c) / float64(a.total), Count: c}
	}
	return s
}

// Overall converts the accumulator into the fraction-only cross-project form.
func (a Accumulator) Overall() OverallSummary {
	s := a.Summary()
	o := OverallSummary{
		Metrics: OverallMetrics{
			MAP:  s.MAP,
			MRR:  s.MRR,
			TopN: make(map[int]float64, len(a.thresholds)),
		},
		TopNCounts: make(map[string]int, len(a.thresholds)),
		TotalCases: s.TotalCases,
	}
	for n, stat := range s.TopN {
		o.Metrics.TopN[n] = stat.Fraction
		o.TopNCounts[fmt.Sprintf("Top-%d", n)] = stat.Count
	}
	return o
}

func (a Accumulator) isIdentity() bool {
	return a.total == 0 && len(a.thresholds) == 0
}

func (a Accumulator) clone() Accumulator {
	out := a
	out.thresholds = slices.Clone(a.thresholds)
	out.topN = make(map[int]int, len(a.topN))
	for n, c := range a.topN {
		out.topN[n] = c
	}
	return out
}

func normalizeThresholds(thresholds []int) []int {
	out := make([]int, 0, len(thresholds))
	for _, n := range thresholds {
		if n > 0 {
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
