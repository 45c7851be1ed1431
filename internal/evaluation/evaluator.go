package evaluation

import (
	"github.com/ricesearch/bugeval/internal/pkg/logger"
)

// DefaultThresholds are the Top@N cut-offs reported when none are configured.
var DefaultThresholds = []int{1, 3, 5, 10}

// Evaluator computes ranked-retrieval metrics for bug reports.
type Evaluator struct {
	thresholds []int
	log        *logger.Logger
}

// NewEvaluator creates a new evaluator. Thresholds are deduplicated and
// sorted; non-positive values are dropped.
func NewEvaluator(thresholds []int, log *logger.Logger) *Evaluator {
	if len(thresholds) == 0 {
		thresholds = DefaultThresholds
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Evaluator{
		thresholds: normalizeThresholds(thresholds),
		log:        log,
	}
}

// Thresholds returns the Top@N cut-offs in use.
func (e *Evaluator) Thresholds() []int {
	return append([]int(nil), e.thresholds...)
}

// NewAccumulator returns an empty accumulator for this evaluator's thresholds.
func (e *Evaluator) NewAccumulator() Accumulator {
	return NewAccumulator(e.thresholds)
}

// EvaluateReport evaluates a single report. ok is false when the report has no
// ground truth; such reports take no part in any aggregate.
func (e *Evaluator) EvaluateReport(r RankedReport) (result ReportResult, ok bool) {
	if len(r.GroundTruth) == 0 {
		return ReportResult{}, false
	}

	hits := Hits(r.Ranked, r.GroundTruth)
	result = ReportResult{
		Filename:     r.Filename,
		AP:           AveragePrecision(hits),
		FirstHitRank: FirstHitRank(hits),
		TopN:         make(map[int]bool, len(e.thresholds)),
	}
	for _, h := range hits {
		if h {
			result.Hits++
		}
	}
	for _, n := range e.thresholds {
		result.TopN[n] = HitWithin(hits, n)
	}
	return result, true
}

// Evaluate folds a batch of reports into an accumulator.
func (e *Evaluator) Evaluate(reports []RankedReport) Accumulator {
	acc := e.NewAccumulator()
	for _, r := range reports {
		result, ok := e.EvaluateReport(r)
		if !ok {
			e.log.WithReport(r.Filename).Debug("excluded report without ground truth")
			continue
		}
		acc = acc.Add(result)
	}
	return acc
}

// Summarize aggregates already evaluated reports.
func (e *Evaluator) Summarize(results []ReportResult) Summary {
	acc := e.NewAccumulator()
	for _, r := range results {
		acc = acc.Add(r)
	}
	return acc.Summary()
}
