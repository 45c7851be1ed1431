package evaluation

// RankedReport is one report's ranked retrieval output and its ground truth.
type RankedReport struct {
	Filename    string
	Ranked      []string
	GroundTruth []string
}

// ReportResult contains metrics for a single report.
type ReportResult struct {
	Filename     string       `json:"filename"`
	AP           float64      `json:"ap"`             // Average Precision
	FirstHitRank int          `json:"first_hit_rank"` // 1-indexed; 0 when nothing hit
	Hits         int          `json:"hits"`
	TopN         map[int]bool `json:"top_n"` // hit within the first N entries
}

// HasHit reports whether any ranked entry hit.
func (r ReportResult) HasHit() bool {
	return r.FirstHitRank > 0
}

// TopNStat is a Top@N count with its share of all reports.
type TopNStat struct {
	Fraction float64 `json:"fraction"`
	Count    int     `json:"count"`
}

// Summary aggregates metrics across reports.
type Summary struct {
	MAP        float64          `json:"MAP"`
	MRR        float64          `json:"MRR"`
	TopN       map[int]TopNStat `json:"Top@N"`
	TotalCases int              `json:"total_cases"`
}

// OverallMetrics is the fraction-only form of a Summary.
type OverallMetrics struct {
	MAP  float64         `json:"MAP"`
	MRR  float64         `json:"MRR"`
	TopN map[int]float64 `json:"Top@N"`
}

// OverallSummary is the cross-project entry of a project-wise report.
type OverallSummary struct {
	Metrics    OverallMetrics `json:"overall_metrics"`
	TopNCounts map[string]int `json:"top@N_value_counts"`
	TotalCases int            `json:"total_cases"`
}
