// Package pipeline runs the CodeBLEU evaluation: for every generated bug
// report it matches candidate methods to ground truth, resolves the ground
// truth body at the fix commit and scores the pair.
package pipeline

// SkipReason says why a report or a candidate was left out of scoring.
type SkipReason string

// Report-level reasons.
const (
	SkipListed        SkipReason = "skip_list"
	SkipNoFixCode     SkipReason = "no_fix_code"
	SkipNoGroundTruth SkipReason = "no_ground_truth"
	SkipNoCommit      SkipReason = "no_commit"
	SkipNoMatch       SkipReason = "no_candidate_match"
)

// Candidate-level reasons.
const (
	SkipCandidateCode  SkipReason = "candidate_code_missing"
	SkipFileNotFound   SkipReason = "file_not_found"
	SkipMethodNotFound SkipReason = "method_not_found"
	SkipSourceError    SkipReason = "source_error"
	SkipScoreFailed    SkipReason = "score_failed"
)

// SkipReasons lists every reason in report order.
var SkipReasons = []SkipReason{
	SkipListed, SkipNoFixCode, SkipNoGroundTruth, SkipNoCommit, SkipNoMatch,
	SkipCandidateCode, SkipFileNotFound, SkipMethodNotFound, SkipSourceError, SkipScoreFailed,
}

func (r SkipReason) String() string { return string(r) }

// ReportLevel reports whether r drops a whole report rather than one candidate.
func (r SkipReason) ReportLevel() bool {
	switch r {
	case SkipListed, SkipNoFixCode, SkipNoGroundTruth, SkipNoCommit, SkipNoMatch:
		return true
	}
	return false
}

// Skip records one skipped report or candidate. Candidate is empty for
// report-level skips.
type Skip struct {
	Filename  string     `json:"filename"`
	Candidate string     `json:"candidate_key,omitempty"`
	Reason    SkipReason `json:"reason"`
	Detail    string     `json:"detail,omitempty"`
}
