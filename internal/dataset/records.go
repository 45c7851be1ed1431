// Package dataset defines the typed records exchanged as JSON batch files and
// the helpers that load, validate, merge and write them.
package dataset

import (
	"encoding/json"
	"sort"

	"github.com/ricesearch/bugeval/internal/pkg/errors"
	"github.com/ricesearch/bugeval/internal/similarity"
)

// FixEntry is one generated bug report with its proposed method bodies.
type FixEntry struct {
	Filename        string          `json:"filename" validate:"required"`
	CreationTime    string          `json:"creation_time"`
	PossibleFixCode json.RawMessage `json:"possible_fix_code"`
}

// FixCode maps a candidate method identifier to its proposed body.
type FixCode map[string]json.RawMessage

// FixCode decodes the candidate map. It fails when possible_fix_code is absent,
// is not a JSON object, or is an empty object.
func (e FixEntry) FixCode() (FixCode, error) {
	if len(e.PossibleFixCode) == 0 {
		return nil, errors.MalformedError("possible_fix_code is missing", nil)
	}
	var code FixCode
	if err := json.Unmarshal(e.PossibleFixCode, &code); err != nil {
		return nil, errors.MalformedError("possible_fix_code is not an object", err)
	}
	if len(code) == 0 {
		return nil, errors.MalformedError("possible_fix_code is empty", nil)
	}
	return code, nil
}

// Keys returns the candidate identifiers in sorted order.
func (f FixCode) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Code returns the proposed body for key. ok is false when the value is not a
// non-empty string.
func (f FixCode) Code(key string) (string, bool) {
	raw, found := f[key]
	if !found {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return "", false
	}
	return s, true
}

// RankedEntry is one report's ranked retrieval output.
type RankedEntry struct {
	Filename                 string    `json:"filename" validate:"required"`
	TransformedRankedMethods *[]string `json:"transformed_ranked_methods,omitempty"`
	TransformedRankedFiles   []string  `json:"transformed_ranked_files,omitempty"`
	GroundTruth              []string  `json:"ground_truth"`
}

// Ranked returns the ranked method list, or the ranked file list when the
// entry carries no method ranking.
func (e RankedEntry) Ranked() []string {
	if e.TransformedRankedMethods != nil {
		return *e.TransformedRankedMethods
	}
	return e.TransformedRankedFiles
}

// ScoreRecord is the output row for one scored (candidate, ground truth) pair.
type ScoreRecord struct {
	Filename          string           `json:"filename"`
	CreationTime      string           `json:"creation_time"`
	Commit            string           `json:"commit"`
	CandidateKey      string           `json:"candidate_key"`
	GroundTruthMethod string           `json:"ground_truth_method"`
	FilePath          string           `json:"file_path"`
	CodeBLEU          similarity.Score `json:"codebleu"`
}

// StackTraceEntry is one report's stack trace.
type StackTraceEntry struct {
	Filename     string          `json:"filename" validate:"required"`
	CreationTime string          `json:"creation_time"`
	StackTrace   json.RawMessage `json:"stack_trace" validate:"required"`
}

// BugReportEntry is one bug report as written by a developer or a generator.
type BugReportEntry struct {
	Filename     string          `json:"filename" validate:"required"`
	CreationTime string          `json:"creation_time"`
	BugReport    json.RawMessage `json:"bug_report" validate:"required"`
}

// MergedEntry joins a stack trace with the bug report of the same file.
type MergedEntry struct {
	Filename     string          `json:"filename"`
	CreationTime string          `json:"creation_time"`
	StackTrace   json.RawMessage `json:"stack_trace"`
	BugReport    json.RawMessage `json:"bug_report"`
}

// CodeDiffEntry carries the before/after bodies of a report's fixed methods.
type CodeDiffEntry struct {
	Filename string          `json:"filename" validate:"required"`
	CodeDiff json.RawMessage `json:"code_diff"`
}

// SourceCodeEntry carries the methods reachable from a report's stack trace.
type SourceCodeEntry struct {
	Filename   string          `json:"filename" validate:"required"`
	SourceCode json.RawMessage `json:"source_code"`
}

// JudgementRecord is the output row of one judged bug report.
type JudgementRecord struct {
	Filename     string          `json:"filename" validate:"required"`
	CodeDiff     json.RawMessage `json:"code_diff"`
	LLMJudgement json.RawMessage `json:"llm_judgement"`
}

// Text returns a raw JSON value as plain text: JSON strings are unquoted,
// anything else is returned as its JSON encoding.
func Text(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
