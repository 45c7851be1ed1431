package judge

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ricesearch/bugeval/internal/dataset"
	"github.com/ricesearch/bugeval/internal/pkg/errors"
)

// Category names as they appear in judge responses and tally output.
const (
	CategoryRootCause        = "root_cause_identification"
	CategoryFixSuggestion    = "fix_suggestion"
	CategoryProblemLocation  = "problem_location_identification"
	CategoryWrongInformation = "wrong_information"
)

// Tally counts judgement labels per category. The zero value is an empty
// tally; tallies are values and Merge never mutates its operands.
type Tally struct {
	Reports int

	RootCause              [numLevels]int
	RootCausePartial       [numSubCategories]int
	FixSuggestion          [numFixSuggestions]int
	ProblemLocation        [numLevels]int
	ProblemLocationPartial [numSubCategories]int
	WrongInformation       [numWrongInformation]int
}

// Add returns t with j counted. Sub-categories are counted only for partial
// grades given in the nested form.
func (t Tally) Add(j Judgement) Tally {
	t.Reports++

	t.RootCause[j.RootCause.Level]++
	if j.RootCause.Level == LevelPartial && j.RootCause.SubCategory != SubNone {
		t.RootCausePartial[j.RootCause.SubCategory]++
	}

	t.FixSuggestion[j.FixSuggestion]++

	t.ProblemLocation[j.ProblemLocation.Level]++
	if j.ProblemLocation.Level == LevelPartial && j.ProblemLocation.SubCategory != SubNone {
		t.ProblemLocationPartial[j.ProblemLocation.SubCategory]++
	}

	t.WrongInformation[j.WrongInformation]++
	return t
}

// Merge returns the sum of t and o.
func (t Tally) Merge(o Tally) Tally {
	t.Reports += o.Reports
	for i := range t.RootCause {
		t.RootCause[i] += o.RootCause[i]
		t.ProblemLocation[i] += o.ProblemLocation[i]
	}
	for i := range t.RootCausePartial {
		t.RootCausePartial[i] += o.RootCausePartial[i]
		t.ProblemLocationPartial[i] += o.ProblemLocationPartial[i]
	}
	for i := range t.FixSuggestion {
		t.FixSuggestion[i] += o.FixSuggestion[i]
	}
	for i := range t.WrongInformation {
		t.WrongInformation[i] += o.WrongInformation[i]
	}
	return t
}

// Counts returns the printed counts keyed by category, then by
// "<option>_count" or "partial_<sub-category>".
func (t Tally) Counts() map[string]map[string]int {
	out := map[string]map[string]int{
		CategoryRootCause:        levelCounts(t.RootCause, t.RootCausePartial),
		CategoryFixSuggestion:    {},
		CategoryProblemLocation:  levelCounts(t.ProblemLocation, t.ProblemLocationPartial),
		CategoryWrongInformation: {},
	}
	for _, f := range FixSuggestions {
		out[CategoryFixSuggestion][f.String()+"_count"] = t.FixSuggestion[f]
	}
	for _, w := range WrongInformationValues {
		out[CategoryWrongInformation][w.String()+"_count"] = t.WrongInformation[w]
	}
	return out
}

func levelCounts(levels [numLevels]int, partial [numSubCategories]int) map[string]int {
	m := make(map[string]int, len(Levels)+len(SubCategories))
	for _, l := range Levels {
		m[l.String()+"_count"] = levels[l]
	}
	for _, s := range SubCategories {
		m["partial_"+s.String()] = partial[s]
	}
	return m
}

// MarshalJSON writes Counts plus the number of reports.
func (t Tally) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Reports    int                       `json:"reports"`
		Categories map[string]map[string]int `json:"categories"`
	}{t.Reports, t.Counts()})
}

// Format writes the tally in the plain-text report layout:
//
//	Category: root_cause_identification
//	  precise_count = 3
//	  partial_Direct Caller/Callee = 1
func (t Tally) Format(w io.Writer) error {
	sections := []struct {
		name  string
		lines func(emit func(string, int))
	}{
		{CategoryRootCause, func(emit func(string, int)) { emitLevels(emit, t.RootCause, t.RootCausePartial) }},
		{CategoryFixSuggestion, func(emit func(string, int)) {
			for _, f := range FixSuggestions {
				emit(f.String()+"_count", t.FixSuggestion[f])
			}
		}},
		{CategoryProblemLocation, func(emit func(string, int)) { emitLevels(emit, t.ProblemLocation, t.ProblemLocationPartial) }},
		{CategoryWrongInformation, func(emit func(string, int)) {
			for _, v := range WrongInformationValues {
				emit(v.String()+"_count", t.WrongInformation[v])
			}
		}},
	}

	var err error
	emit := func(key string, n int) {
		if err == nil {
			_, err = fmt.Fprintf(w, "  %s = %d\n", key, n)
		}
	}
	for _, s := range sections {
		if err == nil {
			_, err = fmt.Fprintf(w, "\nCategory: %s\n", s.name)
		}
		s.lines(emit)
	}
	return err
}

func emitLevels(emit func(string, int), levels [numLevels]int, partial [numSubCategories]int) {
	for _, l := range Levels {
		emit(l.String()+"_count", levels[l])
	}
	for _, s := range SubCategories {
		emit("partial_"+s.String(), partial[s])
	}
}

// TallyRecords counts the judgements of records, leaving out filenames on
// skip. A record without a judgement counts as all-missing; a judgement that
// is not an object is rejected.
func TallyRecords(records []dataset.JudgementRecord, skip dataset.SkipList) (Tally, []dataset.Rejected) {
	var (
		t        Tally
		rejected []dataset.Rejected
	)
	for i, rec := range records {
		if _, skipped := skip.Contains(rec.Filename); skipped {
			continue
		}
		var j Judgement
		if raw := rec.LLMJudgement; len(raw) > 0 && string(raw) != "null" {
			if err := json.Unmarshal(raw, &j); err != nil {
				rejected = append(rejected, dataset.Rejected{
					Index: i,
					Err:   errors.MalformedError("llm_judgement is not an object", err).WithDetail("report", rec.Filename),
				})
				continue
			}
		}
		t = t.Add(j)
	}
	return t, rejected
}
