// Package judge scores bug reports with an LLM acting as judge and tallies
// the resulting category labels.
package judge

import (
	"encoding/json"
	"strings"
)

// Level grades root-cause and problem-location identification.
type Level int

const (
	LevelMissing Level = iota
	LevelPrecise
	LevelPartial
	numLevels
)

// Levels lists the levels in report order.
var Levels = []Level{LevelPrecise, LevelPartial, LevelMissing}

var levelNames = [numLevels]string{"missing", "precise", "partial"}

func (l Level) String() string { return levelNames[l] }

// ParseLevel maps a label to a Level. Unrecognized labels are LevelMissing.
func ParseLevel(s string) Level {
	return Level(parseLabel(s, levelNames[:], int(LevelMissing)))
}

// FixSuggestion grades the proposed fix.
type FixSuggestion int

const (
	FixMissing FixSuggestion = iota
	FixCorrect
	FixAlternative
	FixPreventive
	numFixSuggestions
)

// FixSuggestions lists the fix grades in report order.
var FixSuggestions = []FixSuggestion{FixCorrect, FixAlternative, FixPreventive, FixMissing}

var fixNames = [numFixSuggestions]string{"missing", "correct", "alternative fix", "preventive"}

func (f FixSuggestion) String() string { return fixNames[f] }

// ParseFixSuggestion maps a label to a FixSuggestion. Unrecognized labels are FixMissing.
func ParseFixSuggestion(s string) FixSuggestion {
	return FixSuggestion(parseLabel(s, fixNames[:], int(FixMissing)))
}

// WrongInformation records whether the report states something incorrect.
type WrongInformation int

const (
	WrongMissing WrongInformation = iota
	WrongYes
	WrongNo
	numWrongInformation
)

// WrongInformationValues lists the printed values in report order. Missing
// answers are counted but not printed.
var WrongInformationValues = []WrongInformation{WrongYes, WrongNo}

var wrongNames = [numWrongInformation]string{"missing", "yes", "no"}

func (w WrongInformation) String() string { return wrongNames[w] }

// ParseWrongInformation maps a label to a WrongInformation. Unrecognized
// labels are WrongMissing.
func ParseWrongInformation(s string) WrongInformation {
	return WrongInformation(parseLabel(s, wrongNames[:], int(WrongMissing)))
}

// SubCategory qualifies a partial root-cause or problem-location grade by how
// the named method relates to the ground truth.
type SubCategory int

const (
	// SubNone means the grade carried no sub-category slot at all (plain string form).
	SubNone SubCategory = iota
	SubDirect
	SubTwoHop
	SubThreeHop
	SubBeyondThreeHop
	SubSameClass
	SubSharedStackTrace
	SubBuggyMethod
	SubNull
	SubUnknown
	numSubCategories
)

// SubCategories lists the printed sub-categories in report order.
var SubCategories = []SubCategory{
	SubDirect, SubTwoHop, SubThreeHop, SubBeyondThreeHop,
	SubSameClass, SubSharedStackTrace, SubBuggyMethod, SubNull,
}

var subNames = [numSubCategories]string{
	"",
	"Direct Caller/Callee",
	"2-Hop Caller/Callee",
	"3-Hop Caller/Callee",
	"3+ Hop Caller/Callee",
	"Same Class or Module",
	"Shared Stack Trace Context",
	"Buggy Method",
	"null",
	"unknown",
}

func (s SubCategory) String() string { return subNames[s] }

// ParseSubCategory maps a label to a SubCategory, ignoring case. An empty
// label is SubNull; anything unrecognized is SubUnknown.
func ParseSubCategory(s string) SubCategory {
	if strings.TrimSpace(s) == "" {
		return SubNull
	}
	sub := SubCategory(parseLabel(s, subNames[:], int(SubUnknown)))
	if sub == SubNone {
		return SubUnknown
	}
	return sub
}

func parseLabel(s string, names []string, fallback int) int {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range names {
		if name != "" && strings.ToLower(name) == s {
			return i
		}
	}
	return fallback
}

// Assessment is a graded category that may carry a sub-category.
type Assessment struct {
	Level       Level
	SubCategory SubCategory
}

// UnmarshalJSON accepts either a plain label or {"level", "sub_category"}.
// A nested form without a usable sub_category gets SubNull.
func (a *Assessment) UnmarshalJSON(data []byte) error {
	*a = Assessment{}

	var label string
	if err := json.Unmarshal(data, &label); err == nil {
		a.Level = ParseLevel(label)
		return nil
	}

	var nested struct {
		Level       json.RawMessage `json:"level"`
		SubCategory json.RawMessage `json:"sub_category"`
	}
	if err := json.Unmarshal(data, &nested); err != nil {
		// Neither form: the grade is missing, not the whole judgement.
		return nil
	}
	a.Level = ParseLevel(stringOrEmpty(nested.Level))
	a.SubCategory = ParseSubCategory(stringOrEmpty(nested.SubCategory))
	return nil
}

// MarshalJSON writes the nested form, or a plain label when there is no sub-category slot.
func (a Assessment) MarshalJSON() ([]byte, error) {
	if a.SubCategory == SubNone {
		return json.Marshal(a.Level.String())
	}
	return json.Marshal(struct {
		Level       string `json:"level"`
		SubCategory string `json:"sub_category"`
	}{a.Level.String(), a.SubCategory.String()})
}

// Judgement is the parsed verdict for one bug report.
type Judgement struct {
	RootCause        Assessment
	FixSuggestion    FixSuggestion
	ProblemLocation  Assessment
	WrongInformation WrongInformation
	Explanation      string
}

type judgementJSON struct {
	RootCause        json.RawMessage `json:"root_cause_identification,omitempty"`
	FixSuggestion    json.RawMessage `json:"fix_suggestion,omitempty"`
	ProblemLocation  json.RawMessage `json:"problem_location_identification,omitempty"`
	WrongInformation json.RawMessage `json:"wrong_information,omitempty"`
	Explanation      json.RawMessage `json:"explanation_of_judgement,omitempty"`
}

// UnmarshalJSON decodes a judgement object. Absent or unrecognized fields
// take their missing value.
func (j *Judgement) UnmarshalJSON(data []byte) error {
	var raw judgementJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*j = Judgement{
		FixSuggestion:    ParseFixSuggestion(stringOrEmpty(raw.FixSuggestion)),
		WrongInformation: ParseWrongInformation(stringOrEmpty(raw.WrongInformation)),
		Explanation:      stringOrEmpty(raw.Explanation),
	}
	if len(raw.RootCause) > 0 {
		if err := j.RootCause.UnmarshalJSON(raw.RootCause); err != nil {
			return err
		}
	}
	if len(raw.ProblemLocation) > 0 {
		if err := j.ProblemLocation.UnmarshalJSON(raw.ProblemLocation); err != nil {
			return err
		}
	}
	return nil
}

// MarshalJSON writes the judgement with its canonical labels.
func (j Judgement) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		RootCause        Assessment `json:"root_cause_identification"`
		FixSuggestion    string     `json:"fix_suggestion"`
		ProblemLocation  Assessment `json:"problem_location_identification"`
		WrongInformation string     `json:"wrong_information"`
		Explanation      string     `json:"explanation_of_judgement,omitempty"`
	}{j.RootCause, j.FixSuggestion.String(), j.ProblemLocation, j.WrongInformation.String(), j.Explanation})
}

func stringOrEmpty(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}
