package judge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricesearch/bugeval/internal/pkg/errors"
)

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripFences("  {\"a\":1}  "))
}

func TestParseResponse(t *testing.T) {
	reply := "```json\n" + `{
		"root_cause_identification": {"level": "Precise", "sub_category": null},
		"fix_suggestion": "Correct",
		"problem_location_identification": {"level": "Partial", "sub_category": "Direct Caller/Callee"},
		"wrong_information": "No",
		"explanation_of_judgement": "fine"
	}` + "\n```"

	j, raw, err := ParseResponse(reply)
	require.NoError(t, err)
	assert.Equal(t, LevelPrecise, j.RootCause.Level)
	assert.Equal(t, FixCorrect, j.FixSuggestion)
	assert.Equal(t, Assessment{Level: LevelPartial, SubCategory: SubDirect}, j.ProblemLocation)
	assert.Equal(t, WrongNo, j.WrongInformation)
	assert.Contains(t, string(raw), `"explanation_of_judgement"`)
}

func TestParseResponse_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"empty", "   "},
		{"not json", "The report is precise."},
		{"truncated", `{"fix_suggestion": "Correct"`},
		{"array", `[{"fix_suggestion": "Correct"}]`},
		{"wrong field type", `{"fix_suggestion": 3}`},
		{"wrong nested type", `{"root_cause_identification": {"level": 1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseResponse(tt.reply)
			require.Error(t, err)
			assert.True(t, errors.IsMalformed(err), "got %v", err)
		})
	}
}
