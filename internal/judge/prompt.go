package judge

import (
	_ "embed"
	"strings"
	"text/template"

	"github.com/ricesearch/bugeval/internal/pkg/errors"
)

//go:embed prompt.tmpl
var promptText string

var promptTemplate = template.Must(template.New("judge").Parse(promptText))

// PromptInput is everything the judge sees about one bug report.
type PromptInput struct {
	BugReport   string
	GroundTruth []string
	CodeDiff    string
	SourceCode  string
}

// RenderPrompt fills the judge prompt for one report.
func RenderPrompt(in PromptInput) (string, error) {
	subs := make([]string, 0, len(SubCategories))
	for _, s := range SubCategories {
		if s != SubNull {
			subs = append(subs, s.String())
		}
	}

	var sb strings.Builder
	err := promptTemplate.Execute(&sb, struct {
		PromptInput
		SubCategories []string
	}{in, subs})
	if err != nil {
		return "", errors.InternalError("render judge prompt", err)
	}
	return sb.String(), nil
}
