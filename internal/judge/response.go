package judge

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/ricesearch/bugeval/internal/pkg/errors"
)

//go:embed response_schema.json
var responseSchema string

var responseSchemaLoader = gojsonschema.NewStringLoader(responseSchema)

// StripFences removes a surrounding markdown code fence (```json ... ```).
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// ParseResponse decodes the judge's reply. It returns the parsed judgement and
// the JSON object as sent, which is what gets recorded. Any reply
// that is not a JSON object of the expected shape is a MALFORMED_RECORD error.
func ParseResponse(text string) (Judgement, json.RawMessage, error) {
	body := StripFences(text)
	if body == "" {
		return Judgement{}, nil, errors.MalformedError("empty judge response", nil)
	}
	if !json.Valid([]byte(body)) {
		return Judgement{}, nil, errors.MalformedError("judge response is not valid JSON", nil)
	}

	result, err := gojsonschema.Validate(responseSchemaLoader, gojsonschema.NewStringLoader(body))
	if err != nil {
		return Judgement{}, nil, errors.MalformedError("judge response could not be validated", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			field := desc.Field()
			if field == "" {
				field = "(root)"
			}
			msgs = append(msgs, fmt.Sprintf("%s: %s", field, desc.Description()))
		}
		return Judgement{}, nil, errors.MalformedError("judge response has unexpected shape", nil).
			WithDetail("errors", strings.Join(msgs, "; "))
	}

	var j Judgement
	if err := json.Unmarshal([]byte(body), &j); err != nil {
		return Judgement{}, nil, errors.MalformedError("decode judge response", err)
	}
	return j, json.RawMessage(body), nil
}
