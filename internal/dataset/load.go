package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/ricesearch/bugeval/internal/pkg/errors"
)

var validate = validator.New()

// Rejected describes one array element that failed to decode or validate.
type Rejected struct {
	Index int
	Err   error
}

// DecodeRecords decodes a JSON array into records of type T. Elements that do
// not decode or fail struct validation are returned in rejected and do not fail
// the batch; only a document that is not an array is an error.
func DecodeRecords[T any](data []byte) (records []T, rejected []Rejected, err error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, errors.MalformedError("expected a JSON array", err)
	}

	records = make([]T, 0, len(raw))
	for i, elem := range raw {
		var rec T
		if err := json.Unmarshal(elem, &rec); err != nil {
			rejected = append(rejected, Rejected{Index: i, Err: errors.MalformedError("decode record", err)})
			continue
		}
		if err := validate.Struct(rec); err != nil {
			rejected = append(rejected, Rejected{Index: i, Err: errors.MalformedError("invalid record", err)})
			continue
		}
		records = append(records, rec)
	}
	return records, rejected, nil
}

// LoadRecords reads path and decodes it with DecodeRecords.
func LoadRecords[T any](path string) ([]T, []Rejected, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	records, rejected, err := DecodeRecords[T](data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, rejected, nil
}

// LoadGroundTruth reads a report filename -> ground-truth methods mapping.
func LoadGroundTruth(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var gt map[string][]string
	if err := json.Unmarshal(data, &gt); err != nil {
		return nil, fmt.Errorf("%s: %w", path, errors.MalformedError("expected an object of method lists", err))
	}
	return gt, nil
}

// RankedResults is a decoded ranked-results file.
type RankedResults struct {
	Entries  []RankedEntry
	Rejected []Rejected
	// Summary is the retrieval tool's own trailing overall_metrics entry, if
	// the file had one. It is not part of Entries.
	Summary json.RawMessage
}

// LoadRankedResults reads a ranked-results file.
func LoadRankedResults(path string) (*RankedResults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	res, err := DecodeRankedResults(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}

// DecodeRankedResults decodes a ranked-results JSON array, splitting off a
// trailing overall_metrics summary entry.
func DecodeRankedResults(data []byte) (*RankedResults, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.MalformedError("expected a JSON array", err)
	}

	res := &RankedResults{}
	if n := len(raw); n > 0 && isSummary(raw[n-1]) {
		res.Summary = raw[n-1]
		raw = raw[:n-1]
	}

	body, err := json.Marshal(raw)
	if err != nil {
		return nil, errors.InternalError("re-encode ranked entries", err)
	}
	res.Entries, res.Rejected, err = DecodeRecords[RankedEntry](body)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func isSummary(raw json.RawMessage) bool {
	if !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
		return false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return false
	}
	_, ok := obj["overall_metrics"]
	return ok
}
