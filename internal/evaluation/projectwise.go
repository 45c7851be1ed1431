package evaluation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ricesearch/bugeval/internal/dataset"
)

// OverallKey is the key of the cross-project entry in a project-wise report.
const OverallKey = "Overall"

// ProjectwiseReport holds one Summary per project plus their merged total.
type ProjectwiseReport struct {
	Projects  []string
	ByProject map[string]Summary
	Overall   OverallSummary
}

// EvaluateProjects buckets ranked entries by project and evaluates each bucket.
// An entry belongs to every project whose name occurs in its filename, ignoring
// case. The overall entry merges the project accumulators, so a report that
// falls into two projects is counted in both.
func (e *Evaluator) EvaluateProjects(entries []dataset.RankedEntry, projects []string) (*ProjectwiseReport, error) {
	buckets := make(map[string][]RankedReport, len(projects))
	for _, entry := range entries {
		name := strings.ToLower(entry.Filename)
		for _, p := range projects {
			if strings.Contains(name, strings.ToLower(p)) {
				buckets[p] = append(buckets[p], RankedReport{
					Filename:    entry.Filename,
					Ranked:      entry.Ranked(),
					GroundTruth: entry.GroundTruth,
				})
			}
		}
	}

	report := &ProjectwiseReport{
		Projects:  append([]string(nil), projects...),
		ByProject: make(map[string]Summary, len(projects)),
	}
	overall := e.NewAccumulator()
	for _, p := range projects {
		acc := e.Evaluate(buckets[p])
		report.ByProject[p] = acc.Summary()

		var err error
		if overall, err = overall.Merge(acc); err != nil {
			return nil, fmt.Errorf("merge %s: %w", p, err)
		}
		e.log.WithProject(p).Debug("project evaluated",
			"reports", len(buckets[p]), "total_cases", acc.Total())
	}
	report.Overall = overall.Overall()
	return report, nil
}

// MarshalJSON writes the projects in configured order followed by the overall
// entry.
func (p *ProjectwiseReport) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for _, name := range p.Projects {
		if err := writeMember(&buf, name, p.ByProject[name]); err != nil {
			return nil, err
		}
		buf.WriteByte(',')
	}
	if err := writeMember(&buf, OverallKey, p.Overall); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeMember(buf *bytes.Buffer, key string, value any) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	v, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}
