// Package source reads project files at a report's fix commit and resolves
// ground-truth methods to their bodies.
package source

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ricesearch/bugeval/internal/pkg/errors"
)

// CommitIndex maps issue ids to fix commits. Keys have the form
// "ISSUE-123@<commit>".
type CommitIndex struct {
	keys []string // sorted
}

// NewCommitIndex builds an index from "ISSUE@commit" keys.
func NewCommitIndex(keys []string) *CommitIndex {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	return &CommitIndex{keys: sorted}
}

// LoadCommitIndex reads the code-changes file, a JSON object keyed by
// "ISSUE@commit". Values are not needed and are ignored.
func LoadCommitIndex(path string) (*CommitIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var changes map[string]json.RawMessage
	if err := json.Unmarshal(data, &changes); err != nil {
		return nil, fmt.Errorf("%s: %w", path, errors.MalformedError("expected an object keyed by ISSUE@commit", err))
	}
	keys := make([]string, 0, len(changes))
	for k := range changes {
		keys = append(keys, k)
	}
	return NewCommitIndex(keys), nil
}

// IssueID returns the issue id of a report filename: everything before the
// first dot ("ZOOKEEPER-1264.json" -> "ZOOKEEPER-1264").
func IssueID(filename string) string {
	if i := strings.Index(filename, "."); i >= 0 {
		return filename[:i]
	}
	return filename
}

// Lookup returns the commit of the lexicographically first key for issue.
func (c *CommitIndex) Lookup(issue string) (string, bool) {
	prefix := issue + "@"
	i := sort.SearchStrings(c.keys, prefix)
	if i == len(c.keys) || !strings.HasPrefix(c.keys[i], prefix) {
		return "", false
	}
	commit := strings.TrimPrefix(c.keys[i], prefix)
	if j := strings.Index(commit, "@"); j >= 0 {
		commit = commit[:j]
	}
	return commit, commit != ""
}

// Len returns the number of indexed keys.
func (c *CommitIndex) Len() int {
	return len(c.keys)
}
