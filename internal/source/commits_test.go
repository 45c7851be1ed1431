package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricesearch/bugeval/internal/pkg/errors"
)

func TestIssueID(t *testing.T) {
	assert.Equal(t, "ZOOKEEPER-1264", IssueID("ZOOKEEPER-1264.json"))
	assert.Equal(t, "HDFS-1", IssueID("HDFS-1.v2.json"))
	assert.Equal(t, "YARN-9", IssueID("YARN-9"))
}

func TestCommitIndex_Lookup(t *testing.T) {
	idx := NewCommitIndex([]string{
		"ZOOKEEPER-12@ffff",
		"ZOOKEEPER-1@bbbb",
		"ZOOKEEPER-1@aaaa",
		"HIVE-7@cccc@extra",
	})

	commit, ok := idx.Lookup("ZOOKEEPER-1")
	require.True(t, ok)
	assert.Equal(t, "aaaa", commit, "lexicographically first key wins")

	commit, ok = idx.Lookup("ZOOKEEPER-12")
	require.True(t, ok)
	assert.Equal(t, "ffff", commit)

	commit, ok = idx.Lookup("HIVE-7")
	require.True(t, ok)
	assert.Equal(t, "cccc", commit)

	_, ok = idx.Lookup("ZOOKEEPER-2")
	assert.False(t, ok)
	_, ok = idx.Lookup("ZOOKEEPER")
	assert.False(t, ok, "issue prefix must be followed by @")

	assert.Equal(t, 4, idx.Len())
}

func TestLoadCommitIndex(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "code_changes.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"AMQ-1@abc123": {"files": []}, "AMQ-2@def456": []}`), 0644))

	idx, err := LoadCommitIndex(path)
	require.NoError(t, err)
	commit, ok := idx.Lookup("AMQ-2")
	assert.True(t, ok)
	assert.Equal(t, "def456", commit)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`["AMQ-1@abc"]`), 0644))
	_, err = LoadCommitIndex(bad)
	assert.True(t, errors.IsMalformed(err))
}
