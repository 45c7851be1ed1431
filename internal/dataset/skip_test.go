package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSkipList(t *testing.T) {
	s := NewSkipList(map[string][]string{
		"missing_path": {"ZOOKEEPER-1264.json", "HDFS-1085.json"},
		"method_level": {"HDFS-6533.json", "HDFS-1085.json"},
	})

	reason, ok := s.Contains("ZOOKEEPER-1264.json")
	assert.True(t, ok)
	assert.Equal(t, "missing_path", reason)

	reason, ok = s.Contains("HDFS-1085.json")
	assert.True(t, ok)
	assert.Equal(t, "method_level", reason)

	_, ok = s.Contains("HIVE-1.json")
	assert.False(t, ok)
}
