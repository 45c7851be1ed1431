package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.json")

	require.NoError(t, WriteJSON(path, []map[string]int{{"a": 1}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[\n    {\n        \"a\": 1\n    }\n]", string(data))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file left behind")
}

func TestWriteJSON_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")

	require.NoError(t, WriteJSON(path, []int{1, 2, 3}))
	require.NoError(t, WriteJSON(path, []int{4}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[\n    4\n]", string(data))
}

func TestWriteJSON_Unmarshalable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	assert.Error(t, WriteJSON(path, map[string]any{"c": make(chan int)}))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
