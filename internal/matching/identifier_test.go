package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLastSegments(t *testing.T) {
	assert.Equal(t, "Foo.bar", LastSegments("a.b.Foo.bar", 2))
	assert.Equal(t, "bar", LastSegments("a.b.Foo.bar", 1))
	assert.Equal(t, "bar", LastSegments("bar", 2))
	assert.Equal(t, "Foo.bar", LastSegments("Foo.bar", 2))
	assert.Equal(t, "", LastSegments("", 2))
}

func TestMethodName(t *testing.T) {
	assert.Equal(t, "bar", MethodName("a.b.Foo.bar"))
	assert.Equal(t, "bar", MethodName("bar"))
	assert.Equal(t, "", MethodName("Foo."))
}

func TestToSourcePath(t *testing.T) {
	tests := []struct {
		fullname   string
		wantPath   string
		wantMethod string
		wantOK     bool
	}{
		{
			fullname:   "src.java.main.org.apache.zookeeper.server.quorum.QuorumPeerConfig.parseProperties",
			wantPath:   "src/java/main/org/apache/zookeeper/server/quorum/QuorumPeerConfig.java",
			wantMethod: "parseProperties",
			wantOK:     true,
		},
		{fullname: "Foo.bar", wantPath: "Foo.java", wantMethod: "bar", wantOK: true},
		{fullname: "bar", wantOK: false},
		{fullname: "Foo.", wantOK: false},
		{fullname: ".bar", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.fullname, func(t *testing.T) {
			path, method, ok := ToSourcePath(tt.fullname)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantPath, path)
			assert.Equal(t, tt.wantMethod, method)
		})
	}
}
