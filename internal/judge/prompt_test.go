package judge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPrompt(t *testing.T) {
	out, err := RenderPrompt(PromptInput{
		BugReport:   `{"Title": "NPE in QuorumPeerConfig"}`,
		GroundTruth: []string{"org.apache.zookeeper.server.quorum.QuorumPeerConfig.parse"},
		CodeDiff:    `{"before": "void parse() {}"}`,
		SourceCode:  `{}`,
	})
	require.NoError(t, err)

	assert.Contains(t, out, "NPE in QuorumPeerConfig")
	assert.Contains(t, out, "- org.apache.zookeeper.server.quorum.QuorumPeerConfig.parse")
	assert.Contains(t, out, "void parse() {}")
	assert.Contains(t, out, "- 3+ Hop Caller/Callee")
	assert.Contains(t, out, `"wrong_information": "Yes | No"`)
	assert.NotContains(t, out, "- null")
}

func TestRenderPrompt_NoGroundTruth(t *testing.T) {
	out, err := RenderPrompt(PromptInput{BugReport: "report"})
	require.NoError(t, err)
	assert.Contains(t, out, "(none)")
}
