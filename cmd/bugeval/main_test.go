package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricesearch/bugeval/internal/bus"
)

// execute runs the root command with args and returns what it wrote to stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "bugeval dev")
}

func TestInvalidFormat(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "trace.txt", "at a.B.c(B.java:1)")
	_, err := execute(t, "frames", path, "--format", "xml")
	assert.Error(t, err)
}

const rankedResults = `[
  {"filename": "ZOOKEEPER-1.json", "transformed_ranked_methods": ["a.X.miss", "a.Y.hit"], "ground_truth": ["a.Y.hit"]},
  {"filename": "ZOOKEEPER-2.json", "transformed_ranked_files": ["a/Z.java"], "ground_truth": ["a/Z.java"]},
  {"filename": "HIVE-1.json", "transformed_ranked_methods": ["h.A.b"], "ground_truth": ["h.C.d"]},
  {"overall_metrics": {"MAP": 0.9}}
]`

func TestRank(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "ranked.json", rankedResults)
	output := filepath.Join(dir, "out", "projectwise.json")
	textfile := filepath.Join(dir, "metrics", "bugeval.prom")
	cfg := writeFile(t, dir, "config.yaml", "metrics:\n  textfile: "+textfile+"\n")

	out, err := execute(t, "rank", input, output, "-c", cfg, "--projects", "ZOOKEEPER,HIVE", "--top-n", "1,2")
	require.NoError(t, err)
	assert.Contains(t, out, "ZOOKEEPER")
	assert.Contains(t, strings.ToLower(out), "top@2", "table header")
	assert.Contains(t, strings.ToLower(out), "overall", "table footer")
	assert.Contains(t, out, "0.7500")

	data, err := os.ReadFile(output)
	require.NoError(t, err)

	var report map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Contains(t, report, "ZOOKEEPER")
	assert.Contains(t, report, "HIVE")
	assert.Contains(t, report, "Overall")

	var zk struct {
		MAP        float64 `json:"MAP"`
		MRR        float64 `json:"MRR"`
		TotalCases int     `json:"total_cases"`
	}
	require.NoError(t, json.Unmarshal(report["ZOOKEEPER"], &zk))
	assert.Equal(t, 2, zk.TotalCases)
	assert.InDelta(t, 0.75, zk.MAP, 1e-9)
	assert.InDelta(t, 0.75, zk.MRR, 1e-9)

	// Overall is recomputed from the reports; the input's own summary entry is ignored.
	var overall struct {
		Metrics struct {
			MAP float64 `json:"MAP"`
			MRR float64 `json:"MRR"`
		} `json:"overall_metrics"`
		TotalCases int `json:"total_cases"`
	}
	require.NoError(t, json.Unmarshal(report["Overall"], &overall))
	assert.Equal(t, 3, overall.TotalCases)
	assert.InDelta(t, 0.5, overall.Metrics.MAP, 1e-9)
	assert.InDelta(t, 0.75, overall.Metrics.MRR, 1e-9)

	_, err = os.Stat(textfile)
	assert.NoError(t, err, "metrics textfile written on exit")
}

func TestRank_Markdown(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "ranked.json", rankedResults)

	out, err := execute(t, "rank", input, filepath.Join(dir, "out.json"), "--projects", "ZOOKEEPER", "--top-n", "1", "--format", "markdown")
	require.NoError(t, err)
	assert.Contains(t, strings.ToLower(out), "| project")
	assert.Contains(t, out, "| ZOOKEEPER")
	assert.Contains(t, strings.ToLower(out), "overall")
}

func TestRank_BadInput(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "ranked.json", `{"not": "an array"}`)
	_, err := execute(t, "rank", input, filepath.Join(dir, "out.json"))
	assert.Error(t, err)

	_, err = execute(t, "rank", input)
	assert.Error(t, err, "two arguments required")
}

const judgements = `[
  {"filename": "HDFS-1.json", "code_diff": {}, "llm_judgement": {
    "root_cause_identification": "Precise",
    "fix_suggestion": "Alternative Fix",
    "problem_location_identification": {"level": "Partial", "sub_category": "Buggy Method"},
    "wrong_information": "No"}},
  {"filename": "ZOOKEEPER-1264.json", "code_diff": {}, "llm_judgement": {"root_cause_identification": "Precise"}},
  {"filename": "HDFS-2.json", "code_diff": {}, "llm_judgement": null}
]`

func TestTally(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "judgements.json", judgements)

	out, err := execute(t, "tally", path)
	require.NoError(t, err)
	assert.Contains(t, out, "File: "+path)
	assert.Contains(t, out, "Category: root_cause_identification\n  precise_count = 1\n")
	assert.Contains(t, out, "alternative fix_count = 1")
	assert.Contains(t, out, "partial_Buggy Method = 1")
	assert.NotContains(t, out, "Total")
}

func TestTally_JSONMultipleFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", judgements)
	b := writeFile(t, dir, "b.json", judgements)

	out, err := execute(t, "tally", a, b, "--format", "json")
	require.NoError(t, err)

	var got struct {
		Files map[string]struct {
			Reports int `json:"reports"`
		} `json:"files"`
		Total struct {
			Reports    int                       `json:"reports"`
			Categories map[string]map[string]int `json:"categories"`
		} `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 2, got.Files[a].Reports, "skip-listed report left out")
	assert.Equal(t, 4, got.Total.Reports)
	assert.Equal(t, 2, got.Total.Categories["root_cause_identification"]["precise_count"])
	assert.Equal(t, 2, got.Total.Categories["root_cause_identification"]["missing_count"])
}

func TestMerge(t *testing.T) {
	dir := t.TempDir()
	traces := writeFile(t, dir, "traces.json", `[
  {"filename": "YARN-1.json", "creation_time": "t1", "stack_trace": "at a.B.c(B.java:1)"},
  {"filename": "YARN-2.json", "creation_time": "t2", "stack_trace": "at a.B.d(B.java:2)"}
]`)
	reports := writeFile(t, dir, "reports.json", `[
  {"filename": "YARN-1.json", "bug_report": "old"},
  {"filename": "YARN-1.json", "bug_report": "new"}
]`)
	output := filepath.Join(dir, "merged.json")

	out, err := execute(t, "merge", "--stack-traces", traces, "--bug-reports", reports, "--output", output)
	require.NoError(t, err)
	assert.Contains(t, out, "Merged 1 of 2")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"filename": "YARN-1.json", "creation_time": "t1",
		"stack_trace": "at a.B.c(B.java:1)", "bug_report": "new"}]`, string(data))

	_, err = execute(t, "merge", "--stack-traces", traces)
	assert.Error(t, err, "required flags")
}

func TestFrames(t *testing.T) {
	dir := t.TempDir()
	trace := "java.lang.NullPointerException\n" +
		"\tat org.apache.hadoop.hdfs.DFSClient.open(DFSClient.java:100)\n" +
		"\tat org.apache.hadoop.hdfs.DFSClient.open(DFSClient.java:100)\n" +
		"\tat org.apache.hadoop.fs.FileSystem.get(FileSystem.java:42)\n"

	plain := writeFile(t, dir, "trace.txt", trace)
	out, err := execute(t, "frames", plain)
	require.NoError(t, err)
	assert.Equal(t, "org.apache.hadoop.hdfs.DFSClient.open\norg.apache.hadoop.fs.FileSystem.get\n", out)

	out, err = execute(t, "frames", plain, "--all")
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out, "\n"))

	encoded, err := json.Marshal(trace)
	require.NoError(t, err)
	file := writeFile(t, dir, "traces.json", `[{"filename": "HDFS-9.json", "stack_trace": `+string(encoded)+`}]`)
	out, err = execute(t, "frames", file, "--format", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"filename": "HDFS-9.json", "frames": [
		"org.apache.hadoop.hdfs.DFSClient.open", "org.apache.hadoop.fs.FileSystem.get"]}]`, out)
}

func TestEvents(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "events", "events.jsonl")
	cfg := writeFile(t, dir, "config.yaml", "bus:\n  event_log: "+logPath+"\n")

	el, err := bus.NewEventLogger(logPath, true)
	require.NoError(t, err)
	for _, name := range []string{"AMQ-1.json", "AMQ-2.json"} {
		event := bus.NewEvent(bus.TypeReportSkipped, "codebleu", "run", bus.ReportSkipped{
			Filename: name, Reason: "no_commit",
		}, name)
		require.NoError(t, el.Log(bus.TopicReportSkipped, event))
	}
	require.NoError(t, el.Close())

	out, err := execute(t, "events", "-c", cfg, "--format", "json", "--limit", "1")
	require.NoError(t, err)
	var events []bus.LoggedEvent
	require.NoError(t, json.Unmarshal([]byte(out), &events))
	require.Len(t, events, 1)
	assert.Equal(t, bus.TopicReportSkipped, events[0].Topic)

	out, err = execute(t, "events", "-c", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "2 events")
	assert.Contains(t, out, "AMQ-2.json")

	out, err = execute(t, "events", "-c", cfg, "--run", "other")
	require.NoError(t, err)
	assert.Contains(t, out, "0 events")

	_, err = execute(t, "events", "-c", cfg, "--replay")
	assert.Error(t, err, "memory bus replay without a subscriber")
	_, err = execute(t, "events", "-c", cfg, "--follow")
	assert.Error(t, err, "memory bus follow without a publisher")

	out, err = execute(t, "events", "-c", cfg, "--replay", "--follow")
	require.NoError(t, err)
	assert.Contains(t, out, "Replayed 2 events")
	assert.Contains(t, out, "AMQ-1.json")
	assert.Contains(t, out, "AMQ-2.json")
	assert.Contains(t, out, "2 events")

	out, err = execute(t, "events", "-c", cfg, "--replay", "--follow", "--topic", bus.TopicScoreRecorded)
	require.NoError(t, err)
	assert.Contains(t, out, "Replayed 0 events")
	assert.Contains(t, out, "\n0 events")

	// Replay goes to the bus only.
	out, err = execute(t, "events", "-c", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "2 events")
}

func TestEvents_NotConfigured(t *testing.T) {
	_, err := execute(t, "events")
	assert.Error(t, err)
}

func TestCodeBLEU_NoRepositories(t *testing.T) {
	_, err := execute(t, "codebleu")
	assert.Error(t, err)
}

func TestJudge_NoAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	dir := t.TempDir()
	reports := writeFile(t, dir, "reports.json", `[]`)
	gt := writeFile(t, dir, "gt.json", `{}`)
	_, err := execute(t, "judge", "--reports", reports, "--ground-truth", gt, "--output", filepath.Join(dir, "out.json"))
	assert.Error(t, err)
}
