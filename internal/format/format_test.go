package format_test

import (
	"strings"
	"testing"

	"github.com/ricesearch/bugeval/internal/format"
)

func TestASCII_MetricTable(t *testing.T) {
	tb := format.NewTable(format.ASCII)
	tb.Header("Project", "MAP", "MRR")
	tb.Row("ZOOKEEPER", format.Score(0.75), format.Score(0.75))
	tb.Row("HIVE", format.Score(0), format.Score(0))
	tb.Footer("Overall", format.Score(0.5), format.Score(0.75))
	tb.Columns(format.ColumnConfig{Number: 2, Align: format.AlignRight})
	out := tb.String()

	for _, want := range []string{"project", "zookeeper", "0.7500", "overall", "───"} {
		if !strings.Contains(strings.ToLower(out), want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	if tb.Len() != 2 {
		t.Errorf("Len() = %d, want 2 (footer not counted)", tb.Len())
	}
}

func TestMarkdown_Table(t *testing.T) {
	tb := format.NewTable(format.Markdown)
	tb.Header("Project", "Cases")
	tb.Row("HDFS", 3)
	out := tb.String()

	if !strings.Contains(strings.ToLower(out), "| project") {
		t.Errorf("expected markdown header '| Project':\n%s", out)
	}
	if !strings.Contains(out, "---") {
		t.Errorf("expected markdown separator:\n%s", out)
	}
	if !strings.Contains(out, "| HDFS") {
		t.Errorf("expected row 'HDFS':\n%s", out)
	}
}

func TestParseMode(t *testing.T) {
	if format.ParseMode("markdown") != format.Markdown {
		t.Error(`ParseMode("markdown") != Markdown`)
	}
	if format.ParseMode("text") != format.ASCII {
		t.Error(`ParseMode("text") != ASCII`)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{`{"filename":"HDFS-1.json"}`, 10, `{"filen...`},
		{"abcdef", 2, "ab"},
	}
	for _, tt := range tests {
		if got := format.Truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
