package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ricesearch/bugeval/internal/dataset"
	"github.com/ricesearch/bugeval/internal/judge"
	"github.com/ricesearch/bugeval/internal/pkg/errors"
)

func judgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "judge",
		Short: "Grade bug reports with an LLM judge",
		Long: `Ask an LLM to grade every bug report for root cause, fix suggestion,
problem location and wrong information, given the ground-truth methods, the
fix diff and the methods on the stack trace.

Judgements are written to --output after each report. Reports already present
in the output are not judged again, so an interrupted run can be restarted.
The API key is read from GEMINI_API_KEY.`,
		RunE: runJudge,
	}

	cmd.Flags().String("reports", "", "bug reports JSON file (required)")
	cmd.Flags().String("ground-truth", "", "ground-truth methods JSON file (required)")
	cmd.Flags().String("code-diff", "", "code diff JSON file")
	cmd.Flags().String("source-code", "", "stack-trace source code JSON file")
	cmd.Flags().StringP("output", "o", "", "judgement output file (required)")
	cmd.Flags().String("model", "", "model name (overrides config)")

	for _, name := range []string{"reports", "ground-truth", "output"} {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", name, err))
		}
	}

	return cmd
}

func runJudge(cmd *cobra.Command, _ []string) error {
	reportsPath, _ := cmd.Flags().GetString("reports")
	gtPath, _ := cmd.Flags().GetString("ground-truth")
	diffPath, _ := cmd.Flags().GetString("code-diff")
	sourcePath, _ := cmd.Flags().GetString("source-code")
	output, _ := cmd.Flags().GetString("output")
	model, _ := cmd.Flags().GetString("model")

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if model == "" {
		model = a.cfg.Judge.Model
	}
	if a.cfg.Judge.APIKey == "" {
		return errors.ValidationError("GEMINI_API_KEY is not set")
	}

	in, err := loadJudgeInputs(a, reportsPath, gtPath, diffPath, sourcePath)
	if err != nil {
		return err
	}

	client, err := judge.NewGeminiClient(cmd.Context(), a.cfg.Judge.APIKey, model)
	if err != nil {
		return err
	}
	defer client.Close()

	b, err := a.openBus()
	if err != nil {
		return err
	}

	runner := judge.NewRunner(client, judge.RunnerConfig{
		RequestsPerMinute: a.cfg.Judge.RequestsPerMinute,
		Timeout:           time.Duration(a.cfg.Judge.Timeout) * time.Second,
		Skip:              a.skipList(),
	}, judge.WithLogger(a.log), judge.WithMetrics(a.metrics), judge.WithBus(b, a.runID))

	a.log.Info("Judging bug reports", "reports", len(in.Reports), "model", model, "output", output)
	summary, err := runner.Run(cmd.Context(), in, output)
	if err != nil {
		return err
	}

	if a.json() {
		return a.writeJSON(map[string]any{
			"output":  output,
			"judged":  summary.Judged,
			"resumed": summary.Resumed,
			"skipped": summary.Skipped,
			"failed":  summary.Failed,
			"tally":   summary.Tally,
		})
	}

	fmt.Fprintf(a.out, "Judged %d reports (%d resumed, %d skipped, %d failed) -> %s\n",
		summary.Judged, summary.Resumed, summary.Skipped, summary.Failed, output)
	return summary.Tally.Format(a.out)
}

func loadJudgeInputs(a *app, reportsPath, gtPath, diffPath, sourcePath string) (judge.Inputs, error) {
	var in judge.Inputs

	reports, rejected, err := dataset.LoadRecords[dataset.BugReportEntry](reportsPath)
	if err != nil {
		return in, err
	}
	logRejected(a.log, reportsPath, rejected)
	in.Reports = reports

	if in.GroundTruth, err = dataset.LoadGroundTruth(gtPath); err != nil {
		return in, err
	}

	in.CodeDiffs = map[string]json.RawMessage{}
	if diffPath != "" {
		diffs, rejected, err := dataset.LoadRecords[dataset.CodeDiffEntry](diffPath)
		if err != nil {
			return in, err
		}
		logRejected(a.log, diffPath, rejected)
		in.CodeDiffs = judge.IndexCodeDiffs(diffs)
	}

	in.SourceCode = map[string]json.RawMessage{}
	if sourcePath != "" {
		sources, rejected, err := dataset.LoadRecords[dataset.SourceCodeEntry](sourcePath)
		if err != nil {
			return in, err
		}
		logRejected(a.log, sourcePath, rejected)
		in.SourceCode = judge.IndexSourceCode(sources)
	}

	return in, nil
}
