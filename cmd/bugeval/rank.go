package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ricesearch/bugeval/internal/dataset"
	"github.com/ricesearch/bugeval/internal/evaluation"
	"github.com/ricesearch/bugeval/internal/format"
)

func rankCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rank INPUT OUTPUT",
		Short: "Compute MAP, MRR and Top@N per project for ranked results",
		Long: `Read a ranked-results file (a JSON array of reports with their ranked
methods or files and ground truth) and write MAP, MRR and Top@N for every
configured project plus an Overall entry to OUTPUT.

A report belongs to every project whose name occurs in its filename.`,
		Args: cobra.ExactArgs(2),
		RunE: runRank,
	}

	cmd.Flags().IntSlice("top-n", nil, "Top@N thresholds (overrides config)")
	cmd.Flags().StringSlice("projects", nil, "projects to report (overrides config)")

	return cmd
}

func runRank(cmd *cobra.Command, args []string) error {
	input, output := args[0], args[1]
	topN, _ := cmd.Flags().GetIntSlice("top-n")
	projects, _ := cmd.Flags().GetStringSlice("projects")

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if len(topN) == 0 {
		topN = a.cfg.Ranking.TopN
	}
	if len(projects) == 0 {
		projects = a.cfg.Ranking.Projects
	}

	results, err := dataset.LoadRankedResults(input)
	if err != nil {
		return err
	}
	logRejected(a.log, input, results.Rejected)
	if results.Summary != nil {
		a.log.Debug("Ignoring retrieval summary entry", "file", input)
	}

	evaluator := evaluation.NewEvaluator(topN, a.log)
	report, err := evaluator.EvaluateProjects(results.Entries, projects)
	if err != nil {
		return err
	}

	if err := dataset.WriteJSON(output, report); err != nil {
		return err
	}
	a.log.Info("Project-wise metrics written", "output", output, "reports", len(results.Entries))

	if a.json() {
		return a.writeJSON(report)
	}

	thresholds := evaluator.Thresholds()
	header := []string{"Project", "MAP", "MRR"}
	for _, n := range thresholds {
		header = append(header, fmt.Sprintf("Top@%d", n))
	}
	header = append(header, "Cases")

	tb := a.table()
	tb.Header(header...)
	for _, p := range report.Projects {
		s := report.ByProject[p]
		row := []any{p, format.Score(s.MAP), format.Score(s.MRR)}
		for _, n := range thresholds {
			row = append(row, format.Score(s.TopN[n].Fraction))
		}
		tb.Row(append(row, s.TotalCases)...)
	}

	o := report.Overall
	footer := []any{evaluation.OverallKey, format.Score(o.Metrics.MAP), format.Score(o.Metrics.MRR)}
	for _, n := range thresholds {
		footer = append(footer, format.Score(o.Metrics.TopN[n]))
	}
	tb.Footer(append(footer, o.TotalCases)...)

	cols := make([]format.ColumnConfig, 0, len(header)-1)
	for i := 2; i <= len(header); i++ {
		cols = append(cols, format.ColumnConfig{Number: i, Align: format.AlignRight})
	}
	tb.Columns(cols...)

	a.writeTable(tb)
	return nil
}
