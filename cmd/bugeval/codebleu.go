package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ricesearch/bugeval/internal/ast"
	"github.com/ricesearch/bugeval/internal/pipeline"
	"github.com/ricesearch/bugeval/internal/pkg/errors"
	"github.com/ricesearch/bugeval/internal/similarity"
	"github.com/ricesearch/bugeval/internal/source"
)

func codebleuCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "codebleu",
		Short: "Score proposed fixes against the ground-truth methods",
		Long: `Match every proposed method of every generated bug report to a ground-truth
method, read that method at the report's fix commit and compute the composite
CodeBLEU score of the pair.

Repositories, the code-changes commit index and the output path come from the
codebleu section of the config. The output is rewritten after every report.`,
		RunE: runCodeBLEU,
	}

	cmd.Flags().StringP("project", "p", "", "only score this repository")
	cmd.Flags().StringP("output", "o", "", "output file (overrides config)")
	cmd.Flags().Int("workers", 0, "reports scored in parallel (overrides config)")

	return cmd
}

func runCodeBLEU(cmd *cobra.Command, _ []string) error {
	project, _ := cmd.Flags().GetString("project")
	output, _ := cmd.Flags().GetString("output")
	workers, _ := cmd.Flags().GetInt("workers")

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	cfg := a.cfg.CodeBLEU
	if len(cfg.Repositories) == 0 {
		return errors.ValidationError("no repositories configured under codebleu.repositories")
	}
	if output == "" {
		output = cfg.Output
	}
	if workers <= 0 {
		workers = cfg.Workers
	}

	commits, err := source.LoadCommitIndex(cfg.CodeChanges)
	if err != nil {
		return err
	}
	a.log.Info("Loaded commit index", "path", cfg.CodeChanges, "keys", commits.Len())

	c, err := a.openCache()
	if err != nil {
		return err
	}

	extractor := ast.NewExtractor()
	a.log.Debug("Method extractor", "name", extractor.Name())

	projects, err := pipeline.LoadProjects(cfg.Repositories, project, extractor, c, a.log)
	if err != nil {
		return err
	}

	b, err := a.openBus()
	if err != nil {
		return err
	}

	var weights similarity.Weights
	copy(weights[:], a.cfg.Scoring.Weights)

	runner := pipeline.NewRunner(similarity.NewScorer(weights), commits,
		pipeline.Config{Workers: workers, Skip: a.skipList()},
		pipeline.WithLogger(a.log),
		pipeline.WithMetrics(a.metrics),
		pipeline.WithBus(b, a.runID),
	)

	summary, err := runner.Run(cmd.Context(), projects, output)
	if err != nil {
		return err
	}

	skips := make(map[string]int, len(summary.Skips))
	for reason, n := range summary.Skips {
		skips[reason.String()] = n
	}

	if a.json() {
		return a.writeJSON(map[string]any{
			"output":        output,
			"reports":       summary.Reports,
			"pairs":         len(summary.Records),
			"mean_codebleu": summary.MeanCodeBLEU,
			"skipped":       skips,
		})
	}

	fmt.Fprintf(a.out, "Scored %d pairs from %d reports -> %s\n", len(summary.Records), summary.Reports, output)
	fmt.Fprintf(a.out, "Average CodeBLEU score: %.4f\n", summary.MeanCodeBLEU)
	for _, reason := range pipeline.SkipReasons {
		if n := skips[reason.String()]; n > 0 {
			fmt.Fprintf(a.out, "  skipped %-24s %d\n", reason.String()+":", n)
		}
	}
	return nil
}
