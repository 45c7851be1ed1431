package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ricesearch/bugeval/internal/dataset"
	"github.com/ricesearch/bugeval/internal/judge"
)

func tallyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tally FILE...",
		Short: "Count judge verdicts per category",
		Long: `Count the root cause, fix suggestion, problem location and wrong information
verdicts of one or more judgement files. Reports on a skip list are left out.
With several files a combined total follows the per-file counts.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runTally,
	}
}

func runTally(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	skip := a.skipList()
	perFile := make(map[string]judge.Tally, len(args))
	var total judge.Tally

	for _, path := range args {
		records, rejected, err := dataset.LoadRecords[dataset.JudgementRecord](path)
		if err != nil {
			return err
		}
		logRejected(a.log, path, rejected)

		t, bad := judge.TallyRecords(records, skip)
		logRejected(a.log, path, bad)

		perFile[path] = t
		total = total.Merge(t)
	}

	if a.json() {
		out := map[string]any{"files": perFile}
		if len(args) > 1 {
			out["total"] = total
		}
		return a.writeJSON(out)
	}

	for _, path := range args {
		fmt.Fprintf(a.out, "File: %s\n", path)
		if err := perFile[path].Format(a.out); err != nil {
			return err
		}
		fmt.Fprintln(a.out)
	}
	if len(args) > 1 {
		fmt.Fprintln(a.out, "Total")
		return total.Format(a.out)
	}
	return nil
}
