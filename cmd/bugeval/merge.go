package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ricesearch/bugeval/internal/dataset"
)

func mergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Join stack traces with their bug reports",
		Long: `Write one entry per stack trace that has a bug report of the same filename,
carrying both the stack trace and the report text.`,
		RunE: runMerge,
	}

	cmd.Flags().String("stack-traces", "", "stack traces JSON file (required)")
	cmd.Flags().String("bug-reports", "", "bug reports JSON file (required)")
	cmd.Flags().StringP("output", "o", "", "merged output file (required)")

	for _, name := range []string{"stack-traces", "bug-reports", "output"} {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", name, err))
		}
	}

	return cmd
}

func runMerge(cmd *cobra.Command, _ []string) error {
	tracesPath, _ := cmd.Flags().GetString("stack-traces")
	reportsPath, _ := cmd.Flags().GetString("bug-reports")
	output, _ := cmd.Flags().GetString("output")

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	traces, rejected, err := dataset.LoadRecords[dataset.StackTraceEntry](tracesPath)
	if err != nil {
		return err
	}
	logRejected(a.log, tracesPath, rejected)

	reports, rejected, err := dataset.LoadRecords[dataset.BugReportEntry](reportsPath)
	if err != nil {
		return err
	}
	logRejected(a.log, reportsPath, rejected)

	merged := dataset.MergeStackTraces(traces, reports)
	if err := dataset.WriteJSON(output, merged); err != nil {
		return err
	}

	if dropped := len(traces) - len(merged); dropped > 0 {
		a.log.Warn("Stack traces without a bug report", "count", dropped)
	}

	if a.json() {
		return a.writeJSON(map[string]any{"output": output, "merged": len(merged), "stack_traces": len(traces)})
	}
	fmt.Fprintf(a.out, "Merged %d of %d stack traces -> %s\n", len(merged), len(traces), output)
	return nil
}
