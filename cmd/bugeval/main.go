// Package main provides the bugeval binary: CodeBLEU scoring of generated
// fixes, ranked-retrieval metrics and LLM judging of bug reports.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bugeval",
		Short: "Evaluate generated bug reports and fixes",
		Long: `bugeval scores LLM-generated bug reports against historical fix data.

  codebleu  score proposed method bodies against the fixed methods
  rank      MAP, MRR and Top@N of ranked retrieval results per project
  judge     grade bug reports with an LLM judge
  tally     count judge verdicts per category

Run 'bugeval <command> --help' for the flags of each command.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("format", "text", "output format (text, json, markdown)")

	rootCmd.AddCommand(
		codebleuCmd(),
		rankCmd(),
		judgeCmd(),
		tallyCmd(),
		mergeCmd(),
		framesCmd(),
		eventsCmd(),
		versionCmd(),
	)

	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "bugeval %s\n", version)
			fmt.Fprintf(out, "  commit: %s\n", commit)
			fmt.Fprintf(out, "  built:  %s\n", date)
		},
	}
}
