package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ricesearch/bugeval/internal/dataset"
	"github.com/ricesearch/bugeval/internal/pkg/errors"
)

func framesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "frames FILE",
		Short: "Print the fully qualified methods of stack trace frames",
		Long: `Extract pkg.Class.method from every frame of a stack trace. FILE is either a
stack traces JSON file, in which case the frames of every entry are listed
under its filename, or a plain-text stack trace.`,
		Args: cobra.ExactArgs(1),
		RunE: runFrames,
	}

	cmd.Flags().Bool("all", false, "keep repeated frames")

	return cmd
}

type frameList struct {
	Filename string   `json:"filename,omitempty"`
	Frames   []string `json:"frames"`
}

func runFrames(cmd *cobra.Command, args []string) error {
	path := args[0]
	all, _ := cmd.Flags().GetBool("all")

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	extract := dataset.UniqueFramePaths
	if all {
		extract = dataset.ExtractFramePaths
	}

	var lists []frameList
	entries, rejected, err := dataset.LoadRecords[dataset.StackTraceEntry](path)
	switch {
	case err == nil:
		logRejected(a.log, path, rejected)
		for _, e := range entries {
			lists = append(lists, frameList{Filename: e.Filename, Frames: orEmpty(extract(dataset.Text(e.StackTrace)))})
		}
	case errors.IsMalformed(err):
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		lists = append(lists, frameList{Frames: orEmpty(extract(string(data)))})
	default:
		return err
	}

	if a.json() {
		return a.writeJSON(lists)
	}
	for _, l := range lists {
		if l.Filename != "" {
			fmt.Fprintf(a.out, "%s:\n", l.Filename)
		}
		for _, f := range l.Frames {
			if l.Filename != "" {
				fmt.Fprint(a.out, "  ")
			}
			fmt.Fprintln(a.out, f)
		}
	}
	return nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
