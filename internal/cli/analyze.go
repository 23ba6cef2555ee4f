package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/suykerbuyk/proofline/internal/help"
	"github.com/suykerbuyk/proofline/internal/pipeline"
)

func init() {
	cmd := newCommand(help.CmdAnalyze, "", runAnalyze)

	cmd.Flags().StringP("timeline", "t", "", "Normalized timeline JSONL (.zst accepted)")
	cmd.Flags().String("raw", "", "Raw connector events JSONL")
	cmd.Flags().StringP("project", "p", "", "Project id or fuzzy name")
	cmd.Flags().Bool("all", false, "Scope to every configured project")
	cmd.Flags().String("since", "", "Range start")
	cmd.Flags().String("until", "", "Range end")
	cmd.Flags().StringP("query", "q", "", "Question recorded with the report")
	cmd.Flags().StringP("out", "o", "", "Report file (.zst compresses); default stdout")
	cmd.Flags().StringP("format", "f", "json", "Output format: json or md")
	cmd.Flags().Bool("save", false, "Store the report in the run history")
	cmd.MarkFlagRequired("timeline")
	cmd.MarkFlagsMutuallyExclusive("project", "all")

	RootCmd.AddCommand(cmd)
}

func runAnalyze(cmd *cobra.Command, args []string) {
	timelinePath, _ := cmd.Flags().GetString("timeline")
	rawPath, _ := cmd.Flags().GetString("raw")
	project, _ := cmd.Flags().GetString("project")
	all, _ := cmd.Flags().GetBool("all")
	since, _ := cmd.Flags().GetString("since")
	until, _ := cmd.Flags().GetString("until")
	query, _ := cmd.Flags().GetString("query")
	out, _ := cmd.Flags().GetString("out")
	save, _ := cmd.Flags().GetBool("save")
	format, _ := cmd.Flags().GetString("format")

	cfg := activeConfig

	rng, err := parseRange(since, until, time.Now())
	if err != nil {
		exitErr("analyze", err)
	}

	rep, err := pipeline.Run(cmd.Context(), pipeline.Options{
		Config:       cfg,
		TimelinePath: timelinePath,
		RawPath:      rawPath,
		Project:      project,
		AllProjects:  all,
		Range:        rng,
		Query:        query,
	})
	if err != nil {
		exitErr("analyze", err)
	}

	if save {
		s, err := openStore(cfg)
		if err != nil {
			exitErr("open store", err)
		}
		defer s.Close()
		run, err := s.SaveRun(cmd.Context(), rep)
		if err != nil {
			exitErr("save run", err)
		}
		fmt.Fprintf(os.Stderr, "saved run %s\n", run.ID)
	}

	if err := emitReport(cmd.OutOrStdout(), rep, out, format); err != nil {
		exitErr("write report", err)
	}
}
