package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/suykerbuyk/proofline/internal/help"
	"github.com/suykerbuyk/proofline/internal/stats"
)

func init() {
	runsCmd := newCommand(help.CmdRuns, "", runRunsList)
	addListFlags(runsCmd)

	list := newCommand(help.CmdRunsList, "", runRunsList)
	addListFlags(list)

	show := newCommand(help.CmdRunsShow, "show <id>", runRunsShow)
	show.Args = cobra.ExactArgs(1)
	show.Flags().StringP("out", "o", "", "Write the report here instead of stdout")
	show.Flags().StringP("format", "f", "json", "Output format: json or md")

	st := newCommand(help.CmdRunsStats, "", runRunsStats)
	st.Args = cobra.NoArgs
	st.Flags().String("client", "", "Only runs of this client")

	rm := newCommand(help.CmdRunsRm, "rm <id>", runRunsRm)
	rm.Args = cobra.ExactArgs(1)

	runsCmd.AddCommand(list, show, st, rm)
	RootCmd.AddCommand(runsCmd)
}

func addListFlags(cmd *cobra.Command) {
	cmd.Flags().String("client", "", "Only runs of this client")
	cmd.Flags().IntP("limit", "l", 20, "Max results")
	cmd.Flags().StringP("format", "f", "json", "Output format: json or text")
}

func runRunsList(cmd *cobra.Command, args []string) {
	client, _ := cmd.Flags().GetString("client")
	limit, _ := cmd.Flags().GetInt("limit")
	format, _ := cmd.Flags().GetString("format")

	s, err := openStore(activeConfig)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	runs, err := s.ListRuns(cmd.Context(), client, limit)
	if err != nil {
		exitErr("list runs", err)
	}

	if format == "text" {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCREATED\tCLIENT\tSCOPE\tEVIDENCE\tMAJOR\tDELTAS")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
				r.ID, humanize.Time(r.CreatedAt), r.Client, r.Scope,
				r.Stats.Evidence, r.Stats.MajorEvents, r.Stats.Deltas)
		}
		w.Flush()
		return
	}

	b, _ := json.MarshalIndent(runs, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}

func runRunsShow(cmd *cobra.Command, args []string) {
	out, _ := cmd.Flags().GetString("out")
	format, _ := cmd.Flags().GetString("format")

	s, err := openStore(activeConfig)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	rep, err := s.GetRun(cmd.Context(), args[0])
	if err != nil {
		exitErr("show run", err)
	}
	if err := emitReport(cmd.OutOrStdout(), rep, out, format); err != nil {
		exitErr("write report", err)
	}
}

func runRunsStats(cmd *cobra.Command, args []string) {
	client, _ := cmd.Flags().GetString("client")

	s, err := openStore(activeConfig)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	runs, err := s.ListRuns(cmd.Context(), client, -1)
	if err != nil {
		exitErr("list runs", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), stats.Format(stats.Compute(runs, client), client))
}

func runRunsRm(cmd *cobra.Command, args []string) {
	s, err := openStore(activeConfig)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.DeleteRun(cmd.Context(), args[0]); err != nil {
		exitErr("remove run", err)
	}
	fmt.Fprintf(os.Stderr, "removed %s\n", args[0])
}
