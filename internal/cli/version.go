package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/suykerbuyk/proofline/internal/help"
	"github.com/suykerbuyk/proofline/internal/report"
)

func init() {
	cmd := newCommand(help.CmdVersion, "", func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "proofline %s (report schema v%d)\n", help.Version, report.SchemaVersion)
	})
	cmd.Args = cobra.NoArgs
	RootCmd.AddCommand(cmd)
}
