package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/suykerbuyk/proofline/internal/check"
	"github.com/suykerbuyk/proofline/internal/help"
)

func init() {
	cmd := newCommand(help.CmdCheck, "", runCheck)
	cmd.Args = cobra.NoArgs
	RootCmd.AddCommand(cmd)
}

func runCheck(cmd *cobra.Command, args []string) {
	r := check.Run(activeConfig, activeConfigPath)
	fmt.Fprint(cmd.OutOrStdout(), r.Format())
	if r.HasFailures() {
		os.Exit(1)
	}
}
