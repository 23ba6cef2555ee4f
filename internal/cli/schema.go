package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/suykerbuyk/proofline/internal/help"
	"github.com/suykerbuyk/proofline/internal/report"
)

func init() {
	cmd := newCommand(help.CmdSchema, "", runSchema)
	cmd.Args = cobra.NoArgs
	RootCmd.AddCommand(cmd)
}

func runSchema(cmd *cobra.Command, args []string) {
	b, err := json.MarshalIndent(report.Schema(), "", "  ")
	if err != nil {
		exitErr("schema", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}
