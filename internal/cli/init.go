package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/suykerbuyk/proofline/internal/config"
	"github.com/suykerbuyk/proofline/internal/help"
)

func init() {
	cmd := newCommand(help.CmdInit, "", runInit)
	cmd.Args = cobra.NoArgs
	cmd.Flags().String("project", "", "Seed the config with this project id")
	cmd.Flags().String("root", "", "Root directory of the seeded project")
	RootCmd.AddCommand(cmd)
}

func runInit(cmd *cobra.Command, args []string) {
	project, _ := cmd.Flags().GetString("project")
	root, _ := cmd.Flags().GetString("root")

	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		exitErr("resolve root", err)
	}
	if project == "" {
		project = filepath.Base(abs)
	}

	path, created, err := config.WriteDefault(project, abs)
	if err != nil {
		exitErr("init", err)
	}
	if !created {
		fmt.Fprintf(cmd.OutOrStdout(), "config exists: %s\n", config.CompressHome(path))
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created: %s (project %s at %s)\n", config.CompressHome(path), project, config.CompressHome(abs))
}
