// Package cli implements the proofline commands.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/suykerbuyk/proofline/internal/config"
	"github.com/suykerbuyk/proofline/internal/help"
	"github.com/suykerbuyk/proofline/internal/store"
)

var (
	configPath string
	verbose    bool

	activeConfig     config.Config
	activeConfigPath string
)

// docs maps a command path below the root ("runs show") to its help text.
var docs = map[string]help.Command{}

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:           "proofline",
	Short:         help.TopLevel.Synopsis,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		activeConfig, activeConfigPath = cfg, path
		setupLogging(cfg.Log, verbose, cmd.ErrOrStderr())
		return nil
	},
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ~/.config/proofline/config.toml)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging on stderr")
	RootCmd.CompletionOptions.DisableDefaultCmd = true
	RootCmd.SetHelpFunc(helpFunc)
	RootCmd.Version = help.Version
	RootCmd.SetVersionTemplate("proofline {{.Version}}\n")
}

// newCommand builds a cobra command whose texts come from doc.
func newCommand(doc help.Command, use string, run func(*cobra.Command, []string)) *cobra.Command {
	docs[doc.Name] = doc
	if use == "" {
		use = doc.Leaf()
	}
	return &cobra.Command{
		Use:     use,
		Short:   doc.Brief,
		Long:    doc.Description,
		Example: doc.Example(),
		Run:     run,
	}
}

func helpFunc(cmd *cobra.Command, _ []string) {
	name := strings.TrimSpace(strings.TrimPrefix(cmd.CommandPath(), RootCmd.Name()))
	if doc, ok := docs[name]; ok {
		fmt.Fprint(cmd.OutOrStdout(), help.FormatTerminal(doc))
		return
	}
	fmt.Fprint(cmd.OutOrStdout(), help.FormatUsage(help.TopLevel, help.Subcommands))
}

// loadConfig reads --config when given, else the standard location. It
// returns the path actually read, "" when running on defaults.
func loadConfig() (config.Config, string, error) {
	if configPath != "" {
		cfg, err := config.LoadFile(configPath)
		return cfg, configPath, err
	}
	cfg, err := config.Load()
	return cfg, config.Path(), err
}

func openStore(cfg config.Config) (*store.SQLiteStore, error) {
	if !cfg.Store.Enabled {
		return nil, fmt.Errorf("run store is disabled (store.enabled = false)")
	}
	return store.NewSQLiteStore(cfg.Store.Path)
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
