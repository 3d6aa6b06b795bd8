// Package main implements the crxproj CLI for inspecting and restructuring
// manifest-marked project directories.
package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/crxproject/internal/logging"
)

var (
	// configPath overrides the default config file location
	configPath string
	// logLevel overrides logging.level from the config
	logLevel string
	// version information
	version = "dev"

	// newFs returns the filesystem commands operate on.
	newFs = afero.NewOsFs
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "crxproj",
	Short: "Inspect and restructure project directories",
	Long: `crxproj works with project directories: any directory containing a
manifest.json file. It can describe a project, render its tree, and rename,
move, copy or delete it, running every registered lifecycle hook on the way.

It can also discover projects below a root, watch a root for projects
appearing and vanishing, and serve a workspace over HTTP or MCP.`,
	Version:            version,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/crxproject/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: "+strings.Join(logging.LevelNames, ", "))
}
