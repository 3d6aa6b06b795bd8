package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/crxproject/internal/workspace"
)

var scanDepth int

func init() {
	scanCmd.Flags().IntVar(&scanDepth, "max-depth", -1, "directory levels to descend (default from config, 0 = unlimited)")
	rootCmd.AddCommand(scanCmd, watchCmd)
}

var scanCmd = &cobra.Command{
	Use:   "scan ROOT",
	Short: "List project directories below ROOT",
	Long: `List every project directory below ROOT, ROOT included. Directories
matched by .gitignore or .crxignore in ROOT are skipped; without either,
node_modules and .git are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

var watchCmd = &cobra.Command{
	Use:   "watch ROOT",
	Short: "Report projects appearing and vanishing directly below ROOT",
	Long: `Watch ROOT and print a line whenever one of its direct subdirectories
becomes a project (manifest.json created) or stops being one. Runs until
interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func runScan(cmd *cobra.Command, args []string) error {
	root, err := absPath(args[0])
	if err != nil {
		return err
	}
	scanner := current.scanner
	if scanDepth >= 0 {
		scanner.MaxDepth = scanDepth
	}

	paths, err := scanner.Scan(cmd.Context(), root)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	root, err := absPath(args[0])
	if err != nil {
		return err
	}

	w, err := workspace.NewWatcher(root, current.cfg.Workspace.Debounce.Duration(), current.logger)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Start(ctx); err != nil {
		return err
	}
	current.logger.Info(ctx, "watching for projects", zap.String("root", w.Root()))

	for ev := range w.Events() {
		if ev.Kind == workspace.Vanished {
			current.manager.Forget(ev.Path)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", ev.Kind, ev.Path)
	}
	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
