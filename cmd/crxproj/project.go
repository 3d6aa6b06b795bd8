package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fyrsmithlabs/crxproject/internal/project"
	"github.com/fyrsmithlabs/crxproject/internal/view"
)

var (
	outputFormat string
	viewDepth    int
	targetName   string
	confirmed    bool
)

func init() {
	inspectCmd.Flags().StringVarP(&outputFormat, "output", "o", "yaml", "output format: yaml or json")
	viewCmd.Flags().IntVar(&viewDepth, "depth", 2, "levels below the project root to render")
	moveCmd.Flags().StringVar(&targetName, "name", "", "name at the destination (default: current name)")
	copyCmd.Flags().StringVar(&targetName, "name", "", "name at the destination (default: current name)")
	deleteCmd.Flags().BoolVar(&confirmed, "yes", false, "confirm deletion")

	rootCmd.AddCommand(inspectCmd, viewCmd, actionsCmd, renameCmd, moveCmd, copyCmd, deleteCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect DIR",
	Short: "Describe a project and its capabilities",
	Long: `Describe a project: its name, capabilities, commands and the files each
structural operation would cover if started now.

Examples:
  crxproj inspect ./my-app
  crxproj inspect ./my-app -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

var viewCmd = &cobra.Command{
	Use:   "view DIR",
	Short: "Render the project's logical view as a tree",
	Args:  cobra.ExactArgs(1),
	RunE:  runView,
}

var actionsCmd = &cobra.Command{
	Use:   "actions DIR",
	Short: "List the commands a project supports",
	Args:  cobra.ExactArgs(1),
	RunE:  runActions,
}

var renameCmd = &cobra.Command{
	Use:   "rename DIR NAME",
	Short: "Rename a project directory in place",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return invoke(cmd, args[0], project.CommandRename, project.Params{NewName: args[1]})
	},
}

var moveCmd = &cobra.Command{
	Use:   "move DIR DEST",
	Short: "Move a project into DEST",
	Long: `Move a project into the directory DEST. The project keeps its name
unless --name is given.

Examples:
  crxproj move ./my-app ../archive
  crxproj move ./my-app ../archive --name my-app-2024`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dest, err := absPath(args[1])
		if err != nil {
			return err
		}
		return invoke(cmd, args[0], project.CommandMove, project.Params{NewName: targetName, Destination: dest})
	},
}

var copyCmd = &cobra.Command{
	Use:   "copy DIR DEST",
	Short: "Copy a project into DEST",
	Long: `Copy a project into the directory DEST. Only the files the project
classifies for copying are carried over, which for this project kind is
none: the result is a fresh directory.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dest, err := absPath(args[1])
		if err != nil {
			return err
		}
		return invoke(cmd, args[0], project.CommandCopy, project.Params{NewName: targetName, Destination: dest})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete DIR",
	Short: "Delete a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirmed {
			return fmt.Errorf("refusing to delete %s without --yes", args[0])
		}
		return invoke(cmd, args[0], project.CommandDelete, project.Params{})
	},
}

func runInspect(cmd *cobra.Command, args []string) error {
	p, err := current.openProject(args[0])
	if err != nil {
		return err
	}
	info, err := project.Describe(p)
	if err != nil {
		return err
	}
	return writeInfo(cmd.OutOrStdout(), info, outputFormat)
}

// writeInfo encodes info as yaml or json.
func writeInfo(w io.Writer, info project.Info, format string) error {
	switch format {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(info); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	default:
		return fmt.Errorf("unknown output format %q (must be yaml or json)", format)
	}
}

func runView(cmd *cobra.Command, args []string) error {
	p, err := current.openProject(args[0])
	if err != nil {
		return err
	}
	out, err := view.Render(p.View().CreateView(cmd.Context()), viewDepth)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func runActions(cmd *cobra.Command, args []string) error {
	p, err := current.openProject(args[0])
	if err != nil {
		return err
	}
	actions := p.Actions()

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COMMAND\tENABLED")
	for _, c := range actions.SupportedCommands() {
		fmt.Fprintf(tw, "%s\t%t\n", c, actions.IsEnabled(c))
	}
	return tw.Flush()
}

// invoke runs command on the project at dir through its action dispatcher.
func invoke(cmd *cobra.Command, dir, command string, params project.Params) error {
	p, err := current.openProject(dir)
	if err != nil {
		return err
	}
	if err := p.Actions().Invoke(cmd.Context(), command, params); err != nil {
		return fmt.Errorf("%s %s: %w", command, dir, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", command, p.Path())
	return nil
}
