package project

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Supported commands.
const (
	CommandRename = "rename"
	CommandMove   = "move"
	CommandCopy   = "copy"
	CommandDelete = "delete"
)

var supportedCommands = []string{CommandRename, CommandMove, CommandCopy, CommandDelete}

// ActionDispatcher routes structural commands to the host.
type ActionDispatcher struct {
	project *Project
}

// Kind implements Capability.
func (a *ActionDispatcher) Kind() Kind { return KindActionDispatcher }

// Project implements Capability.
func (a *ActionDispatcher) Project() *Project { return a.project }

// SupportedCommands returns rename, move, copy and delete.
func (a *ActionDispatcher) SupportedCommands() []string {
	return append([]string(nil), supportedCommands...)
}

// IsEnabled reports whether command is one of the supported commands.
// The match is exact.
func (a *ActionDispatcher) IsEnabled(command string) bool {
	for _, c := range supportedCommands {
		if c == command {
			return true
		}
	}
	return false
}

// Invoke runs the host's default operation for command, matched
// case-insensitively. Unsupported commands fail with ErrInvalidCommand.
func (a *ActionDispatcher) Invoke(ctx context.Context, command string, params Params) error {
	normalized := strings.ToLower(command)
	if !a.IsEnabled(normalized) {
		return fmt.Errorf("%w: %q", ErrInvalidCommand, command)
	}

	host := a.project.factory.host
	if host == nil {
		return ErrNoHost
	}

	a.project.Logger().Debug(ctx, "dispatching command",
		zap.String("command", normalized),
		zap.String("path", a.project.Path()),
	)

	switch normalized {
	case CommandRename:
		return host.Rename(ctx, a.project, params.NewName)
	case CommandMove:
		return host.Move(ctx, a.project, params)
	case CommandCopy:
		return host.Copy(ctx, a.project, params)
	default:
		return host.Delete(ctx, a.project)
	}
}
