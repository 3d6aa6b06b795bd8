package lifecycle

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fyrsmithlabs/crxproject/internal/project"
)

// Command is a structural operation kind.
type Command string

// Commands.
const (
	Rename Command = project.CommandRename
	Move   Command = project.CommandMove
	Copy   Command = project.CommandCopy
	Delete Command = project.CommandDelete
)

// ErrNilProject is returned when a descriptor has no project.
var ErrNilProject = errors.New("project is nil")

// ParseCommand matches s case-insensitively against the known commands.
func ParseCommand(s string) (Command, error) {
	switch c := Command(strings.ToLower(s)); c {
	case Rename, Move, Copy, Delete:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", project.ErrInvalidCommand, s)
}

// Descriptor describes one invocation of a structural operation. It lives
// only as long as that invocation.
type Descriptor struct {
	ID          string           `json:"id"`
	Command     Command          `json:"command"`
	NewName     string           `json:"new_name,omitempty"`
	Destination string           `json:"destination,omitempty"`
	Project     *project.Project `json:"-"`
	CreatedAt   time.Time        `json:"created_at"`
}

// NewDescriptor creates a descriptor with a fresh id.
func NewDescriptor(cmd Command, p *project.Project, params project.Params) (*Descriptor, error) {
	if p == nil {
		return nil, ErrNilProject
	}
	if _, err := ParseCommand(string(cmd)); err != nil {
		return nil, err
	}
	return &Descriptor{
		ID:          uuid.New().String(),
		Command:     cmd,
		NewName:     params.NewName,
		Destination: params.Destination,
		Project:     p,
		CreatedAt:   time.Now(),
	}, nil
}
