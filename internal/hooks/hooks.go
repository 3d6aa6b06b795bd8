package hooks

import (
	"context"
	"fmt"
	"sync"
)

// HookType represents a lifecycle notification.
type HookType string

const (
	// HookRenaming fires before a project directory is renamed.
	HookRenaming HookType = "renaming"

	// HookRenamed fires after a project directory was renamed.
	HookRenamed HookType = "renamed"

	// HookMoving fires before a project is moved.
	HookMoving HookType = "moving"

	// HookMoved fires after a project was moved.
	HookMoved HookType = "moved"

	// HookCopying fires before a project is copied.
	HookCopying HookType = "copying"

	// HookCopied fires after a project was copied.
	HookCopied HookType = "copied"

	// HookDeleting fires before a project is deleted.
	HookDeleting HookType = "deleting"

	// HookDeleted fires after a project was deleted.
	HookDeleted HookType = "deleted"
)

// IsPost reports whether the hook fires after host I/O.
func (h HookType) IsPost() bool {
	switch h {
	case HookRenamed, HookMoved, HookCopied, HookDeleted:
		return true
	}
	return false
}

// Event describes a single notification.
type Event struct {
	Type HookType

	// ProjectPath is the project root when the hook fired.
	ProjectPath string

	// OperationID correlates pre and post hooks of one invocation.
	OperationID string

	// NewName is set for renamed, moved and copied.
	NewName string

	// OriginalPath is the root before a move or copy.
	OriginalPath string
}

// Handler handles a hook event.
type Handler func(ctx context.Context, ev Event) error

// Manager manages lifecycle hooks.
type Manager struct {
	mu       sync.RWMutex
	handlers map[HookType][]Handler
}

// NewManager creates an empty hook manager.
func NewManager() *Manager {
	return &Manager{
		handlers: make(map[HookType][]Handler),
	}
}

// Register registers a handler for a hook type.
func (m *Manager) Register(hookType HookType, handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[hookType] = append(m.handlers[hookType], handler)
}

// Execute runs all handlers for the event's hook type in registration
// order and stops at the first failure. A nil manager is a no-op.
func (m *Manager) Execute(ctx context.Context, ev Event) error {
	if m == nil {
		return nil
	}

	m.mu.RLock()
	handlers := append([]Handler(nil), m.handlers[ev.Type]...)
	m.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(ctx, ev); err != nil {
			return fmt.Errorf("hook %s failed: %w", ev.Type, err)
		}
	}

	return nil
}

// Count returns the number of handlers registered for a hook type.
func (m *Manager) Count(hookType HookType) int {
	if m == nil {
		return 0
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.handlers[hookType])
}
