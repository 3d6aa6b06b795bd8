package hooks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute_NoHandlersIsNoop(t *testing.T) {
	m := NewManager()
	assert.NoError(t, m.Execute(context.Background(), Event{Type: HookDeleting}))

	var nilManager *Manager
	assert.NoError(t, nilManager.Execute(context.Background(), Event{Type: HookDeleted}))
	assert.Zero(t, nilManager.Count(HookDeleted))
}

func TestExecute_RunsInOrder(t *testing.T) {
	m := NewManager()
	var calls []string
	m.Register(HookMoved, func(_ context.Context, ev Event) error {
		calls = append(calls, "first:"+ev.NewName)
		return nil
	})
	m.Register(HookMoved, func(_ context.Context, ev Event) error {
		calls = append(calls, "second:"+ev.OriginalPath)
		return nil
	})
	m.Register(HookMoving, func(context.Context, Event) error {
		calls = append(calls, "wrong hook")
		return nil
	})

	err := m.Execute(context.Background(), Event{Type: HookMoved, NewName: "dest", OriginalPath: "/src"})
	require.NoError(t, err)
	assert.Equal(t, []string{"first:dest", "second:/src"}, calls)
	assert.Equal(t, 2, m.Count(HookMoved))
}

func TestExecute_StopsAtFirstError(t *testing.T) {
	m := NewManager()
	boom := errors.New("boom")
	called := false
	m.Register(HookRenaming, func(context.Context, Event) error { return boom })
	m.Register(HookRenaming, func(context.Context, Event) error {
		called = true
		return nil
	})

	err := m.Execute(context.Background(), Event{Type: HookRenaming})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "hook renaming failed")
	assert.False(t, called)
}

func TestHookType_IsPost(t *testing.T) {
	tests := []struct {
		hook HookType
		want bool
	}{
		{HookRenaming, false},
		{HookRenamed, true},
		{HookMoving, false},
		{HookMoved, true},
		{HookCopying, false},
		{HookCopied, true},
		{HookDeleting, false},
		{HookDeleted, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.hook), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.hook.IsPost())
		})
	}
}
