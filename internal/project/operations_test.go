package project

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/crxproject/internal/hooks"
	"github.com/fyrsmithlabs/crxproject/internal/logging"
)

func TestDeleteOperation_ClassifiesDirectChildren(t *testing.T) {
	fs := newTestFs(t, "/proj/manifest.json", "/proj/a", "/proj/b", "/proj/c")
	p := loadProject(t, NewFactory(nil), fs, "/proj")

	set, err := p.DeleteOperation().Classify()
	require.NoError(t, err)
	assert.NotNil(t, set.Metadata)
	assert.Empty(t, set.Metadata)
	assert.Equal(t, []string{"a", "b", "c", "manifest.json"}, names(set.Data))
	assert.Equal(t, 4, set.Len())
}

func TestOperations_NonRecursive(t *testing.T) {
	fs := newTestFs(t,
		"/proj/manifest.json",
		"/proj/js/background.js",
		"/proj/js/lib/util.js",
		"/proj/_locales/en/messages.json",
	)
	p := loadProject(t, NewFactory(nil), fs, "/proj")

	for _, op := range []Operation{p.MoveOperation(), p.DeleteOperation()} {
		set, err := op.Classify()
		require.NoError(t, err)
		assert.Equal(t, []string{"_locales", "js", "manifest.json"}, names(set.Data), op.Kind().String())
		assert.True(t, set.Data[0].IsDir)
		assert.Equal(t, "/proj/js", set.Data[1].Path)
	}
}

func TestCopyOperation_ClassifiesNothing(t *testing.T) {
	fs := newTestFs(t, "/proj/manifest.json", "/proj/a.js", "/proj/lib/")
	p := loadProject(t, NewFactory(nil), fs, "/proj")

	set, err := p.CopyOperation().Classify()
	require.NoError(t, err)
	assert.NotNil(t, set.Metadata)
	assert.NotNil(t, set.Data)
	assert.Zero(t, set.Len())
}

func TestClassify_IsSnapshot(t *testing.T) {
	fs := newTestFs(t, "/proj/manifest.json", "/proj/a.js")
	p := loadProject(t, NewFactory(nil), fs, "/proj")

	set, err := p.MoveOperation().Classify()
	require.NoError(t, err)

	require.NoError(t, afero.WriteFile(fs, "/proj/late.js", []byte("x"), 0o644))
	require.NoError(t, fs.Remove("/proj/a.js"))

	assert.Equal(t, []string{"a.js", "manifest.json"}, names(set.Data))

	again, err := p.MoveOperation().Classify()
	require.NoError(t, err)
	assert.Equal(t, []string{"late.js", "manifest.json"}, names(again.Data))
}

func TestClassify_ListingFailure(t *testing.T) {
	fs := newTestFs(t, "/proj/manifest.json", "/proj/a.js")
	p := loadProject(t, NewFactory(nil), fs, "/proj")
	require.NoError(t, fs.RemoveAll("/proj"))

	for _, op := range []Operation{p.MoveOperation(), p.DeleteOperation()} {
		set, err := op.Classify()
		assert.Error(t, err, op.Kind().String())
		assert.Zero(t, set.Len())
	}
}

func TestNotify_DispatchesHooks(t *testing.T) {
	fs := newTestFs(t, "/proj/manifest.json")
	mgr := hooks.NewManager()
	var events []hooks.Event
	record := func(_ context.Context, ev hooks.Event) error {
		events = append(events, ev)
		return nil
	}
	for _, h := range []hooks.HookType{
		hooks.HookRenaming, hooks.HookRenamed,
		hooks.HookMoving, hooks.HookMoved,
		hooks.HookCopying, hooks.HookCopied,
		hooks.HookDeleting, hooks.HookDeleted,
	} {
		mgr.Register(h, record)
	}

	p := loadProject(t, NewFactory(nil, WithHooks(mgr)), fs, "/proj")
	ctx := logging.WithOperation(context.Background(), "op-1", "move")

	require.NoError(t, p.MoveOperation().NotifyRenaming(ctx, "next"))
	require.NoError(t, p.MoveOperation().NotifyRenamed(ctx, "next"))
	require.NoError(t, p.MoveOperation().NotifyMoving(ctx))
	require.NoError(t, p.MoveOperation().NotifyMoved(ctx, p, "/old/proj", "proj"))
	require.NoError(t, p.CopyOperation().NotifyCopying(ctx))
	require.NoError(t, p.CopyOperation().NotifyCopied(ctx, p, "/proj", "dup"))
	require.NoError(t, p.DeleteOperation().NotifyDeleting(ctx))
	require.NoError(t, p.DeleteOperation().NotifyDeleted(ctx))

	require.Len(t, events, 8)
	for _, ev := range events {
		assert.Equal(t, "op-1", ev.OperationID)
		assert.Equal(t, "/proj", ev.ProjectPath)
	}
	assert.Equal(t, hooks.Event{
		Type:         hooks.HookMoved,
		ProjectPath:  "/proj",
		OperationID:  "op-1",
		OriginalPath: "/old/proj",
		NewName:      "proj",
	}, events[3])
	assert.Equal(t, "next", events[0].NewName)
	assert.Equal(t, "dup", events[5].NewName)
}

func TestNotify_DefaultIsNoop(t *testing.T) {
	fs := newTestFs(t, "/proj/manifest.json")
	p := loadProject(t, NewFactory(nil), fs, "/proj")
	ctx := context.Background()

	assert.NoError(t, p.DeleteOperation().NotifyDeleting(ctx))
	assert.NoError(t, p.DeleteOperation().NotifyDeleted(ctx))
	assert.NoError(t, p.CopyOperation().NotifyCopying(ctx))
}

func TestNotify_HookError(t *testing.T) {
	fs := newTestFs(t, "/proj/manifest.json")
	mgr := hooks.NewManager()
	boom := errors.New("boom")
	mgr.Register(hooks.HookDeleting, func(context.Context, hooks.Event) error { return boom })

	p := loadProject(t, NewFactory(nil, WithHooks(mgr)), fs, "/proj")
	err := p.DeleteOperation().NotifyDeleting(context.Background())
	assert.ErrorIs(t, err, boom)
}
