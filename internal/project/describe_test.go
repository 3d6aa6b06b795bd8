package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	fs := newTestFs(t, "/ws/app/manifest.json", "/ws/app/src/", "/ws/app/README.md")
	p := loadProject(t, NewFactory(&fakeHost{}), fs, "/ws/app")

	info, err := Describe(p)
	require.NoError(t, err)

	assert.Equal(t, "/ws/app", info.Path)
	assert.Equal(t, "app", info.Name)
	assert.Equal(t, "app", info.DisplayName)
	assert.Equal(t, []string{
		"information", "view-decorator", "action-dispatcher",
		"move-operation", "copy-operation", "delete-operation",
	}, info.Capabilities)

	require.Len(t, info.Commands, 4)
	for _, c := range info.Commands {
		assert.True(t, c.Enabled, c.Name)
	}

	require.Len(t, info.Classification, 3)
	assert.Equal(t, 3, info.Classification["move-operation"].Len())
	assert.Equal(t, 0, info.Classification["copy-operation"].Len())
	assert.Equal(t, 3, info.Classification["delete-operation"].Len())
	assert.Empty(t, info.Classification["delete-operation"].Metadata)
}

func TestDescribe_Errors(t *testing.T) {
	_, err := Describe(nil)
	require.Error(t, err)

	fs := newTestFs(t, "/ws/app/manifest.json")
	p := loadProject(t, NewFactory(&fakeHost{}), fs, "/ws/app")
	require.NoError(t, fs.RemoveAll("/ws/app"))

	_, err = Describe(p)
	require.Error(t, err)
}
