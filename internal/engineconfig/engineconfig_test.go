package engineconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissingFileGivesDefaults(t *testing.T) {
	p, err := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Equal(t, Default(), p)
}

func TestInvalidFileGivesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rigsim.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	p, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), p)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "rigsim.json")
	want := Default()
	want.ShowFPS = true
	want.FootMarkers = false
	want.LastScenario = "scenarios/scripted-turn.yaml"
	require.NoError(t, SaveTo(path, want))

	got, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPartialFileKeepsOtherDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rigsim.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"show_fps": true}`), 0644))
	p, err := LoadFrom(path)
	require.NoError(t, err)
	assert.True(t, p.ShowFPS)
	assert.True(t, p.GridVisible)
	assert.Equal(t, float32(5), p.CameraDistance)
}
