package main

import (
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDecode(t *testing.T) {
	config := defaultConfig()
	_, err := toml.Decode(`
save_directory = "/maps/fleet"
grid_size_meters = 0.5
snap_to_grid = true
start_tool = "add"
`, config)
	require.NoError(t, err)

	assert.Equal(t, "/maps/fleet", config.SaveDirectory)
	assert.Equal(t, 0.5, config.GridSizeMeters)
	assert.True(t, config.SnapToGrid)
	assert.Equal(t, ToolAddNode, config.startTool())
}

func TestConfigStartTool(t *testing.T) {
	cases := map[string]Tool{
		"select":    ToolSelect,
		"add":       ToolAddNode,
		"add node":  ToolAddNode,
		"path":      ToolDrawPath,
		"draw path": ToolDrawPath,
		"delete":    ToolDelete,
		"measure":   ToolMeasure,
		"bogus":     ToolSelect,
		"":          ToolSelect,
	}
	for name, want := range cases {
		c := Config{StartTool: name}
		assert.Equal(t, want, c.startTool(), "start_tool=%q", name)
	}
}

func TestConfigSavePath(t *testing.T) {
	t.Run("no save directory", func(t *testing.T) {
		c := Config{}
		assert.Equal(t, "fleet.json", c.GetSavePath("fleet.json"))
	})

	t.Run("absolute filenames pass through", func(t *testing.T) {
		c := Config{SaveDirectory: t.TempDir()}
		assert.Equal(t, "/tmp/fleet.json", c.GetSavePath("/tmp/fleet.json"))
	})

	t.Run("bare filenames resolve against the save directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "saves")
		c := Config{SaveDirectory: dir}
		assert.Equal(t, filepath.Join(dir, "fleet.json"), c.GetSavePath("fleet.json"))
	})
}
