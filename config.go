package main

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type Config struct {
	SaveDirectory  string  `toml:"save_directory"`
	GridSizeMeters float64 `toml:"grid_size_meters"`
	SnapToGrid     bool    `toml:"snap_to_grid"`
	StartTool      string  `toml:"start_tool"`
}

func defaultConfig() *Config {
	return &Config{
		GridSizeMeters: 1.0,
		StartTool:      "select",
	}
}

// loadConfig reads ~/.fleetgraphrc. A missing or unreadable file is not an
// error; the defaults apply.
func loadConfig() *Config {
	config := defaultConfig()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return config
	}
	configPath := filepath.Join(homeDir, ".fleetgraphrc")
	if _, err := toml.DecodeFile(configPath, config); err != nil {
		return defaultConfig()
	}

	if config.GridSizeMeters <= 0 || config.GridSizeMeters > maxGridMeters {
		config.GridSizeMeters = 1.0
	}
	if len(config.SaveDirectory) > 0 && config.SaveDirectory[0] == '~' {
		config.SaveDirectory = filepath.Join(homeDir, config.SaveDirectory[1:])
	}
	return config
}

func (c *Config) startTool() Tool {
	switch c.StartTool {
	case "add", "add node":
		return ToolAddNode
	case "path", "draw path":
		return ToolDrawPath
	case "delete":
		return ToolDelete
	case "measure":
		return ToolMeasure
	}
	return ToolSelect
}

// GetSavePath resolves a bare filename against the configured save
// directory, creating it on demand.
func (c *Config) GetSavePath(filename string) string {
	if c.SaveDirectory == "" || filepath.IsAbs(filename) {
		return filename
	}
	os.MkdirAll(c.SaveDirectory, 0755)
	return filepath.Join(c.SaveDirectory, filename)
}
