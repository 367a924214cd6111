package engineconfig

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// EngineConfigPath is the path to the viewer config file, relative to the process working directory.
const EngineConfigPath = "config/rigsim.json"

// EnginePrefs holds viewer-only preferences (debug overlays, grid, foot markers, last scenario).
// Persisted across runs. Scenario settings are separate and live in the scenario files.
type EnginePrefs struct {
	ShowFPS        bool    `json:"show_fps"`
	ShowMemAlloc   bool    `json:"show_memalloc"`
	GridVisible    bool    `json:"grid_visible"`
	FootMarkers    bool    `json:"foot_markers"`
	ShowTargets    bool    `json:"show_targets"`
	LastScenario   string  `json:"last_scenario,omitempty"`
	CameraDistance float32 `json:"camera_distance,omitempty"`
}

// Default returns default viewer preferences (debug overlays off, grid and markers on).
func Default() EnginePrefs {
	return EnginePrefs{
		ShowFPS:        false,
		ShowMemAlloc:   false,
		GridVisible:    true,
		FootMarkers:    true,
		ShowTargets:    true,
		CameraDistance: 5,
	}
}

// Load reads preferences from EngineConfigPath. If the file is missing or invalid, returns
// Default() and does not create a file.
func Load() (EnginePrefs, error) {
	return LoadFrom(EngineConfigPath)
}

// LoadFrom reads preferences from path, falling back to Default() like Load.
func LoadFrom(path string) (EnginePrefs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), nil
	}
	p := Default()
	if err := json.Unmarshal(data, &p); err != nil {
		return Default(), nil
	}
	return p, nil
}

// Save writes preferences to EngineConfigPath, creating the config directory if needed.
func Save(p EnginePrefs) error {
	return SaveTo(EngineConfigPath, p)
}

// SaveTo writes preferences to path, creating its directory if needed.
func SaveTo(path string, p EnginePrefs) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "\t")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
