package viewerconfig

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// ConfigPath is the path to the viewer config file, relative to the process working directory.
const ConfigPath = "config/viewer.json"

// Prefs holds viewer preferences: where the simulator backend lives, window size,
// and overlay toggles. Persisted across runs. The websocket port in here is only a
// fallback; the live port comes from GET /api/config on the backend.
type Prefs struct {
	ServerURL    string `json:"server_url"`
	WSPort       int    `json:"ws_port"`
	WindowWidth  int    `json:"window_width"`
	WindowHeight int    `json:"window_height"`
	GridVisible  bool   `json:"grid_visible"`
	ShowFPS      bool   `json:"show_fps"`
	ShowMemAlloc bool   `json:"show_memalloc"`
}

// Default returns default preferences (local backend, 1280x800 window, grid on, overlays off).
func Default() Prefs {
	return Prefs{
		ServerURL:    "http://localhost:8080",
		WSPort:       8765,
		WindowWidth:  1280,
		WindowHeight: 800,
		GridVisible:  true,
		ShowFPS:      false,
		ShowMemAlloc: false,
	}
}

// Load reads preferences from config/viewer.json. If the file is missing or invalid,
// returns Default() and does not create a file. The SIMVIEW_SERVER environment
// variable, when set, overrides the server URL.
func Load() (Prefs, error) {
	p := Default()
	if data, err := os.ReadFile(ConfigPath); err == nil {
		if err := json.Unmarshal(data, &p); err != nil {
			p = Default()
		}
	}
	if env := os.Getenv("SIMVIEW_SERVER"); env != "" {
		p.ServerURL = env
	}
	return p, nil
}

// Save writes preferences to config/viewer.json, creating the config directory if needed.
func Save(p Prefs) error {
	dir := filepath.Dir(ConfigPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "\t")
	if err != nil {
		return err
	}
	return os.WriteFile(ConfigPath, data, 0644)
}
