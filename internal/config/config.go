// Package config loads editor settings from a TOML file with
// environment variable overrides.
//
// Precedence, lowest to highest: built-in defaults, the TOML file,
// NODESTORM_* environment variables. A missing config file is not an
// error; the defaults apply.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Environment variable overrides.
const (
	EnvHistoryMaxEntries = "NODESTORM_HISTORY_MAX_ENTRIES"
	EnvHistoryEnabled    = "NODESTORM_HISTORY_ENABLED"
	EnvTerrainEdge       = "NODESTORM_TERRAIN_EDGE_SAMPLES"
	EnvNavMeshTimeout    = "NODESTORM_TERRAIN_NAVMESH_TIMEOUT_MS"
	EnvLogLevel          = "NODESTORM_LOG_LEVEL"
)

// HistorySettings configures the undo stack.
type HistorySettings struct {
	// MaxEntries bounds the undo stack depth.
	MaxEntries int `toml:"max_entries"`
	// Enabled turns recording off entirely when false.
	Enabled bool `toml:"enabled"`
}

// TerrainSettings configures the terrain field.
type TerrainSettings struct {
	// EdgeSamples is the per-edge sample count of one patch.
	EdgeSamples int `toml:"edge_samples"`
	// NavMeshTimeoutMS bounds each deferred navmesh rebuild request.
	NavMeshTimeoutMS int `toml:"navmesh_timeout_ms"`
}

// LogSettings configures logging.
type LogSettings struct {
	Level string `toml:"level"`
}

// Settings is the full editor configuration.
type Settings struct {
	History HistorySettings `toml:"history"`
	Terrain TerrainSettings `toml:"terrain"`
	Log     LogSettings     `toml:"log"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		History: HistorySettings{
			MaxEntries: 1000,
			Enabled:    true,
		},
		Terrain: TerrainSettings{
			EdgeSamples:      65,
			NavMeshTimeoutMS: 500,
		},
		Log: LogSettings{
			Level: "info",
		},
	}
}

// NavMeshTimeout returns the rebuild timeout as a duration.
func (t TerrainSettings) NavMeshTimeout() time.Duration {
	return time.Duration(t.NavMeshTimeoutMS) * time.Millisecond
}

// Load reads settings from path, layering defaults, file, and
// environment. A missing file is not an error.
func Load(path string) (Settings, error) {
	s := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return s, fmt.Errorf("reading config file %s: %w", path, err)
		}
	} else if err := toml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := s.applyEnv(); err != nil {
		return s, err
	}
	return s, s.validate()
}

// Parse reads settings from raw TOML, layering defaults and
// environment; mainly for tests and embedded configs.
func Parse(data []byte) (Settings, error) {
	s := Default()
	if err := toml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parsing config: %w", err)
	}
	if err := s.applyEnv(); err != nil {
		return s, err
	}
	return s, s.validate()
}

func (s *Settings) applyEnv() error {
	if v, ok := os.LookupEnv(EnvHistoryMaxEntries); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvHistoryMaxEntries, err)
		}
		s.History.MaxEntries = n
	}
	if v, ok := os.LookupEnv(EnvHistoryEnabled); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvHistoryEnabled, err)
		}
		s.History.Enabled = b
	}
	if v, ok := os.LookupEnv(EnvTerrainEdge); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTerrainEdge, err)
		}
		s.Terrain.EdgeSamples = n
	}
	if v, ok := os.LookupEnv(EnvNavMeshTimeout); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvNavMeshTimeout, err)
		}
		s.Terrain.NavMeshTimeoutMS = n
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		s.Log.Level = v
	}
	return nil
}

func (s *Settings) validate() error {
	if s.History.MaxEntries <= 0 {
		return fmt.Errorf("history.max_entries must be positive, got %d", s.History.MaxEntries)
	}
	if s.Terrain.EdgeSamples < 2 {
		return fmt.Errorf("terrain.edge_samples must be at least 2, got %d", s.Terrain.EdgeSamples)
	}
	if s.Terrain.NavMeshTimeoutMS < 0 {
		return fmt.Errorf("terrain.navmesh_timeout_ms must not be negative, got %d", s.Terrain.NavMeshTimeoutMS)
	}
	return nil
}
