// Package session wires the editing components together and manages
// their lifecycle. It is the only place construction order lives;
// every component receives its collaborators explicitly and there are
// no package-level singletons.
package session

import (
	"fmt"
	"io"
	"os"

	"github.com/dshills/nodestorm/internal/config"
	"github.com/dshills/nodestorm/internal/editor/action"
	"github.com/dshills/nodestorm/internal/editor/graph"
	"github.com/dshills/nodestorm/internal/editor/history"
	"github.com/dshills/nodestorm/internal/editor/patchbuf"
	"github.com/dshills/nodestorm/internal/editor/terrain"
	"github.com/dshills/nodestorm/internal/event"
	"github.com/dshills/nodestorm/internal/logging"
	"github.com/dshills/nodestorm/internal/persist"
	"github.com/dshills/nodestorm/internal/script"
)

// Options configures a session.
type Options struct {
	// ConfigPath is the settings file; missing means defaults.
	ConfigPath string

	// DocumentPath is a document to open on startup.
	DocumentPath string

	// NavMesh receives deferred rebuild requests; nil means none.
	NavMesh terrain.NavMeshRequester

	// LogOutput overrides the log destination (stderr by default).
	LogOutput io.Writer
}

// Session is the assembled editing state for one document.
type Session struct {
	settings config.Settings
	log      *logging.Logger
	bus      *event.Bus
	registry *graph.Registry
	doc      *graph.Document
	stack    *history.Stack
	buffers  *patchbuf.Manager
	macros   *script.Runner
	nav      terrain.NavMeshRequester
}

// New creates a session, building components in dependency order.
func New(opts Options) (*Session, error) {
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = logging.ParseLevel(settings.Log.Level)
	if opts.LogOutput != nil {
		logCfg.Output = opts.LogOutput
	}
	log := logging.New(logCfg)

	s := &Session{
		settings: settings,
		log:      log,
		bus:      event.NewBus(),
		registry: graph.NewRegistry(),
		buffers:  patchbuf.NewManager(),
		nav:      opts.NavMesh,
	}
	RegisterDefaults(s.registry)

	if opts.DocumentPath != "" {
		if err := s.openDocument(opts.DocumentPath); err != nil {
			return nil, err
		}
	} else {
		s.doc = graph.NewDocument(s.registry,
			graph.WithBus(s.bus),
			graph.WithTerrain(terrain.NewField(settings.Terrain.EdgeSamples)),
		)
	}

	s.stack = history.NewStack(s.doc, settings.History.MaxEntries, log)
	s.stack.SetEnabled(settings.History.Enabled)
	s.macros = script.NewRunner(s.doc, s.stack, log)

	log.Info("session ready (history depth %d, terrain edge %d)",
		settings.History.MaxEntries, settings.Terrain.EdgeSamples)
	return s, nil
}

func (s *Session) openDocument(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("opening document %s: %w", path, err)
	}
	doc, err := persist.Load(data, s.registry, graph.WithBus(s.bus))
	if err != nil {
		return fmt.Errorf("loading document %s: %w", path, err)
	}
	s.doc = doc
	s.log.Info("opened %s (format version %d)", path, doc.FormatVersion())
	return nil
}

// Settings returns the loaded settings.
func (s *Session) Settings() config.Settings { return s.settings }

// Log returns the session logger.
func (s *Session) Log() *logging.Logger { return s.log }

// Bus returns the notification bus.
func (s *Session) Bus() *event.Bus { return s.bus }

// Registry returns the archetype registry.
func (s *Session) Registry() *graph.Registry { return s.registry }

// Document returns the open document.
func (s *Session) Document() *graph.Document { return s.doc }

// History returns the undo stack.
func (s *Session) History() *history.Stack { return s.stack }

// Buffers returns the terrain patch buffer manager.
func (s *Session) Buffers() *patchbuf.Manager { return s.buffers }

// Macros returns the Lua macro runner.
func (s *Session) Macros() *script.Runner { return s.macros }

// BeginTerrainStroke starts a terrain edit on one layer. The patch
// size comes from the document's live terrain field, which an opened
// document carries from its file regardless of the current settings.
func (s *Session) BeginTerrainStroke(tag terrain.LayerTag) *action.TerrainEdit {
	edge := s.settings.Terrain.EdgeSamples
	if f := s.doc.Terrain(); f != nil {
		edge = f.EdgeSamples()
	}
	return action.NewTerrainEdit(
		tag,
		edge,
		s.buffers,
		s.nav,
		s.settings.Terrain.NavMeshTimeout(),
	)
}

// SaveDocument writes the document to path and clears dirty tracking.
func (s *Session) SaveDocument(path string) error {
	data, err := persist.Save(s.doc)
	if err != nil {
		return fmt.Errorf("serializing document: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing document %s: %w", path, err)
	}
	s.doc.ClearModified()
	s.log.Info("saved %s (%d bytes)", path, len(data))
	return nil
}

// Close releases the history and its buffers.
func (s *Session) Close() {
	s.stack.Clear()
	if out := s.buffers.Stats().Outstanding; out != 0 {
		s.log.Warn("closing with %d terrain buffers outstanding", out)
	}
}
