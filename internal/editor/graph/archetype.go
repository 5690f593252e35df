package graph

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// PayloadSaveFunc serializes an archetype-specific header payload at
// the current format version.
type PayloadSaveFunc func(payload []byte) ([]byte, error)

// PayloadLoadFunc deserializes an archetype-specific header payload
// that was captured at the given format version. Implementations
// upgrade older layouts so snapshots recorded before a format change
// still replay.
type PayloadLoadFunc func(data []byte, version int) ([]byte, error)

// Archetype describes a kind of node or track: how many value slots
// it carries, whether the slot count may change, how many boxes
// (ports) it exposes, and how its header payload is serialized.
type Archetype struct {
	// Name uniquely identifies the archetype (e.g. "math.add").
	Name string

	// SlotCount is the number of value slots a fresh entity gets.
	SlotCount int

	// Resizable permits value edits that change the slot count.
	Resizable bool

	// BoxCount is the number of boxes (ports) on a fresh node.
	BoxCount int

	// SavePayload and LoadPayload handle the archetype-specific
	// header payload. Nil means the payload is copied verbatim.
	SavePayload PayloadSaveFunc
	LoadPayload PayloadLoadFunc
}

// Save serializes payload, applying the archetype codec if present.
func (a *Archetype) Save(payload []byte) ([]byte, error) {
	if a.SavePayload == nil {
		out := make([]byte, len(payload))
		copy(out, payload)
		return out, nil
	}
	return a.SavePayload(payload)
}

// Load deserializes a payload captured at the given format version.
func (a *Archetype) Load(data []byte, version int) ([]byte, error) {
	if a.LoadPayload == nil {
		out := make([]byte, len(data))
		copy(out, data)
		return out, nil
	}
	return a.LoadPayload(data, version)
}

// Registry maps archetype names to definitions.
type Registry struct {
	byName map[string]*Archetype
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Archetype)}
}

// Register adds an archetype. Re-registering a name replaces it.
func (r *Registry) Register(a *Archetype) {
	r.byName[a.Name] = a
}

// Get returns the archetype with the given name.
func (r *Registry) Get(name string) (*Archetype, error) {
	a, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownArchetype, name)
	}
	return a, nil
}

// Names returns all registered archetype names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// archetypeFile is the YAML layout for data-driven archetype sets.
type archetypeFile struct {
	Archetypes []archetypeDef `yaml:"archetypes"`
}

type archetypeDef struct {
	Name      string `yaml:"name"`
	Slots     int    `yaml:"slots"`
	Resizable bool   `yaml:"resizable"`
	Boxes     int    `yaml:"boxes"`
}

// LoadYAML registers archetypes defined in a YAML document. Data-
// driven archetypes use the verbatim payload codec.
func (r *Registry) LoadYAML(data []byte) error {
	var file archetypeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing archetype definitions: %w", err)
	}
	for _, def := range file.Archetypes {
		if def.Name == "" {
			return fmt.Errorf("archetype definition missing name")
		}
		r.Register(&Archetype{
			Name:      def.Name,
			SlotCount: def.Slots,
			Resizable: def.Resizable,
			BoxCount:  def.Boxes,
		})
	}
	return nil
}
