package session

import "github.com/dshills/nodestorm/internal/editor/graph"

// RegisterDefaults installs the built-in archetypes. Project-specific
// archetypes layer on top via Registry.LoadYAML.
func RegisterDefaults(reg *graph.Registry) {
	for _, a := range defaultArchetypes() {
		reg.Register(a)
	}
}

func defaultArchetypes() []*graph.Archetype {
	return []*graph.Archetype{
		// Graph nodes
		{Name: "value.const", SlotCount: 1, BoxCount: 1},
		{Name: "value.vector", SlotCount: 3, BoxCount: 1},
		{Name: "value.color", SlotCount: 4, BoxCount: 1},
		{Name: "values.array", Resizable: true, BoxCount: 1},
		{Name: "math.add", SlotCount: 2, BoxCount: 3},
		{Name: "math.multiply", SlotCount: 2, BoxCount: 3},
		{Name: "math.lerp", SlotCount: 3, BoxCount: 4},
		{Name: "graph.output", BoxCount: 1},

		// Timeline tracks
		{Name: "track.group"},
		{Name: "track.anim"},
		{Name: "track.audio"},
		{Name: "track.event"},
	}
}
