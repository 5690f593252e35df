// Package topic defines hierarchical event topics using dot notation.
//
// Examples: "graph.value.changed", "timeline.arranged",
// "terrain.modified". Patterns may use "*" to match exactly one
// segment and "**" to match any remaining segments.
package topic

import "strings"

// Topic represents a hierarchical event type using dot notation.
type Topic string

// Wildcard constants for pattern matching.
const (
	// WildcardSingle matches exactly one segment.
	WildcardSingle = "*"

	// WildcardMulti matches zero or more trailing segments.
	WildcardMulti = "**"

	// Separator is the character used to separate topic segments.
	Separator = "."
)

// Editor notification topics published by the engine.
const (
	GraphValueChanged       Topic = "graph.value.changed"
	GraphConnectionsChanged Topic = "graph.connections.changed"
	GraphStructureChanged   Topic = "graph.structure.changed"
	TimelineArranged        Topic = "timeline.arranged"
	TimelineOrderChanged    Topic = "timeline.order.changed"
	TerrainModified         Topic = "terrain.modified"
	DocumentModified        Topic = "document.modified"
)

// String returns the topic as a string.
func (t Topic) String() string { return string(t) }

// Segments returns the topic split by the separator.
func (t Topic) Segments() []string {
	if t == "" {
		return nil
	}
	return strings.Split(string(t), Separator)
}

// Parent returns the parent topic by removing the last segment.
// Returns an empty topic if there is no parent.
func (t Topic) Parent() Topic {
	s := string(t)
	idx := strings.LastIndex(s, Separator)
	if idx < 0 {
		return ""
	}
	return Topic(s[:idx])
}

// Child returns a child topic by appending a segment.
func (t Topic) Child(segment string) Topic {
	if t == "" {
		return Topic(segment)
	}
	return Topic(string(t) + Separator + segment)
}

// Base returns the last segment of the topic.
func (t Topic) Base() string {
	s := string(t)
	idx := strings.LastIndex(s, Separator)
	if idx < 0 {
		return s
	}
	return s[idx+1:]
}

// Match reports whether the concrete topic t matches the given
// pattern. Pattern segments may be "*" (exactly one segment); a
// trailing "**" matches any remainder, including none.
func (t Topic) Match(pattern Topic) bool {
	if t == pattern {
		return true
	}
	ts := t.Segments()
	ps := pattern.Segments()

	for i, p := range ps {
		if p == WildcardMulti {
			// Only valid as the final pattern segment.
			return i == len(ps)-1
		}
		if i >= len(ts) {
			return false
		}
		if p != WildcardSingle && p != ts[i] {
			return false
		}
	}
	return len(ts) == len(ps)
}
