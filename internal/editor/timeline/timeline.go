// Package timeline implements the animation/sequencer surface's live
// data: an ordered set of named tracks, optionally grouped, with a
// scalar duration. Tracks reference their group by name, a weak
// back-reference resolved on demand rather than an owning pointer, so
// undo actions recorded against a group survive the group being
// destroyed and recreated.
package timeline

import (
	"errors"
	"fmt"
	"sort"
)

// Errors returned by timeline operations.
var (
	// ErrAlreadyExists indicates a track with the name is present.
	ErrAlreadyExists = errors.New("track already exists")

	// ErrAlreadyAbsent indicates the named track is not present.
	// Treated as recoverable by structural replay: logged, no-op.
	ErrAlreadyAbsent = errors.New("track already absent")
)

// Flags holds per-track bit flags.
type Flags uint32

// Track flag bits.
const (
	// FlagGroup marks a track that can parent other tracks.
	FlagGroup Flags = 1 << iota
	// FlagMuted marks a track excluded from playback.
	FlagMuted
	// FlagLocked marks a track protected from interactive edits.
	FlagLocked
)

// Track is one timeline row: name, display header, archetype payload,
// and structural placement (group by name, order index, expanded).
type Track struct {
	name      string
	color     uint32
	flags     Flags
	archetype string
	payload   []byte
	group     string
	order     int
	expanded  bool
}

// NewTrack creates a detached track.
func NewTrack(name, archetype string) *Track {
	return &Track{name: name, archetype: archetype, expanded: true}
}

// Name returns the track's name.
func (t *Track) Name() string { return t.name }

// Color returns the header color.
func (t *Track) Color() uint32 { return t.color }

// SetColor sets the header color.
func (t *Track) SetColor(c uint32) { t.color = c }

// Flags returns the track flags.
func (t *Track) Flags() Flags { return t.flags }

// SetFlags sets the track flags.
func (t *Track) SetFlags(f Flags) { t.flags = f }

// IsGroup reports whether the track can parent other tracks.
func (t *Track) IsGroup() bool { return t.flags&FlagGroup != 0 }

// Archetype returns the archetype name.
func (t *Track) Archetype() string { return t.archetype }

// Payload returns the archetype-specific header payload. The slice
// is shared; callers snapshot it through the codec, not directly.
func (t *Track) Payload() []byte { return t.payload }

// SetPayload replaces the archetype-specific header payload.
func (t *Track) SetPayload(p []byte) {
	t.payload = make([]byte, len(p))
	copy(t.payload, p)
}

// Group returns the name of the parent group ("" when top-level).
func (t *Track) Group() string { return t.group }

// SetGroup names the parent group on a detached track. Attachment
// validates the reference; see Timeline.Add.
func (t *Track) SetGroup(name string) { t.group = name }

// Order returns the track's order index within its group.
func (t *Track) Order() int { return t.order }

// SetOrder assigns the order index on a detached track.
func (t *Track) SetOrder(o int) { t.order = o }

// Expanded reports the header's expanded/collapsed visual state.
func (t *Track) Expanded() bool { return t.expanded }

// SetExpanded sets the expanded/collapsed visual state.
func (t *Track) SetExpanded(v bool) { t.expanded = v }

// Timeline owns the ordered track list and the scalar duration.
type Timeline struct {
	duration float64
	tracks   []*Track
	byName   map[string]*Track
}

// New creates an empty timeline.
func New() *Timeline {
	return &Timeline{byName: make(map[string]*Track)}
}

// Duration returns the timeline duration.
func (tl *Timeline) Duration() float64 { return tl.duration }

// SetDuration sets the timeline duration.
func (tl *Timeline) SetDuration(d float64) { tl.duration = d }

// Has reports whether a track with the name exists.
func (tl *Timeline) Has(name string) bool {
	_, ok := tl.byName[name]
	return ok
}

// Track returns the named track.
func (tl *Timeline) Track(name string) (*Track, bool) {
	t, ok := tl.byName[name]
	return t, ok
}

// Tracks returns all tracks in list order. The slice is a copy.
func (tl *Timeline) Tracks() []*Track {
	out := make([]*Track, len(tl.tracks))
	copy(out, tl.tracks)
	return out
}

// Len returns the number of tracks.
func (tl *Timeline) Len() int { return len(tl.tracks) }

// Add inserts a track. The name must be unused. If the track names a
// parent group that does not exist, it is attached top-level instead;
// the second return value reports whether that downgrade happened.
func (tl *Timeline) Add(t *Track) (orphaned bool, err error) {
	if tl.Has(t.name) {
		return false, fmt.Errorf("%w: %q", ErrAlreadyExists, t.name)
	}
	if t.group != "" && !tl.Has(t.group) {
		t.group = ""
		orphaned = true
	}
	tl.byName[t.name] = t
	tl.tracks = append(tl.tracks, t)
	tl.Arrange()
	return orphaned, nil
}

// Remove detaches and returns the named track.
func (tl *Timeline) Remove(name string) (*Track, error) {
	t, ok := tl.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrAlreadyAbsent, name)
	}
	delete(tl.byName, name)
	for i, cur := range tl.tracks {
		if cur == t {
			tl.tracks = append(tl.tracks[:i], tl.tracks[i+1:]...)
			break
		}
	}
	// Children of a removed group become top-level; their own undo
	// records keep the original group name.
	for _, cur := range tl.tracks {
		if cur.group == name {
			cur.group = ""
		}
	}
	tl.Arrange()
	return t, nil
}

// Rename changes a track's name, updating every track that addresses
// it as a group so name-based references stay intact.
func (tl *Timeline) Rename(oldName, newName string) error {
	t, ok := tl.byName[oldName]
	if !ok {
		return fmt.Errorf("%w: %q", ErrAlreadyAbsent, oldName)
	}
	if oldName == newName {
		return nil
	}
	if tl.Has(newName) {
		return fmt.Errorf("%w: %q", ErrAlreadyExists, newName)
	}
	delete(tl.byName, oldName)
	t.name = newName
	tl.byName[newName] = t
	for _, cur := range tl.tracks {
		if cur.group == oldName {
			cur.group = newName
		}
	}
	return nil
}

// Move re-parents and re-indexes a track, then re-arranges.
func (tl *Timeline) Move(name, group string, order int) error {
	t, ok := tl.byName[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrAlreadyAbsent, name)
	}
	if group != "" && !tl.Has(group) {
		group = ""
	}
	t.group = group
	t.order = order
	tl.Arrange()
	return nil
}

// SetOrder assigns a track's order index and re-arranges.
func (tl *Timeline) SetOrder(name string, order int) error {
	t, ok := tl.byName[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrAlreadyAbsent, name)
	}
	t.order = order
	tl.Arrange()
	return nil
}

// Arrange normalizes order indices: tracks are sorted by (group,
// order, name) with a stable sort, then re-numbered 0..n-1 within
// each group.
func (tl *Timeline) Arrange() {
	sort.SliceStable(tl.tracks, func(i, j int) bool {
		a, b := tl.tracks[i], tl.tracks[j]
		if a.group != b.group {
			return a.group < b.group
		}
		if a.order != b.order {
			return a.order < b.order
		}
		return a.name < b.name
	})
	counters := make(map[string]int)
	for _, t := range tl.tracks {
		t.order = counters[t.group]
		counters[t.group]++
	}
}

// ChildrenOf returns the tracks whose group is the given name, in
// order.
func (tl *Timeline) ChildrenOf(group string) []*Track {
	var out []*Track
	for _, t := range tl.tracks {
		if t.group == group {
			out = append(out, t)
		}
	}
	return out
}
