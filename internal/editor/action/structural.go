package action

import (
	"fmt"

	"github.com/dshills/nodestorm/internal/editor/graph"
	"github.com/dshills/nodestorm/internal/editor/snapshot"
	"github.com/dshills/nodestorm/internal/editor/timeline"
	"github.com/dshills/nodestorm/internal/logging"
)

// StructuralKind says whether a structural action records an add or a
// remove; Undo replays the opposite.
type StructuralKind int

// Structural action kinds.
const (
	// TrackAdded records "this track was added".
	TrackAdded StructuralKind = iota
	// TrackRemoved records "this track was removed".
	TrackRemoved
)

// StructuralEdit records the full serialized state of one track plus
// its structural placement, enough to delete and faithfully rebuild
// it. The parent group is addressed by name only, a weak reference
// resolved at replay time rather than an owning pointer.
type StructuralEdit struct {
	kind      StructuralKind
	name      string
	archetype string
	header    []byte
	group     string
	order     int
	expanded  bool
	version   int
	log       *logging.Logger
}

// NewTrackAdded captures a just-added track. The capture happens at
// the moment the edit is finalized, never speculatively.
func NewTrackAdded(tr *timeline.Track, doc *graph.Document, log *logging.Logger) (*StructuralEdit, error) {
	return newStructural(TrackAdded, tr, doc, log)
}

// NewTrackRemoved captures a track about to be removed.
func NewTrackRemoved(tr *timeline.Track, doc *graph.Document, log *logging.Logger) (*StructuralEdit, error) {
	return newStructural(TrackRemoved, tr, doc, log)
}

func newStructural(kind StructuralKind, tr *timeline.Track, doc *graph.Document, log *logging.Logger) (*StructuralEdit, error) {
	header, err := snapshot.CaptureTrackHeader(tr, doc.Registry())
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.Discard()
	}
	return &StructuralEdit{
		kind:      kind,
		name:      tr.Name(),
		archetype: tr.Archetype(),
		header:    header,
		group:     tr.Group(),
		order:     tr.Order(),
		expanded:  tr.Expanded(),
		version:   doc.FormatVersion(),
		log:       log.WithComponent("action"),
	}, nil
}

// Do replays the recorded event: an add for TrackAdded, a remove for
// TrackRemoved.
func (a *StructuralEdit) Do(doc *graph.Document) error {
	if a.kind == TrackAdded {
		return a.replayAdd(doc)
	}
	return a.replayRemove(doc)
}

// Undo replays the opposite of the recorded event.
func (a *StructuralEdit) Undo(doc *graph.Document) error {
	if a.kind == TrackAdded {
		return a.replayRemove(doc)
	}
	return a.replayAdd(doc)
}

// replayAdd rebuilds the track from its captured state. A track with
// the same name already present is recoverable: logged, no-op.
func (a *StructuralEdit) replayAdd(doc *graph.Document) error {
	tl := doc.Timeline()
	if tl.Has(a.name) {
		a.log.Warn("add replay: track %q already exists, skipping", a.name)
		return nil
	}

	tr := timeline.NewTrack(a.name, a.archetype)
	if err := snapshot.RestoreTrackHeader(tr, a.header, a.version, doc.Registry()); err != nil {
		return err
	}
	tr.SetExpanded(a.expanded)
	tr.SetGroup(a.group)
	tr.SetOrder(a.order)

	orphaned, err := tl.Add(tr)
	if err != nil {
		return err
	}
	if orphaned {
		// Accepted edge case: the recorded parent no longer exists;
		// the track re-attaches top-level.
		a.log.Warn("add replay: parent group %q of %q missing, attaching top-level", a.group, a.name)
	}
	doc.NotifyArranged()
	doc.MarkModified(true)
	return nil
}

// replayRemove detaches and deletes the track. An already-absent
// track is recoverable: logged, no-op.
func (a *StructuralEdit) replayRemove(doc *graph.Document) error {
	tl := doc.Timeline()
	if !tl.Has(a.name) {
		a.log.Warn("remove replay: track %q already absent, skipping", a.name)
		return nil
	}
	if _, err := tl.Remove(a.name); err != nil {
		return err
	}
	doc.NotifyArranged()
	doc.MarkModified(true)
	return nil
}

// Description returns a human-readable label.
func (a *StructuralEdit) Description() string {
	if a.kind == TrackAdded {
		return fmt.Sprintf("Add track %s", a.name)
	}
	return fmt.Sprintf("Remove track %s", a.name)
}

// Rename records a track name change. Referential integrity for
// anything addressing the track by name is the timeline's concern.
type Rename struct {
	oldName string
	newName string
}

// NewRename creates a rename action.
func NewRename(oldName, newName string) *Rename {
	return &Rename{oldName: oldName, newName: newName}
}

// Do applies the new name.
func (a *Rename) Do(doc *graph.Document) error {
	if err := doc.Timeline().Rename(a.oldName, a.newName); err != nil {
		return err
	}
	doc.MarkModified(true)
	return nil
}

// Undo restores the old name.
func (a *Rename) Undo(doc *graph.Document) error {
	if err := doc.Timeline().Rename(a.newName, a.oldName); err != nil {
		return err
	}
	doc.MarkModified(true)
	return nil
}

// Description returns a human-readable label.
func (a *Rename) Description() string {
	return fmt.Sprintf("Rename %s to %s", a.oldName, a.newName)
}

// Placement is one (group, order index) structural position.
type Placement struct {
	// Group is the parent group name ("" for top-level).
	Group string
	// Order is the order index within the group.
	Order int
}

// Reorder records a track moving between groups and/or positions.
type Reorder struct {
	name   string
	before Placement
	after  Placement
}

// NewReorder creates a reorder action for the named track.
func NewReorder(name string, before, after Placement) *Reorder {
	return &Reorder{name: name, before: before, after: after}
}

// Do applies the after-placement.
func (a *Reorder) Do(doc *graph.Document) error {
	return a.apply(doc, a.after)
}

// Undo applies the before-placement.
func (a *Reorder) Undo(doc *graph.Document) error {
	return a.apply(doc, a.before)
}

func (a *Reorder) apply(doc *graph.Document, p Placement) error {
	if err := doc.Timeline().Move(a.name, p.Group, p.Order); err != nil {
		return err
	}
	doc.NotifyOrderChanged()
	doc.MarkModified(true)
	return nil
}

// Description returns a human-readable label.
func (a *Reorder) Description() string {
	return fmt.Sprintf("Reorder %s", a.name)
}
