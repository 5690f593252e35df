package action

import (
	"fmt"

	"github.com/dshills/nodestorm/internal/editor/graph"
	"github.com/dshills/nodestorm/internal/editor/handle"
	"github.com/dshills/nodestorm/internal/editor/snapshot"
)

// DurationEdit records a change to the timeline's scalar duration as
// small fixed before/after blobs.
type DurationEdit struct {
	before []byte
	after  []byte
}

// NewDurationEdit creates a duration edit from two captured values.
func NewDurationEdit(before, after float64) *DurationEdit {
	return &DurationEdit{
		before: snapshot.EncodeScalar(before),
		after:  snapshot.EncodeScalar(after),
	}
}

// NewDurationEditBlobs creates a duration edit from captured blobs,
// as produced by a scoped capture block.
func NewDurationEditBlobs(before, after []byte) (*DurationEdit, error) {
	if _, err := snapshot.DecodeScalar(before); err != nil {
		return nil, fmt.Errorf("duration edit before-blob: %w", err)
	}
	if _, err := snapshot.DecodeScalar(after); err != nil {
		return nil, fmt.Errorf("duration edit after-blob: %w", err)
	}
	return &DurationEdit{before: before, after: after}, nil
}

// Do applies the after-duration.
func (a *DurationEdit) Do(doc *graph.Document) error {
	return a.apply(doc, a.after)
}

// Undo applies the before-duration.
func (a *DurationEdit) Undo(doc *graph.Document) error {
	return a.apply(doc, a.before)
}

func (a *DurationEdit) apply(doc *graph.Document, payload []byte) error {
	v, err := snapshot.DecodeScalar(payload)
	if err != nil {
		return err
	}
	doc.Timeline().SetDuration(v)
	doc.NotifyArranged()
	doc.MarkModified(false)
	return nil
}

// Description returns a human-readable label.
func (a *DurationEdit) Description() string { return "Set duration" }

// HeaderEdit records a change to one track's header blob (color,
// flags, archetype payload).
type HeaderEdit struct {
	track   string
	before  []byte
	after   []byte
	version int
}

// NewHeaderEdit creates a header edit for a named track from two
// captured header blobs.
func NewHeaderEdit(track string, before, after []byte, version int) *HeaderEdit {
	return &HeaderEdit{track: track, before: before, after: after, version: version}
}

// Do applies the after-header.
func (a *HeaderEdit) Do(doc *graph.Document) error {
	return a.apply(doc, a.after)
}

// Undo applies the before-header.
func (a *HeaderEdit) Undo(doc *graph.Document) error {
	return a.apply(doc, a.before)
}

func (a *HeaderEdit) apply(doc *graph.Document, payload []byte) error {
	tr, ok := doc.Timeline().Track(a.track)
	if !ok {
		return &handle.MissingEntityError{Name: a.track, In: "timeline"}
	}
	if err := snapshot.RestoreTrackHeader(tr, payload, a.version, doc.Registry()); err != nil {
		return err
	}
	doc.NotifyArranged()
	doc.MarkModified(false)
	return nil
}

// Description returns a human-readable label.
func (a *HeaderEdit) Description() string {
	return fmt.Sprintf("Edit %s header", a.track)
}
