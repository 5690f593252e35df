package capture

import (
	"github.com/dshills/nodestorm/internal/editor/action"
	"github.com/dshills/nodestorm/internal/editor/graph"
	"github.com/dshills/nodestorm/internal/editor/handle"
	"github.com/dshills/nodestorm/internal/editor/snapshot"
)

// DurationTarget captures the timeline's scalar duration.
type DurationTarget struct {
	Doc *graph.Document
}

// Capture serializes the current duration.
func (t DurationTarget) Capture() ([]byte, error) {
	return snapshot.EncodeScalar(t.Doc.Timeline().Duration()), nil
}

// NewAction builds the duration replay action.
func (t DurationTarget) NewAction(before, after []byte) (action.Action, error) {
	return action.NewDurationEditBlobs(before, after)
}

// TrackHeaderTarget captures one named track's header blob.
type TrackHeaderTarget struct {
	Doc   *graph.Document
	Track string
}

// Capture serializes the track's current header.
func (t TrackHeaderTarget) Capture() ([]byte, error) {
	tr, ok := t.Doc.Timeline().Track(t.Track)
	if !ok {
		return nil, &handle.MissingEntityError{Name: t.Track, In: "timeline"}
	}
	return snapshot.CaptureTrackHeader(tr, t.Doc.Registry())
}

// NewAction builds the header replay action.
func (t TrackHeaderTarget) NewAction(before, after []byte) (action.Action, error) {
	return action.NewHeaderEdit(t.Track, before, after, t.Doc.FormatVersion()), nil
}
