// Package capture implements scoped capture blocks: the bracketing
// mechanism UI command handlers use to turn a span of live mutations
// into a single history action.
//
// A block snapshots its target when opened and again when closed; a
// byte-identical pair means nothing changed and nothing reaches the
// history. End is designed for defer, so the after-capture runs on
// every exit path of the handler.
package capture

import (
	"bytes"
	"fmt"

	"github.com/dshills/nodestorm/internal/editor/action"
)

// Sink receives finished actions. The history stack implements it; a
// nil Sink makes blocks inert, which is how recording is disabled
// without touching call sites.
type Sink interface {
	AddAction(a action.Action)
}

// Target is one capturable property: it serializes its current state
// and builds the action that replays a before/after pair.
type Target interface {
	Capture() ([]byte, error)
	NewAction(before, after []byte) (action.Action, error)
}

// Option configures a Block.
type Option func(*Block)

// WithLeading adds an action replayed before the captured change.
func WithLeading(a action.Action) Option {
	return func(b *Block) { b.leading = append(b.leading, a) }
}

// WithTrailing adds an action replayed after the captured change.
func WithTrailing(a action.Action) Option {
	return func(b *Block) { b.trailing = append(b.trailing, a) }
}

// WithLabel names the block in diagnostics.
func WithLabel(label string) Option {
	return func(b *Block) { b.label = label }
}

// Block is one open capture scope.
type Block struct {
	sink     Sink
	target   Target
	before   []byte
	leading  []action.Action
	trailing []action.Action
	label    string
	ended    bool
}

// Begin opens a capture block, snapshotting the target's before-state.
// A nil sink returns an inert block that captures nothing and whose
// End is a no-op.
func Begin(sink Sink, target Target, opts ...Option) (*Block, error) {
	b := &Block{sink: sink, target: target}
	for _, opt := range opts {
		opt(b)
	}
	if sink == nil {
		b.ended = true
		return b, nil
	}
	before, err := target.Capture()
	if err != nil {
		return nil, fmt.Errorf("capture block %q before-state: %w", b.label, err)
	}
	b.before = before
	return b, nil
}

// End snapshots the after-state and pushes the resulting action to
// the sink. A byte-identical before/after pair with no bracketing
// actions pushes nothing. End is idempotent so it can run under defer
// on every exit path.
func (b *Block) End() error {
	if b.ended {
		return nil
	}
	b.ended = true

	after, err := b.target.Capture()
	if err != nil {
		return fmt.Errorf("capture block %q after-state: %w", b.label, err)
	}

	acts := make([]action.Action, 0, len(b.leading)+1+len(b.trailing))
	acts = append(acts, b.leading...)
	if !bytes.Equal(b.before, after) {
		main, err := b.target.NewAction(b.before, after)
		if err != nil {
			return fmt.Errorf("capture block %q: %w", b.label, err)
		}
		acts = append(acts, main)
	}
	acts = append(acts, b.trailing...)

	switch len(acts) {
	case 0:
		return nil
	case 1:
		b.sink.AddAction(acts[0])
		return nil
	default:
		c, err := action.NewComposite(acts...)
		if err != nil {
			return err
		}
		b.sink.AddAction(c)
		return nil
	}
}

// Ended reports whether the block has been closed.
func (b *Block) Ended() bool { return b.ended }
