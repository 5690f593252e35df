package graph

import (
	"errors"
	"fmt"
)

// Errors returned by graph operations.
var (
	// ErrDuplicateName indicates a sibling context or node with the
	// same name already exists.
	ErrDuplicateName = errors.New("duplicate name")

	// ErrUnknownArchetype indicates the archetype name is not
	// registered.
	ErrUnknownArchetype = errors.New("unknown archetype")

	// ErrSizeMismatch indicates a values write attempted to change
	// the slot count of a fixed-size entity.
	ErrSizeMismatch = errors.New("size mismatch")

	// ErrBoxIndex indicates a box index outside the node's box list.
	ErrBoxIndex = errors.New("box index out of range")
)

// SizeMismatchError reports a fixed-size values write with the wrong
// slot count.
type SizeMismatchError struct {
	// Want is the entity's current slot count.
	Want int
	// Got is the slot count of the attempted write.
	Got int
}

// Error implements the error interface.
func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("size mismatch: entity has %d slots, write has %d (archetype is fixed-size)", e.Want, e.Got)
}

// Unwrap allows errors.Is(err, ErrSizeMismatch).
func (e *SizeMismatchError) Unwrap() error { return ErrSizeMismatch }
