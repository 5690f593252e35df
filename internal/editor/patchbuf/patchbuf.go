// Package patchbuf manages the heap buffers that terrain undo actions
// own for their before/after patch captures.
//
// Terrain history keeps large binary buffers alive for as long as the
// action sits on the undo stack. Each buffer is owned by exactly one
// PatchRecord from capture until the owning action is released; the
// manager's free list lets released buffers back a later edit of the
// same patch size instead of churning the allocator. Release is
// driven through the action's idempotent Release, so a buffer can
// never be returned twice.
package patchbuf

import (
	"fmt"
	"sync"
)

// Stats reports manager activity.
type Stats struct {
	// Allocated counts buffers created fresh.
	Allocated int
	// Reused counts Get calls satisfied from the free list.
	Reused int
	// Outstanding counts buffers currently held by actions.
	Outstanding int
}

// Manager hands out and reclaims fixed-size patch buffers, bucketed
// by length.
type Manager struct {
	mu          sync.Mutex
	free        map[int][][]byte
	allocated   int
	reused      int
	outstanding int
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{free: make(map[int][][]byte)}
}

// Get returns a zeroed buffer of exactly n bytes, reusing a released
// one when available.
func (m *Manager) Get(n int) []byte {
	if n <= 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.outstanding++
	bucket := m.free[n]
	if len(bucket) > 0 {
		buf := bucket[len(bucket)-1]
		m.free[n] = bucket[:len(bucket)-1]
		m.reused++
		for i := range buf {
			buf[i] = 0
		}
		return buf
	}
	m.allocated++
	return make([]byte, n)
}

// Put returns a buffer obtained from Get. Putting nil is a no-op.
func (m *Manager) Put(buf []byte) {
	if buf == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.outstanding--
	m.free[len(buf)] = append(m.free[len(buf)], buf)
}

// Stats returns current counters.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{
		Allocated:   m.allocated,
		Reused:      m.reused,
		Outstanding: m.outstanding,
	}
}

// String formats the stats for diagnostics.
func (s Stats) String() string {
	return fmt.Sprintf("allocated=%d reused=%d outstanding=%d", s.Allocated, s.Reused, s.Outstanding)
}
