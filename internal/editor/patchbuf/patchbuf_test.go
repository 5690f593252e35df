package patchbuf

import "testing"

func TestGetZeroedAndSized(t *testing.T) {
	m := NewManager()
	buf := m.Get(16)
	if len(buf) != 16 {
		t.Fatalf("len = %d, want 16", len(buf))
	}
	for i := range buf {
		buf[i] = 0xff
	}
	m.Put(buf)

	again := m.Get(16)
	for i, b := range again {
		if b != 0 {
			t.Fatalf("byte %d = %d, reused buffer not zeroed", i, b)
		}
	}
}

func TestReuseBucketsBySize(t *testing.T) {
	m := NewManager()
	a := m.Get(8)
	m.Put(a)

	// Different size must not reuse the released buffer.
	b := m.Get(4)
	if len(b) != 4 {
		t.Fatalf("len = %d, want 4", len(b))
	}

	st := m.Stats()
	if st.Allocated != 2 {
		t.Errorf("Allocated = %d, want 2", st.Allocated)
	}
	if st.Reused != 0 {
		t.Errorf("Reused = %d, want 0", st.Reused)
	}

	// Same size reuses.
	c := m.Get(8)
	_ = c
	st = m.Stats()
	if st.Reused != 1 {
		t.Errorf("Reused = %d, want 1", st.Reused)
	}
}

func TestOutstandingAccounting(t *testing.T) {
	m := NewManager()
	a := m.Get(8)
	b := m.Get(8)
	if st := m.Stats(); st.Outstanding != 2 {
		t.Errorf("Outstanding = %d, want 2", st.Outstanding)
	}
	m.Put(a)
	m.Put(b)
	if st := m.Stats(); st.Outstanding != 0 {
		t.Errorf("Outstanding = %d, want 0", st.Outstanding)
	}
}

func TestNilAndZeroHandling(t *testing.T) {
	m := NewManager()
	if buf := m.Get(0); buf != nil {
		t.Error("Get(0) should return nil")
	}
	m.Put(nil) // must not panic or skew accounting
	if st := m.Stats(); st.Outstanding != 0 {
		t.Errorf("Outstanding = %d, want 0", st.Outstanding)
	}
}
