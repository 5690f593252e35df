package handle

import (
	"errors"
	"testing"
)

// testContext is a minimal Context implementation for resolution tests.
type testContext struct {
	name     string
	parent   *testContext
	children map[string]*testContext
}

func newTestContext(name string, parent *testContext) *testContext {
	c := &testContext{name: name, children: make(map[string]*testContext)}
	if parent != nil {
		c.parent = parent
		parent.children[name] = c
	}
	return c
}

func (c *testContext) ContextName() string { return c.name }

func (c *testContext) ParentContext() Context {
	if c.parent == nil {
		return nil
	}
	return c.parent
}

func (c *testContext) ChildContext(name string) Context {
	child, ok := c.children[name]
	if !ok {
		return nil
	}
	return child
}

// buildTree creates root -> outer -> inner and returns all three.
func buildTree() (root, outer, inner *testContext) {
	root = newTestContext("", nil)
	outer = newTestContext("outer", root)
	inner = newTestContext("inner", outer)
	return root, outer, inner
}

func TestEntityHandleEquality(t *testing.T) {
	a := At(7, 2)
	b := At(7, 2)
	c := At(7, 3)

	if a != b {
		t.Error("identical handles should be equal")
	}
	if a == c {
		t.Error("handles with different local index should differ")
	}

	// Handles must work as map keys.
	m := map[EntityHandle]int{a: 1}
	if m[b] != 1 {
		t.Error("handle map lookup failed")
	}
}

func TestWholeHandle(t *testing.T) {
	h := Whole(42)
	if h.Container != 42 || h.Local != -1 {
		t.Errorf("Whole(42) = %v", h)
	}
	if h.String() != "42" {
		t.Errorf("String() = %q, want %q", h.String(), "42")
	}
	if At(42, 3).String() != "42:3" {
		t.Errorf("At(42,3).String() = %q", At(42, 3).String())
	}
}

func TestContextPathEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b ContextPath
		want bool
	}{
		{"both nil", nil, nil, true},
		{"nil vs empty", nil, ContextPath{}, true},
		{"equal", ContextPath{"inner", "outer"}, ContextPath{"inner", "outer"}, true},
		{"different length", ContextPath{"inner"}, ContextPath{"inner", "outer"}, false},
		{"different segment", ContextPath{"inner", "outer"}, ContextPath{"inner", "other"}, false},
		{"nil vs non-empty", nil, ContextPath{"inner"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPathFromContext(t *testing.T) {
	root, outer, inner := buildTree()

	if got := PathFromContext(root); !got.IsRoot() {
		t.Errorf("root path = %v, want empty", got)
	}
	if got := PathFromContext(outer); !got.Equal(ContextPath{"outer"}) {
		t.Errorf("outer path = %v", got)
	}
	if got := PathFromContext(inner); !got.Equal(ContextPath{"inner", "outer"}) {
		t.Errorf("inner path = %v", got)
	}
}

func TestPathFromChild(t *testing.T) {
	_, _, inner := buildTree()

	got := PathFromChild("comment", inner)
	want := ContextPath{"comment", "inner", "outer"}
	if !got.Equal(want) {
		t.Errorf("PathFromChild = %v, want %v", got, want)
	}
}

func TestResolvePath(t *testing.T) {
	root, outer, inner := buildTree()

	resolved, err := ResolvePath(root, nil)
	if err != nil {
		t.Fatalf("resolve root: %v", err)
	}
	if resolved != Context(root) {
		t.Error("empty path should resolve to root")
	}

	resolved, err = ResolvePath(root, ContextPath{"inner", "outer"})
	if err != nil {
		t.Fatalf("resolve inner: %v", err)
	}
	if resolved != Context(inner) {
		t.Error("resolved wrong context")
	}

	_ = outer
}

func TestResolvePathMissingSegment(t *testing.T) {
	root, _, _ := buildTree()

	// Middle segment "gone" does not exist under outer.
	_, err := ResolvePath(root, ContextPath{"inner", "gone", "outer"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrMissingContext) {
		t.Errorf("error should wrap ErrMissingContext, got %v", err)
	}

	var mc *MissingContextError
	if !errors.As(err, &mc) {
		t.Fatalf("error should be MissingContextError, got %T", err)
	}
	if mc.Segment != "gone" {
		t.Errorf("Segment = %q, want %q", mc.Segment, "gone")
	}
	if mc.In != "outer" {
		t.Errorf("In = %q, want %q", mc.In, "outer")
	}
}

func TestResolvePathMissingFirstSegment(t *testing.T) {
	root, _, _ := buildTree()

	_, err := ResolvePath(root, ContextPath{"absent"})
	var mc *MissingContextError
	if !errors.As(err, &mc) {
		t.Fatalf("expected MissingContextError, got %v", err)
	}
	if mc.Segment != "absent" || mc.In != "" {
		t.Errorf("got segment %q in %q, want %q in root", mc.Segment, mc.In, "absent")
	}
}

func TestRoundTripPathBuildResolve(t *testing.T) {
	root, _, inner := buildTree()

	path := PathFromContext(inner)
	resolved, err := ResolvePath(root, path)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved != Context(inner) {
		t.Error("build/resolve round trip failed")
	}
}

func TestContextPathClone(t *testing.T) {
	p := ContextPath{"a", "b"}
	c := p.Clone()
	c[0] = "x"
	if p[0] != "a" {
		t.Error("clone aliases original")
	}
	if ContextPath(nil).Clone() != nil {
		t.Error("nil clone should stay nil")
	}
}
