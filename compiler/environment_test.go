package compiler

import "testing"

func TestEnvironment_ResolveUndefined(t *testing.T) {
	env := NewEnvironment()
	if _, ok := env.Resolve(GlobalScope, "x"); ok {
		t.Error("expected x to be undefined")
	}
}

func TestEnvironment_DefineGlobal(t *testing.T) {
	env := NewEnvironment()
	a := env.Define("a", true)
	b := env.Define("b", false)
	if a.Index != 0 || b.Index != 1 {
		t.Errorf("indices = %d, %d, want 0, 1", a.Index, b.Index)
	}

	v, ok := env.Resolve(GlobalScope, "b")
	if !ok {
		t.Fatal("b should resolve")
	}
	if v != (Variable{Altitude: 0, Index: 1, Initialized: false}) {
		t.Errorf("Resolve(b) = %+v", v)
	}
}

func TestEnvironment_RedefineReusesSlot(t *testing.T) {
	env := NewEnvironment()
	env.Define("x", true)
	env.Define("y", true)
	v := env.Define("x", true)
	if v.Index != 0 {
		t.Errorf("redefinition index = %d, want 0", v.Index)
	}
	if got := env.Globals(); len(got) != 2 {
		t.Errorf("Globals() = %v, want 2 names", got)
	}
}

func TestEnvironment_MarkInitialized(t *testing.T) {
	env := NewEnvironment()
	env.Define("f", false)
	env.MarkInitialized("f")
	v, _ := env.Resolve(GlobalScope, "f")
	if !v.Initialized {
		t.Error("f should be initialized")
	}
	// Redefinition does not reset the flag.
	if v := env.Define("f", false); !v.Initialized {
		t.Error("redefinition should keep f initialized")
	}
}

func TestEnvironment_NewChild(t *testing.T) {
	env := NewEnvironment()
	outer := env.NewChild(GlobalScope, []string{"a", "b"}, "")
	inner := env.NewChild(outer, []string{"c"}, "rest")

	if env.Altitude(outer) != 1 || env.Altitude(inner) != 2 {
		t.Errorf("altitudes = %d, %d, want 1, 2", env.Altitude(outer), env.Altitude(inner))
	}

	tests := []struct {
		name  string
		want  Variable
		depth int
	}{
		{"c", Variable{Altitude: 2, Index: 0, Initialized: true}, 0},
		{"rest", Variable{Altitude: 2, Index: 1, Initialized: true}, 0},
		{"b", Variable{Altitude: 1, Index: 1, Initialized: true}, 1},
		{"a", Variable{Altitude: 1, Index: 0, Initialized: true}, 1},
	}
	for _, tt := range tests {
		v, ok := env.Resolve(inner, tt.name)
		if !ok {
			t.Errorf("%s should resolve", tt.name)
			continue
		}
		if v != tt.want {
			t.Errorf("Resolve(%s) = %+v, want %+v", tt.name, v, tt.want)
		}
		if d := env.Depth(inner, v.Altitude); d != tt.depth {
			t.Errorf("Depth(%s) = %d, want %d", tt.name, d, tt.depth)
		}
	}

	if _, ok := env.Resolve(outer, "c"); ok {
		t.Error("c should not be visible from the outer frame")
	}
}

func TestEnvironment_InnermostWins(t *testing.T) {
	env := NewEnvironment()
	env.Define("x", true)
	outer := env.NewChild(GlobalScope, []string{"x"}, "")
	inner := env.NewChild(outer, []string{"y", "x"}, "")

	v, _ := env.Resolve(inner, "x")
	if v.Altitude != 2 || v.Index != 1 {
		t.Errorf("Resolve(x) from inner = %+v, want altitude 2 index 1", v)
	}
	v, _ = env.Resolve(outer, "x")
	if v.Altitude != 1 || v.Index != 0 {
		t.Errorf("Resolve(x) from outer = %+v, want altitude 1 index 0", v)
	}
	v, _ = env.Resolve(GlobalScope, "x")
	if v.Altitude != 0 {
		t.Errorf("Resolve(x) from global = %+v, want altitude 0", v)
	}
}

func TestEnvironment_GlobalFromThreeFramesDeep(t *testing.T) {
	env := NewEnvironment()
	env.Define("x", true)
	s := GlobalScope
	for i := 0; i < 3; i++ {
		s = env.NewChild(s, nil, "")
	}
	v, ok := env.Resolve(s, "x")
	if !ok || v.Altitude != 0 {
		t.Fatalf("Resolve(x) = %+v, %v", v, ok)
	}
	if d := env.Depth(s, v.Altitude); d != 3 {
		t.Errorf("Depth = %d, want 3", d)
	}
}

func TestEnvironment_DefineVisibleToExistingChildren(t *testing.T) {
	env := NewEnvironment()
	child := env.NewChild(GlobalScope, []string{"a"}, "")
	if _, ok := env.Resolve(child, "late"); ok {
		t.Fatal("late should not resolve yet")
	}
	env.Define("late", true)
	if _, ok := env.Resolve(child, "late"); !ok {
		t.Error("global defined after child creation should be visible from child")
	}
}

func TestEnvironment_Rollback(t *testing.T) {
	env := NewEnvironment()
	env.Define("keep", false)
	cp := env.Mark()

	env.Define("drop", true)
	env.MarkInitialized("keep")
	env.NewChild(GlobalScope, []string{"p"}, "")
	env.Rollback(cp)

	if _, ok := env.Resolve(GlobalScope, "drop"); ok {
		t.Error("drop should be rolled back")
	}
	v, ok := env.Resolve(GlobalScope, "keep")
	if !ok || v.Initialized {
		t.Errorf("keep = %+v, %v; want bound and uninitialized", v, ok)
	}
	if got := env.Globals(); len(got) != 1 {
		t.Errorf("Globals() = %v", got)
	}
	if v := env.Define("next", true); v.Index != 1 {
		t.Errorf("slot after rollback = %d, want 1", v.Index)
	}
	if s := env.NewChild(GlobalScope, nil, ""); s != 1 {
		t.Errorf("scope after rollback = %d, want 1", s)
	}
}

func TestEnvironment_InvalidScopePanics(t *testing.T) {
	env := NewEnvironment()
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	env.Resolve(Scope(5), "x")
}
