package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Lexical environment: frames addressed by handle
// ---------------------------------------------------------------------------

// Scope is a handle to a frame in an Environment. Every compile call that
// holds the same Scope sees the same frame, so a global defined while
// compiling one expression is visible to every later resolution.
type Scope int

// GlobalScope is the single global frame. It exists for the lifetime of the
// environment and has altitude 0.
const GlobalScope Scope = 0

// Variable is a resolved binding.
type Variable struct {
	Altitude    int  // frames between the binding and the global frame
	Index       int  // slot within the binding's frame
	Initialized bool // false only for a global declared ahead of its Define
}

// frame is one scope. Slots are in declaration order.
type frame struct {
	parent      Scope
	altitude    int
	names       []string
	slots       map[string]int
	initialized []bool
}

func (f *frame) lookup(name string) (int, bool) {
	idx, ok := f.slots[name]
	return idx, ok
}

func (f *frame) add(name string, initialized bool) int {
	idx := len(f.names)
	f.names = append(f.names, name)
	f.initialized = append(f.initialized, initialized)
	f.slots[name] = idx
	return idx
}

// Environment owns every frame created during a compilation session.
type Environment struct {
	frames []*frame
}

// NewEnvironment creates an environment holding only the empty global frame.
func NewEnvironment() *Environment {
	return &Environment{
		frames: []*frame{{parent: -1, slots: make(map[string]int)}},
	}
}

func (e *Environment) frame(s Scope) *frame {
	if s < 0 || int(s) >= len(e.frames) {
		panic(fmt.Sprintf("compiler: invalid scope %d", s))
	}
	return e.frames[s]
}

// Resolve finds the innermost binding of name visible from scope.
func (e *Environment) Resolve(s Scope, name string) (Variable, bool) {
	for cur := s; cur >= 0; {
		f := e.frame(cur)
		if idx, ok := f.lookup(name); ok {
			return Variable{Altitude: f.altitude, Index: idx, Initialized: f.initialized[idx]}, true
		}
		cur = f.parent
	}
	return Variable{}, false
}

// Define binds name in the global frame. Redefining a bound name reuses its
// slot and leaves its initialized state unchanged.
func (e *Environment) Define(name string, initialized bool) Variable {
	g := e.frames[GlobalScope]
	if idx, ok := g.lookup(name); ok {
		return Variable{Index: idx, Initialized: g.initialized[idx]}
	}
	idx := g.add(name, initialized)
	return Variable{Index: idx, Initialized: initialized}
}

// MarkInitialized records that the global name now always holds a value.
func (e *Environment) MarkInitialized(name string) {
	g := e.frames[GlobalScope]
	if idx, ok := g.lookup(name); ok {
		g.initialized[idx] = true
	}
}

// NewChild creates a local frame below parent whose slots are formals in
// order, followed by rest when it is not empty.
func (e *Environment) NewChild(parent Scope, formals []string, rest string) Scope {
	p := e.frame(parent)
	f := &frame{
		parent:   parent,
		altitude: p.altitude + 1,
		slots:    make(map[string]int, len(formals)+1),
	}
	for _, name := range formals {
		f.add(name, true)
	}
	if rest != "" {
		f.add(rest, true)
	}
	e.frames = append(e.frames, f)
	return Scope(len(e.frames) - 1)
}

// Altitude returns the distance of scope from the global frame.
func (e *Environment) Altitude(s Scope) int {
	return e.frame(s).altitude
}

// Depth converts a binding altitude into the number of frame hops from scope.
func (e *Environment) Depth(s Scope, altitude int) int {
	return e.frame(s).altitude - altitude
}

// Globals returns the global slot names in slot order.
func (e *Environment) Globals() []string {
	return append([]string(nil), e.frames[GlobalScope].names...)
}

// ---------------------------------------------------------------------------
// Checkpoints
// ---------------------------------------------------------------------------

// Checkpoint captures enough of an environment to undo a failed top-level
// compile.
type Checkpoint struct {
	frames      int
	globals     int
	initialized []bool
}

// Mark returns a checkpoint of the current state.
func (e *Environment) Mark() Checkpoint {
	g := e.frames[GlobalScope]
	return Checkpoint{
		frames:      len(e.frames),
		globals:     len(g.names),
		initialized: append([]bool(nil), g.initialized...),
	}
}

// Rollback discards every global slot and frame created since cp and
// restores the initialized state of the globals that existed then.
func (e *Environment) Rollback(cp Checkpoint) {
	g := e.frames[GlobalScope]
	for _, name := range g.names[cp.globals:] {
		delete(g.slots, name)
	}
	g.names = g.names[:cp.globals]
	g.initialized = append(g.initialized[:0], cp.initialized...)
	for i := cp.frames; i < len(e.frames); i++ {
		e.frames[i] = nil
	}
	e.frames = e.frames[:cp.frames]
}
