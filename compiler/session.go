package compiler

import (
	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	"github.com/chazu/skein/arena"
	"github.com/chazu/skein/bytecode"
	"github.com/chazu/skein/value"
)

// ---------------------------------------------------------------------------
// Session: the host compilation context
// ---------------------------------------------------------------------------

// Session compiles a stream of top-level units against one persistent
// environment, arena and program. Each unit compiles independently: a unit
// that fails leaves the session exactly as it was before the unit.
type Session struct {
	id      string
	env     *Environment
	arena   *arena.Arena
	program *bytecode.Builder
	comp    *Compiler
	hoist   bool
	units   int
	log     commonlog.Logger
}

// Unit is the result of compiling one top-level form.
type Unit struct {
	Index int                    // sequence number within the session
	Start int                    // position of the first instruction in the program
	Code  []bytecode.Instruction // the unit's instructions
	Hash  bytecode.Digest        // content hash of Code
}

// SessionOption configures a Session.
type SessionOption func(*sessionConfig)

type sessionConfig struct {
	opts  Options
	arena *arena.Arena
	hoist bool
	log   commonlog.Logger
}

// WithOptions sets the compiler options.
func WithOptions(opts Options) SessionOption {
	return func(c *sessionConfig) { c.opts = opts }
}

// WithArena makes the session share an existing arena, typically the one the
// reader interns quoted data into.
func WithArena(a *arena.Arena) SessionOption {
	return func(c *sessionConfig) { c.arena = a }
}

// WithHoisting controls whether definitions inside a top-level begin are
// declared before the begin's code, allowing forward references among them.
func WithHoisting(on bool) SessionOption {
	return func(c *sessionConfig) { c.hoist = on }
}

// WithLogger sets the logger used for unit diagnostics.
func WithLogger(log commonlog.Logger) SessionOption {
	return func(c *sessionConfig) { c.log = log }
}

// NewSession creates a session with an empty global frame.
func NewSession(options ...SessionOption) *Session {
	cfg := sessionConfig{
		opts:  DefaultOptions(),
		hoist: true,
	}
	for _, o := range options {
		o(&cfg)
	}
	if cfg.arena == nil {
		cfg.arena = arena.New()
	}
	if cfg.log == nil {
		cfg.log = commonlog.GetLogger("skein.session")
	}

	env := NewEnvironment()
	return &Session{
		id:      uuid.New().String(),
		env:     env,
		arena:   cfg.arena,
		program: bytecode.NewBuilder(),
		comp:    New(env, cfg.opts),
		hoist:   cfg.hoist,
		log:     cfg.log,
	}
}

// ID returns the session's unique id.
func (s *Session) ID() string { return s.id }

// Environment returns the session's environment.
func (s *Session) Environment() *Environment { return s.env }

// Arena returns the session's constant arena.
func (s *Session) Arena() *arena.Arena { return s.arena }

// Intern stores a constant and returns the handle a Quote should carry.
func (s *Session) Intern(v value.Value) arena.Handle {
	return s.arena.Intern(v)
}

// Compile compiles one top-level unit and appends it to the program. On
// failure the program and environment are restored to their state before
// the call.
func (s *Session) Compile(unit Node) (Unit, error) {
	cp := s.env.Mark()
	start := s.program.Len()

	if s.hoist {
		s.declareForward(unit)
	}
	if _, err := s.comp.Compile(unit, s.program, GlobalScope, false, true); err != nil {
		s.program.Truncate(start)
		s.env.Rollback(cp)
		s.log.Warningf("session %s: unit %d failed: %s", s.id, s.units, err)
		return Unit{}, err
	}

	code := s.program.Instructions()[start:]
	u := Unit{
		Index: s.units,
		Start: start,
		Code:  append([]bytecode.Instruction(nil), code...),
	}
	u.Hash = bytecode.HashCode(u.Code)
	s.units++
	if s.log.AllowLevel(commonlog.Debug) {
		s.log.Debugf("session %s: unit %d compiled to %d instructions (%s)\n%s",
			s.id, u.Index, len(u.Code), u.Hash.Short(), bytecode.Disassemble(u.Code))
	}
	return u, nil
}

// declareForward gives every not-yet-bound name defined directly in a
// top-level begin an unassigned global slot, so earlier siblings can refer
// to later ones through checked access.
func (s *Session) declareForward(unit Node) {
	begin, ok := unit.(*Begin)
	if !ok {
		return
	}
	for _, name := range definedNames(begin, nil) {
		if _, bound := s.env.Resolve(GlobalScope, name); bound {
			continue
		}
		v := s.env.Define(name, false)
		s.program.Emit(bytecode.DeclareGlobal(v.Index))
	}
}

// definedNames collects Define targets in b, descending into nested begins.
func definedNames(b *Begin, names []string) []string {
	for _, n := range b.Body {
		switch n := n.(type) {
		case *Define:
			names = append(names, n.Name)
		case *Begin:
			names = definedNames(n, names)
		}
	}
	return names
}

// Program returns every instruction compiled so far.
func (s *Session) Program() []bytecode.Instruction {
	return s.program.Instructions()
}

// Image packages the program with its globals and constants.
func (s *Session) Image() *bytecode.Image {
	return &bytecode.Image{
		Version:   bytecode.ImageVersion,
		SessionID: s.id,
		Globals:   s.env.Globals(),
		Constants: s.arena.Values(),
		Code:      append([]bytecode.Instruction(nil), s.program.Instructions()...),
	}
}
