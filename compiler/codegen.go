// Package compiler translates syntax trees into the linear instruction
// stream defined by package bytecode, resolving every variable to a static
// address through a lexical Environment.
package compiler

import (
	"github.com/chazu/skein/bytecode"
)

// ---------------------------------------------------------------------------
// Codegen: compile syntax elements to instructions
// ---------------------------------------------------------------------------

// Options controls which forms the compiler accepts.
type Options struct {
	// Variadic enables lambdas with a rest parameter.
	Variadic bool
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{Variadic: true}
}

// Compiler compiles syntax elements against a shared environment.
type Compiler struct {
	env  *Environment
	opts Options
}

// New creates a compiler resolving names through env.
func New(env *Environment, opts Options) *Compiler {
	return &Compiler{env: env, opts: opts}
}

// Environment returns the environment the compiler resolves against.
func (c *Compiler) Environment() *Environment {
	return c.env
}

// Compile appends the instructions for tree to b and returns how many were
// appended. scope is the frame tree is compiled in. tail marks tree as being
// in tail position of a function body; toplevel marks it as a top-level
// form, where definitions are allowed. Both at once is a caller bug.
//
// On error b may hold a partial translation; the caller discards it.
func (c *Compiler) Compile(tree Node, b *bytecode.Builder, scope Scope, tail, toplevel bool) (int, error) {
	if tail && toplevel {
		panic("compiler: toplevel expression is not in tail position")
	}
	start := b.Len()
	var err error

	switch n := tree.(type) {
	case *Quote:
		b.Emit(bytecode.Constant(int(n.Handle)))
	case *If:
		err = c.compileIf(n, b, scope, tail)
	case *Begin:
		_, err = c.compileSequence(n.Body, b, scope, tail, toplevel)
	case *Set:
		err = c.compileSet(n, b, scope)
	case *Reference:
		err = c.compileReference(n, b, scope)
	case *Lambda:
		err = c.compileLambda(n, b, scope)
	case *Define:
		err = c.compileDefine(n, b, scope, toplevel)
	case *Application:
		err = c.compileApplication(n, b, scope, tail)
	default:
		panic("compiler: unknown syntax element")
	}

	return b.Len() - start, err
}

// compileSequence compiles all but the last expression outside tail
// position; the last inherits tail. An empty sequence is a reader bug.
func (c *Compiler) compileSequence(body []Node, b *bytecode.Builder, scope Scope, tail, toplevel bool) (int, error) {
	if len(body) == 0 {
		panic("compiler: empty sequence")
	}
	start := b.Len()
	last := len(body) - 1
	for _, expr := range body[:last] {
		if _, err := c.Compile(expr, b, scope, false, toplevel); err != nil {
			return b.Len() - start, err
		}
	}
	if _, err := c.Compile(body[last], b, scope, tail, toplevel); err != nil {
		return b.Len() - start, err
	}
	return b.Len() - start, nil
}

func (c *Compiler) compileIf(n *If, b *bytecode.Builder, scope Scope, tail bool) error {
	if _, err := c.Compile(n.Cond, b, scope, false, false); err != nil {
		return err
	}
	condJump := b.Placeholder()
	if _, err := c.Compile(n.Then, b, scope, tail, false); err != nil {
		return err
	}
	if n.Else != nil {
		endJump := b.Placeholder()
		// The false branch starts right after the jump over it.
		b.PatchJump(condJump, bytecode.OpJumpFalse)
		if _, err := c.Compile(n.Else, b, scope, tail, false); err != nil {
			return err
		}
		b.PatchJump(endJump, bytecode.OpJump)
		return nil
	}
	b.PatchJump(condJump, bytecode.OpJumpFalse)
	return nil
}

func (c *Compiler) compileSet(n *Set, b *bytecode.Builder, scope Scope) error {
	v, ok := c.env.Resolve(scope, n.Name)
	if !ok {
		return &UndefinedVariableError{Name: n.Name}
	}
	if _, err := c.Compile(n.Value, b, scope, false, false); err != nil {
		return err
	}
	b.Emit(c.setInstruction(scope, v))
	return nil
}

func (c *Compiler) compileReference(n *Reference, b *bytecode.Builder, scope Scope) error {
	v, ok := c.env.Resolve(scope, n.Name)
	if !ok {
		return &UndefinedVariableError{Name: n.Name}
	}
	b.Emit(c.getInstruction(scope, v))
	return nil
}

// compileLambda emits the closure creation, a jump over the body for
// straight-line execution, the prologue, the body and a return.
func (c *Compiler) compileLambda(n *Lambda, b *bytecode.Builder, scope Scope) error {
	arity := len(n.Formals)
	dotted := n.Variadic()
	if dotted && !c.opts.Variadic {
		return &UnsupportedFormError{Reason: "variadic lambda (rest parameter " + n.Rest + ") is disabled"}
	}

	b.Emit(bytecode.CreateClosure(1))
	skip := b.Placeholder()
	b.Emit(bytecode.CheckArity(arity, dotted))
	if dotted {
		b.Emit(bytecode.PackFrame(arity))
	}
	b.Emit(bytecode.ExtendEnv())

	body := c.env.NewChild(scope, n.Formals, n.Rest)
	if _, err := c.compileSequence(n.Body, b, body, true, false); err != nil {
		return err
	}
	b.Emit(bytecode.Return())
	b.PatchJump(skip, bytecode.OpJump)
	return nil
}

// compileDefine handles top-level definitions. A name already bound in the
// global frame is assigned in place; a new name gets a fresh global slot
// that the frame extension fills.
func (c *Compiler) compileDefine(n *Define, b *bytecode.Builder, scope Scope, toplevel bool) error {
	if !toplevel {
		return &UnsupportedFormError{Reason: "define of " + n.Name + " outside top level"}
	}
	if v, ok := c.env.Resolve(GlobalScope, n.Name); ok {
		if _, err := c.Compile(n.Value, b, scope, false, false); err != nil {
			return err
		}
		b.Emit(c.setInstruction(GlobalScope, v))
		c.env.MarkInitialized(n.Name)
		return nil
	}

	// The binding exists before the value compiles so a lambda value can
	// refer to itself.
	c.env.Define(n.Name, true)
	if _, err := c.Compile(n.Value, b, scope, false, false); err != nil {
		return err
	}
	b.Emit(bytecode.ExtendFrame())
	return nil
}

// compileApplication pushes the function and arguments, builds the frame
// and invokes. Outside tail position the caller's environment is saved
// around the call; in tail position it is not, so the callee replaces the
// caller's frame.
func (c *Compiler) compileApplication(n *Application, b *bytecode.Builder, scope Scope, tail bool) error {
	if _, err := c.Compile(n.Function, b, scope, false, false); err != nil {
		return err
	}
	b.Emit(bytecode.PushValue())
	for _, arg := range n.Args {
		if _, err := c.Compile(arg, b, scope, false, false); err != nil {
			return err
		}
		b.Emit(bytecode.PushValue())
	}
	b.Emit(bytecode.CreateFrame(len(n.Args)))
	b.Emit(bytecode.PopFunction())
	if !tail {
		b.Emit(bytecode.PreserveEnv())
	}
	b.Emit(bytecode.Invoke(tail))
	if !tail {
		b.Emit(bytecode.RestoreEnv())
	}
	return nil
}

// ---------------------------------------------------------------------------
// Variable access
// ---------------------------------------------------------------------------

func (c *Compiler) getInstruction(scope Scope, v Variable) bytecode.Instruction {
	switch {
	case v.Altitude == 0 && v.Initialized:
		return bytecode.GlobalGet(v.Index)
	case v.Altitude == 0:
		return bytecode.CheckedGlobalGet(v.Index)
	case v.Initialized:
		return bytecode.LocalGet(c.env.Depth(scope, v.Altitude), v.Index)
	default:
		return bytecode.CheckedLocalGet(c.env.Depth(scope, v.Altitude), v.Index)
	}
}

func (c *Compiler) setInstruction(scope Scope, v Variable) bytecode.Instruction {
	if v.Altitude == 0 {
		return bytecode.GlobalSet(v.Index)
	}
	return bytecode.LocalSet(c.env.Depth(scope, v.Altitude), v.Index)
}
