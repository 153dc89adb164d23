package compiler

import "github.com/chazu/skein/arena"

// ---------------------------------------------------------------------------
// AST: syntax elements handed over by the reader
// ---------------------------------------------------------------------------

// Node is the interface implemented by all syntax elements. Nodes are built
// by the reader and never mutated by the compiler. Sequences (Begin and
// Lambda bodies) are never empty.
type Node interface {
	node() // marker method
}

// Quote is a literal or quoted datum already interned in the arena.
type Quote struct {
	Handle arena.Handle
}

// If is a conditional. Else is nil when there is no alternative.
type If struct {
	Cond Node
	Then Node
	Else Node
}

// Begin is a sequence; its value is the value of the last expression.
type Begin struct {
	Body []Node
}

// Set assigns to an existing variable.
type Set struct {
	Name  string
	Value Node
}

// Reference reads a variable.
type Reference struct {
	Name string
}

// Lambda creates a closure. Rest names the variadic parameter; it is empty
// when the lambda takes a fixed number of arguments.
type Lambda struct {
	Formals []string
	Rest    string
	Body    []Node
}

// Define introduces a top-level variable.
type Define struct {
	Name  string
	Value Node
}

// Application calls Function with Args, evaluated left to right.
type Application struct {
	Function Node
	Args     []Node
}

func (*Quote) node()       {}
func (*If) node()          {}
func (*Begin) node()       {}
func (*Set) node()         {}
func (*Reference) node()   {}
func (*Lambda) node()      {}
func (*Define) node()      {}
func (*Application) node() {}

// Variadic reports whether the lambda has a rest parameter.
func (l *Lambda) Variadic() bool {
	return l.Rest != ""
}
