// Package value holds the constant data that quoted and self-evaluating
// syntax carries into the instruction stream. Values are plain data so an
// image can be written without knowing anything about the VM's heap.
package value

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind tags a Value.
type Kind uint8

const (
	KindNil Kind = iota // the empty list
	KindBoolean
	KindInteger
	KindReal
	KindString
	KindSymbol
	KindCharacter
	KindList
)

var kindNames = [...]string{
	KindNil:       "nil",
	KindBoolean:   "boolean",
	KindInteger:   "integer",
	KindReal:      "real",
	KindString:    "string",
	KindSymbol:    "symbol",
	KindCharacter: "character",
	KindList:      "list",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Value is a tagged constant. Only the field matching Kind is meaningful.
// A List with a non-nil Tail is an improper (dotted) list.
type Value struct {
	Kind  Kind    `cbor:"1,keyasint"`
	Bool  bool    `cbor:"2,keyasint,omitempty"`
	Int   int64   `cbor:"3,keyasint,omitempty"`
	Real  float64 `cbor:"4,keyasint,omitempty"`
	Text  string  `cbor:"5,keyasint,omitempty"` // string, symbol name
	Char  rune    `cbor:"6,keyasint,omitempty"`
	Items []Value `cbor:"7,keyasint,omitempty"`
	Tail  *Value  `cbor:"8,keyasint,omitempty"`
}

// Nil is the empty list.
var Nil = Value{Kind: KindNil}

func Boolean(b bool) Value     { return Value{Kind: KindBoolean, Bool: b} }
func Integer(i int64) Value    { return Value{Kind: KindInteger, Int: i} }
func Real(f float64) Value     { return Value{Kind: KindReal, Real: f} }
func String(s string) Value    { return Value{Kind: KindString, Text: s} }
func Symbol(name string) Value { return Value{Kind: KindSymbol, Text: name} }
func Character(r rune) Value   { return Value{Kind: KindCharacter, Char: r} }

// List builds a proper list. An empty list is Nil.
func List(items ...Value) Value {
	if len(items) == 0 {
		return Nil
	}
	return Value{Kind: KindList, Items: items}
}

// Dotted builds an improper list ending in tail. A Nil tail yields a proper list.
func Dotted(items []Value, tail Value) Value {
	if tail.Kind == KindNil {
		return List(items...)
	}
	if len(items) == 0 {
		return tail
	}
	t := tail
	return Value{Kind: KindList, Items: items, Tail: &t}
}

// Truthy reports whether v counts as true in a conditional. Only #f is false.
func (v Value) Truthy() bool {
	return v.Kind != KindBoolean || v.Bool
}

// Equal reports structural equality.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNil:
		return true
	case KindBoolean:
		return v.Bool == o.Bool
	case KindInteger:
		return v.Int == o.Int
	case KindReal:
		return v.Real == o.Real
	case KindString, KindSymbol:
		return v.Text == o.Text
	case KindCharacter:
		return v.Char == o.Char
	case KindList:
		if len(v.Items) != len(o.Items) {
			return false
		}
		for i := range v.Items {
			if !v.Items[i].Equal(o.Items[i]) {
				return false
			}
		}
		if (v.Tail == nil) != (o.Tail == nil) {
			return false
		}
		return v.Tail == nil || v.Tail.Equal(*o.Tail)
	}
	return false
}

// String renders v in Scheme external syntax.
func (v Value) String() string {
	switch v.Kind {
	case KindNil:
		return "()"
	case KindBoolean:
		if v.Bool {
			return "#t"
		}
		return "#f"
	case KindInteger:
		return strconv.FormatInt(v.Int, 10)
	case KindReal:
		s := strconv.FormatFloat(v.Real, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEnI") {
			s += "."
		}
		return s
	case KindString:
		return strconv.Quote(v.Text)
	case KindSymbol:
		return v.Text
	case KindCharacter:
		switch v.Char {
		case ' ':
			return `#\space`
		case '\n':
			return `#\newline`
		}
		return `#\` + string(v.Char)
	case KindList:
		var sb strings.Builder
		sb.WriteByte('(')
		for i, item := range v.Items {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(item.String())
		}
		if v.Tail != nil {
			sb.WriteString(" . ")
			sb.WriteString(v.Tail.String())
		}
		sb.WriteByte(')')
		return sb.String()
	}
	return fmt.Sprintf("#<unknown %s>", v.Kind)
}
