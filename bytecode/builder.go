package bytecode

import "fmt"

// Builder accumulates an instruction stream. Forward jumps are emitted as a
// NoOp placeholder and patched once the length of the span they skip is
// known; the patch is purely local so no separate linking pass exists.
type Builder struct {
	code []Instruction
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{code: make([]Instruction, 0, 64)}
}

// Instructions returns the emitted instructions.
func (b *Builder) Instructions() []Instruction {
	return b.code
}

// Len returns the number of emitted instructions.
func (b *Builder) Len() int {
	return len(b.code)
}

// Emit appends an instruction and returns its position.
func (b *Builder) Emit(in Instruction) int {
	b.code = append(b.code, in)
	return len(b.code) - 1
}

// Placeholder emits a NoOp to be overwritten later and returns its position.
func (b *Builder) Placeholder() int {
	return b.Emit(NoOp())
}

// PatchJump overwrites the placeholder at pos with a jump of kind op whose
// target is the current end of the stream.
func (b *Builder) PatchJump(pos int, op Opcode) {
	if !op.IsJump() {
		panic(fmt.Sprintf("bytecode: PatchJump with non-jump opcode %s", op))
	}
	if b.code[pos].Op != OpNoOp {
		panic(fmt.Sprintf("bytecode: patching non-placeholder %s at %d", b.code[pos], pos))
	}
	b.code[pos] = Instruction{Op: op, Arg: len(b.code) - pos - 1}
}

// At returns the instruction at pos.
func (b *Builder) At(pos int) Instruction {
	return b.code[pos]
}

// Truncate discards everything emitted at or after n.
func (b *Builder) Truncate(n int) {
	b.code = b.code[:n]
}
