// Package bytecode defines the instruction stream produced by the compiler
// and consumed by the VM, together with a builder for emitting and
// back-patching it, a disassembler, and the on-disk image format.
//
// Instructions are fixed-size values rather than packed bytes. Jump offsets
// are relative: an offset of n skips the n instructions that follow the jump.
package bytecode

import "fmt"

// ---------------------------------------------------------------------------
// Opcode definitions
// ---------------------------------------------------------------------------

// Opcode identifies an instruction.
type Opcode byte

// Misc
const (
	OpNoOp Opcode = 0x00 // no operation; placeholder for back-patching
)

// Constants
const (
	OpConstant Opcode = 0x10 // load constant (arena handle)
)

// Control Flow
const (
	OpJump      Opcode = 0x20 // unconditional relative jump
	OpJumpFalse Opcode = 0x21 // relative jump if value is false
)

// Variable Access
const (
	OpGlobalGet        Opcode = 0x30 // read global slot
	OpCheckedGlobalGet Opcode = 0x31 // read global slot, check initialized at run time
	OpLocalGet         Opcode = 0x32 // read local slot (depth, index)
	OpCheckedLocalGet  Opcode = 0x33 // read local slot, check initialized at run time
	OpGlobalSet        Opcode = 0x34 // write global slot
	OpLocalSet         Opcode = 0x35 // write local slot (depth, index)
)

// Functions
const (
	OpCreateClosure Opcode = 0x40 // create closure; entry point relative to the next instruction
	OpCheckArity    Opcode = 0x41 // check argument count (arity, dotted)
	OpPackFrame     Opcode = 0x42 // collect arguments past arity into a rest list
	OpReturn        Opcode = 0x43 // return from closure
	OpPushValue     Opcode = 0x44 // push value onto the argument stack
	OpPopFunction   Opcode = 0x45 // pop the function to invoke
	OpCreateFrame   Opcode = 0x46 // create activation frame from n pushed arguments
	OpInvoke        Opcode = 0x47 // invoke function (tail flag)
)

// Environment
const (
	OpExtendEnv     Opcode = 0x50 // enter the new frame as the current environment
	OpExtendFrame   Opcode = 0x51 // grow the global frame by one slot holding the value
	OpDeclareGlobal Opcode = 0x52 // grow the global frame by one unassigned slot
	OpPreserveEnv   Opcode = 0x53 // save the current environment
	OpRestoreEnv    Opcode = 0x54 // restore the saved environment
)

// ---------------------------------------------------------------------------
// Opcode metadata
// ---------------------------------------------------------------------------

// Operands describes which Instruction fields an opcode uses.
type Operands uint8

const (
	OperandsNone       Operands = iota
	OperandsArg                 // Arg only
	OperandsDepthArg            // Depth and Arg
	OperandsArgFlag             // Arg and Flag
	OperandsFlag                // Flag only
	OperandsJumpOffset          // Arg is a relative jump offset
)

// OpcodeInfo holds metadata about an opcode.
type OpcodeInfo struct {
	Name     string
	Operands Operands
}

var opcodeTable = map[Opcode]OpcodeInfo{
	OpNoOp: {"NOOP", OperandsNone},

	OpConstant: {"CONSTANT", OperandsArg},

	OpJump:      {"JUMP", OperandsJumpOffset},
	OpJumpFalse: {"JUMP_FALSE", OperandsJumpOffset},

	OpGlobalGet:        {"GLOBAL_GET", OperandsArg},
	OpCheckedGlobalGet: {"CHECKED_GLOBAL_GET", OperandsArg},
	OpLocalGet:         {"LOCAL_GET", OperandsDepthArg},
	OpCheckedLocalGet:  {"CHECKED_LOCAL_GET", OperandsDepthArg},
	OpGlobalSet:        {"GLOBAL_SET", OperandsArg},
	OpLocalSet:         {"LOCAL_SET", OperandsDepthArg},

	OpCreateClosure: {"CREATE_CLOSURE", OperandsArg},
	OpCheckArity:    {"CHECK_ARITY", OperandsArgFlag},
	OpPackFrame:     {"PACK_FRAME", OperandsArg},
	OpReturn:        {"RETURN", OperandsNone},
	OpPushValue:     {"PUSH_VALUE", OperandsNone},
	OpPopFunction:   {"POP_FUNCTION", OperandsNone},
	OpCreateFrame:   {"CREATE_FRAME", OperandsArg},
	OpInvoke:        {"INVOKE", OperandsFlag},

	OpExtendEnv:     {"EXTEND_ENV", OperandsNone},
	OpExtendFrame:   {"EXTEND_FRAME", OperandsNone},
	OpDeclareGlobal: {"DECLARE_GLOBAL", OperandsArg},
	OpPreserveEnv:   {"PRESERVE_ENV", OperandsNone},
	OpRestoreEnv:    {"RESTORE_ENV", OperandsNone},
}

// Info returns the metadata for an opcode.
func (op Opcode) Info() OpcodeInfo {
	if info, ok := opcodeTable[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN_%02X", byte(op))}
}

// Name returns the human-readable name for an opcode.
func (op Opcode) Name() string {
	return op.Info().Name
}

// String implements the Stringer interface.
func (op Opcode) String() string {
	return op.Name()
}

// IsJump reports whether op carries a relative jump offset.
func (op Opcode) IsJump() bool {
	return op.Info().Operands == OperandsJumpOffset
}

// ---------------------------------------------------------------------------
// Instructions
// ---------------------------------------------------------------------------

// Instruction is one element of the instruction stream. Which operand fields
// are meaningful depends on Op; see OpcodeInfo.Operands.
type Instruction struct {
	_     struct{} `cbor:",toarray"`
	Op    Opcode
	Arg   int  // constant handle, slot index, jump offset, arity or frame size
	Depth int  // frame hops for local variable access
	Flag  bool // tail call for INVOKE, dotted for CHECK_ARITY
}

func NoOp() Instruction                 { return Instruction{Op: OpNoOp} }
func Constant(handle int) Instruction   { return Instruction{Op: OpConstant, Arg: handle} }
func Jump(offset int) Instruction       { return Instruction{Op: OpJump, Arg: offset} }
func JumpFalse(offset int) Instruction  { return Instruction{Op: OpJumpFalse, Arg: offset} }
func GlobalGet(index int) Instruction   { return Instruction{Op: OpGlobalGet, Arg: index} }
func GlobalSet(index int) Instruction   { return Instruction{Op: OpGlobalSet, Arg: index} }
func CreateClosure(entry int) Instruction {
	return Instruction{Op: OpCreateClosure, Arg: entry}
}
func CheckedGlobalGet(index int) Instruction {
	return Instruction{Op: OpCheckedGlobalGet, Arg: index}
}
func LocalGet(depth, index int) Instruction {
	return Instruction{Op: OpLocalGet, Depth: depth, Arg: index}
}
func CheckedLocalGet(depth, index int) Instruction {
	return Instruction{Op: OpCheckedLocalGet, Depth: depth, Arg: index}
}
func LocalSet(depth, index int) Instruction {
	return Instruction{Op: OpLocalSet, Depth: depth, Arg: index}
}
func CheckArity(arity int, dotted bool) Instruction {
	return Instruction{Op: OpCheckArity, Arg: arity, Flag: dotted}
}
func PackFrame(arity int) Instruction     { return Instruction{Op: OpPackFrame, Arg: arity} }
func Return() Instruction                 { return Instruction{Op: OpReturn} }
func PushValue() Instruction              { return Instruction{Op: OpPushValue} }
func PopFunction() Instruction            { return Instruction{Op: OpPopFunction} }
func CreateFrame(n int) Instruction       { return Instruction{Op: OpCreateFrame, Arg: n} }
func Invoke(tail bool) Instruction        { return Instruction{Op: OpInvoke, Flag: tail} }
func ExtendEnv() Instruction              { return Instruction{Op: OpExtendEnv} }
func ExtendFrame() Instruction            { return Instruction{Op: OpExtendFrame} }
func DeclareGlobal(index int) Instruction { return Instruction{Op: OpDeclareGlobal, Arg: index} }
func PreserveEnv() Instruction            { return Instruction{Op: OpPreserveEnv} }
func RestoreEnv() Instruction             { return Instruction{Op: OpRestoreEnv} }

// String renders the instruction without a position.
func (in Instruction) String() string {
	info := in.Op.Info()
	switch info.Operands {
	case OperandsArg, OperandsJumpOffset:
		return fmt.Sprintf("%s %d", info.Name, in.Arg)
	case OperandsDepthArg:
		return fmt.Sprintf("%s depth=%d index=%d", info.Name, in.Depth, in.Arg)
	case OperandsArgFlag:
		if in.Flag {
			return fmt.Sprintf("%s %d+", info.Name, in.Arg)
		}
		return fmt.Sprintf("%s %d", info.Name, in.Arg)
	case OperandsFlag:
		if in.Flag {
			return info.Name + " tail"
		}
		return info.Name
	}
	return info.Name
}
