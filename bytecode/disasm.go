package bytecode

import (
	"fmt"
	"strings"
)

// DisassembleInstruction renders the instruction at pos, resolving jump and
// closure entry targets to absolute positions.
func DisassembleInstruction(code []Instruction, pos int) string {
	in := code[pos]
	switch {
	case in.Op.IsJump():
		return fmt.Sprintf("%04d  %s (-> %04d)", pos, in, pos+1+in.Arg)
	case in.Op == OpCreateClosure:
		return fmt.Sprintf("%04d  %s (entry %04d)", pos, in, pos+1+in.Arg)
	}
	return fmt.Sprintf("%04d  %s", pos, in)
}

// Disassemble returns a listing of code, one instruction per line.
func Disassemble(code []Instruction) string {
	var sb strings.Builder
	for pos := range code {
		if pos > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(DisassembleInstruction(code, pos))
	}
	return sb.String()
}

// Disassemble returns a human-readable listing of the image: globals,
// constants, then code.
func (img *Image) Disassemble() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("; skein image v%d\n", img.Version))
	if img.SessionID != "" {
		sb.WriteString(fmt.Sprintf("; session %s\n", img.SessionID))
	}
	sb.WriteString(fmt.Sprintf("; code %s\n", HashCode(img.Code).Short()))

	if len(img.Globals) > 0 {
		sb.WriteString("; Globals:\n")
		for i, name := range img.Globals {
			sb.WriteString(fmt.Sprintf(";   [%3d] %s\n", i, name))
		}
	}

	if len(img.Constants) > 0 {
		sb.WriteString("; Constants:\n")
		for i, c := range img.Constants {
			display := c.String()
			if len(display) > 40 {
				display = display[:37] + "..."
			}
			display = strings.ReplaceAll(display, "\n", "\\n")
			sb.WriteString(fmt.Sprintf(";   [%3d] %s\n", i, display))
		}
	}

	sb.WriteString("\n")
	sb.WriteString(Disassemble(img.Code))
	return sb.String()
}
