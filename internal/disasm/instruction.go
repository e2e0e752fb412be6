package disasm

import (
	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Instruction is a decoded CHIP-8 instruction word.
type Instruction struct {
	ins    *chip8.Instruction
	opcode uint16
}

// Name returns the instruction mnemonic.
func (i Instruction) Name() string {
	if i.ins == nil {
		return ""
	}
	return i.ins.Name
}

// Opcode returns the instruction word.
func (i Instruction) Opcode() uint16 {
	return i.opcode
}

// IsCall returns true if the instruction is a subroutine call.
func (i Instruction) IsCall() bool {
	return i.ins == chip8.CallInst
}

// IsJump returns true for both the absolute and the V0 relative jump.
func (i Instruction) IsJump() bool {
	return i.ins == chip8.JpInst
}

// IsReturn returns true if the instruction returns from a subroutine.
func (i Instruction) IsReturn() bool {
	return i.ins == chip8.RetInst
}

// IsSkip returns true if the instruction conditionally skips the next instruction.
func (i Instruction) IsSkip() bool {
	if i.ins == nil {
		return false
	}
	return chip8.SkipInstructions.Contains(i.ins.Name)
}

// Target returns the absolute address that a jump, call or load of I
// refers to. The V0 relative jump has no static target.
func (i Instruction) Target() (uint16, bool) {
	switch i.opcode & 0xF000 {
	case 0x1000, 0x2000, 0xA000:
		return i.opcode & 0x0FFF, true
	default:
		return 0, false
	}
}
