package machine

import (
	"context"
	"fmt"

	"github.com/retroenv/retrochip8/internal/disasm"
	"github.com/retroenv/retrogolib/log"
)

// Tick executes exactly one instruction. While the machine is awaiting a
// key press, Tick only checks the keypad and completes the pending FX0A
// instruction once a key is pressed.
// Errors are returned as *ExecutionError wrapping one of the package errors,
// the machine state is not modified by a failed instruction apart from the
// program counter having been advanced past it.
func (m *Machine) Tick() error {
	if m.awaitingKey {
		m.resumeKeyWait()
		return nil
	}

	address := m.pc
	opcode, err := m.fetch()
	if err != nil {
		return &ExecutionError{Address: address, Err: err}
	}

	if m.logger.Enabled(context.Background(), log.TraceLevel) {
		m.logger.Trace("Executing instruction",
			log.Hex("address", address),
			log.Hex("opcode", opcode),
			log.String("instruction", disasm.Format(opcode)),
		)
	}

	if err := m.execute(opcode); err != nil {
		return &ExecutionError{Address: address, Opcode: opcode, Err: err, decoded: true}
	}
	return nil
}

// execute decodes the instruction word into its nibbles and runs the
// matching instruction.
func (m *Machine) execute(opcode uint16) error {
	x := uint8(opcode>>8) & 0xF
	y := uint8(opcode>>4) & 0xF
	n := uint8(opcode) & 0xF
	nn := uint8(opcode)
	nnn := opcode & 0x0FFF

	switch opcode >> 12 {
	case 0x0:
		return m.executeSystem(opcode)

	case 0x1:
		m.pc = nnn

	case 0x2:
		if err := m.push(m.pc); err != nil {
			return err
		}
		m.pc = nnn

	case 0x3:
		m.skipIf(m.registers[x] == nn)

	case 0x4:
		m.skipIf(m.registers[x] != nn)

	case 0x5:
		if n != 0 {
			return ErrUnknownOpcode
		}
		m.skipIf(m.registers[x] == m.registers[y])

	case 0x6:
		m.registers[x] = nn

	case 0x7:
		m.registers[x] += nn

	case 0x8:
		return m.executeArithmetic(x, y, n)

	case 0x9:
		if n != 0 {
			return ErrUnknownOpcode
		}
		m.skipIf(m.registers[x] != m.registers[y])

	case 0xA:
		m.index = nnn

	case 0xB:
		m.pc = uint16(m.registers[0]) + nnn

	case 0xC:
		m.registers[x] = m.random.Byte() & nn

	case 0xD:
		return m.draw(x, y, n)

	case 0xE:
		return m.executeKeypad(x, nn)

	case 0xF:
		return m.executeMisc(x, nn)
	}
	return nil
}

func (m *Machine) executeSystem(opcode uint16) error {
	switch opcode {
	case 0x0000:

	case 0x00E0:
		m.clearDisplay()

	case 0x00EE:
		address, err := m.pop()
		if err != nil {
			return err
		}
		m.pc = address

	default:
		return ErrUnknownOpcode
	}
	return nil
}

// executeArithmetic runs the 8XYN register instructions. The flag register
// is always written last so that the flag wins if X is VF.
func (m *Machine) executeArithmetic(x, y, n uint8) error {
	vx := m.registers[x]
	vy := m.registers[y]

	switch n {
	case 0x0:
		m.registers[x] = vy

	case 0x1:
		m.registers[x] = vx | vy

	case 0x2:
		m.registers[x] = vx & vy

	case 0x3:
		m.registers[x] = vx ^ vy

	case 0x4:
		sum := uint16(vx) + uint16(vy)
		m.registers[x] = uint8(sum)
		m.registers[FlagRegister] = boolToFlag(sum > 0xFF)

	case 0x5:
		m.registers[x] = vx - vy
		m.registers[FlagRegister] = boolToFlag(vx >= vy)

	case 0x6:
		m.registers[x] = vx >> 1
		m.registers[FlagRegister] = vx & 0x01

	case 0x7:
		m.registers[x] = vy - vx
		m.registers[FlagRegister] = boolToFlag(vy >= vx)

	case 0xE:
		m.registers[x] = vx << 1
		m.registers[FlagRegister] = vx >> 7

	default:
		return ErrUnknownOpcode
	}
	return nil
}

func (m *Machine) executeKeypad(x, nn uint8) error {
	key := m.registers[x]
	if nn != 0x9E && nn != 0xA1 {
		return ErrUnknownOpcode
	}
	if key >= KeyCount {
		return fmt.Errorf("%w: V%X is %d", ErrInvalidKey, x, key)
	}

	if nn == 0x9E {
		m.skipIf(m.keys[key])
	} else {
		m.skipIf(!m.keys[key])
	}
	return nil
}

func (m *Machine) executeMisc(x, nn uint8) error {
	switch nn {
	case 0x07:
		m.registers[x] = m.delayTimer

	case 0x0A:
		m.waitForKey(x)

	case 0x15:
		m.delayTimer = m.registers[x]

	case 0x18:
		m.soundTimer = m.registers[x]

	case 0x1E:
		m.index += uint16(m.registers[x])

	case 0x29:
		m.index = FontAddress + GlyphSize*uint16(m.registers[x]&0xF)

	case 0x33:
		return m.storeBCD(x)

	case 0x55:
		return m.storeRegisters(x)

	case 0x65:
		return m.loadRegisters(x)

	default:
		return ErrUnknownOpcode
	}
	return nil
}

func (m *Machine) skipIf(condition bool) {
	if condition {
		m.pc += instructionSize
	}
}

// waitForKey completes immediately if a key is held, otherwise it rewinds
// the program counter to the instruction and enters the awaiting state.
func (m *Machine) waitForKey(x uint8) {
	if key, ok := m.pressedKey(); ok {
		m.registers[x] = key
		return
	}

	m.awaitingKey = true
	m.keyRegister = x
	m.pc -= instructionSize
}

func (m *Machine) resumeKeyWait() {
	key, ok := m.pressedKey()
	if !ok {
		return
	}

	m.registers[m.keyRegister] = key
	m.awaitingKey = false
	m.keyRegister = 0
	m.pc += instructionSize
}

// pressedKey returns the lowest pressed key.
func (m *Machine) pressedKey() (uint8, bool) {
	for i, pressed := range m.keys {
		if pressed {
			return uint8(i), true
		}
	}
	return 0, false
}

func (m *Machine) storeBCD(x uint8) error {
	if err := checkWrite(m.index, 3); err != nil {
		return err
	}

	value := m.registers[x]
	m.memory[m.index] = value / 100
	m.memory[m.index+1] = value / 10 % 10
	m.memory[m.index+2] = value % 10
	return nil
}

func (m *Machine) storeRegisters(x uint8) error {
	count := int(x) + 1
	if err := checkWrite(m.index, count); err != nil {
		return err
	}

	copy(m.memory[m.index:], m.registers[:count])
	return nil
}

func (m *Machine) loadRegisters(x uint8) error {
	count := int(x) + 1
	if err := checkRead(m.index, count); err != nil {
		return err
	}

	copy(m.registers[:count], m.memory[m.index:])
	return nil
}

func checkRead(start uint16, count int) error {
	if int(start)+count > MemorySize {
		return fmt.Errorf("%w: reading %d bytes from $%04X", ErrMemoryOutOfBounds, count, start)
	}
	return nil
}

// checkWrite validates that the range is inside memory and does not
// overlap the font table.
func checkWrite(start uint16, count int) error {
	end := int(start) + count
	if end > MemorySize {
		return fmt.Errorf("%w: writing %d bytes to $%04X", ErrMemoryOutOfBounds, count, start)
	}
	if int(start) < FontAddress+FontSize && end > FontAddress {
		return fmt.Errorf("%w: writing %d bytes to $%04X", ErrReadOnlyMemory, count, start)
	}
	return nil
}

func boolToFlag(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
