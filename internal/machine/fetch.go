package machine

import "fmt"

// fetch reads the big-endian instruction word at the program counter and
// advances the program counter past it. The program counter is left
// unchanged if the word is not fully inside memory.
func (m *Machine) fetch() (uint16, error) {
	if int(m.pc)+1 >= MemorySize {
		return 0, fmt.Errorf("%w: fetching from $%04X", ErrMemoryOutOfBounds, m.pc)
	}

	high := uint16(m.memory[m.pc])
	low := uint16(m.memory[m.pc+1])
	m.pc += instructionSize
	return high<<8 | low, nil
}
