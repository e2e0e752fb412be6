package machine

import "fmt"

const spriteWidth = 8

// draw XORs an n rows high sprite read from memory at I onto the
// framebuffer at (VX, VY). Coordinates wrap around both display edges.
// VF is set to 1 if any pixel was switched off.
func (m *Machine) draw(x, y, n uint8) error {
	start := int(m.index)
	if n > 0 && start+int(n) > MemorySize {
		return fmt.Errorf("%w: sprite at $%04X with %d rows", ErrMemoryOutOfBounds, m.index, n)
	}

	originX := int(m.registers[x])
	originY := int(m.registers[y])
	var collision uint8

	for row := range int(n) {
		sprite := m.memory[start+row]
		py := (originY + row) % DisplayHeight

		for col := range spriteWidth {
			if sprite&(0x80>>col) == 0 {
				continue
			}

			px := (originX + col) % DisplayWidth
			offset := py*DisplayWidth + px
			if m.display[offset] {
				collision = 1
			}
			m.display[offset] = !m.display[offset]
		}
	}

	m.registers[FlagRegister] = collision
	return nil
}

func (m *Machine) clearDisplay() {
	m.display = [DisplaySize]bool{}
}
