package machine

import (
	"fmt"

	"github.com/retroenv/retrogolib/log"
)

// Machine holds the complete state of a CHIP-8 interpreter.
type Machine struct {
	logger *log.Logger
	random RandomSource

	memory    [MemorySize]byte
	registers [RegisterCount]uint8
	index     uint16
	pc        uint16

	stack [StackSize]uint16
	sp    uint8

	delayTimer uint8
	soundTimer uint8

	keys    [KeyCount]bool
	display [DisplaySize]bool

	awaitingKey bool
	keyRegister uint8
}

// Option configures a machine at construction time.
type Option func(*Machine)

// WithRandom sets the source of random bytes for the CXNN instruction.
func WithRandom(random RandomSource) Option {
	return func(m *Machine) {
		m.random = random
	}
}

// WithLogger sets the logger that executed instructions are traced to.
func WithLogger(logger *log.Logger) Option {
	return func(m *Machine) {
		m.logger = logger
	}
}

// New returns a machine in its initial state with the font loaded.
func New(opts ...Option) *Machine {
	m := &Machine{}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = log.NewNop()
	}
	if m.random == nil {
		m.random = NewRandom()
	}

	m.Reset()
	return m
}

// Reset returns the machine to its initial state. Programs need to be
// loaded again after a reset.
func (m *Machine) Reset() {
	m.memory = [MemorySize]byte{}
	m.registers = [RegisterCount]uint8{}
	m.index = 0
	m.pc = ProgramStart
	m.stack = [StackSize]uint16{}
	m.sp = 0
	m.delayTimer = 0
	m.soundTimer = 0
	m.keys = [KeyCount]bool{}
	m.display = [DisplaySize]bool{}
	m.awaitingKey = false
	m.keyRegister = 0

	copy(m.memory[FontAddress:], fontSet[:])
}

// Load copies the program into memory starting at ProgramStart.
func (m *Machine) Load(program []byte) error {
	if len(program) > MaxProgramSize {
		return fmt.Errorf("%w: %d bytes, maximum is %d", ErrProgramTooLarge, len(program), MaxProgramSize)
	}
	copy(m.memory[ProgramStart:], program)
	return nil
}

// SetKey updates the pressed state of a keypad key.
func (m *Machine) SetKey(index uint8, pressed bool) error {
	if index >= KeyCount {
		return fmt.Errorf("%w: %d", ErrInvalidKey, index)
	}
	m.keys[index] = pressed
	return nil
}

// Key returns whether the keypad key is pressed. Invalid indexes are
// reported as not pressed.
func (m *Machine) Key(index uint8) bool {
	if index >= KeyCount {
		return false
	}
	return m.keys[index]
}

// Display returns a copy of the framebuffer in row-major order.
func (m *Machine) Display() [DisplaySize]bool {
	return m.display
}

// Pixel returns the state of the pixel at the given coordinates, which wrap
// around the display edges.
func (m *Machine) Pixel(x, y int) bool {
	x %= DisplayWidth
	if x < 0 {
		x += DisplayWidth
	}
	y %= DisplayHeight
	if y < 0 {
		y += DisplayHeight
	}
	return m.display[y*DisplayWidth+x]
}

// PC returns the address of the next instruction to fetch.
func (m *Machine) PC() uint16 {
	return m.pc
}

// I returns the index register.
func (m *Machine) I() uint16 {
	return m.index
}

// Register returns the value of register VX, only the low nibble of x is used.
func (m *Machine) Register(x uint8) uint8 {
	return m.registers[x&0xF]
}

// DelayTimer returns the current delay timer value.
func (m *Machine) DelayTimer() uint8 {
	return m.delayTimer
}

// SoundTimer returns the current sound timer value.
func (m *Machine) SoundTimer() uint8 {
	return m.soundTimer
}

// StackDepth returns the number of addresses on the call stack.
func (m *Machine) StackDepth() int {
	return int(m.sp)
}

// AwaitingKey returns whether the machine is blocked in a FX0A instruction
// until a key gets pressed. Ticks do not advance the program counter while
// this is set.
func (m *Machine) AwaitingKey() bool {
	return m.awaitingKey
}

// Memory returns the byte at the given address.
func (m *Machine) Memory(address uint16) (byte, error) {
	if int(address) >= MemorySize {
		return 0, fmt.Errorf("%w: $%04X", ErrMemoryOutOfBounds, address)
	}
	return m.memory[address], nil
}

// State is a value snapshot of the machine for debugging output.
type State struct {
	Registers   [RegisterCount]uint8
	Stack       []uint16
	I           uint16
	PC          uint16
	DelayTimer  uint8
	SoundTimer  uint8
	Keys        [KeyCount]bool
	AwaitingKey bool
}

// State returns a snapshot of the registers, stack, timers and keypad.
func (m *Machine) State() State {
	stack := make([]uint16, m.sp)
	copy(stack, m.stack[:m.sp])

	return State{
		Registers:   m.registers,
		Stack:       stack,
		I:           m.index,
		PC:          m.pc,
		DelayTimer:  m.delayTimer,
		SoundTimer:  m.soundTimer,
		Keys:        m.keys,
		AwaitingKey: m.awaitingKey,
	}
}
