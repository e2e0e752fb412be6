// Package machine implements a CHIP-8 interpreter.
//
// # Machine State
//
// A Machine owns 4KB of memory with the font table at FontAddress, sixteen
// 8-bit registers V0-VF, the index register I, the program counter, a call
// stack of StackSize entries, the delay and sound timers, the keypad and a
// DisplayWidth x DisplayHeight monochrome framebuffer. Programs are loaded
// to ProgramStart.
//
// # Driving the Machine
//
// The host calls Tick once per emulated instruction at a rate of its
// choosing and TickTimers at a fixed 60 Hz, independent of each other:
//
//	m := machine.New()
//	if err := m.Load(program); err != nil {
//		return err
//	}
//	for range instructionsPerFrame {
//		if err := m.Tick(); err != nil {
//			return err
//		}
//	}
//	if m.TickTimers() {
//		beep()
//	}
//
// Tick errors are *ExecutionError values wrapping ErrUnknownOpcode,
// ErrStackOverflow, ErrStackUnderflow, ErrMemoryOutOfBounds,
// ErrReadOnlyMemory or ErrInvalidKey. The failed instruction has been
// consumed, so the host can halt, Reset or continue with the next one.
//
// The FX0A instruction does not block the caller. The machine enters an
// awaiting state reported by AwaitingKey instead, and Tick leaves the program
// counter on the instruction until SetKey reports a pressed key.
//
// # Concurrency
//
// A Machine is not safe for concurrent use. The goroutine calling Tick,
// TickTimers, SetKey and Reset is the only writer of the machine state. Hosts
// that render or read input on other goroutines have to synchronize access
// themselves, for example by copying Display under a lock after each frame.
package machine
