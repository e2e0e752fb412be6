// Package options contains the program options.
package options

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/retroenv/retrogolib/set"
)

// Default option values used when neither a flag nor the config file sets them.
const (
	DefaultInstructionsPerFrame = 10
	DefaultKeyHoldFrames        = 6
	DefaultErrorPolicy          = ErrorPolicyHalt
)

// Error policies define how the runner reacts to a failed instruction.
const (
	ErrorPolicyHalt  = "halt"
	ErrorPolicySkip  = "skip"
	ErrorPolicyReset = "reset"
)

// Positional contains positional arguments.
type Positional struct {
	File string `arg:"positional" required:"true" usage:"CHIP-8 ROM file to run"`
}

// Parameters contains file path options.
type Parameters struct {
	Config      string `flag:"c" usage:"configuration file"`
	Output      string `flag:"o" usage:"output .asm file for -disasm (default: stdout)"`
	Breakpoints string `flag:"break" usage:"comma separated breakpoint addresses, e.g. 0x200,0x2a4"`
}

// Emulation contains options that control the execution of the program.
type Emulation struct {
	InstructionsPerFrame int    `flag:"ipf" usage:"instructions executed per 60 Hz frame (default: 10)"`
	Frames               int    `flag:"frames" usage:"stop after this many frames, 0 runs until interrupted"`
	Seed                 int64  `flag:"seed" usage:"random number seed, 0 picks a random seed"`
	OnError              string `flag:"on-error" usage:"reaction to a failing instruction: halt, skip, reset (default: halt)"`
	KeyHold              int    `flag:"hold" usage:"frames a terminal key stays pressed (default: 6)"`
	Terminal             bool   `flag:"term" usage:"run interactively in the terminal"`
}

// Flags contains behavior options.
type Flags struct {
	Disasm        bool `flag:"disasm" usage:"print the disassembly of the ROM and exit"`
	NoHexComments bool `flag:"nohexcomments" usage:"omit hex opcode bytes in disassembly comments"`
	NoOffsets     bool `flag:"nooffsets" usage:"omit addresses in disassembly comments"`
	Debug         bool `flag:"debug" usage:"enable debug logging"`
	Trace         bool `flag:"trace" usage:"log every executed instruction"`
	Quiet         bool `flag:"q" usage:"quiet mode"`
}

// Program options of the interpreter.
type Program struct {
	Positional
	Parameters
	Emulation
	Flags
}

// Settings is the content of a configuration file. Every value applies only
// if the matching command line flag was not passed.
type Settings struct {
	InstructionsPerFrame int    `config:"machine.ipf"`
	Seed                 int64  `config:"machine.seed"`
	Frames               int    `config:"runner.frames"`
	OnError              string `config:"runner.on_error"`
	Breakpoints          string `config:"runner.breakpoints"`
	KeyHold              int    `config:"terminal.hold"`
	Terminal             bool   `config:"terminal.enabled"`
	Debug                bool   `config:"log.debug"`
	Trace                bool   `config:"log.trace"`
	Quiet                bool   `config:"log.quiet"`
}

// ApplySettings fills all options that are still unset with the values
// of the configuration file.
func (p *Program) ApplySettings(s Settings) {
	if p.InstructionsPerFrame == 0 {
		p.InstructionsPerFrame = s.InstructionsPerFrame
	}
	if p.Seed == 0 {
		p.Seed = s.Seed
	}
	if p.Frames == 0 {
		p.Frames = s.Frames
	}
	if p.OnError == "" {
		p.OnError = s.OnError
	}
	if p.Breakpoints == "" {
		p.Breakpoints = s.Breakpoints
	}
	if p.KeyHold == 0 {
		p.KeyHold = s.KeyHold
	}
	p.Terminal = p.Terminal || s.Terminal
	p.Debug = p.Debug || s.Debug
	p.Trace = p.Trace || s.Trace
	p.Quiet = p.Quiet || s.Quiet
}

// ApplyDefaults sets the built-in defaults for all options that are unset.
func (p *Program) ApplyDefaults() {
	if p.InstructionsPerFrame == 0 {
		p.InstructionsPerFrame = DefaultInstructionsPerFrame
	}
	if p.KeyHold == 0 {
		p.KeyHold = DefaultKeyHoldFrames
	}
	if p.OnError == "" {
		p.OnError = DefaultErrorPolicy
	}
	p.OnError = strings.ToLower(p.OnError)
}

// Validate checks the option values for consistency.
func (p *Program) Validate() error {
	switch p.OnError {
	case ErrorPolicyHalt, ErrorPolicySkip, ErrorPolicyReset:
	default:
		return fmt.Errorf("unsupported error policy '%s'. Valid options: %s, %s, %s",
			p.OnError, ErrorPolicyHalt, ErrorPolicySkip, ErrorPolicyReset)
	}

	if p.InstructionsPerFrame < 0 {
		return fmt.Errorf("invalid instructions per frame %d", p.InstructionsPerFrame)
	}
	if p.Frames < 0 {
		return fmt.Errorf("invalid frame limit %d", p.Frames)
	}
	if p.KeyHold < 0 {
		return fmt.Errorf("invalid key hold frames %d", p.KeyHold)
	}

	if _, err := ParseBreakpoints(p.Breakpoints); err != nil {
		return err
	}
	return nil
}

// ParseBreakpoints parses a comma separated list of addresses. Addresses
// are hexadecimal and may use a 0x or $ prefix.
func ParseBreakpoints(s string) (set.Set[uint16], error) {
	breakpoints := set.New[uint16]()
	for field := range strings.SplitSeq(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		digits := strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(field), "0x"), "$")
		address, err := strconv.ParseUint(digits, 16, 12)
		if err != nil {
			return nil, fmt.Errorf("parsing breakpoint address '%s': %w", field, err)
		}
		breakpoints.Add(uint16(address))
	}
	return breakpoints, nil
}
