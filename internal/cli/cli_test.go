package cli

import (
	"errors"
	"testing"

	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/assert"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want options.Program
	}{
		{
			name: "rom only",
			args: []string{"pong.ch8"},
			want: options.Program{Positional: options.Positional{File: "pong.ch8"}},
		},
		{
			name: "emulation flags",
			args: []string{"-ipf", "20", "-frames", "300", "-seed", "7", "-on-error", "skip", "-term", "pong.ch8"},
			want: options.Program{
				Positional: options.Positional{File: "pong.ch8"},
				Emulation: options.Emulation{
					InstructionsPerFrame: 20,
					Frames:               300,
					Seed:                 7,
					OnError:              "skip",
					Terminal:             true,
				},
			},
		},
		{
			name: "disassembly flags",
			args: []string{"-disasm", "-nooffsets", "-o", "pong.asm", "pong.ch8"},
			want: options.Program{
				Positional: options.Positional{File: "pong.ch8"},
				Parameters: options.Parameters{Output: "pong.asm"},
				Flags:      options.Flags{Disasm: true, NoOffsets: true},
			},
		},
		{
			name: "config and logging",
			args: []string{"-c", "chip8.conf", "-break", "0x200", "-trace", "-q", "pong.ch8"},
			want: options.Program{
				Positional: options.Positional{File: "pong.ch8"},
				Parameters: options.Parameters{Config: "chip8.conf", Breakpoints: "0x200"},
				Flags:      options.Flags{Trace: true, Quiet: true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFlags("retrochip8", tt.args)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFlags_UsageErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		message string
	}{
		{name: "missing rom", args: []string{"-ipf", "5"}, message: "missing required argument(s): file"},
		{name: "unknown flag", args: []string{"-unknown", "pong.ch8"}, message: "parsing flags"},
		{name: "flag after rom", args: []string{"pong.ch8", "-term"}, message: "Potential argument -term"},
		{name: "second rom", args: []string{"pong.ch8", "tetris.ch8"}, message: "Unexpected argument tetris.ch8"},
		{name: "help", args: []string{"-h"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFlags("retrochip8", tt.args)

			var usageErr *UsageError
			assert.True(t, errors.As(err, &usageErr))
			assert.NotNil(t, usageErr.flags)
			assert.Contains(t, usageErr.Error(), tt.message)
		})
	}
}
