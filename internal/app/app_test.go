package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/retroenv/retrochip8/internal/host"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

// drawProgram draws the font glyph 0 at the top left corner and loops.
var drawProgram = []byte{
	0xA0, 0x00, // ld I, $000
	0xD0, 0x05, // drw V0, V0, $5
	0x12, 0x04, // jp $204
}

func writeROM(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.ch8")
	assert.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

func TestPrepareOptions(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "retrochip8.conf")
	content := "[machine]\nipf = 25\n\n[runner]\non_error = \"reset\"\nframes = 50\n"
	assert.NoError(t, os.WriteFile(configFile, []byte(content), 0600))

	opts := options.Program{
		Parameters: options.Parameters{Config: configFile},
		Emulation:  options.Emulation{Frames: 10},
	}
	assert.NoError(t, PrepareOptions(&opts))
	assert.Equal(t, 25, opts.InstructionsPerFrame)
	assert.Equal(t, 10, opts.Frames)
	assert.Equal(t, options.ErrorPolicyReset, opts.OnError)
	assert.Equal(t, options.DefaultKeyHoldFrames, opts.KeyHold)

	opts = options.Program{Parameters: options.Parameters{Config: filepath.Join(dir, "missing.conf")}}
	assert.Error(t, PrepareOptions(&opts))

	opts = options.Program{Emulation: options.Emulation{OnError: "retry"}}
	assert.ErrorContains(t, PrepareOptions(&opts), "validating options")
}

func TestRun_Headless(t *testing.T) {
	opts := options.Program{
		Positional: options.Positional{File: writeROM(t, drawProgram)},
		Emulation:  options.Emulation{Frames: 2},
	}
	opts.ApplyDefaults()

	var stdout bytes.Buffer
	assert.NoError(t, Run(context.Background(), log.NewTestLogger(t), opts, &stdout))

	lines := strings.Split(stdout.String(), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "████ "))
	assert.True(t, strings.HasPrefix(lines[1], "█  █ "))
}

func TestRun_Breakpoint(t *testing.T) {
	opts := options.Program{
		Positional: options.Positional{File: writeROM(t, drawProgram)},
		Parameters: options.Parameters{Breakpoints: "0x204"},
	}
	opts.ApplyDefaults()

	var stdout bytes.Buffer
	err := Run(context.Background(), log.NewTestLogger(t), opts, &stdout)
	assert.ErrorIs(t, err, host.ErrBreakpoint)
	assert.True(t, strings.HasPrefix(stdout.String(), "████"))
}

func TestRun_Errors(t *testing.T) {
	opts := options.Program{
		Positional: options.Positional{File: writeROM(t, []byte{0xFF, 0xFF})},
	}
	opts.ApplyDefaults()

	var stdout bytes.Buffer
	err := Run(context.Background(), log.NewTestLogger(t), opts, &stdout)
	assert.ErrorIs(t, err, machine.ErrUnknownOpcode)

	opts.File = filepath.Join(t.TempDir(), "missing.ch8")
	err = Run(context.Background(), log.NewTestLogger(t), opts, &stdout)
	assert.ErrorContains(t, err, "loading ROM")
}

func TestRun_Cancelled(t *testing.T) {
	opts := options.Program{
		Positional: options.Positional{File: writeROM(t, drawProgram)},
	}
	opts.ApplyDefaults()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout bytes.Buffer
	err := Run(ctx, log.NewTestLogger(t), opts, &stdout)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, strings.Split(strings.TrimSuffix(stdout.String(), "\n"), "\n"), machine.DisplayHeight)
}

func TestRun_Disasm(t *testing.T) {
	opts := options.Program{
		Positional: options.Positional{File: writeROM(t, drawProgram)},
		Flags:      options.Flags{Disasm: true, NoHexComments: true, NoOffsets: true},
	}

	var stdout bytes.Buffer
	assert.NoError(t, Run(context.Background(), log.NewTestLogger(t), opts, &stdout))

	expected := "Start:\n" +
		"  ld I, $000\n" +
		"  drw V0, V0, $5\n" +
		"\n" +
		"_label_0204:\n" +
		"  jp _label_0204\n" +
		"\n"
	assert.Equal(t, expected, stdout.String())
}

func TestDisassemble_OutputFile(t *testing.T) {
	output := filepath.Join(t.TempDir(), "test.asm")
	opts := options.Program{
		Parameters: options.Parameters{Output: output},
		Flags:      options.Flags{NoOffsets: true},
	}

	var stdout bytes.Buffer
	assert.NoError(t, Disassemble(opts, []byte{0x00, 0xE0, 0x12}, &stdout))
	assert.Equal(t, 0, stdout.Len())

	data, err := os.ReadFile(output)
	assert.NoError(t, err)
	assert.Contains(t, string(data), "  cls")
	assert.Contains(t, string(data), "; 00 E0")
	assert.Contains(t, string(data), ".byte $12")

	opts.Output = filepath.Join(t.TempDir(), "missing", "test.asm")
	assert.ErrorContains(t, Disassemble(opts, []byte{0x00, 0xE0}, &stdout), "creating output file")
}

func TestPrintBanner(t *testing.T) {
	PrintBanner(log.NewTestLogger(t), options.Program{}, "1.0.0", "abcdef", "")
	PrintBanner(log.NewTestLogger(t), options.Program{Flags: options.Flags{Quiet: true}}, "1.0.0", "", "")
}
