package options

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestApplySettings(t *testing.T) {
	opts := Program{
		Emulation: Emulation{InstructionsPerFrame: 20},
		Flags:     Flags{Debug: true},
	}
	opts.ApplySettings(Settings{
		InstructionsPerFrame: 8,
		Seed:                 42,
		Frames:               600,
		OnError:              ErrorPolicySkip,
		Breakpoints:          "0x2a4",
		Terminal:             true,
	})

	assert.Equal(t, 20, opts.InstructionsPerFrame)
	assert.Equal(t, int64(42), opts.Seed)
	assert.Equal(t, 600, opts.Frames)
	assert.Equal(t, ErrorPolicySkip, opts.OnError)
	assert.Equal(t, "0x2a4", opts.Breakpoints)
	assert.True(t, opts.Terminal)
	assert.True(t, opts.Debug)
	assert.False(t, opts.Quiet)
}

func TestApplyDefaults(t *testing.T) {
	var opts Program
	opts.ApplyDefaults()

	assert.Equal(t, DefaultInstructionsPerFrame, opts.InstructionsPerFrame)
	assert.Equal(t, DefaultKeyHoldFrames, opts.KeyHold)
	assert.Equal(t, ErrorPolicyHalt, opts.OnError)
	assert.Equal(t, 0, opts.Frames)
	assert.NoError(t, opts.Validate())

	opts = Program{Emulation: Emulation{OnError: "RESET", InstructionsPerFrame: 3}}
	opts.ApplyDefaults()
	assert.Equal(t, ErrorPolicyReset, opts.OnError)
	assert.Equal(t, 3, opts.InstructionsPerFrame)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Program
		wantErr bool
	}{
		{
			name: "valid",
			opts: Program{Emulation: Emulation{OnError: ErrorPolicySkip}},
		},
		{
			name:    "unknown error policy",
			opts:    Program{Emulation: Emulation{OnError: "ignore"}},
			wantErr: true,
		},
		{
			name:    "negative frames",
			opts:    Program{Emulation: Emulation{OnError: ErrorPolicyHalt, Frames: -1}},
			wantErr: true,
		},
		{
			name:    "negative instructions per frame",
			opts:    Program{Emulation: Emulation{OnError: ErrorPolicyHalt, InstructionsPerFrame: -5}},
			wantErr: true,
		},
		{
			name: "invalid breakpoint",
			opts: Program{
				Parameters: Parameters{Breakpoints: "0x200,zz"},
				Emulation:  Emulation{OnError: ErrorPolicyHalt},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseBreakpoints(t *testing.T) {
	breakpoints, err := ParseBreakpoints("0x200, $2A4,31e,,")
	assert.NoError(t, err)
	assert.Equal(t, 3, breakpoints.Size())
	assert.True(t, breakpoints.Contains(0x200))
	assert.True(t, breakpoints.Contains(0x2A4))
	assert.True(t, breakpoints.Contains(0x31E))

	breakpoints, err = ParseBreakpoints("")
	assert.NoError(t, err)
	assert.True(t, breakpoints.IsEmpty())

	_, err = ParseBreakpoints("0x1000")
	assert.Error(t, err)
	_, err = ParseBreakpoints("0xg00")
	assert.Error(t, err)
}
