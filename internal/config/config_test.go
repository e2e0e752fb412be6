package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func TestCreateLogger(t *testing.T) {
	tests := []struct {
		name         string
		debug        bool
		trace        bool
		quiet        bool
		enabledLevel log.Level
		disabled     log.Level
	}{
		{name: "trace", trace: true, debug: true, enabledLevel: log.TraceLevel},
		{name: "debug", debug: true, quiet: true, enabledLevel: log.DebugLevel, disabled: log.TraceLevel},
		{name: "quiet", quiet: true, enabledLevel: log.ErrorLevel, disabled: log.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := CreateLogger(tt.debug, tt.trace, tt.quiet)
			assert.True(t, logger.Enabled(context.Background(), tt.enabledLevel))
			if tt.disabled != 0 {
				assert.False(t, logger.Enabled(context.Background(), tt.disabled))
			}
		})
	}
}

func TestLoadSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "retrochip8.conf")
	content := `# retrochip8 settings
[machine]
ipf = 15
seed = 0x1234

[runner]
frames = 120
on_error = "skip"  # keep running
breakpoints = "0x200,0x2a4"

[terminal]
enabled = true
`
	assert.NoError(t, os.WriteFile(path, []byte(content), 0600))

	settings, err := LoadSettings(path)
	assert.NoError(t, err)
	assert.Equal(t, 15, settings.InstructionsPerFrame)
	assert.Equal(t, int64(0x1234), settings.Seed)
	assert.Equal(t, 120, settings.Frames)
	assert.Equal(t, "skip", settings.OnError)
	assert.Equal(t, "0x200,0x2a4", settings.Breakpoints)
	assert.True(t, settings.Terminal)
	assert.Equal(t, 0, settings.KeyHold)
	assert.False(t, settings.Debug)
}

func TestLoadSettings_Errors(t *testing.T) {
	_, err := LoadSettings(filepath.Join(t.TempDir(), "missing.conf"))
	assert.ErrorContains(t, err, "opening config file")

	path := filepath.Join(t.TempDir(), "invalid.conf")
	assert.NoError(t, os.WriteFile(path, []byte("[machine]\nipf = \"fast\"\n"), 0600))
	_, err = LoadSettings(path)
	assert.ErrorContains(t, err, "parsing config file")
}
