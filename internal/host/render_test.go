package host

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrogolib/assert"
)

func TestRenderText(t *testing.T) {
	var display [machine.DisplaySize]bool
	display[0] = true
	display[machine.DisplaySize-1] = true

	var buf bytes.Buffer
	assert.NoError(t, RenderText(&buf, display))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Len(t, lines, machine.DisplayHeight)
	for _, line := range lines {
		assert.Equal(t, machine.DisplayWidth, utf8.RuneCountInString(line))
	}

	assert.True(t, strings.HasPrefix(lines[0], pixelOn+pixelOff))
	assert.Equal(t, strings.Repeat(pixelOff, machine.DisplayWidth), lines[1])
	assert.True(t, strings.HasSuffix(lines[machine.DisplayHeight-1], pixelOff+pixelOn))
}
