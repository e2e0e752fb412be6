package host

import (
	"bufio"
	"fmt"
	"io"

	"github.com/retroenv/retrochip8/internal/machine"
)

const (
	pixelOn  = "█"
	pixelOff = " "
)

// RenderText writes the framebuffer as text, one line per display row.
func RenderText(w io.Writer, display [machine.DisplaySize]bool) error {
	return renderText(w, display, "\n")
}

func renderText(w io.Writer, display [machine.DisplaySize]bool, newline string) error {
	buf := bufio.NewWriter(w)
	for y := range machine.DisplayHeight {
		row := display[y*machine.DisplayWidth : (y+1)*machine.DisplayWidth]
		for _, pixel := range row {
			if pixel {
				_, _ = buf.WriteString(pixelOn)
			} else {
				_, _ = buf.WriteString(pixelOff)
			}
		}
		_, _ = buf.WriteString(newline)
	}

	if err := buf.Flush(); err != nil {
		return fmt.Errorf("writing display: %w", err)
	}
	return nil
}
