package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrogolib/input"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/term"
)

const (
	escapeKey = 0x1B
	ctrlC     = 0x03 // raw mode does not generate a signal

	bell        = "\a"
	cursorHome  = "\x1b[H"
	clearScreen = "\x1b[2J"
	clearLine   = "\x1b[K"
	hideCursor  = "\x1b[?25l"
	showCursor  = "\x1b[?25h"

	minTermWidth  = machine.DisplayWidth
	minTermHeight = machine.DisplayHeight + 1 // status line
)

// ErrNotTerminal is returned if the input is not an interactive terminal.
var ErrNotTerminal = errors.New("input is not a terminal")

// keypadLayout maps the left side of a QWERTY keyboard to the hex keypad:
//
//	1 2 3 4      1 2 3 C
//	Q W E R  ->  4 5 6 D
//	A S D F      7 8 9 E
//	Z X C V      A 0 B F
var keypadLayout = map[input.Key]uint8{
	input.Key1: 0x1, input.Key2: 0x2, input.Key3: 0x3, input.Key4: 0xC,
	input.Q: 0x4, input.W: 0x5, input.E: 0x6, input.R: 0xD,
	input.A: 0x7, input.S: 0x8, input.D: 0x9, input.F: 0xE,
	input.Z: 0xA, input.X: 0x0, input.C: 0xB, input.V: 0xF,
}

// Terminal is an interactive frontend that renders frames to a terminal
// and reads keypad input from it. Terminals do not report key releases,
// a pressed key is released after a number of frames.
type Terminal struct {
	logger     *log.Logger
	in         *os.File
	out        io.Writer
	state      *term.State
	holdFrames int

	mu      sync.Mutex
	held    [machine.KeyCount]int // remaining frames a key stays pressed
	runner  *Runner
	drawn   bool
	display [machine.DisplaySize]bool
}

// OpenTerminal switches the input terminal into raw mode. Close has to be
// called to restore the previous terminal state.
func OpenTerminal(logger *log.Logger, in *os.File, out io.Writer, holdFrames int) (*Terminal, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return nil, ErrNotTerminal
	}

	if width, height, err := term.GetSize(fd); err == nil && (width < minTermWidth || height < minTermHeight) {
		logger.Warn("Terminal is too small to show the full display",
			log.Int("width", width),
			log.Int("height", height),
			log.Int("required_width", minTermWidth),
			log.Int("required_height", minTermHeight),
		)
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("setting terminal raw mode: %w", err)
	}

	t := &Terminal{
		logger:     logger,
		in:         in,
		out:        out,
		state:      state,
		holdFrames: max(holdFrames, 1),
	}
	if _, err := io.WriteString(out, hideCursor+clearScreen); err != nil {
		_ = t.Close()
		return nil, fmt.Errorf("writing to terminal: %w", err)
	}
	return t, nil
}

// Close restores the terminal state.
func (t *Terminal) Close() error {
	_, _ = io.WriteString(t.out, showCursor+"\r\n")
	if err := term.Restore(int(t.in.Fd()), t.state); err != nil {
		return fmt.Errorf("restoring terminal state: %w", err)
	}
	return nil
}

// Attach connects the terminal to the runner that receives the key events.
func (t *Terminal) Attach(runner *Runner) {
	t.mu.Lock()
	t.runner = runner
	t.mu.Unlock()
}

// ReadKeys reads keyboard input until ESC is pressed or reading fails and
// calls cancel afterwards.
func (t *Terminal) ReadKeys(ctx context.Context, cancel context.CancelFunc) {
	defer cancel()

	buf := make([]byte, 16)
	for ctx.Err() == nil {
		n, err := t.in.Read(buf)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				t.logger.Error("Reading terminal input failed", log.Err(err))
			}
			return
		}
		if t.handleInput(buf[:n]) {
			return
		}
	}
}

// handleInput processes a chunk of terminal input and returns whether the
// user requested to quit.
func (t *Terminal) handleInput(data []byte) bool {
	// a single escape byte is the ESC key, longer sequences are cursor or
	// function keys
	if len(data) == 1 && data[0] == escapeKey {
		return true
	}

	for _, b := range data {
		switch b {
		case ctrlC:
			return true
		case escapeKey:
			return false
		}
		key, ok := keypadLayout[keyFromByte(b)]
		if !ok {
			continue
		}
		t.press(key)
	}
	return false
}

func (t *Terminal) press(key uint8) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.runner == nil {
		return
	}
	if err := t.runner.PressKey(key, true); err != nil {
		t.logger.Debug("Dropping key press", log.Uint8("key", key), log.Err(err))
		return
	}
	t.held[key] = t.holdFrames
}

// releaseKeys counts down the hold time of all pressed keys and queues a
// release once it expired.
func (t *Terminal) releaseKeys() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for key, remaining := range t.held {
		if remaining == 0 {
			continue
		}
		if remaining > 1 {
			t.held[key]--
			continue
		}
		// on a full queue the release is retried next frame
		if err := t.runner.PressKey(uint8(key), false); err == nil {
			t.held[key] = 0
		}
	}
}

// Frame renders the display if it changed and sounds the beep. It is
// meant to be used as frame handler of the runner.
func (t *Terminal) Frame(snapshot Snapshot, beep bool) error {
	t.releaseKeys()

	if beep {
		if _, err := io.WriteString(t.out, bell); err != nil {
			return fmt.Errorf("writing to terminal: %w", err)
		}
	}

	if t.drawn && snapshot.Display == t.display {
		return nil
	}
	t.drawn = true
	t.display = snapshot.Display

	if _, err := io.WriteString(t.out, cursorHome); err != nil {
		return fmt.Errorf("writing to terminal: %w", err)
	}
	if err := renderText(t.out, snapshot.Display, "\r\n"); err != nil {
		return err
	}
	status := fmt.Sprintf("frame %d  pc $%03X  ESC quits%s", snapshot.Frame, snapshot.PC, clearLine)
	if _, err := io.WriteString(t.out, status); err != nil {
		return fmt.Errorf("writing to terminal: %w", err)
	}
	return nil
}

// keyFromByte converts a character read from the terminal to a keyboard key.
func keyFromByte(b byte) input.Key {
	switch {
	case b >= '0' && b <= '9':
		return input.Key0 + input.Key(b-'0')
	case b >= 'a' && b <= 'z':
		return input.A + input.Key(b-'a')
	case b >= 'A' && b <= 'Z':
		return input.A + input.Key(b-'A')
	case b == escapeKey:
		return input.Escape
	default:
		return input.Unknown
	}
}
