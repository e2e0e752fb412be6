// Package host drives a CHIP-8 machine in real time. It paces frames,
// applies keypad input, reacts to execution errors and provides
// synchronized snapshots of the machine output.
package host

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

// FrameRate is the number of frames per second, which is also the
// decrement rate of the timers.
const FrameRate = 60

const keyQueueSize = 64

var (
	// ErrBreakpoint is returned when execution reaches a breakpoint address.
	ErrBreakpoint = errors.New("breakpoint reached")
	// ErrKeyQueueFull is returned when key events are queued faster than frames are run.
	ErrKeyQueueFull = errors.New("key event queue full")
)

// ErrorPolicy defines how the runner reacts to a failed instruction.
type ErrorPolicy string

// Supported error policies.
const (
	// Halt stops the run and returns the error.
	Halt ErrorPolicy = "halt"
	// Skip logs the error and continues with the next instruction.
	Skip ErrorPolicy = "skip"
	// Reset logs the error, resets the machine and reloads the program.
	Reset ErrorPolicy = "reset"
)

// Config contains the settings of a runner.
type Config struct {
	InstructionsPerFrame int
	MaxFrames            int // 0 runs until the context is cancelled
	ErrorPolicy          ErrorPolicy
	Breakpoints          set.Set[uint16]
	Program              []byte // reloaded after a reset
}

// Snapshot is a copy of the machine output at the end of a frame.
type Snapshot struct {
	Display     [machine.DisplaySize]bool
	Frame       int
	PC          uint16
	DelayTimer  uint8
	SoundTimer  uint8
	AwaitingKey bool
}

// FrameHandler is called on the runner goroutine after every frame.
type FrameHandler func(snapshot Snapshot, beep bool) error

type keyEvent struct {
	key     uint8
	pressed bool
}

// Runner executes a machine frame by frame. The machine must only be
// accessed through the runner while it is running. Run, Step and the
// frame handler execute on one goroutine, PressKey and Snapshot are safe
// for concurrent use.
type Runner struct {
	logger  *log.Logger
	machine *machine.Machine
	cfg     Config

	frameInterval time.Duration
	frameHandler  FrameHandler

	keys chan keyEvent

	mu       sync.RWMutex
	snapshot Snapshot

	frames    int
	skipBreak bool // resume from the breakpoint that stopped the last run
}

// Option configures a runner.
type Option func(*Runner)

// WithFrameInterval sets the duration of a frame. A zero interval runs
// frames as fast as possible.
func WithFrameInterval(interval time.Duration) Option {
	return func(r *Runner) {
		r.frameInterval = interval
	}
}

// WithFrameHandler sets a function that is called after every frame.
func WithFrameHandler(handler FrameHandler) Option {
	return func(r *Runner) {
		r.frameHandler = handler
	}
}

// New returns a runner for the machine.
func New(logger *log.Logger, m *machine.Machine, cfg Config, opts ...Option) (*Runner, error) {
	switch cfg.ErrorPolicy {
	case Halt, Skip, Reset:
	case "":
		cfg.ErrorPolicy = Halt
	default:
		return nil, fmt.Errorf("unsupported error policy '%s'", cfg.ErrorPolicy)
	}
	if cfg.InstructionsPerFrame <= 0 {
		return nil, fmt.Errorf("invalid instructions per frame %d", cfg.InstructionsPerFrame)
	}
	if cfg.Breakpoints == nil {
		cfg.Breakpoints = set.New[uint16]()
	}

	r := &Runner{
		logger:        logger,
		machine:       m,
		cfg:           cfg,
		frameInterval: time.Second / FrameRate,
		keys:          make(chan keyEvent, keyQueueSize),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.updateSnapshot()
	return r, nil
}

// Run executes frames until the frame limit is reached, a breakpoint is
// hit, an instruction fails under the halt policy or the context is
// cancelled.
func (r *Runner) Run(ctx context.Context) error {
	var ticker *time.Ticker
	if r.frameInterval > 0 {
		ticker = time.NewTicker(r.frameInterval)
		defer ticker.Stop()
	}

	for {
		if r.cfg.MaxFrames > 0 && r.frames >= r.cfg.MaxFrames {
			r.logger.Debug("Frame limit reached", log.Int("frames", r.frames))
			return nil
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("running frame %d: %w", r.frames, err)
		}

		if err := r.Step(); err != nil {
			return err
		}

		if ticker == nil {
			continue
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("running frame %d: %w", r.frames, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Step runs a single frame: queued key events are applied, up to the
// configured number of instructions are executed and the timers are
// decremented once.
func (r *Runner) Step() error {
	r.applyKeyEvents()

	if err := r.executeInstructions(); err != nil {
		r.updateSnapshot()
		return err
	}

	beep := r.machine.TickTimers()
	if beep {
		r.logger.Debug("Beep", log.Int("frame", r.frames))
	}
	r.frames++
	snapshot := r.updateSnapshot()

	if r.frameHandler == nil {
		return nil
	}
	if err := r.frameHandler(snapshot, beep); err != nil {
		return fmt.Errorf("handling frame %d: %w", r.frames, err)
	}
	return nil
}

// Frames returns the number of completed frames.
func (r *Runner) Frames() int {
	return r.frames
}

// PressKey queues a keypad state change that is applied at the start of
// the next frame.
func (r *Runner) PressKey(key uint8, pressed bool) error {
	if key >= machine.KeyCount {
		return fmt.Errorf("%w: %d", machine.ErrInvalidKey, key)
	}

	select {
	case r.keys <- keyEvent{key: key, pressed: pressed}:
		return nil
	default:
		return ErrKeyQueueFull
	}
}

// Snapshot returns the machine output of the last completed frame.
func (r *Runner) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot
}

func (r *Runner) executeInstructions() error {
	for range r.cfg.InstructionsPerFrame {
		if err := r.checkBreakpoint(); err != nil {
			return err
		}

		err := r.machine.Tick()
		if err != nil {
			stop, err := r.handleError(err)
			if err != nil {
				return err
			}
			if stop {
				return nil
			}
		}

		// the rest of the frame would only poll the keypad again
		if r.machine.AwaitingKey() {
			return nil
		}
	}
	return nil
}

func (r *Runner) checkBreakpoint() error {
	pc := r.machine.PC()
	if !r.cfg.Breakpoints.Contains(pc) || r.machine.AwaitingKey() {
		r.skipBreak = false
		return nil
	}
	if r.skipBreak {
		r.skipBreak = false
		return nil
	}

	r.skipBreak = true
	return fmt.Errorf("%w at $%03X", ErrBreakpoint, pc)
}

// handleError applies the error policy to a failed instruction. It returns
// whether the current frame has to end early or an error if the run has to
// stop.
func (r *Runner) handleError(err error) (bool, error) {
	switch r.cfg.ErrorPolicy {
	case Skip:
		var execErr *machine.ExecutionError
		if errors.As(err, &execErr) && r.machine.PC() == execErr.Address {
			return false, fmt.Errorf("skipping failed instruction impossible: %w", err)
		}
		r.logger.Warn("Skipping failed instruction", log.Err(err))
		return false, nil

	case Reset:
		r.logger.Warn("Resetting machine after failed instruction", log.Err(err))
		r.machine.Reset()
		if err := r.machine.Load(r.cfg.Program); err != nil {
			return false, fmt.Errorf("reloading program: %w", err)
		}
		return true, nil

	default:
		return false, err
	}
}

func (r *Runner) applyKeyEvents() {
	for {
		select {
		case event := <-r.keys:
			if err := r.machine.SetKey(event.key, event.pressed); err != nil {
				r.logger.Error("Setting key state failed", log.Err(err))
			}
		default:
			return
		}
	}
}

func (r *Runner) updateSnapshot() Snapshot {
	m := r.machine
	snapshot := Snapshot{
		Display:     m.Display(),
		Frame:       r.frames,
		PC:          m.PC(),
		DelayTimer:  m.DelayTimer(),
		SoundTimer:  m.SoundTimer(),
		AwaitingKey: m.AwaitingKey(),
	}

	r.mu.Lock()
	r.snapshot = snapshot
	r.mu.Unlock()
	return snapshot
}
