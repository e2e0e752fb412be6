// Package app provides the main application helper for the interpreter.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/disasm"
	"github.com/retroenv/retrochip8/internal/host"
	"github.com/retroenv/retrochip8/internal/loader"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

// PrepareOptions merges the configuration file into the options, applies
// the defaults and validates the result.
func PrepareOptions(opts *options.Program) error {
	if opts.Config != "" {
		settings, err := config.LoadSettings(opts.Config)
		if err != nil {
			return err
		}
		opts.ApplySettings(settings)
	}

	opts.ApplyDefaults()
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("validating options: %w", err)
	}
	return nil
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}
	logger.Info("retrochip8 - CHIP-8 interpreter", log.String("version", buildinfo.Version(version, commit, date)))
}

// Run loads the ROM and either writes its disassembly or executes it.
// Console output like the final display of a headless run is written to
// stdout.
func Run(ctx context.Context, logger *log.Logger, opts options.Program, stdout io.Writer) error {
	data, err := loader.Load(opts.File)
	if err != nil {
		return fmt.Errorf("loading ROM: %w", err)
	}

	if opts.Disasm {
		return Disassemble(opts, data, stdout)
	}

	m := machine.New(machine.WithLogger(logger), machine.WithRandom(newRandom(opts.Seed)))
	if err := m.Load(data); err != nil {
		return fmt.Errorf("loading ROM: %w", err)
	}

	breakpoints, err := options.ParseBreakpoints(opts.Breakpoints)
	if err != nil {
		return fmt.Errorf("parsing breakpoints: %w", err)
	}
	cfg := host.Config{
		InstructionsPerFrame: opts.InstructionsPerFrame,
		MaxFrames:            opts.Frames,
		ErrorPolicy:          host.ErrorPolicy(opts.OnError),
		Breakpoints:          breakpoints,
		Program:              data,
	}

	if !opts.Quiet {
		logger.Info("Running CHIP-8 ROM",
			log.String("file", opts.File),
			log.Int("size", len(data)),
			log.Int("ipf", opts.InstructionsPerFrame),
			log.String("on_error", opts.OnError),
		)
	}

	if opts.Terminal {
		err = runTerminal(ctx, logger, m, cfg, opts.KeyHold, stdout)
	} else {
		err = runHeadless(ctx, logger, m, cfg, stdout)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		logState(logger, m)
	}
	return err
}

// Disassemble writes the listing of the ROM to the output file of the
// options or stdout if no output file is set.
func Disassemble(opts options.Program, data []byte, stdout io.Writer) error {
	writer, closer, err := createWriter(opts, stdout)
	if err != nil {
		return err
	}

	listingOpts := disasm.ListingOptions{
		HexComments:    !opts.NoHexComments,
		OffsetComments: !opts.NoOffsets,
	}
	if err := disasm.WriteListing(writer, data, machine.ProgramStart, listingOpts); err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return fmt.Errorf("disassembling: %w", err)
	}

	if closer == nil {
		return nil
	}
	if err := closer.Close(); err != nil {
		return fmt.Errorf("closing output file: %w", err)
	}
	return nil
}

func runHeadless(ctx context.Context, logger *log.Logger, m *machine.Machine, cfg host.Config, stdout io.Writer) error {
	runner, err := host.New(logger, m, cfg)
	if err != nil {
		return fmt.Errorf("creating runner: %w", err)
	}

	runErr := runner.Run(ctx)
	logger.Debug("Run finished", log.Int("frames", runner.Frames()))

	if err := host.RenderText(stdout, runner.Snapshot().Display); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}

func runTerminal(ctx context.Context, logger *log.Logger, m *machine.Machine, cfg host.Config,
	holdFrames int, stdout io.Writer) error {

	terminal, err := host.OpenTerminal(logger, os.Stdin, stdout, holdFrames)
	if err != nil {
		return fmt.Errorf("opening terminal: %w", err)
	}
	defer func() {
		if err := terminal.Close(); err != nil {
			logger.Error("Closing terminal failed", log.Err(err))
		}
	}()

	runner, err := host.New(logger, m, cfg, host.WithFrameHandler(terminal.Frame))
	if err != nil {
		return fmt.Errorf("creating runner: %w", err)
	}
	terminal.Attach(runner)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go terminal.ReadKeys(runCtx, cancel)

	err = runner.Run(runCtx)
	// quitting from the terminal cancels only the run context
	if errors.Is(err, context.Canceled) && ctx.Err() == nil {
		return nil
	}
	return err
}

func newRandom(seed int64) machine.RandomSource {
	if seed == 0 {
		return machine.NewRandom()
	}
	return machine.NewSeededRandom(uint64(seed))
}

func createWriter(opts options.Program, stdout io.Writer) (io.Writer, io.Closer, error) {
	if opts.Output == "" {
		return stdout, nil, nil
	}

	file, err := os.Create(opts.Output)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file %s: %w", opts.Output, err)
	}
	return file, file, nil
}

// logState logs the machine registers to help analyzing a stopped run.
func logState(logger *log.Logger, m *machine.Machine) {
	state := m.State()
	fields := []log.Field{
		log.Hex("pc", state.PC),
		log.Hex("i", state.I),
		log.Uint8("dt", state.DelayTimer),
		log.Uint8("st", state.SoundTimer),
		log.Int("stack_depth", len(state.Stack)),
	}
	for i, value := range state.Registers {
		fields = append(fields, log.Hex(fmt.Sprintf("v%x", i), value))
	}
	logger.Info("Machine state", fields...)
}
