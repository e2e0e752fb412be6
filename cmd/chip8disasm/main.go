// Package main implements a CHIP-8 ROM disassembler
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/retrochip8/internal/disasm"
	"github.com/retroenv/retrochip8/internal/loader"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/cli"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

type optionFlags struct {
	Output        string `flag:"o" usage:"name of the output .asm file, printed on console if no name given"`
	Base          int    `flag:"base" usage:"address the ROM is loaded to" default:"512"`
	NoHexComments bool   `flag:"nohexcomments" usage:"do not output opcode bytes as hex values in comments"`
	NoOffsets     bool   `flag:"nooffsets" usage:"do not output offsets in comments"`
	Quiet         bool   `flag:"q" usage:"perform operations quietly"`
}

type positional struct {
	Input string `arg:"positional" required:"true" usage:"CHIP-8 ROM file to disassemble"`
}

func main() {
	options, input, err := readArguments(os.Args[1:])
	if err != nil {
		os.Exit(1)
	}

	if !options.Quiet {
		printBanner()
	}

	if err := disasmFile(options, input, os.Stdout); err != nil {
		fmt.Println(fmt.Errorf("disassembling failed: %w", err))
		os.Exit(1)
	}
}

func readArguments(args []string) (optionFlags, string, error) {
	var options optionFlags
	var pos positional

	flags := cli.NewFlagSet("chip8disasm")
	flags.AddSection("Options", &options)
	flags.AddPositional(&pos)

	if _, err := flags.Parse(args); err != nil {
		// invalid flags and help requests already printed the usage
		var missingErr *cli.MissingArgsError
		if errors.As(err, &missingErr) {
			fmt.Printf("%s\n\n", err)
			flags.ShowUsage()
		}
		return options, "", err
	}

	if options.Base < 0 || options.Base >= machine.MemorySize {
		err := fmt.Errorf("invalid base address %d", options.Base)
		fmt.Println(err)
		return options, "", err
	}
	return options, pos.Input, nil
}

func printBanner() {
	fmt.Println("[------------------------------------]")
	fmt.Println("[ chip8disasm - CHIP-8 disassembler  ]")
	fmt.Printf("[------------------------------------]\n\n")
	fmt.Printf("version: %s\n\n", buildinfo.Version(version, commit, date))
}

func disasmFile(options optionFlags, input string, stdout io.Writer) error {
	data, err := loader.Load(input)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	listingOptions := disasm.ListingOptions{
		HexComments:    !options.NoHexComments,
		OffsetComments: !options.NoOffsets,
	}

	if options.Output == "" {
		return disasm.WriteListing(stdout, data, uint16(options.Base), listingOptions)
	}

	outputFile, err := os.Create(options.Output)
	if err != nil {
		return fmt.Errorf("creating file '%s': %w", options.Output, err)
	}
	if err = disasm.WriteListing(outputFile, data, uint16(options.Base), listingOptions); err != nil {
		_ = outputFile.Close()
		return fmt.Errorf("processing file: %w", err)
	}
	if err = outputFile.Close(); err != nil {
		return fmt.Errorf("closing file: %w", err)
	}
	return nil
}
