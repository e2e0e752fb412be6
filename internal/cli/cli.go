// Package cli handles command line interface logic
package cli

import (
	"errors"
	"fmt"

	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/cli"
)

// ParseFlags parses the command line arguments without the program name
// and returns the program options.
func ParseFlags(name string, args []string) (options.Program, error) {
	var opts options.Program

	flags := cli.NewFlagSet(name)
	flags.AddSection("Parameters", &opts.Parameters)
	flags.AddSection("Emulation", &opts.Emulation)
	flags.AddSection("Flags", &opts.Flags)
	flags.AddPositional(&opts.Positional)

	remaining, err := flags.Parse(args)
	if err != nil {
		var missingErr *cli.MissingArgsError
		switch {
		case errors.Is(err, cli.ErrHelpRequested):
			return opts, &UsageError{flags: flags, shown: true}
		case errors.As(err, &missingErr):
			return opts, &UsageError{flags: flags, msg: err.Error()}
		default:
			// the flag parser printed the usage already
			return opts, &UsageError{flags: flags, msg: err.Error(), shown: true}
		}
	}

	if err := validateArgs(remaining); err != nil {
		err.flags = flags
		return opts, err
	}

	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *cli.FlagSet
	msg   string
	shown bool // usage was printed while parsing
}

func (e *UsageError) Error() string {
	return e.msg
}

// ShowUsage prints the usage information of all flags.
func (e *UsageError) ShowUsage() {
	if e.shown {
		return
	}
	e.flags.ShowUsage()
}

// validateArgs checks that no arguments follow the ROM file.
func validateArgs(args []string) *UsageError {
	if len(args) == 0 {
		return nil
	}
	if args[0] != "" && args[0][0] == '-' {
		return &UsageError{
			msg: fmt.Sprintf("Potential argument %s found after ROM file, please pass the ROM file as last argument", args[0]),
		}
	}
	return &UsageError{
		msg: fmt.Sprintf("Unexpected argument %s, only one ROM file can be run", args[0]),
	}
}
