// Package loader handles ROM file loading operations.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/retrochip8/internal/machine"
)

// ErrEmptyFile is returned for ROM files without content.
var ErrEmptyFile = errors.New("empty file")

// Load reads a CHIP-8 ROM file. Files that are empty or do not fit into
// the program memory are rejected.
func Load(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	// read one byte more than fits to detect oversized files
	data, err := io.ReadAll(io.LimitReader(file, machine.MaxProgramSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}

	switch {
	case len(data) == 0:
		return nil, fmt.Errorf("loading file %s: %w", path, ErrEmptyFile)
	case len(data) > machine.MaxProgramSize:
		return nil, fmt.Errorf("loading file %s: %w", path, machine.ErrProgramTooLarge)
	}
	return data, nil
}

// LoadInto reads a ROM file and copies it into the program memory of the
// machine. The loaded data is returned to allow reloading it after a reset.
func LoadInto(m *machine.Machine, path string) ([]byte, error) {
	data, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := m.Load(data); err != nil {
		return nil, fmt.Errorf("loading file %s: %w", path, err)
	}
	return data, nil
}
