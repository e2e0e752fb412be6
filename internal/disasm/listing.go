package disasm

import (
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/retrogolib/set"
)

const (
	labelNaming = "_label_%04x"
	startLabel  = "Start"
)

// ListingOptions controls the listing output.
type ListingOptions struct {
	HexComments    bool // output the instruction bytes as comment
	OffsetComments bool // output the address as comment
}

// WriteListing writes a linear disassembly of the program, which is
// expected to be loaded at the base address. Every instruction word is
// decoded, targets of jumps, calls and loads of I inside the program get
// a label.
func WriteListing(w io.Writer, program []byte, base uint16, opts ListingOptions) error {
	end := int(base) + len(program)
	targets := set.New[uint16]()
	for offset := 0; offset+1 < len(program); offset += 2 {
		ins, ok := Decode(wordAt(program, offset))
		if !ok {
			continue
		}
		if target, ok := ins.Target(); ok && int(target) >= int(base) && int(target) < end {
			targets.Add(target)
		}
	}

	lw := &listingWriter{w: w, opts: opts, blank: true}
	if err := lw.writeLabel(startLabel); err != nil {
		return err
	}

	for offset := 0; offset < len(program); offset += 2 {
		address := base + uint16(offset)
		if offset > 0 && targets.Contains(address) {
			if err := lw.writeLabel(labelName(address, base)); err != nil {
				return err
			}
		}

		if offset+1 >= len(program) {
			line := fmt.Sprintf(".byte $%02x", program[offset])
			return lw.writeLine(line, address, program[offset:])
		}

		opcode := wordAt(program, offset)
		line := "  " + formatWithLabels(opcode, base, targets)
		if err := lw.writeLine(line, address, program[offset:offset+2]); err != nil {
			return err
		}

		if ins, ok := Decode(opcode); ok && (ins.IsReturn() || ins.IsJump()) {
			if err := lw.writeBlank(); err != nil {
				return err
			}
		}
	}
	return nil
}

type listingWriter struct {
	w     io.Writer
	opts  ListingOptions
	blank bool // last written line was empty
}

func (lw *listingWriter) writeBlank() error {
	if lw.blank {
		return nil
	}
	if _, err := fmt.Fprintln(lw.w); err != nil {
		return fmt.Errorf("writing line: %w", err)
	}
	lw.blank = true
	return nil
}

// writeLabel writes the label separated by an empty line from the previous code.
func (lw *listingWriter) writeLabel(label string) error {
	if err := lw.writeBlank(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(lw.w, "%s:\n", label); err != nil {
		return fmt.Errorf("writing label: %w", err)
	}
	lw.blank = false
	return nil
}

func (lw *listingWriter) writeLine(line string, address uint16, data []byte) error {
	var comment []string
	if lw.opts.OffsetComments {
		comment = append(comment, fmt.Sprintf("$%04X", address))
	}
	if lw.opts.HexComments {
		hex := make([]string, len(data))
		for i, b := range data {
			hex[i] = fmt.Sprintf("%02X", b)
		}
		comment = append(comment, strings.Join(hex, " "))
	}

	var err error
	if len(comment) == 0 {
		_, err = fmt.Fprintf(lw.w, "%s\n", line)
	} else {
		_, err = fmt.Fprintf(lw.w, "%-32s ; %s\n", line, strings.Join(comment, " "))
	}
	if err != nil {
		return fmt.Errorf("writing code line: %w", err)
	}
	lw.blank = false
	return nil
}

// formatWithLabels formats the opcode and replaces a target address
// parameter by its label name.
func formatWithLabels(opcode, base uint16, targets set.Set[uint16]) string {
	code := Format(opcode)
	ins, ok := Decode(opcode)
	if !ok {
		return code
	}
	target, ok := ins.Target()
	if !ok || !targets.Contains(target) {
		return code
	}
	return strings.Replace(code, fmt.Sprintf("$%03X", target), labelName(target, base), 1)
}

func labelName(address, base uint16) string {
	if address == base {
		return startLabel
	}
	return fmt.Sprintf(labelNaming, address)
}

func wordAt(data []byte, offset int) uint16 {
	return uint16(data[offset])<<8 | uint16(data[offset+1])
}
