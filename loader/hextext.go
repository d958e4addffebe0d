// Package loader reads MIPS text segments dumped in MARS "HexText" format.
package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/mipspipe/timing/pipeline"
)

// MaxInstructions is the largest program the loader hands to the simulator.
const MaxInstructions = 100

// ErrTooManyInstructions is returned when a dump holds more than
// MaxInstructions words.
var ErrTooManyInstructions = errors.New("too many instructions")

// Program represents a loaded text segment ready for simulation.
type Program struct {
	// EntryPoint is the address of Words[0]; MARS dumps start at the
	// text segment base.
	EntryPoint uint32
	// Words holds the instruction words in program order.
	Words []uint32
}

// Len returns the number of instruction words.
func (p *Program) Len() int {
	return len(p.Words)
}

// Load reads a HexText dump from path.
func Load(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open program file: %w", err)
	}
	defer func() { _ = f.Close() }()

	prog, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return prog, nil
}

// Parse reads a HexText dump: one 32-bit hex word per line, with an
// optional 0x prefix. Blank lines and text after '#' are ignored.
func Parse(r io.Reader) (*Program, error) {
	prog := &Program{EntryPoint: pipeline.TextBase}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++

		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		word, err := parseWord(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		if len(prog.Words) == MaxInstructions {
			return nil, fmt.Errorf("line %d: %w (limit %d)",
				lineNo, ErrTooManyInstructions, MaxInstructions)
		}
		prog.Words = append(prog.Words, word)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read program: %w", err)
	}

	return prog, nil
}

func parseWord(s string) (uint32, error) {
	digits := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if digits == "" {
		return 0, fmt.Errorf("invalid instruction word %q", s)
	}

	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid instruction word %q: %w", s, err)
	}
	return uint32(v), nil
}
