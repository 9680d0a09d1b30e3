package fastqc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/farcloser/primordium/fault"
)

const (
	markerPrefix   = ">>"
	endModule      = "END_MODULE"
	headerPrefix   = "#"
	fieldSeparator = "\t"
	dedupLabel     = "Total Deduplicated Percentage"
)

type phase int

const (
	outsideModule phase = iota
	inModule
)

// machine is the parser state threaded through every line. Only the state returned by advance is valid afterwards.
type machine struct {
	phase phase
	open  Module
}

// transition reports what a single line produced, besides the next state.
type transition struct {
	// committed is set when the line closed a module.
	committed *Module
	// dedup is set when the line carried the total deduplicated percentage.
	dedup *float64
}

// advance consumes one line. Malformed lines never fail; they simply produce nothing.
func advance(state machine, line string) (machine, transition) {
	line = strings.TrimSpace(line)
	if line == "" {
		return state, transition{}
	}

	if content, ok := strings.CutPrefix(line, markerPrefix); ok {
		if content == endModule {
			if state.phase != inModule {
				return state, transition{}
			}

			committed := state.open

			return machine{phase: outsideModule}, transition{committed: &committed}
		}

		// An opener while a module is still open drops the unterminated one.
		fields := strings.Split(content, fieldSeparator)
		status := DefaultStatus

		if len(fields) > 1 {
			status = fields[1]
		}

		return machine{phase: inModule, open: Module{Name: fields[0], Status: status}}, transition{}
	}

	if state.phase != inModule {
		return state, transition{}
	}

	if header, ok := strings.CutPrefix(line, headerPrefix); ok {
		var step transition

		if state.open.Name == ModuleSequenceDuplication && strings.Contains(line, dedupLabel) {
			step.dedup = parseDedup(line)
		}

		state.open.Header = strings.Split(header, fieldSeparator)

		return state, step
	}

	state.open.Rows = append(state.open.Rows, strings.Split(line, fieldSeparator))

	return state, transition{}
}

func parseDedup(line string) *float64 {
	fields := strings.Split(line, fieldSeparator)
	if len(fields) < 2 {
		return nil
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
	if err != nil {
		return nil
	}

	return &value
}

// Parse builds a Report from the full text of a report file. The only errors returned are read errors.
func Parse(reader io.Reader) (*Report, error) {
	report := &Report{}
	state := machine{}
	buffered := bufio.NewReader(reader)

	for {
		line, err := buffered.ReadString('\n')
		if line != "" {
			var step transition

			state, step = advance(state, line)

			if step.committed != nil {
				report.Modules = append(report.Modules, *step.committed)
			}

			if step.dedup != nil {
				report.TotalDeduplicatedPercentage = step.dedup
			}
		}

		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
		}
	}

	return report, nil
}

// ParseFile reads and parses the report at path.
func ParseFile(path string) (*Report, error) {
	file, err := os.Open(path) //nolint:gosec // report paths come from the directory walk
	if err != nil {
		return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
	}
	defer file.Close()

	report, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	report.Path = path

	return report, nil
}
