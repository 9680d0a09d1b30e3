// Package emit writes per-sample verdict files.
package emit

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Suffix is appended to the sanitized sample name to form the report file name.
const Suffix = "_report.json"

const indent = "    "

var (
	// ErrOutputDir is returned when the output directory cannot be created.
	ErrOutputDir = errors.New("cannot prepare output directory")
	// ErrWriteReport is returned when a report file cannot be written.
	ErrWriteReport = errors.New("cannot write report")
)

//nolint:gochecknoglobals // effectively const
var nameReplacer = strings.NewReplacer(
	" ", "_",
	"(", "",
	")", "",
	"/", "_",
	`\`, "_",
	string(filepath.Separator), "_",
)

// SanitizeName turns a sample label into a file system safe base name.
func SanitizeName(label string) string {
	return nameReplacer.Replace(label)
}

// FileName is the report file name for a sample label.
func FileName(label string) string {
	return SanitizeName(label) + Suffix
}

// PrepareDir creates the output directory.
func PrepareDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec // reports are meant to be shared
		return fmt.Errorf("%w %q: %w", ErrOutputDir, dir, err)
	}

	return nil
}

// WriteReport writes value, pretty-printed, to dir/FileName(label) and returns the written path.
// The file is replaced atomically: readers never observe a partial report.
func WriteReport(dir, label string, value any) (string, error) {
	data, err := json.MarshalIndent(value, "", indent)
	if err != nil {
		return "", fmt.Errorf("%w for %q: %w", ErrWriteReport, label, err)
	}

	data = append(data, '\n')
	target := filepath.Join(dir, FileName(label))

	tmp, err := os.CreateTemp(dir, "."+FileName(label)+".*")
	if err != nil {
		return "", fmt.Errorf("%w %q: %w", ErrWriteReport, target, err)
	}

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())

		return "", fmt.Errorf("%w %q: %w", ErrWriteReport, target, err)
	}

	if err = tmp.Close(); err != nil {
		os.Remove(tmp.Name())

		return "", fmt.Errorf("%w %q: %w", ErrWriteReport, target, err)
	}

	if err = os.Chmod(tmp.Name(), 0o644); err != nil { //nolint:gosec // reports are meant to be shared
		os.Remove(tmp.Name())

		return "", fmt.Errorf("%w %q: %w", ErrWriteReport, target, err)
	}

	if err = os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())

		return "", fmt.Errorf("%w %q: %w", ErrWriteReport, target, err)
	}

	return target, nil
}
