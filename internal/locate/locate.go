// Package locate finds report files under a directory tree and derives their sample labels.
package locate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/karrick/godirwalk"
)

const (
	dataSuffix       = "_data.txt"
	fastqcMarker     = "fastqc"
	fastqcDataSuffix = "fastqc_data.txt"
	sampleSuffix     = "_fastqc_data.txt"
	fastpSuffix      = "fastp.json"
	trimmedMarker    = "trimmed"
	unknownSample    = "unknown_sample"
)

// ErrNotDirectory is returned when the walk root is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// Kind classifies a file found during the walk.
type Kind int

const (
	// KindOther is any file that is not a recognized report.
	KindOther Kind = iota
	// KindFastQC is a FastQC or Falco fastqc_data.txt report.
	KindFastQC
	// KindFastp is a fastp JSON summary. It is recognized but not supported.
	KindFastp
)

func (k Kind) String() string {
	switch k {
	case KindOther:
		return "other"
	case KindFastQC:
		return "fastqc"
	case KindFastp:
		return "fastp"
	}

	return "unknown"
}

// Classify recognizes a report by file name.
func Classify(name string) Kind {
	switch {
	case strings.HasSuffix(name, dataSuffix) && strings.Contains(name, fastqcMarker),
		strings.HasSuffix(name, fastqcDataSuffix):
		return KindFastQC
	case strings.HasSuffix(name, fastpSuffix):
		return KindFastp
	default:
		return KindOther
	}
}

// Candidate is a report file to evaluate.
type Candidate struct {
	Path    string
	Sample  string
	Trimmed bool
}

// IsTrimmed reports whether a report describes trimmed reads, judging from its file name and directories.
func IsTrimmed(path string) bool {
	return strings.Contains(filepath.Base(path), trimmedMarker) || strings.Contains(filepath.Dir(path), trimmedMarker)
}

// SampleLabel derives the sample label of a report, e.g.
// "runs/trimmed/ecoli_1.fastq.gz_fastqc_data.txt" becomes "ecoli_1.fastq.gz (Trimmed)".
func SampleLabel(path string) string {
	name := filepath.Base(path)

	stem, found := strings.CutSuffix(name, sampleSuffix)
	if !found {
		stem, found = strings.CutSuffix(name, fastqcDataSuffix)
		if found && stem == "" {
			stem = unknownSample
		}
	}

	if IsTrimmed(path) {
		return stem + " (Trimmed)"
	}

	return stem + " (Raw)"
}

// Result lists what a walk found.
type Result struct {
	Reports []Candidate
	// Skipped holds recognized reports of unsupported formats.
	Skipped []string
}

// Walk recursively collects reports under root, following symbolic links. A directory reached through several
// paths is walked once per path, so aliases keep their own labels; a link back to one of its own ancestors is
// not followed, so cycles terminate. Unreadable entries are logged and skipped. The walk stops early only
// when ctx is done.
func Walk(ctx context.Context, root string, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%q: %w", root, ErrNotDirectory)
	}

	root = filepath.Clean(root)
	result := &Result{}
	realPaths := map[string]string{}

	err = godirwalk.Walk(root, &godirwalk.Options{
		FollowSymbolicLinks: true,
		Callback: func(osPathname string, de *godirwalk.Dirent) error {
			if err := ctx.Err(); err != nil {
				return err
			}

			isDir, err := de.IsDirOrSymlinkToDir()
			if err != nil {
				return err
			}

			if isDir {
				target, err := filepath.EvalSymlinks(osPathname)
				if err != nil {
					return err
				}

				if loops(realPaths, root, osPathname, target) {
					logger.Debug("not following symlink cycle", "path", osPathname, "target", target)

					return godirwalk.SkipThis
				}

				realPaths[osPathname] = target

				return nil
			}

			switch Classify(de.Name()) {
			case KindFastQC:
				result.Reports = append(result.Reports, Candidate{
					Path:    osPathname,
					Sample:  SampleLabel(osPathname),
					Trimmed: IsTrimmed(osPathname),
				})
			case KindFastp:
				logger.Info("skipping fastp report: incomplete metrics for compliance", "file", osPathname)

				result.Skipped = append(result.Skipped, osPathname)
			case KindOther:
			}

			return nil
		},
		ErrorCallback: func(osPathname string, err error) godirwalk.ErrorAction {
			if ctx.Err() != nil {
				return godirwalk.Halt
			}

			logger.Error("skipping unreadable path", "path", osPathname, "error", err)

			return godirwalk.SkipNode
		},
	})
	if err != nil {
		return nil, fmt.Errorf("walking %q: %w", root, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// loops reports whether one of the directories above path, up to root, resolves to target.
func loops(realPaths map[string]string, root, path, target string) bool {
	for dir := path; dir != root; {
		parent := filepath.Dir(dir)
		if parent == dir {
			return false
		}

		dir = parent

		if realPaths[dir] == target {
			return true
		}
	}

	return false
}
