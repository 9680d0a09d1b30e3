package qcsummary

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/farcloser/qcsummary/internal/emit"
	"github.com/farcloser/qcsummary/internal/extract"
	"github.com/farcloser/qcsummary/internal/fastqc"
	"github.com/farcloser/qcsummary/internal/locate"
)

// DefaultOutputDir is where Summarize writes verdict files unless told otherwise.
const DefaultOutputDir = "qc_results"

// EvaluateFile parses one report and classifies its metrics.
func EvaluateFile(path string, catalog *Catalog) (Verdicts, error) {
	report, err := fastqc.ParseFile(path)
	if err != nil {
		return nil, err
	}

	return Evaluate(extract.Extract(report), catalog), nil
}

// SummarizeOptions configures Summarize.
type SummarizeOptions struct {
	// OutputDir receives one {sample}_report.json per report (default: DefaultOutputDir).
	OutputDir string
	// Workers bounds how many reports are processed concurrently (default: number of CPUs).
	Workers int
	// Catalog holds the rules to apply (default: DefaultCatalog()).
	Catalog *Catalog
	// Logger receives per-file diagnostics (default: slog.Default()).
	Logger *slog.Logger
	// Progress, when set, receives one "[n/total] path" line per processed report.
	Progress io.Writer
}

// Output describes one written verdict file.
type Output struct {
	Source   string
	Sample   string
	Path     string
	Verdicts Verdicts
}

// FileError records a report that could not be processed.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e FileError) Unwrap() error {
	return e.Err
}

// SummaryResult lists what Summarize did, in walk order.
type SummaryResult struct {
	Outputs []Output
	Skipped []string
	Failed  []FileError
	Elapsed time.Duration
}

// Summarize walks root, evaluates every recognized report and writes one verdict file per report.
//
// A report that cannot be read or written is logged and recorded in Failed; it never stops the run.
// Errors are returned only for an invalid catalog, an unusable root or output directory, or when ctx is done.
func Summarize(ctx context.Context, root string, opts SummarizeOptions) (*SummaryResult, error) {
	applySummarizeDefaults(&opts)

	start := time.Now()

	if err := opts.Catalog.Validate(); err != nil {
		return nil, err
	}

	if err := emit.PrepareDir(opts.OutputDir); err != nil {
		return nil, err
	}

	found, err := locate.Walk(ctx, root, opts.Logger)
	if err != nil {
		return nil, err
	}

	warnCollisions(found.Reports, opts.Logger)

	opts.Logger.Debug("reports found", "root", root, "count", len(found.Reports), "workers", opts.Workers)

	outputs := make([]*Output, len(found.Reports))
	failures := make([]error, len(found.Reports))

	var (
		progressMu sync.Mutex
		done       int
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(opts.Workers)

	for idx, candidate := range found.Reports {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			outputs[idx], failures[idx] = processReport(candidate, opts)

			if failures[idx] != nil {
				opts.Logger.Error("processing report", "file", candidate.Path, "error", failures[idx])
			}

			progressMu.Lock()
			done++
			if opts.Progress != nil {
				fmt.Fprintf(opts.Progress, "[%d/%d] %s\n", done, len(found.Reports), candidate.Path)
			}
			progressMu.Unlock()

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	result := &SummaryResult{Skipped: found.Skipped}

	for idx, candidate := range found.Reports {
		if failures[idx] != nil {
			result.Failed = append(result.Failed, FileError{Path: candidate.Path, Err: failures[idx]})

			continue
		}

		result.Outputs = append(result.Outputs, *outputs[idx])
	}

	result.Elapsed = time.Since(start)

	return result, nil
}

func processReport(candidate locate.Candidate, opts SummarizeOptions) (*Output, error) {
	verdicts, err := EvaluateFile(candidate.Path, opts.Catalog)
	if err != nil {
		return nil, err
	}

	path, err := emit.WriteReport(opts.OutputDir, candidate.Sample, verdicts)
	if err != nil {
		return nil, err
	}

	return &Output{Source: candidate.Path, Sample: candidate.Sample, Path: path, Verdicts: verdicts}, nil
}

// warnCollisions flags reports that would overwrite each other's verdict file.
func warnCollisions(reports []locate.Candidate, logger *slog.Logger) {
	owners := make(map[string]string, len(reports))

	for _, candidate := range reports {
		name := emit.FileName(candidate.Sample)

		if previous, ok := owners[name]; ok {
			logger.Warn("reports share an output file, only one will be kept",
				"output", name, "file", candidate.Path, "other", previous)

			continue
		}

		owners[name] = candidate.Path
	}
}

func applySummarizeDefaults(opts *SummarizeOptions) {
	if opts.OutputDir == "" {
		opts.OutputDir = DefaultOutputDir
	}

	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}

	if opts.Catalog == nil {
		opts.Catalog = DefaultCatalog()
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
}
