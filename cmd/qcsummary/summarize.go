//nolint:wrapcheck
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/farcloser/primordium/format"
	"github.com/urfave/cli/v3"

	"github.com/farcloser/qcsummary"
	"github.com/farcloser/qcsummary/internal/digest"
	"github.com/farcloser/qcsummary/internal/emit"
	"github.com/farcloser/qcsummary/internal/output"
)

var errSummarizeArgs = errors.New("expected exactly one argument: folder path")

func summarizeCommand() *cli.Command {
	return &cli.Command{
		Name:      "summarize",
		Usage:     "Walk a folder for FastQC/Falco reports and write one verdict file per report",
		ArgsUsage: "<folder>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Directory receiving the {sample}" + emit.Suffix + " files",
				Value:   qcsummary.DefaultOutputDir,
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"j"},
				Usage:   "Number of concurrent workers",
				Value:   runtime.NumCPU(),
			},
			rulesFlag(),
			formatFlag(),
			&cli.BoolFlag{
				Name:  "markdown",
				Usage: "Also write a " + digest.MarkdownFile + " digest into the output directory",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("%w: got %d", errSummarizeArgs, cmd.NArg())
			}

			catalog, err := loadCatalog(cmd.String("rules"))
			if err != nil {
				return err
			}

			return runSummarize(ctx, cmd.Args().First(), summarizeSettings{
				outputDir: cmd.String("output"),
				workers:   max(cmd.Int("workers"), 1),
				catalog:   catalog,
				format:    cmd.String("format"),
				markdown:  cmd.Bool("markdown"),
			})
		},
	}
}

type summarizeSettings struct {
	outputDir string
	workers   int
	catalog   *qcsummary.Catalog
	format    string
	markdown  bool
}

func runSummarize(ctx context.Context, folder string, settings summarizeSettings) error {
	result, err := qcsummary.Summarize(ctx, folder, qcsummary.SummarizeOptions{
		OutputDir: settings.outputDir,
		Workers:   settings.workers,
		Catalog:   settings.catalog,
		Logger:    slog.Default(),
		Progress:  os.Stderr,
	})
	if err != nil {
		return err
	}

	processed := len(result.Outputs) + len(result.Failed)
	minutes := int(result.Elapsed.Minutes())
	seconds := int(result.Elapsed.Seconds()) % 60

	fmt.Fprintf(os.Stderr, "\nDone: %d reports in %dm %ds (%d failed, %d skipped)\n",
		processed, minutes, seconds, len(result.Failed), len(result.Skipped))

	if processed == 0 {
		slog.Warn("no reports found", "folder", folder)

		return nil
	}

	fmt.Fprintf(os.Stderr, "Verdicts written to %s (%s)\n", settings.outputDir, result.Elapsed.Truncate(time.Millisecond))

	samples := make([]digest.Sample, 0, len(result.Outputs))
	for _, out := range result.Outputs {
		samples = append(samples, digest.Sample{
			Name:     emit.SanitizeName(out.Sample),
			File:     out.Path,
			Verdicts: out.Verdicts,
		})
	}

	overview := digest.Build(samples)
	overview.Dir = settings.outputDir

	for _, failure := range result.Failed {
		overview.Errors = append(overview.Errors, digest.FileError{File: failure.Path, Err: failure.Err})
	}

	if settings.markdown {
		if err := writeMarkdownDigest(overview); err != nil {
			return err
		}
	}

	return printAll(settings.format, &format.Data{Object: folder, Meta: output.DigestToMap(overview)})
}

func writeMarkdownDigest(overview *digest.Digest) error {
	path := filepath.Join(overview.Dir, digest.MarkdownFile)

	file, err := os.Create(path) //nolint:gosec // output directory is user-provided
	if err != nil {
		return fmt.Errorf("%w %q: %w", emit.ErrWriteReport, path, err)
	}
	defer file.Close()

	if err := digest.WriteMarkdown(file, overview); err != nil {
		return fmt.Errorf("%w %q: %w", emit.ErrWriteReport, path, err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("%w %q: %w", emit.ErrWriteReport, path, err)
	}

	fmt.Fprintf(os.Stderr, "Digest written to %s\n", path)

	return nil
}
