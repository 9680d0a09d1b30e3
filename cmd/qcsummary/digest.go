//nolint:wrapcheck
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/farcloser/primordium/format"
	"github.com/urfave/cli/v3"

	"github.com/farcloser/qcsummary"
	"github.com/farcloser/qcsummary/internal/digest"
	"github.com/farcloser/qcsummary/internal/output"
)

var errDigestArgs = errors.New("expected exactly one argument: verdict directory")

func digestCommand() *cli.Command {
	return &cli.Command{
		Name:      "digest",
		Usage:     "Summarize a directory of verdict files written by summarize",
		ArgsUsage: "<directory>",
		Flags: []cli.Flag{
			formatFlag(),
			&cli.StringFlag{
				Name:  "metric",
				Usage: "Show the samples flagged for one metric (e.g., duplicate_sequences)",
			},
			&cli.BoolFlag{
				Name:  "markdown",
				Usage: "Print the digest as a Markdown document instead",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("%w: got %d", errDigestArgs, cmd.NArg())
			}

			return runDigest(cmd.Args().First(), cmd.String("metric"), cmd.String("format"), cmd.Bool("markdown"))
		},
	}
}

func runDigest(dir, metricKey, formatName string, markdown bool) error {
	var (
		metric   qcsummary.Metric
		filtered = metricKey != ""
	)

	if filtered {
		var err error

		metric, err = qcsummary.ParseMetric(metricKey)
		if err != nil {
			return err
		}
	}

	overview, err := digest.Load(dir)
	if err != nil {
		return err
	}

	if markdown {
		return digest.WriteMarkdown(os.Stdout, overview)
	}

	data := []*format.Data{{Object: dir, Meta: output.DigestToMap(overview)}}

	if filtered {
		data = append(data, &format.Data{
			Object: metric.String(),
			Meta:   output.AffectedToMap(metric, overview.Affected(metric)),
		})
	}

	return printAll(formatName, data...)
}
