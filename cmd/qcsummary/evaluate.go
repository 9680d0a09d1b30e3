//nolint:wrapcheck
package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/farcloser/primordium/format"
	"github.com/urfave/cli/v3"

	"github.com/farcloser/qcsummary"
	"github.com/farcloser/qcsummary/internal/locate"
	"github.com/farcloser/qcsummary/internal/output"
)

var errEvaluateArgs = errors.New("expected exactly one argument: report path")

func evaluateCommand() *cli.Command {
	return &cli.Command{
		Name:      "evaluate",
		Usage:     "Evaluate a single fastqc_data.txt report and print its verdicts",
		ArgsUsage: "<fastqc_data.txt>",
		Flags: []cli.Flag{
			formatFlag(),
			rulesFlag(),
			&cli.StringFlag{
				Name:  "label",
				Usage: "Sample label to report (default: derived from the file path)",
			},
			&cli.BoolFlag{
				Name:  "detailed",
				Usage: "Include rule names, thresholds and status counts",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("%w: got %d", errEvaluateArgs, cmd.NArg())
			}

			path := cmd.Args().First()

			catalog, err := loadCatalog(cmd.String("rules"))
			if err != nil {
				return err
			}

			verdicts, err := qcsummary.EvaluateFile(path, catalog)
			if err != nil {
				return err
			}

			label := cmd.String("label")
			if label == "" {
				label = locate.SampleLabel(path)
			}

			meta := output.FriendlyMap(verdicts, catalog)
			if cmd.Bool("detailed") {
				meta = output.VerdictsToMap(verdicts, catalog)
			}

			meta["sample"] = label

			return printAll(cmd.String("format"), &format.Data{Object: label, Meta: meta})
		},
	}
}
