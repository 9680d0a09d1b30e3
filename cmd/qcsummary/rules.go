//nolint:wrapcheck
package main

import (
	"context"
	"os"

	"github.com/farcloser/primordium/format"
	"github.com/urfave/cli/v3"

	"github.com/farcloser/qcsummary/internal/config"
	"github.com/farcloser/qcsummary/internal/output"
)

func rulesCommand() *cli.Command {
	return &cli.Command{
		Name:  "rules",
		Usage: "Print the active QC rules and their thresholds",
		Flags: []cli.Flag{
			formatFlag(),
			rulesFlag(),
			&cli.BoolFlag{
				Name:  "template",
				Usage: "Print the rules as an editable YAML rules file",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			catalog, err := loadCatalog(cmd.String("rules"))
			if err != nil {
				return err
			}

			if cmd.Bool("template") {
				data, err := config.Template(catalog)
				if err != nil {
					return err
				}

				_, err = os.Stdout.Write(data)

				return err
			}

			rules := catalog.Rules()
			data := make([]*format.Data, 0, len(rules))

			for _, rule := range rules {
				data = append(data, &format.Data{Object: rule.Metric.String(), Meta: output.RuleToMap(rule)})
			}

			return printAll(cmd.String("format"), data...)
		},
	}
}
