//nolint:wrapcheck
package main

import (
	"os"

	"github.com/farcloser/primordium/format"
	"github.com/urfave/cli/v3"

	"github.com/farcloser/qcsummary"
	"github.com/farcloser/qcsummary/internal/config"
)

func formatFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: console, json, markdown",
		Value:   "console",
	}
}

func rulesFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "rules",
		Aliases: []string{"r"},
		Usage:   "YAML file overriding the default thresholds",
	}
}

// loadCatalog returns the default catalog, or the default catalog with the overrides of the rules file.
func loadCatalog(path string) (*qcsummary.Catalog, error) {
	if path == "" {
		return qcsummary.DefaultCatalog(), nil
	}

	return config.LoadCatalog(path, qcsummary.DefaultCatalog())
}

func printAll(formatName string, data ...*format.Data) error {
	formatter, err := format.GetFormatter(formatName)
	if err != nil {
		return err
	}

	return formatter.PrintAll(data, os.Stdout)
}
