package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/subcommands"

	"github.com/aristath/riskdesk/internal/modules/charts"
	"github.com/aristath/riskdesk/internal/modules/metrics"
)

type runCmd struct {
	format    string
	chartsDir string
	seed      bool
	refresh   bool
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "analyze the portfolio and print the risk report" }
func (*runCmd) Usage() string {
	return `analyze run [-format text|markdown|json] [-charts <dir>] [-seed] [-refresh]

  Runs one analysis of the stored holdings and prints the result.
`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.format, "format", formatText, "Output format (text, markdown, json)")
	f.StringVar(&c.chartsDir, "charts", "", "Also write the chart PNGs into this directory")
	f.BoolVar(&c.seed, "seed", false, "Load the sample portfolio before analyzing")
	f.BoolVar(&c.refresh, "refresh", false, "Drop cached prices and fetch fresh history")
}

func (c *runCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if !validFormat(c.format) {
		fmt.Fprintf(os.Stderr, "Error: unknown format %q\n", c.format)
		return subcommands.ExitUsageError
	}

	container, log, err := openContainer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer container.Close()

	if c.seed {
		if err := container.Seeder.Seed(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	if c.refresh {
		if err := container.PriceCache.Invalidate(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	res, err := container.AnalysisService.Run(ctx)
	if errors.Is(err, metrics.ErrNoData) {
		fmt.Println(noDataMessage)
		return subcommands.ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.chartsDir != "" {
		written, err := charts.NewFileProducer(c.chartsDir, "", log).Produce(ctx, res.Metrics, res.Alerts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		kinds := make([]string, 0, len(written))
		for kind := range written {
			kinds = append(kinds, string(kind))
		}
		sort.Strings(kinds)
		for _, kind := range kinds {
			fmt.Fprintf(os.Stderr, "wrote %s\n", filepath.Join(c.chartsDir, written[charts.ChartKind(kind)].Filename))
		}
	}

	if err := writeResult(os.Stdout, c.format, res); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
