package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/aristath/riskdesk/internal/modules/portfolio"
)

type seedCmd struct{}

func (*seedCmd) Name() string     { return "seed" }
func (*seedCmd) Synopsis() string { return "replace holdings and limits with the sample portfolio" }
func (*seedCmd) Usage() string {
	return `analyze seed

  Replaces all holdings with the sample portfolio and installs the sample
  risk limits (VaR 3%, position weight 20%, sector 40%).
`
}

func (*seedCmd) SetFlags(f *flag.FlagSet) {}

func (*seedCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	container, _, err := openContainer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer container.Close()

	if err := container.Seeder.Seed(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("loaded %d sample holdings\n", len(portfolio.SampleHoldings()))
	return subcommands.ExitSuccess
}
