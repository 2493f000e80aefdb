package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/subcommands"

	"github.com/aristath/riskdesk/internal/modules/metrics"
	"github.com/aristath/riskdesk/internal/modules/reports"
)

type reportCmd struct {
	out string
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "write the PDF or HTML risk report to a file" }
func (*reportCmd) Usage() string {
	return `analyze report -out <file.pdf|file.html>

  Runs one analysis and writes the report. The format follows the file extension.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.out, "out", "", "Output file (.pdf or .html)")
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if c.out == "" {
		fmt.Fprintln(os.Stderr, "Error: -out is required")
		return subcommands.ExitUsageError
	}
	if _, err := producerFor(c.out, nil, nil); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	container, _, err := openContainer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer container.Close()

	producer, _ := producerFor(c.out, container.PDFReport, container.HTMLReport)

	res, err := container.AnalysisService.Run(ctx)
	if errors.Is(err, metrics.ErrNoData) {
		fmt.Println(noDataMessage)
		return subcommands.ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	doc, err := producer.Produce(ctx, res.Metrics, res.Alerts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := os.WriteFile(c.out, doc.Data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("wrote %s (%d bytes)\n", c.out, len(doc.Data))
	return subcommands.ExitSuccess
}

// producerFor picks the report producer from the file extension
func producerFor(path string, pdf, html reports.Producer) (reports.Producer, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return pdf, nil
	case ".html", ".htm":
		return html, nil
	default:
		return nil, fmt.Errorf("unsupported report extension %q (want .pdf or .html)", filepath.Ext(path))
	}
}
