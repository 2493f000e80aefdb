package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"

	"github.com/aristath/riskdesk/internal/modules/analysis"
	"github.com/aristath/riskdesk/internal/modules/reports"
)

// Output formats of the run command
const (
	formatText     = "text"
	formatMarkdown = "markdown"
	formatJSON     = "json"
)

// noDataMessage is printed instead of a report when there are no holdings
const noDataMessage = "no portfolio data"

func validFormat(format string) bool {
	switch format {
	case formatText, formatMarkdown, formatJSON:
		return true
	}
	return false
}

// writeResult prints an analysis result in the requested format
func writeResult(w io.Writer, format string, res *analysis.Result) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case formatMarkdown:
		_, err := io.WriteString(w, reports.Markdown(res.Metrics, res.Alerts, res.GeneratedAt))
		return err
	case formatText:
		out, err := renderMarkdown(reports.Markdown(res.Metrics, res.Alerts, res.GeneratedAt))
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func renderMarkdown(md string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return r.Render(md)
}
