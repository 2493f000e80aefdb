package reports

import (
	"fmt"
	"strings"
	"time"

	"github.com/aristath/riskdesk/internal/domain"
	"github.com/aristath/riskdesk/internal/modules/metrics"
)

// Markdown renders the report as GitHub-flavoured markdown. The HTML report and
// the terminal output of the CLI are both built from it.
func Markdown(m *metrics.PortfolioMetrics, alerts []domain.Alert, generatedAt time.Time) string {
	var b strings.Builder

	b.WriteString("# Portfolio Risk Report\n\n")
	fmt.Fprintf(&b, "_Generated %s_\n\n", generatedAt.Format("2006-01-02 15:04 MST"))

	b.WriteString("## Executive Summary\n\n")
	b.WriteString("| Metric | Value |\n|---|---:|\n")
	for _, row := range Summary(m) {
		fmt.Fprintf(&b, "| %s | %s |\n", escapeCell(row.Label), row.Value)
	}
	b.WriteString("\n")

	b.WriteString("## Risk Alerts\n\n")
	if len(alerts) == 0 {
		b.WriteString("No limit breaches.\n\n")
	} else {
		for _, a := range alerts {
			fmt.Fprintf(&b, "- **%s**: %s\n", strings.ToUpper(string(a.Severity)), a.Message)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Holdings\n\n")
	b.WriteString("| " + strings.Join(HoldingColumns, " | ") + " |\n")
	b.WriteString("|---" + strings.Repeat("|---:", len(HoldingColumns)-1) + "|\n")
	for _, row := range HoldingRows(m) {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = escapeCell(c)
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}

	if len(m.SectorWeights) > 0 {
		b.WriteString("\n## Sectors\n\n| Sector | Weight |\n|---|---:|\n")
		for _, s := range m.SectorWeights {
			fmt.Fprintf(&b, "| %s | %s |\n", escapeCell(s.Sector), FormatPercent(s.Weight))
		}
	}
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
