package reports

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/rs/zerolog"

	"github.com/aristath/riskdesk/internal/domain"
	"github.com/aristath/riskdesk/internal/modules/charts"
	"github.com/aristath/riskdesk/internal/modules/metrics"
)

// column widths of the holdings table in mm, matching HoldingColumns
var holdingWidths = []float64{24, 22, 26, 30, 22, 28, 22}

// PDFProducer lays the report out as an A4 PDF.
type PDFProducer struct {
	charts charts.Producer
	now    func() time.Time
	log    zerolog.Logger
}

// NewPDFProducer creates a PDF producer. chartProducer may be nil.
func NewPDFProducer(chartProducer charts.Producer, log zerolog.Logger) *PDFProducer {
	return &PDFProducer{
		charts: chartProducer,
		now:    time.Now,
		log:    log.With().Str("component", "pdf_report").Logger(),
	}
}

// Produce renders the PDF document
func (p *PDFProducer) Produce(ctx context.Context, m *metrics.PortfolioMetrics, alerts []domain.Alert) (Document, error) {
	if m == nil {
		return Document{}, ErrNoMetrics
	}
	generatedAt := p.now()

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Portfolio Risk Report", false)
	pdf.SetCreator("riskdesk", false)
	pdf.SetCreationDate(generatedAt)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Portfolio Risk Report")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(100, 100, 100)
	pdf.Cell(0, 6, "Generated "+generatedAt.Format("2006-01-02 15:04 MST"))
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(10)

	p.summary(pdf, m)
	p.alerts(pdf, alerts)
	p.holdings(pdf, m)

	if p.charts != nil {
		artifacts, err := p.charts.Produce(ctx, m, alerts)
		if err != nil {
			return Document{}, fmt.Errorf("failed to render charts: %w", err)
		}
		p.chartPages(pdf, artifacts)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return Document{}, fmt.Errorf("failed to write pdf: %w", err)
	}

	p.log.Debug().Int("bytes", buf.Len()).Int("pages", pdf.PageCount()).Msg("Rendered PDF report")
	return Document{
		Filename:    Filename(generatedAt, "pdf"),
		ContentType: "application/pdf",
		Data:        buf.Bytes(),
	}, nil
}

func heading(pdf *fpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, text)
	pdf.Ln(9)
}

func (p *PDFProducer) summary(pdf *fpdf.Fpdf, m *metrics.PortfolioMetrics) {
	heading(pdf, "Executive Summary")
	pdf.SetFont("Helvetica", "", 10)
	for i, row := range Summary(m) {
		fill := i%2 == 0
		pdf.SetFillColor(244, 244, 244)
		pdf.CellFormat(70, 7, row.Label, "", 0, "L", fill, 0, "")
		pdf.CellFormat(50, 7, row.Value, "", 1, "R", fill, 0, "")
	}
	pdf.Ln(6)
}

func (p *PDFProducer) alerts(pdf *fpdf.Fpdf, alerts []domain.Alert) {
	heading(pdf, "Risk Alerts")
	pdf.SetFont("Helvetica", "", 10)
	if len(alerts) == 0 {
		pdf.Cell(0, 7, "No limit breaches.")
		pdf.Ln(10)
		return
	}
	for _, a := range alerts {
		if a.Severity == domain.SeverityDanger {
			pdf.SetFillColor(248, 215, 218)
		} else {
			pdf.SetFillColor(255, 243, 205)
		}
		pdf.MultiCell(0, 7, strings.ToUpper(string(a.Severity))+": "+a.Message, "", "L", true)
		pdf.Ln(1)
	}
	pdf.Ln(5)
}

func (p *PDFProducer) holdings(pdf *fpdf.Fpdf, m *metrics.PortfolioMetrics) {
	heading(pdf, "Holdings")

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(52, 73, 94)
	pdf.SetTextColor(255, 255, 255)
	for i, col := range HoldingColumns {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(holdingWidths[i], 7, col, "", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFillColor(244, 244, 244)
	for r, row := range HoldingRows(m) {
		for i, cell := range row {
			align := "R"
			if i == 0 {
				align = "L"
			}
			pdf.CellFormat(holdingWidths[i], 6, cell, "B", 0, align, r%2 == 1, 0, "")
		}
		pdf.Ln(-1)
	}
}

func (p *PDFProducer) chartPages(pdf *fpdf.Fpdf, artifacts map[charts.ChartKind]charts.Artifact) {
	opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	placed := 0
	for _, kind := range charts.AllKinds {
		a, ok := artifacts[kind]
		if !ok {
			continue
		}
		// Two charts per page
		if placed%2 == 0 {
			pdf.AddPage()
		}
		name := string(kind)
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(a.Data))
		y := 20.0 + float64(placed%2)*130
		pdf.ImageOptions(name, 15, y, 180, 0, false, opts, 0, "")
		placed++
	}
}
