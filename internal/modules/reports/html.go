package reports

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/aristath/riskdesk/internal/domain"
	"github.com/aristath/riskdesk/internal/modules/charts"
	"github.com/aristath/riskdesk/internal/modules/metrics"
)

//go:embed templates/page.html
var templates embed.FS

var pageTemplate = template.Must(template.ParseFS(templates, "templates/page.html"))

// Link is a navigation entry rendered above the report
type Link struct {
	Href string
	Text string
}

type chartImage struct {
	Src template.URL
	Alt string
}

type page struct {
	Title  string
	Links  []Link
	Body   template.HTML
	Charts []chartImage
}

// HTMLProducer renders the markdown report to a standalone HTML page.
type HTMLProducer struct {
	charts   charts.Producer
	links    []Link
	markdown goldmark.Markdown
	policy   *bluemonday.Policy
	now      func() time.Time
	log      zerolog.Logger
}

// NewHTMLProducer creates an HTML producer. chartProducer may be nil, in which
// case the page has no charts.
func NewHTMLProducer(chartProducer charts.Producer, log zerolog.Logger) *HTMLProducer {
	return &HTMLProducer{
		charts: chartProducer,
		markdown: goldmark.New(goldmark.WithExtensions(
			extension.NewTable(extension.WithTableCellAlignMethod(extension.TableCellAlignAttribute)),
		)),
		policy: bluemonday.UGCPolicy(),
		now:    time.Now,
		log:    log.With().Str("component", "html_report").Logger(),
	}
}

// WithLinks returns a copy of the producer that renders a navigation bar.
func (p *HTMLProducer) WithLinks(links ...Link) *HTMLProducer {
	cp := *p
	cp.links = links
	return &cp
}

// Produce renders the HTML document
func (p *HTMLProducer) Produce(ctx context.Context, m *metrics.PortfolioMetrics, alerts []domain.Alert) (Document, error) {
	if m == nil {
		return Document{}, ErrNoMetrics
	}
	generatedAt := p.now()

	var md bytes.Buffer
	if err := p.markdown.Convert([]byte(Markdown(m, alerts, generatedAt)), &md); err != nil {
		return Document{}, fmt.Errorf("failed to convert markdown: %w", err)
	}

	pg := page{
		Title: "Portfolio Risk Report",
		Links: p.links,
		// Symbols and asset classes come from user input
		Body: template.HTML(p.policy.SanitizeBytes(md.Bytes())),
	}

	if p.charts != nil {
		artifacts, err := p.charts.Produce(ctx, m, alerts)
		if err != nil {
			return Document{}, fmt.Errorf("failed to render charts: %w", err)
		}
		for _, kind := range charts.AllKinds {
			if a, ok := artifacts[kind]; ok {
				pg.Charts = append(pg.Charts, chartImage{Src: template.URL(a.URL), Alt: string(kind) + " chart"})
			}
		}
	}

	var out bytes.Buffer
	if err := pageTemplate.Execute(&out, pg); err != nil {
		return Document{}, fmt.Errorf("failed to render page: %w", err)
	}

	p.log.Debug().Int("bytes", out.Len()).Int("charts", len(pg.Charts)).Msg("Rendered HTML report")
	return Document{
		Filename:    Filename(generatedAt, "html"),
		ContentType: "text/html; charset=utf-8",
		Data:        out.Bytes(),
	}, nil
}
