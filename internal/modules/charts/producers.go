package charts

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/aristath/riskdesk/internal/domain"
	"github.com/aristath/riskdesk/internal/modules/metrics"
)

const pngContentType = "image/png"

// FileProducer writes charts as PNG files into a directory served under urlPrefix.
type FileProducer struct {
	dir       string
	urlPrefix string
	log       zerolog.Logger

	mu sync.Mutex // one run replaces the directory contents at a time
}

// NewFileProducer creates a producer writing into dir. URLs are urlPrefix + file name.
func NewFileProducer(dir, urlPrefix string, log zerolog.Logger) *FileProducer {
	return &FileProducer{
		dir:       dir,
		urlPrefix: urlPrefix,
		log:       log.With().Str("component", "chart_files").Logger(),
	}
}

// Produce renders the charts and replaces the files in the directory. Files of
// charts that were omitted this run are removed so stale images are not served.
func (p *FileProducer) Produce(ctx context.Context, m *metrics.PortfolioMetrics, alerts []domain.Alert) (map[ChartKind]Artifact, error) {
	rendered, err := render(ctx, m)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := os.MkdirAll(p.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create chart directory: %w", err)
	}

	out := make(map[ChartKind]Artifact, len(rendered))
	for _, kind := range AllKinds {
		name := Filename(kind)
		path := filepath.Join(p.dir, name)
		png, ok := rendered[kind]
		if !ok {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				p.log.Warn().Err(err).Str("file", path).Msg("Failed to remove stale chart")
			}
			continue
		}
		if err := writeFileAtomic(path, png); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", name, err)
		}
		out[kind] = Artifact{
			Kind:        kind,
			Filename:    name,
			ContentType: pngContentType,
			URL:         p.urlPrefix + name,
			Data:        png,
		}
	}

	p.log.Debug().Int("charts", len(out)).Str("dir", p.dir).Msg("Wrote chart files")
	return out, nil
}

// EmbeddedProducer returns charts as base64 data: URLs for inline <img> tags.
type EmbeddedProducer struct {
	log zerolog.Logger
}

// NewEmbeddedProducer creates an embedded chart producer
func NewEmbeddedProducer(log zerolog.Logger) *EmbeddedProducer {
	return &EmbeddedProducer{
		log: log.With().Str("component", "chart_embedded").Logger(),
	}
}

// Produce renders the charts in memory
func (p *EmbeddedProducer) Produce(ctx context.Context, m *metrics.PortfolioMetrics, alerts []domain.Alert) (map[ChartKind]Artifact, error) {
	rendered, err := render(ctx, m)
	if err != nil {
		return nil, err
	}

	out := make(map[ChartKind]Artifact, len(rendered))
	for kind, png := range rendered {
		out[kind] = Artifact{
			Kind:        kind,
			Filename:    Filename(kind),
			ContentType: pngContentType,
			URL:         "data:" + pngContentType + ";base64," + base64.StdEncoding.EncodeToString(png),
			Data:        png,
		}
	}
	return out, nil
}

func render(ctx context.Context, m *metrics.PortfolioMetrics) (map[ChartKind][]byte, error) {
	if m == nil {
		return map[ChartKind][]byte{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return renderAll(m)
}

// writeFileAtomic writes through a uniquely named temp file in the target
// directory so readers and other writers never see a partial image.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
