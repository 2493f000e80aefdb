// Package artifacts publishes generated reports to object storage.
package artifacts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/riskdesk/internal/modules/reports"
)

// Artifact is a published report
type Artifact struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// Publisher stores reports produced by scheduled runs.
type Publisher interface {
	Enabled() bool
	PublishReport(ctx context.Context, runID string, at time.Time, doc reports.Document) (Artifact, error)
	List(ctx context.Context) ([]Artifact, error)
}

// ObjectStore is the storage a publisher writes to. S3Store implements it.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) error
	List(ctx context.Context, prefix string) ([]Object, error)
}

// StorePublisher publishes to an object store under a key prefix
type StorePublisher struct {
	store  ObjectStore
	prefix string
	log    zerolog.Logger
}

// NewStorePublisher creates a publisher. Keys are <prefix>/reports/YYYY/MM/DD/<run-id>.<ext>.
func NewStorePublisher(store ObjectStore, prefix string, log zerolog.Logger) *StorePublisher {
	return &StorePublisher{
		store:  store,
		prefix: strings.Trim(prefix, "/"),
		log:    log.With().Str("service", "artifacts").Logger(),
	}
}

// Enabled reports true
func (p *StorePublisher) Enabled() bool { return true }

// ReportKey returns the object key of a report
func (p *StorePublisher) ReportKey(runID string, at time.Time, ext string) string {
	return path.Join(p.reportsPrefix(), at.UTC().Format("2006/01/02"), runID+ext)
}

func (p *StorePublisher) reportsPrefix() string {
	return path.Join(p.prefix, "reports")
}

// PublishReport uploads the document and returns where it was stored
func (p *StorePublisher) PublishReport(ctx context.Context, runID string, at time.Time, doc reports.Document) (Artifact, error) {
	key := p.ReportKey(runID, at, path.Ext(doc.Filename))
	if err := p.store.Upload(ctx, key, doc.ContentType, bytes.NewReader(doc.Data)); err != nil {
		return Artifact{}, fmt.Errorf("failed to publish report: %w", err)
	}

	p.log.Info().Str("key", key).Int("bytes", len(doc.Data)).Msg("Published report")
	return Artifact{Key: key, Size: int64(len(doc.Data)), LastModified: at.UTC()}, nil
}

// List returns published reports, newest first
func (p *StorePublisher) List(ctx context.Context) ([]Artifact, error) {
	objects, err := p.store.List(ctx, p.reportsPrefix()+"/")
	if err != nil {
		return nil, err
	}

	out := make([]Artifact, 0, len(objects))
	for _, obj := range objects {
		out = append(out, Artifact{Key: obj.Key, Size: obj.Size, LastModified: obj.LastModified})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastModified.Equal(out[j].LastModified) {
			return out[i].Key > out[j].Key
		}
		return out[i].LastModified.After(out[j].LastModified)
	})
	return out, nil
}

// NopPublisher is used when no bucket is configured
type NopPublisher struct{}

func (NopPublisher) Enabled() bool { return false }

func (NopPublisher) PublishReport(ctx context.Context, runID string, at time.Time, doc reports.Document) (Artifact, error) {
	return Artifact{}, nil
}

func (NopPublisher) List(ctx context.Context) ([]Artifact, error) {
	return []Artifact{}, nil
}
