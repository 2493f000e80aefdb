package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// DefaultPriceCacheMaxAge is how long fetched series are kept as a stale fallback
const DefaultPriceCacheMaxAge = 7 * 24 * time.Hour

// CachePruner deletes cache entries fetched before cutoff
type CachePruner interface {
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// PriceCachePruneJob drops old price cache entries
type PriceCachePruneJob struct {
	cache  CachePruner
	maxAge time.Duration
	now    func() time.Time
	log    zerolog.Logger
}

// NewPriceCachePruneJob creates a new PriceCachePruneJob
func NewPriceCachePruneJob(cache CachePruner, maxAge time.Duration, log zerolog.Logger) *PriceCachePruneJob {
	if maxAge <= 0 {
		maxAge = DefaultPriceCacheMaxAge
	}
	return &PriceCachePruneJob{
		cache:  cache,
		maxAge: maxAge,
		now:    time.Now,
		log:    log.With().Str("job", "price_cache_prune").Logger(),
	}
}

// Name returns the job name
func (j *PriceCachePruneJob) Name() string {
	return "price_cache_prune"
}

// Run executes the prune job
func (j *PriceCachePruneJob) Run() error {
	removed, err := j.cache.Prune(context.Background(), j.now().Add(-j.maxAge))
	if err != nil {
		return err
	}
	if removed > 0 {
		j.log.Info().Int64("removed", removed).Msg("Pruned price cache")
	}
	return nil
}
