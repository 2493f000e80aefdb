package portfolio

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/riskdesk/internal/database"
	"github.com/aristath/riskdesk/internal/domain"
)

// LimitRepository stores the configured risk limits
type LimitRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewLimitRepository creates a new limit repository
func NewLimitRepository(db *sql.DB, log zerolog.Logger) *LimitRepository {
	return &LimitRepository{
		db:  db,
		log: log.With().Str("repo", "risk_limit").Logger(),
	}
}

// GetLimits returns limits in their configured order
func (r *LimitRepository) GetLimits(ctx context.Context) ([]domain.RiskLimit, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT metric, limit_value, alert_threshold
		FROM risk_limits ORDER BY position, metric`)
	if err != nil {
		return nil, fmt.Errorf("failed to query risk limits: %w", err)
	}
	defer rows.Close()

	limits := []domain.RiskLimit{}
	for rows.Next() {
		var l domain.RiskLimit
		if err := rows.Scan(&l.Metric, &l.LimitValue, &l.AlertThreshold); err != nil {
			return nil, fmt.Errorf("failed to scan risk limit: %w", err)
		}
		limits = append(limits, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating risk limits: %w", err)
	}

	return limits, nil
}

// SetLimits replaces the whole limit set atomically. On error the previous set
// is left in place.
func (r *LimitRepository) SetLimits(ctx context.Context, limits []domain.RiskLimit) error {
	if err := ValidateLimits(limits); err != nil {
		return err
	}

	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM risk_limits`); err != nil {
			return fmt.Errorf("failed to clear risk limits: %w", err)
		}
		for i, l := range limits {
			_, err := tx.ExecContext(ctx, `INSERT INTO risk_limits (metric, limit_value, alert_threshold, position)
				VALUES (?, ?, ?, ?)`, string(l.Metric), l.LimitValue, l.AlertThreshold, i)
			if err != nil {
				return fmt.Errorf("failed to insert risk limit %s: %w", l.Metric, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, l := range limits {
		if !l.Metric.IsKnown() {
			r.log.Warn().Str("metric", string(l.Metric)).Msg("Stored limit on a metric the checker does not evaluate")
		}
	}
	r.log.Info().Int("count", len(limits)).Msg("Replaced risk limits")
	return nil
}
