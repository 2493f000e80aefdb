// Package snapshots records the daily portfolio value history.
package snapshots

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/riskdesk/internal/database"
	"github.com/aristath/riskdesk/internal/domain"
)

// Snapshot is one recorded day of portfolio value and risk
type Snapshot struct {
	Date           time.Time `json:"date"`
	TotalValue     float64   `json:"total_value"`
	DailyReturn    float64   `json:"daily_return"` // vs the previous recorded snapshot
	TotalCostBasis float64   `json:"total_cost_basis"`
	TotalPnL       float64   `json:"total_pnl"`
	Volatility     float64   `json:"volatility"`
	VaR95          float64   `json:"var_95"`
	MaxDrawdown    float64   `json:"max_drawdown"`
	SharpeRatio    float64   `json:"sharpe_ratio"`
	AlertCount     int       `json:"alert_count"`
	RunID          string    `json:"run_id"`
	RecordedAt     time.Time `json:"recorded_at"`
}

// Repository stores snapshots in the performance_history table
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new snapshot repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "performance_history").Logger(),
	}
}

const snapshotColumns = `date, total_value, daily_return, total_cost_basis, total_pnl,
	volatility, var_95, max_drawdown, sharpe_ratio, alert_count, run_id, recorded_at`

// Record stores the snapshot for its date, replacing an earlier one for the
// same day. DailyReturn is derived from the latest snapshot before that date;
// the first snapshot, or one following a zero value, gets 0.
func (r *Repository) Record(ctx context.Context, s Snapshot) (Snapshot, error) {
	s.Date = day(s.Date)
	date := s.Date.Format(domain.DateLayout)

	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		var previous float64
		err := tx.QueryRowContext(ctx, `SELECT total_value FROM performance_history
			WHERE date < ? ORDER BY date DESC LIMIT 1`, date).Scan(&previous)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			s.DailyReturn = 0
		case err != nil:
			return fmt.Errorf("failed to load previous snapshot: %w", err)
		case previous > 0:
			s.DailyReturn = s.TotalValue/previous - 1
		default:
			s.DailyReturn = 0
		}

		_, err = tx.ExecContext(ctx, `INSERT INTO performance_history (`+snapshotColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(date) DO UPDATE SET
				total_value = excluded.total_value,
				daily_return = excluded.daily_return,
				total_cost_basis = excluded.total_cost_basis,
				total_pnl = excluded.total_pnl,
				volatility = excluded.volatility,
				var_95 = excluded.var_95,
				max_drawdown = excluded.max_drawdown,
				sharpe_ratio = excluded.sharpe_ratio,
				alert_count = excluded.alert_count,
				run_id = excluded.run_id,
				recorded_at = excluded.recorded_at`,
			date, s.TotalValue, s.DailyReturn, s.TotalCostBasis, s.TotalPnL,
			s.Volatility, s.VaR95, s.MaxDrawdown, s.SharpeRatio, s.AlertCount, s.RunID, s.RecordedAt.Unix())
		if err != nil {
			return fmt.Errorf("failed to upsert snapshot: %w", err)
		}
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}

	r.log.Debug().Str("date", date).Float64("total_value", s.TotalValue).Float64("daily_return", s.DailyReturn).Msg("Recorded snapshot")
	return s, nil
}

// History returns the most recent snapshots in chronological order.
// A non-positive limit returns the full history.
func (r *Repository) History(ctx context.Context, limit int) ([]Snapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM performance_history ORDER BY date DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query performance history: %w", err)
	}
	defer rows.Close()

	history := []Snapshot{}
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		history = append(history, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating performance history: %w", err)
	}

	// Newest first from the query
	for i, j := 0, len(history)-1; i < j; i, j = i+1, j-1 {
		history[i], history[j] = history[j], history[i]
	}
	return history, nil
}

// Latest returns the most recent snapshot, or false when none was recorded.
func (r *Repository) Latest(ctx context.Context) (Snapshot, bool, error) {
	history, err := r.History(ctx, 1)
	if err != nil {
		return Snapshot{}, false, err
	}
	if len(history) == 0 {
		return Snapshot{}, false, nil
	}
	return history[0], true, nil
}

func scanSnapshot(rows *sql.Rows) (Snapshot, error) {
	var (
		s          Snapshot
		date       string
		recordedAt int64
	)
	err := rows.Scan(&date, &s.TotalValue, &s.DailyReturn, &s.TotalCostBasis, &s.TotalPnL,
		&s.Volatility, &s.VaR95, &s.MaxDrawdown, &s.SharpeRatio, &s.AlertCount, &s.RunID, &recordedAt)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to scan snapshot: %w", err)
	}
	s.Date, err = time.Parse(domain.DateLayout, date)
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot has malformed date %q: %w", date, err)
	}
	s.RecordedAt = time.Unix(recordedAt, 0).UTC()
	return s, nil
}

func day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
