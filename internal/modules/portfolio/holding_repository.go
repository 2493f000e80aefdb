package portfolio

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/riskdesk/internal/database"
	"github.com/aristath/riskdesk/internal/domain"
)

// HoldingRepository stores holdings in the portfolio database
type HoldingRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewHoldingRepository creates a new holding repository
func NewHoldingRepository(db *sql.DB, log zerolog.Logger) *HoldingRepository {
	return &HoldingRepository{
		db:  db,
		log: log.With().Str("repo", "holding").Logger(),
	}
}

// ListHoldings returns every holding in insertion order
func (r *HoldingRepository) ListHoldings(ctx context.Context) ([]domain.Holding, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, symbol, quantity, purchase_price, purchase_date, asset_class
		FROM holdings ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	defer rows.Close()

	holdings := []domain.Holding{}
	for rows.Next() {
		var (
			h    domain.Holding
			date string
		)
		if err := rows.Scan(&h.ID, &h.Symbol, &h.Quantity, &h.PurchasePrice, &date, &h.AssetClass); err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		h.PurchaseDate, err = time.Parse(domain.DateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("holding %d has malformed purchase date %q: %w", h.ID, date, err)
		}
		holdings = append(holdings, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holdings: %w", err)
	}

	return holdings, nil
}

// AddHolding records a new holding. The symbol is normalized to upper case.
func (r *HoldingRepository) AddHolding(ctx context.Context, h domain.Holding) error {
	if err := ValidateHolding(h); err != nil {
		return err
	}

	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		return insertHolding(ctx, tx, h)
	})
}

// ReplaceAll deletes every holding and inserts the given set in one transaction.
func (r *HoldingRepository) ReplaceAll(ctx context.Context, holdings []domain.Holding) error {
	for _, h := range holdings {
		if err := ValidateHolding(h); err != nil {
			return err
		}
	}

	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM holdings`); err != nil {
			return fmt.Errorf("failed to clear holdings: %w", err)
		}
		for _, h := range holdings {
			if err := insertHolding(ctx, tx, h); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.log.Info().Int("count", len(holdings)).Msg("Replaced holdings")
	return nil
}

// Count returns the number of stored holdings
func (r *HoldingRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM holdings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count holdings: %w", err)
	}
	return n, nil
}

func insertHolding(ctx context.Context, tx *sql.Tx, h domain.Holding) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO holdings
		(symbol, quantity, purchase_price, purchase_date, asset_class, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		NormalizeSymbol(h.Symbol),
		h.Quantity,
		h.PurchasePrice,
		h.PurchaseDate.Format(domain.DateLayout),
		h.AssetClass,
		time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert holding %s: %w", h.Symbol, err)
	}
	return nil
}
