// Package di provides dependency injection for repository implementations.
package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/riskdesk/internal/modules/portfolio"
	"github.com/aristath/riskdesk/internal/modules/snapshots"
)

// InitializeRepositories creates all repositories and stores them in the container
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	if container == nil {
		return fmt.Errorf("container cannot be nil")
	}
	if container.PortfolioDB == nil {
		return fmt.Errorf("portfolio database not initialized")
	}

	container.HoldingRepo = portfolio.NewHoldingRepository(container.PortfolioDB.Conn(), log)
	container.LimitRepo = portfolio.NewLimitRepository(container.PortfolioDB.Conn(), log)
	container.SnapshotRepo = snapshots.NewRepository(container.PortfolioDB.Conn(), log)

	log.Info().Msg("Repositories initialized")

	return nil
}
