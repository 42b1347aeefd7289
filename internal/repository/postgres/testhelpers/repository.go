package testhelpers

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/indicator-maps/internal/domain/repository"
	"github.com/indicator-maps/internal/repository/postgres"
)

// NewDBForTest creates a postgres.DB with test database and logger
func NewDBForTest(db *sqlx.DB, logger *zap.Logger) *postgres.DB {
	return postgres.NewDBForTest(db, logger)
}

// NewIndicatorRepositoryForTest creates an indicator repository with test database and logger
func NewIndicatorRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.IndicatorRepository {
	return postgres.NewIndicatorRepository(NewDBForTest(db, logger))
}

// NewTerritoryRepositoryForTest creates a territory repository with test database and logger
func NewTerritoryRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.TerritoryRepository {
	return postgres.NewTerritoryRepository(NewDBForTest(db, logger))
}
