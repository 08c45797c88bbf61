package migration

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/weatherq/weather-query-api/internal/database"
)

type Runner struct {
	dbManager *database.Manager
	logger    *logrus.Logger
}

func NewRunner(dbManager *database.Manager, logger *logrus.Logger) *Runner {
	return &Runner{
		dbManager: dbManager,
		logger:    logger,
	}
}

// indexStatements hold the indexes AutoMigrate cannot express. History lookups
// match on LOWER(city) and order/filter on created_at.
var indexStatements = []string{
	`CREATE INDEX IF NOT EXISTS ix_weather_queries_city_ci ON weather_queries (LOWER(city))`,
	`CREATE INDEX IF NOT EXISTS ix_weather_queries_created_at ON weather_queries (created_at)`,
}

// RunMigrations executes all pending migrations
func (r *Runner) RunMigrations() error {
	r.logger.Info("Starting database migrations...")

	// First run GORM auto-migrations
	if err := r.dbManager.Migrate(); err != nil {
		return fmt.Errorf("GORM auto-migration failed: %w", err)
	}

	// Then ensure the functional indexes exist
	for _, stmt := range indexStatements {
		if err := r.dbManager.DB.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
		r.logger.WithField("statement", stmt).Debug("Index ensured")
	}

	r.logger.Info("Database migrations completed successfully")
	return nil
}
