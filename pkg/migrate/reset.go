package migrate

import (
	"context"
	"fmt"

	"github.com/timele/timele-backend/pkg/config"
	"github.com/timele/timele-backend/pkg/db"
	"github.com/timele/timele-backend/pkg/logger"
)

// Prepare brings the schema to the latest version, optionally dropping
// everything first when RESET_DATABASE_ON_STARTUP is set. The gateway
// must not accept traffic until this returns.
func Prepare(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	if cfg.DB.ResetOnStartup {
		logg.Warn(ctx, "RESET_DATABASE_ON_STARTUP set, dropping schema")
		if err := client.Exec(ctx, "DROP SCHEMA public CASCADE").Error; err != nil {
			return fmt.Errorf("dropping schema: %w", err)
		}
		if err := client.Exec(ctx, "CREATE SCHEMA public").Error; err != nil {
			return fmt.Errorf("recreating schema: %w", err)
		}
	}

	ctx = logg.WithField(ctx, "dir", DefaultDir)
	logg.Info(ctx, "running goose migrations")

	if err := Up(ctx, sqlDB, DefaultDir); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "goose migrations completed")
	return nil
}
