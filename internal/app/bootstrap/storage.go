package bootstrap

import (
	"context"
	"fmt"

	appconfig "github.com/kpphospital/mch-appointments/internal/config"
	"github.com/kpphospital/mch-appointments/internal/storage"
	"github.com/kpphospital/mch-appointments/pkg/logging"
)

// BuildStore selects the spreadsheet backend named by STORAGE_BACKEND.
func BuildStore(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (storage.Store, error) {
	if logger == nil {
		logger = logging.Default()
	}

	switch cfg.StorageBackend {
	case "", "webapp":
		store, err := storage.NewWebAppStore(storage.WebAppConfig{
			URL:     cfg.SheetsWebAppURL,
			Timeout: cfg.OutboundTimeout,
			Logger:  logger,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("using apps script storage backend")
		return store, nil
	case "sheets":
		store, err := storage.NewSheetsAPIStore(ctx, storage.SheetsAPIConfig{
			SpreadsheetID:   cfg.SheetsSpreadsheetID,
			Range:           cfg.SheetsRange,
			CredentialsJSON: cfg.GoogleCredentialsJSON,
			Location:        locationFor(cfg),
			Logger:          logger,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("using sheets api storage backend", "spreadsheet_id", cfg.SheetsSpreadsheetID)
		return store, nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}
}
