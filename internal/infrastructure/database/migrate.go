package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Sema-5678/topup-service/internal/domain/model"
)

// Migrate runs ledger database migrations
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("Running ledger migrations...")

	err := db.AutoMigrate(
		&model.UserBalance{},
		&model.BalanceTransaction{},
	)
	if err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return err
	}

	logger.Info("Ledger migrations completed successfully")
	return nil
}
