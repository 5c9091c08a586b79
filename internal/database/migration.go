package database

import (
	"fmt"

	"github.com/diogoammendes/SideSales/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Purchase{},
		&models.PurchaseContribution{},
		&models.AdditionalCost{},
		&models.Sale{},
		&models.SalePayment{},
		&models.Session{},
		&models.AuditLog{},
		&models.Backup{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
