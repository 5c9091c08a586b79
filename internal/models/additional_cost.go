package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdditionalCost is an extra expense tied to a purchase (shipping, customs,
// repairs...), optionally attributable to the user who paid it.
type AdditionalCost struct {
	ID         uint            `gorm:"primaryKey"`
	PurchaseID uint            `gorm:"index;not null"`
	Label      string          `gorm:"size:255;not null"`
	Amount     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaidByID   *uint           `gorm:"index"`
	IncurredOn time.Time       `gorm:"index;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	PaidBy *User `gorm:"constraint:OnDelete:SET NULL"`
}
