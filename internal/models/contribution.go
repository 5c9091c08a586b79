package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Contribution types: a fixed amount or a percentage of the purchase base.
const (
	ContributionAbsolute   = "ABSOLUTE"
	ContributionPercentage = "PERCENTAGE"
)

// PurchaseContribution is a funding commitment by a user toward a purchase.
type PurchaseContribution struct {
	ID         uint            `gorm:"primaryKey"`
	PurchaseID uint            `gorm:"index;not null"`
	PayerID    *uint           `gorm:"index"`
	Type       string          `gorm:"size:20;not null"`
	Value      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaidOn     time.Time       `gorm:"index;not null"`
	Notes      string          `gorm:"size:255"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Payer *User `gorm:"constraint:OnDelete:SET NULL"`
}

// ValidContributionType reports whether t is a known contribution type.
func ValidContributionType(t string) bool {
	return t == ContributionAbsolute || t == ContributionPercentage
}

// ResolvedAmount converts the contribution into money. Absolute
// contributions are their value; percentage contributions resolve against
// the purchase base passed in, and a zero base resolves to zero.
func (c *PurchaseContribution) ResolvedAmount(totalBase decimal.Decimal) decimal.Decimal {
	if c.Type == ContributionAbsolute {
		return c.Value
	}
	if totalBase.IsZero() {
		return decimal.Zero
	}
	return totalBase.Mul(c.Value).Div(decimal.NewFromInt(100))
}
