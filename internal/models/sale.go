package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale statuses. Informational only: the status never affects how revenue
// is attributed.
const (
	SaleDraft     = "DRAFT"
	SaleConfirmed = "CONFIRMED"
	SaleSettled   = "SETTLED"
)

// Sale records the resale of part of a purchase to a buyer.
type Sale struct {
	ID               uint            `gorm:"primaryKey"`
	PurchaseID       uint            `gorm:"index;not null"`
	BuyerName        string          `gorm:"size:255;not null"`
	BuyerDescription string          `gorm:"type:text"`
	Quantity         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SoldOn           time.Time       `gorm:"index;not null"`
	Status           string          `gorm:"size:20;index;not null;default:DRAFT"`
	Notes            string          `gorm:"type:text"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Payments []SalePayment `gorm:"constraint:OnDelete:CASCADE"`
}

// ValidSaleStatus reports whether s is a known sale status.
func ValidSaleStatus(s string) bool {
	switch s {
	case SaleDraft, SaleConfirmed, SaleSettled:
		return true
	}
	return false
}

// TotalPrice returns quantity * unit price.
func (s *Sale) TotalPrice() decimal.Decimal {
	return s.Quantity.Mul(s.UnitPrice)
}

// TotalPayments sums the loaded payment amounts.
func (s *Sale) TotalPayments() decimal.Decimal {
	total := decimal.Zero
	for i := range s.Payments {
		total = total.Add(s.Payments[i].Amount)
	}
	return total
}

// OutstandingAmount is what the buyer still owes on this sale.
func (s *Sale) OutstandingAmount() decimal.Decimal {
	return s.TotalPrice().Sub(s.TotalPayments())
}
