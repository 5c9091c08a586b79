package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase represents a batch of goods bought for resale. The money paid in
// by contributors, extra costs and the resulting sales all hang off it.
// Financial totals are always derived from the children, never stored.
type Purchase struct {
	ID           uint            `gorm:"primaryKey"`
	Title        string          `gorm:"size:255;not null"`
	Description  string          `gorm:"type:text"`
	Quantity     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	UnitCost     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PurchasedOn  time.Time       `gorm:"index;not null"`
	SignalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	SignalPaidByID *uint         `gorm:"index"`
	SignalPaidOn   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time

	SignalPaidBy    *User                  `gorm:"constraint:OnDelete:SET NULL"`
	Contributions   []PurchaseContribution `gorm:"constraint:OnDelete:CASCADE"`
	AdditionalCosts []AdditionalCost       `gorm:"constraint:OnDelete:CASCADE"`
	Sales           []Sale                 `gorm:"constraint:OnDelete:CASCADE"`
}

// TotalBase returns quantity * unit cost.
func (p *Purchase) TotalBase() decimal.Decimal {
	return p.Quantity.Mul(p.UnitCost)
}

// TotalAdditionalCosts sums the amounts of the loaded additional costs.
func (p *Purchase) TotalAdditionalCosts() decimal.Decimal {
	total := decimal.Zero
	for i := range p.AdditionalCosts {
		total = total.Add(p.AdditionalCosts[i].Amount)
	}
	return total
}

// TotalCost returns base + signal deposit + additional costs.
func (p *Purchase) TotalCost() decimal.Decimal {
	return p.TotalBase().Add(p.SignalAmount).Add(p.TotalAdditionalCosts())
}

// TotalRevenue sums quantity*unit_price over the loaded sales.
func (p *Purchase) TotalRevenue() decimal.Decimal {
	total := decimal.Zero
	for i := range p.Sales {
		total = total.Add(p.Sales[i].TotalPrice())
	}
	return total
}

// TotalProfit returns revenue minus total cost.
func (p *Purchase) TotalProfit() decimal.Decimal {
	return p.TotalRevenue().Sub(p.TotalCost())
}
