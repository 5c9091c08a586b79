package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment methods accepted from buyers.
const (
	PaymentPix      = "PIX"
	PaymentTransfer = "TRANSFER"
	PaymentCash     = "CASH"
	PaymentCard     = "CARD"
	PaymentOther    = "OTHER"
)

// SalePayment is cash received from a buyer against a sale. The receiver is
// the user the money actually went to.
type SalePayment struct {
	ID         uint            `gorm:"primaryKey"`
	SaleID     uint            `gorm:"index;not null"`
	ReceiverID uint            `gorm:"index;not null"`
	Amount     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Method     string          `gorm:"size:20;not null"`
	PaidOn     time.Time       `gorm:"index;not null"`
	Notes      string          `gorm:"size:255"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Receiver User `gorm:"constraint:OnDelete:RESTRICT"`
}

// ValidPaymentMethod reports whether m is a known payment method.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentPix, PaymentTransfer, PaymentCash, PaymentCard, PaymentOther:
		return true
	}
	return false
}
