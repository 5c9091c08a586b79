package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestPurchaseDerivedTotals(t *testing.T) {
	payer := uint(1)
	p := Purchase{
		Quantity:     d("10"),
		UnitCost:     d("3.50"),
		SignalAmount: d("5.00"),
		AdditionalCosts: []AdditionalCost{
			{Label: "shipping", Amount: d("12.30"), PaidByID: &payer},
			{Label: "customs", Amount: d("7.70")},
		},
		Sales: []Sale{
			{Quantity: d("4"), UnitPrice: d("6.00")},
			{Quantity: d("6"), UnitPrice: d("5.50")},
		},
	}

	if got := p.TotalBase(); !got.Equal(d("35.00")) {
		t.Errorf("TotalBase = %s, want 35.00", got)
	}
	if got := p.TotalAdditionalCosts(); !got.Equal(d("20.00")) {
		t.Errorf("TotalAdditionalCosts = %s, want 20.00", got)
	}
	if got := p.TotalCost(); !got.Equal(d("60.00")) {
		t.Errorf("TotalCost = %s, want 60.00", got)
	}
	if got := p.TotalRevenue(); !got.Equal(d("57.00")) {
		t.Errorf("TotalRevenue = %s, want 57.00", got)
	}
	if got := p.TotalProfit(); !got.Equal(d("-3.00")) {
		t.Errorf("TotalProfit = %s, want -3.00", got)
	}
}

func TestPurchaseTotalsEmptyChildren(t *testing.T) {
	p := Purchase{Quantity: d("2"), UnitCost: d("50")}

	if got := p.TotalCost(); !got.Equal(d("100")) {
		t.Errorf("TotalCost = %s, want 100", got)
	}
	if !p.TotalRevenue().IsZero() {
		t.Errorf("TotalRevenue = %s, want 0", p.TotalRevenue())
	}
	if got := p.TotalProfit(); !got.Equal(d("-100")) {
		t.Errorf("TotalProfit = %s, want -100", got)
	}
}

func TestResolvedAmount(t *testing.T) {
	cases := []struct {
		name      string
		ctype     string
		value     string
		totalBase string
		want      string
	}{
		{"absolute ignores base", ContributionAbsolute, "40.00", "200", "40.00"},
		{"percentage of base", ContributionPercentage, "25", "200", "50"},
		{"percentage of zero base", ContributionPercentage, "25", "0", "0"},
		{"fractional percentage", ContributionPercentage, "12.5", "80", "10"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pc := PurchaseContribution{Type: tc.ctype, Value: d(tc.value)}
			got := pc.ResolvedAmount(d(tc.totalBase))
			if !got.Equal(d(tc.want)) {
				t.Errorf("ResolvedAmount = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestSaleOutstandingAmount(t *testing.T) {
	s := Sale{
		Quantity:  d("3"),
		UnitPrice: d("20"),
		Payments: []SalePayment{
			{ReceiverID: 1, Amount: d("25"), Method: PaymentPix, PaidOn: time.Now()},
			{ReceiverID: 2, Amount: d("10"), Method: PaymentCash, PaidOn: time.Now()},
		},
	}

	if got := s.TotalPrice(); !got.Equal(d("60")) {
		t.Errorf("TotalPrice = %s, want 60", got)
	}
	if got := s.TotalPayments(); !got.Equal(d("35")) {
		t.Errorf("TotalPayments = %s, want 35", got)
	}
	if got := s.OutstandingAmount(); !got.Equal(d("25")) {
		t.Errorf("OutstandingAmount = %s, want 25", got)
	}
}

func TestValidEnums(t *testing.T) {
	if !ValidRole(RoleAdmin) || !ValidRole(RoleManager) || !ValidRole(RoleViewer) {
		t.Error("known roles should validate")
	}
	if ValidRole("ROOT") || ValidRole("") {
		t.Error("unknown roles should not validate")
	}

	if !ValidContributionType(ContributionAbsolute) || !ValidContributionType(ContributionPercentage) {
		t.Error("known contribution types should validate")
	}
	if ValidContributionType("RELATIVE") {
		t.Error("unknown contribution type should not validate")
	}

	if !ValidSaleStatus(SaleDraft) || !ValidSaleStatus(SaleConfirmed) || !ValidSaleStatus(SaleSettled) {
		t.Error("known sale statuses should validate")
	}
	if ValidSaleStatus("OPEN") {
		t.Error("unknown sale status should not validate")
	}

	if !ValidPaymentMethod(PaymentPix) || !ValidPaymentMethod(PaymentOther) {
		t.Error("known payment methods should validate")
	}
	if ValidPaymentMethod("CHEQUE") {
		t.Error("unknown payment method should not validate")
	}
}

func TestUserHelpers(t *testing.T) {
	u := User{Username: "ana", Role: RoleManager}
	if u.Name() != "ana" {
		t.Errorf("Name = %q, want ana", u.Name())
	}
	u.DisplayName = "Ana"
	if u.Name() != "Ana" {
		t.Errorf("Name = %q, want Ana", u.Name())
	}
	if u.IsAdmin() {
		t.Error("manager is not admin")
	}
	if !u.CanManage() {
		t.Error("manager can manage")
	}
	u.Role = RoleViewer
	if u.CanManage() {
		t.Error("viewer cannot manage")
	}
}

func TestSessionUsable(t *testing.T) {
	now := time.Now()
	s := Session{ID: "s1", UserID: 1, ExpiresAt: now.Add(time.Hour)}

	if !s.Usable(now) {
		t.Error("live session should be usable")
	}
	s.Revoked = true
	if s.Usable(now) {
		t.Error("revoked session should not be usable")
	}
	s.Revoked = false
	if s.Usable(now.Add(2 * time.Hour)) {
		t.Error("expired session should not be usable")
	}
}
