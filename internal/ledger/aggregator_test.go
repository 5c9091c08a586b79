package ledger

import (
	"testing"
	"time"

	"github.com/diogoammendes/SideSales/internal/models"

	"github.com/shopspring/decimal"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", s, err)
	}
	return d
}

func uintPtr(v uint) *uint { return &v }

func activeUser(id uint, name string) models.User {
	return models.User{ID: id, Username: name, Role: models.RoleManager, Active: true}
}

func contribution(payer uint, typ, value string) models.PurchaseContribution {
	return models.PurchaseContribution{
		PayerID: uintPtr(payer),
		Type:    typ,
		Value:   decimal.RequireFromString(value),
		PaidOn:  time.Now(),
	}
}

func saleOf(qty, price string) models.Sale {
	return models.Sale{
		BuyerName: "buyer",
		Quantity:  decimal.RequireFromString(qty),
		UnitPrice: decimal.RequireFromString(price),
		Status:    models.SaleConfirmed,
		SoldOn:    time.Now(),
	}
}

func rowFor(t *testing.T, rows []Row, userID uint) Row {
	t.Helper()
	for _, r := range rows {
		if r.UserID == userID {
			return r
		}
	}
	t.Fatalf("no row for user %d", userID)
	return Row{}
}

func TestAggregate_ProRataSplit(t *testing.T) {
	// A invests 60, B invests 40, revenue 100 -> shares 60 and 40.
	p := models.Purchase{
		Quantity: dec(t, "10"),
		UnitCost: dec(t, "10"),
		Contributions: []models.PurchaseContribution{
			contribution(1, models.ContributionAbsolute, "60"),
			contribution(2, models.ContributionAbsolute, "40"),
		},
		Sales: []models.Sale{saleOf("10", "10")},
	}
	users := []models.User{activeUser(1, "ana"), activeUser(2, "bruno")}

	rows := Aggregate([]models.Purchase{p}, users)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	a := rowFor(t, rows, 1)
	b := rowFor(t, rows, 2)
	if !a.ReceivedAttributed.Equal(dec(t, "60")) {
		t.Errorf("A attributed = %s, want 60", a.ReceivedAttributed)
	}
	if !b.ReceivedAttributed.Equal(dec(t, "40")) {
		t.Errorf("B attributed = %s, want 40", b.ReceivedAttributed)
	}
	sum := a.ReceivedAttributed.Add(b.ReceivedAttributed)
	if !sum.Equal(dec(t, "100")) {
		t.Errorf("attributed shares sum to %s, want the full revenue 100", sum)
	}
}

func TestAggregate_NoContributorsSkipped(t *testing.T) {
	// Purchase nobody identifiably funded contributes nothing at all.
	p := models.Purchase{
		Quantity: dec(t, "5"),
		UnitCost: dec(t, "20"),
		Sales:    []models.Sale{saleOf("5", "30")},
	}
	users := []models.User{activeUser(1, "ana")}

	rows := Aggregate([]models.Purchase{p}, users)
	a := rowFor(t, rows, 1)
	if !a.Invested.IsZero() || !a.ReceivedAttributed.IsZero() {
		t.Errorf("unfunded purchase leaked into row: invested=%s attributed=%s",
			a.Invested, a.ReceivedAttributed)
	}
}

func TestAggregate_ZeroRevenueStillCountsInvestment(t *testing.T) {
	p := models.Purchase{
		Quantity: dec(t, "3"),
		UnitCost: dec(t, "50"),
		Contributions: []models.PurchaseContribution{
			contribution(1, models.ContributionAbsolute, "150"),
		},
	}
	users := []models.User{activeUser(1, "ana")}

	rows := Aggregate([]models.Purchase{p}, users)
	a := rowFor(t, rows, 1)
	if !a.Invested.Equal(dec(t, "150")) {
		t.Errorf("invested = %s, want 150 (unsold capital still committed)", a.Invested)
	}
	if !a.ReceivedAttributed.IsZero() {
		t.Errorf("attributed = %s, want 0 for zero revenue", a.ReceivedAttributed)
	}
	if !a.AttributedBalance.Equal(dec(t, "-150")) {
		t.Errorf("attributed balance = %s, want -150", a.AttributedBalance)
	}
}

func TestAggregate_PercentageContribution(t *testing.T) {
	// 25% of a 200 base resolves to 50.
	p := models.Purchase{
		Quantity: dec(t, "20"),
		UnitCost: dec(t, "10"),
		Contributions: []models.PurchaseContribution{
			contribution(1, models.ContributionPercentage, "25"),
		},
	}
	users := []models.User{activeUser(1, "ana")}

	rows := Aggregate([]models.Purchase{p}, users)
	if got := rowFor(t, rows, 1).Invested; !got.Equal(dec(t, "50")) {
		t.Errorf("invested = %s, want 50", got)
	}

	// Zero base resolves to zero, and a zero-value map entry still means
	// the purchase counts as funded (no division happens).
	p2 := models.Purchase{
		Quantity: decimal.Zero,
		UnitCost: decimal.Zero,
		Contributions: []models.PurchaseContribution{
			contribution(1, models.ContributionPercentage, "25"),
		},
		Sales: []models.Sale{saleOf("1", "10")},
	}
	rows = Aggregate([]models.Purchase{p2}, users)
	a := rowFor(t, rows, 1)
	if !a.Invested.IsZero() {
		t.Errorf("invested = %s, want 0 for percentage of zero base", a.Invested)
	}
	if !a.ReceivedAttributed.IsZero() {
		t.Errorf("attributed = %s, want 0 when total invested is zero", a.ReceivedAttributed)
	}
}

func TestAggregate_SignalAndCostsCountAsInvestment(t *testing.T) {
	p := models.Purchase{
		Quantity:       dec(t, "1"),
		UnitCost:       dec(t, "100"),
		SignalAmount:   dec(t, "30"),
		SignalPaidByID: uintPtr(1),
		Contributions: []models.PurchaseContribution{
			contribution(1, models.ContributionAbsolute, "100"),
		},
		AdditionalCosts: []models.AdditionalCost{
			{Label: "shipping", Amount: dec(t, "20"), PaidByID: uintPtr(2)},
		},
	}
	users := []models.User{activeUser(1, "ana"), activeUser(2, "bruno")}

	rows := Aggregate([]models.Purchase{p}, users)
	if got := rowFor(t, rows, 1).Invested; !got.Equal(dec(t, "130")) {
		t.Errorf("A invested = %s, want 130 (contribution + signal)", got)
	}
	if got := rowFor(t, rows, 2).Invested; !got.Equal(dec(t, "20")) {
		t.Errorf("B invested = %s, want 20 (additional cost)", got)
	}
}

func TestAggregate_BalanceIdentities(t *testing.T) {
	p := models.Purchase{
		Quantity: dec(t, "2"),
		UnitCost: dec(t, "75"),
		Contributions: []models.PurchaseContribution{
			contribution(1, models.ContributionAbsolute, "90"),
			contribution(2, models.ContributionAbsolute, "60"),
		},
		Sales: []models.Sale{saleOf("2", "100")},
	}
	p.Sales[0].Payments = []models.SalePayment{
		{ReceiverID: 1, Amount: dec(t, "120"), Method: models.PaymentPix, PaidOn: time.Now()},
		{ReceiverID: 2, Amount: dec(t, "35"), Method: models.PaymentCash, PaidOn: time.Now()},
	}
	users := []models.User{activeUser(1, "ana"), activeUser(2, "bruno")}

	for _, r := range Aggregate([]models.Purchase{p}, users) {
		if !r.RealBalance.Equal(r.ReceivedActual.Sub(r.Invested)) {
			t.Errorf("user %d: real balance %s != actual %s - invested %s",
				r.UserID, r.RealBalance, r.ReceivedActual, r.Invested)
		}
		if !r.AttributedBalance.Equal(r.ReceivedAttributed.Sub(r.Invested)) {
			t.Errorf("user %d: attributed balance %s != attributed %s - invested %s",
				r.UserID, r.AttributedBalance, r.ReceivedAttributed, r.Invested)
		}
	}
}

func TestAggregate_InvestedPartitionsPurchaseTotal(t *testing.T) {
	// Sum of row invested over one purchase equals the purchase's total
	// invested exactly: no leakage, no double counting.
	p := models.Purchase{
		Quantity:       dec(t, "4"),
		UnitCost:       dec(t, "25"),
		SignalAmount:   dec(t, "10"),
		SignalPaidByID: uintPtr(3),
		Contributions: []models.PurchaseContribution{
			contribution(1, models.ContributionAbsolute, "33.33"),
			contribution(2, models.ContributionPercentage, "50"), // 50 of base 100
			contribution(1, models.ContributionAbsolute, "0.67"),
		},
		AdditionalCosts: []models.AdditionalCost{
			{Label: "fees", Amount: dec(t, "5.55"), PaidByID: uintPtr(2)},
		},
	}
	users := []models.User{activeUser(1, "ana"), activeUser(2, "bruno"), activeUser(3, "carla")}

	rows := Aggregate([]models.Purchase{p}, users)
	sum := decimal.Zero
	for _, r := range rows {
		sum = sum.Add(r.Invested)
	}
	// 33.33 + 0.67 + 50 + 5.55 + 10
	if want := dec(t, "99.55"); !sum.Equal(want) {
		t.Errorf("invested partition sum = %s, want %s", sum, want)
	}
}

func TestAggregate_InactivePayerDilutesShares(t *testing.T) {
	// User 9 is not active: their 50 still sits in the denominator, so the
	// active contributor gets 50/100 of the revenue, not all of it.
	p := models.Purchase{
		Quantity: dec(t, "1"),
		UnitCost: dec(t, "100"),
		Contributions: []models.PurchaseContribution{
			contribution(1, models.ContributionAbsolute, "50"),
			contribution(9, models.ContributionAbsolute, "50"),
		},
		Sales: []models.Sale{saleOf("1", "200")},
	}
	users := []models.User{activeUser(1, "ana")}

	rows := Aggregate([]models.Purchase{p}, users)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row (inactive payer hidden), got %d", len(rows))
	}
	a := rowFor(t, rows, 1)
	if !a.ReceivedAttributed.Equal(dec(t, "100")) {
		t.Errorf("attributed = %s, want 100 (half of 200)", a.ReceivedAttributed)
	}
	if !a.Invested.Equal(dec(t, "50")) {
		t.Errorf("invested = %s, want 50", a.Invested)
	}
}

func TestAggregate_PaymentsOnUnfundedPurchaseStillCount(t *testing.T) {
	// No contributions, costs or signal, but a buyer paid: attribution has
	// nothing to split, yet the cash still landed with someone.
	p := models.Purchase{
		Quantity: dec(t, "4"),
		UnitCost: dec(t, "30"),
		Sales:    []models.Sale{saleOf("4", "30")},
	}
	p.Sales[0].Payments = []models.SalePayment{
		{ReceiverID: 1, Amount: dec(t, "120"), Method: models.PaymentPix, PaidOn: time.Now()},
	}
	users := []models.User{activeUser(1, "ana")}

	a := rowFor(t, Aggregate([]models.Purchase{p}, users), 1)
	if !a.ReceivedActual.Equal(dec(t, "120")) {
		t.Errorf("actual = %s, want 120 (payment on unfunded purchase)", a.ReceivedActual)
	}
	if !a.Invested.IsZero() || !a.ReceivedAttributed.IsZero() {
		t.Errorf("unfunded purchase leaked into attribution: invested=%s attributed=%s",
			a.Invested, a.ReceivedAttributed)
	}
	if !a.RealBalance.Equal(dec(t, "120")) {
		t.Errorf("real balance = %s, want 120", a.RealBalance)
	}
}

func TestAggregate_PaymentsOnlyForActiveReceivers(t *testing.T) {
	p := models.Purchase{
		Quantity: dec(t, "1"),
		UnitCost: dec(t, "10"),
		Contributions: []models.PurchaseContribution{
			contribution(1, models.ContributionAbsolute, "10"),
		},
		Sales: []models.Sale{saleOf("1", "30")},
	}
	p.Sales[0].Payments = []models.SalePayment{
		{ReceiverID: 1, Amount: dec(t, "20"), Method: models.PaymentPix, PaidOn: time.Now()},
		{ReceiverID: 9, Amount: dec(t, "10"), Method: models.PaymentCash, PaidOn: time.Now()},
	}
	users := []models.User{activeUser(1, "ana")}

	a := rowFor(t, Aggregate([]models.Purchase{p}, users), 1)
	if !a.ReceivedActual.Equal(dec(t, "20")) {
		t.Errorf("actual = %s, want 20 (inactive receiver ignored)", a.ReceivedActual)
	}
}

func TestAggregate_MultiplePurchasesAreIndependent(t *testing.T) {
	p1 := models.Purchase{
		Quantity: dec(t, "1"),
		UnitCost: dec(t, "100"),
		Contributions: []models.PurchaseContribution{
			contribution(1, models.ContributionAbsolute, "100"),
		},
		Sales: []models.Sale{saleOf("1", "150")},
	}
	p2 := models.Purchase{
		Quantity: dec(t, "1"),
		UnitCost: dec(t, "100"),
		Contributions: []models.PurchaseContribution{
			contribution(2, models.ContributionAbsolute, "100"),
		},
		Sales: []models.Sale{saleOf("1", "90")},
	}
	users := []models.User{activeUser(1, "ana"), activeUser(2, "bruno")}

	rows := Aggregate([]models.Purchase{p1, p2}, users)
	if got := rowFor(t, rows, 1).ReceivedAttributed; !got.Equal(dec(t, "150")) {
		t.Errorf("A attributed = %s, want 150 (only own purchase)", got)
	}
	if got := rowFor(t, rows, 2).ReceivedAttributed; !got.Equal(dec(t, "90")) {
		t.Errorf("B attributed = %s, want 90 (only own purchase)", got)
	}
}

func TestAggregate_Idempotent(t *testing.T) {
	p := models.Purchase{
		Quantity: dec(t, "3"),
		UnitCost: dec(t, "33.34"),
		Contributions: []models.PurchaseContribution{
			contribution(1, models.ContributionAbsolute, "66.67"),
			contribution(2, models.ContributionAbsolute, "33.33"),
		},
		Sales: []models.Sale{saleOf("3", "40")},
	}
	users := []models.User{activeUser(1, "ana"), activeUser(2, "bruno")}
	snapshot := []models.Purchase{p}

	first := Aggregate(snapshot, users)
	second := Aggregate(snapshot, users)
	if len(first) != len(second) {
		t.Fatalf("row counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		a, b := first[i], second[i]
		if a.UserID != b.UserID ||
			!a.Invested.Equal(b.Invested) ||
			!a.ReceivedActual.Equal(b.ReceivedActual) ||
			!a.ReceivedAttributed.Equal(b.ReceivedAttributed) {
			t.Errorf("row %d differs between runs: %+v vs %+v", i, a, b)
		}
	}
}

func TestAggregate_EmptyInputs(t *testing.T) {
	if rows := Aggregate(nil, nil); len(rows) != 0 {
		t.Errorf("expected no rows for empty snapshot, got %d", len(rows))
	}
	rows := Aggregate(nil, []models.User{activeUser(1, "ana")})
	if len(rows) != 1 {
		t.Fatalf("expected zero-valued row for user with no activity")
	}
	r := rows[0]
	if !r.Invested.IsZero() || !r.ReceivedActual.IsZero() || !r.ReceivedAttributed.IsZero() {
		t.Errorf("expected all-zero row, got %+v", r)
	}
}

func TestPoolTotals(t *testing.T) {
	p := models.Purchase{
		Quantity:     dec(t, "2"),
		UnitCost:     dec(t, "50"),
		SignalAmount: dec(t, "10"),
		AdditionalCosts: []models.AdditionalCost{
			{Label: "transport", Amount: dec(t, "15")},
		},
		Sales: []models.Sale{saleOf("2", "80")},
	}
	totals := PoolTotals([]models.Purchase{p})
	if !totals.Invested.Equal(dec(t, "125")) {
		t.Errorf("invested = %s, want 125", totals.Invested)
	}
	if !totals.Revenue.Equal(dec(t, "160")) {
		t.Errorf("revenue = %s, want 160", totals.Revenue)
	}
	if !totals.Profit.Equal(dec(t, "35")) {
		t.Errorf("profit = %s, want 35", totals.Profit)
	}
}
