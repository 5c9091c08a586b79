// Package ledger computes per-user investment and profit attribution over
// the shared pool of purchases.
//
// Revenue from a purchase is split pro rata: each payer's share is
// proportional to their share of that purchase's total funding, independent
// of any other purchase. Cash actually received from buyers is tracked
// separately, so the dashboard can show the theoretical fair share next to
// what really changed hands.
package ledger

import (
	"sort"

	"github.com/diogoammendes/SideSales/internal/models"

	"github.com/shopspring/decimal"
)

// Row is one user's line in the ledger.
type Row struct {
	UserID      uint
	Username    string
	DisplayName string
	Role        string

	// Invested is everything the user put into the pool: resolved
	// contributions, additional costs they paid, and signal deposits.
	Invested decimal.Decimal
	// ReceivedActual is cash the user actually received from buyers.
	ReceivedActual decimal.Decimal
	// ReceivedAttributed is the user's pro-rata share of sale revenue.
	ReceivedAttributed decimal.Decimal
	// RealBalance = ReceivedActual - Invested.
	RealBalance decimal.Decimal
	// AttributedBalance = ReceivedAttributed - Invested.
	AttributedBalance decimal.Decimal
}

// Totals summarises the whole purchase pool.
type Totals struct {
	Invested decimal.Decimal // sum of every purchase's total cost
	Revenue  decimal.Decimal
	Profit   decimal.Decimal
}

type accumulator struct {
	user       models.User
	invested   decimal.Decimal
	attributed decimal.Decimal
	actual     decimal.Decimal
}

// Aggregate computes one ledger row per active user from a fully loaded
// snapshot. Purchases must carry their contributions, additional costs and
// sales with payments; no further lookups happen here and nothing is
// mutated.
//
// Payers that are not in activeUsers still count toward a purchase's total
// invested (they dilute the other contributors' shares) but get no row of
// their own. Purchases nobody identifiably funded take no part in
// attribution, but payments received on them still count as actual cash.
// Output is sorted by user ID and is deterministic for a fixed snapshot.
func Aggregate(purchases []models.Purchase, activeUsers []models.User) []Row {
	accs := make(map[uint]*accumulator, len(activeUsers))
	for _, u := range activeUsers {
		accs[u.ID] = &accumulator{
			user:       u,
			invested:   decimal.Zero,
			attributed: decimal.Zero,
			actual:     decimal.Zero,
		}
	}

	for i := range purchases {
		p := &purchases[i]

		// actual cash is decoupled from the funding model: payments
		// count even on a purchase nobody identifiably funded
		for j := range p.Sales {
			for k := range p.Sales[j].Payments {
				payment := &p.Sales[j].Payments[k]
				if acc, ok := accs[payment.ReceiverID]; ok {
					acc.actual = acc.actual.Add(payment.Amount)
				}
			}
		}

		invested, payerIDs := investmentsByPayer(p)
		if len(invested) == 0 {
			// no attributable funding, nothing to split
			continue
		}

		totalInvested := decimal.Zero
		for _, amount := range invested {
			totalInvested = totalInvested.Add(amount)
		}
		revenue := p.TotalRevenue()

		for _, id := range payerIDs {
			acc, ok := accs[id]
			if !ok {
				continue // inactive payer: in the denominator, not in the output
			}
			amount := invested[id]
			acc.invested = acc.invested.Add(amount)
			if totalInvested.IsPositive() && !revenue.IsZero() {
				acc.attributed = acc.attributed.Add(amount.Mul(revenue).Div(totalInvested))
			}
		}
	}

	ids := make([]uint, 0, len(accs))
	for id := range accs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })

	rows := make([]Row, 0, len(ids))
	for _, id := range ids {
		acc := accs[id]
		rows = append(rows, Row{
			UserID:             acc.user.ID,
			Username:           acc.user.Username,
			DisplayName:        acc.user.Name(),
			Role:               acc.user.Role,
			Invested:           acc.invested,
			ReceivedActual:     acc.actual,
			ReceivedAttributed: acc.attributed,
			RealBalance:        acc.actual.Sub(acc.invested),
			AttributedBalance:  acc.attributed.Sub(acc.invested),
		})
	}
	return rows
}

// investmentsByPayer folds a purchase's contributions, additional costs and
// signal deposit into one amount per payer. Records without a payer are
// ignored. The returned IDs are sorted so iteration is stable.
func investmentsByPayer(p *models.Purchase) (map[uint]decimal.Decimal, []uint) {
	invested := make(map[uint]decimal.Decimal)
	add := func(id uint, amount decimal.Decimal) {
		invested[id] = invested[id].Add(amount)
	}

	totalBase := p.TotalBase()
	for i := range p.Contributions {
		c := &p.Contributions[i]
		if c.PayerID != nil {
			add(*c.PayerID, c.ResolvedAmount(totalBase))
		}
	}
	for i := range p.AdditionalCosts {
		cost := &p.AdditionalCosts[i]
		if cost.PaidByID != nil {
			add(*cost.PaidByID, cost.Amount)
		}
	}
	if p.SignalPaidByID != nil {
		add(*p.SignalPaidByID, p.SignalAmount)
	}

	ids := make([]uint, 0, len(invested))
	for id := range invested {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
	return invested, ids
}

// PoolTotals sums cost, revenue and profit over all purchases.
func PoolTotals(purchases []models.Purchase) Totals {
	t := Totals{Invested: decimal.Zero, Revenue: decimal.Zero}
	for i := range purchases {
		p := &purchases[i]
		t.Invested = t.Invested.Add(p.TotalCost())
		t.Revenue = t.Revenue.Add(p.TotalRevenue())
	}
	t.Profit = t.Revenue.Sub(t.Invested)
	return t
}
