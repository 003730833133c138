// Package costbasis reconstructs positions from transaction history using
// the weighted moving-average cost method, and checks the result against
// the stored holding record.
package costbasis

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/arniesaha/portfolio-tracker/internal/domain"
)

// Position is the result of replaying a transaction sequence for one symbol.
// It is derived on demand and never persisted.
type Position struct {
	Symbol          string          `json:"symbol"`
	TotalShares     decimal.Decimal `json:"total_shares"`
	AvgCostPerShare decimal.Decimal `json:"avg_cost_per_share"`
	TotalCost       decimal.Decimal `json:"total_cost"`
}

// Reconstruct replays all transactions for the given symbol in date order and
// returns the resulting position.
//
// The input may contain transactions for many symbols; only those matching
// symbol are replayed. Replay order is load-bearing: average cost is
// path-dependent, so the filtered subset is sorted ascending by transaction
// date before replay. The sort is stable, so same-date transactions keep
// their original input order.
//
// Rules per transaction:
//   - BUY of q at p: shares += q, cost += q*p
//   - SELL of q: shares are removed at the current average cost, which
//     leaves the remaining average unchanged
//   - SELL with no shares held: quantity is still subtracted (shares may go
//     negative) but cost is untouched
//
// Fees are recorded on transactions but not capitalized into cost basis.
// The function is pure and total: it never errors, never mutates its input,
// and is safe for concurrent use. Validation of quantities and prices
// belongs at the ingestion boundary, not here.
func Reconstruct(txns []domain.Transaction, symbol string) Position {
	filtered := make([]domain.Transaction, 0, len(txns))
	for _, t := range txns {
		if t.Symbol == symbol {
			filtered = append(filtered, t)
		}
	}

	// Dates are YYYY-MM-DD, so lexicographic order is chronological order.
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].TransactionDate < filtered[j].TransactionDate
	})

	totalShares := decimal.Zero
	totalCost := decimal.Zero

	for _, t := range filtered {
		switch t.TransactionType {
		case domain.TransactionBuy:
			totalShares = totalShares.Add(t.Quantity)
			totalCost = totalCost.Add(t.Quantity.Mul(t.PricePerShare))
		case domain.TransactionSell:
			if totalShares.IsPositive() {
				costPerShare := totalCost.Div(totalShares)
				totalShares = totalShares.Sub(t.Quantity)
				totalCost = totalCost.Sub(t.Quantity.Mul(costPerShare))
			} else {
				totalShares = totalShares.Sub(t.Quantity)
			}
		}
	}

	avgCost := decimal.Zero
	if totalShares.IsPositive() {
		avgCost = totalCost.Div(totalShares)
	}

	return Position{
		Symbol:          symbol,
		TotalShares:     totalShares,
		AvgCostPerShare: avgCost,
		TotalCost:       totalCost,
	}
}
