package costbasis

import (
	"github.com/shopspring/decimal"

	"github.com/arniesaha/portfolio-tracker/internal/domain"
)

// ApplyTrade returns a holding's quantity and average purchase price after
// recording one more transaction against it, using the same moving-average
// rule as Reconstruct: a BUY blends into the average, a SELL removes shares
// at the current average and leaves it unchanged.
//
// Callers are expected to have validated the trade first (in particular
// that a SELL does not exceed the held quantity).
func ApplyTrade(quantity, avgPrice decimal.Decimal, txType domain.TransactionType, q, p decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	switch txType {
	case domain.TransactionBuy:
		newQuantity := quantity.Add(q)
		if !newQuantity.IsPositive() {
			return newQuantity, avgPrice
		}
		totalCost := quantity.Mul(avgPrice).Add(q.Mul(p))
		return newQuantity, totalCost.Div(newQuantity)
	case domain.TransactionSell:
		return quantity.Sub(q), avgPrice
	default:
		return quantity, avgPrice
	}
}
