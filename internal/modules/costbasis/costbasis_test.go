package costbasis

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arniesaha/portfolio-tracker/internal/domain"
)

func tx(symbol string, date string, txType domain.TransactionType, qty, price float64) domain.Transaction {
	return domain.Transaction{
		Symbol:          symbol,
		TransactionDate: date,
		TransactionType: txType,
		Quantity:        decimal.NewFromFloat(qty),
		PricePerShare:   decimal.NewFromFloat(price),
	}
}

func TestReconstruct_BuyOnlyAccumulation(t *testing.T) {
	txns := []domain.Transaction{
		tx("AAPL", "2024-01-01", domain.TransactionBuy, 10, 100),
		tx("AAPL", "2024-02-01", domain.TransactionBuy, 10, 200),
	}

	pos := Reconstruct(txns, "AAPL")

	assert.True(t, pos.TotalShares.Equal(decimal.NewFromInt(20)), "shares: %s", pos.TotalShares)
	assert.True(t, pos.AvgCostPerShare.Equal(decimal.NewFromInt(150)), "avg cost: %s", pos.AvgCostPerShare)
	assert.True(t, pos.TotalCost.Equal(decimal.NewFromInt(3000)), "total cost: %s", pos.TotalCost)
}

func TestReconstruct_SellKeepsAverageCost(t *testing.T) {
	txns := []domain.Transaction{
		tx("NVDA", "2024-01-01", domain.TransactionBuy, 10, 100),
		tx("NVDA", "2024-03-01", domain.TransactionSell, 5, 180),
	}

	pos := Reconstruct(txns, "NVDA")

	assert.True(t, pos.TotalShares.Equal(decimal.NewFromInt(5)))
	// Shares leave at the blended cost, not the sale price.
	assert.True(t, pos.AvgCostPerShare.Equal(decimal.NewFromInt(100)))
	assert.True(t, pos.TotalCost.Equal(decimal.NewFromInt(500)))
}

func TestReconstruct_SellBeforeBuyIsNoOpOnCost(t *testing.T) {
	txns := []domain.Transaction{
		tx("TSLA", "2024-01-01", domain.TransactionSell, 5, 200),
	}

	pos := Reconstruct(txns, "TSLA")

	assert.True(t, pos.TotalShares.Equal(decimal.NewFromInt(-5)), "shares go negative: %s", pos.TotalShares)
	assert.True(t, pos.TotalCost.IsZero(), "cost untouched: %s", pos.TotalCost)
	assert.True(t, pos.AvgCostPerShare.IsZero())
}

func TestReconstruct_SortsByDateBeforeReplay(t *testing.T) {
	// Same trades, one slice pre-sorted and one reversed. A SELL between
	// the two buys makes the result order-sensitive, so the outputs only
	// agree if the reconstructor sorts by date itself.
	sorted := []domain.Transaction{
		tx("VDY", "2024-01-01", domain.TransactionBuy, 10, 50),
		tx("VDY", "2024-02-01", domain.TransactionSell, 5, 55),
		tx("VDY", "2024-03-01", domain.TransactionBuy, 10, 60),
	}
	shuffled := []domain.Transaction{sorted[2], sorted[0], sorted[1]}

	a := Reconstruct(sorted, "VDY")
	b := Reconstruct(shuffled, "VDY")

	assert.True(t, a.TotalShares.Equal(b.TotalShares))
	assert.True(t, a.AvgCostPerShare.Equal(b.AvgCostPerShare))
	assert.True(t, a.TotalCost.Equal(b.TotalCost))
	assert.True(t, a.TotalShares.Equal(decimal.NewFromInt(15)))
}

func TestReconstruct_StableTieBreakOnEqualDates(t *testing.T) {
	// Two same-date buys plus a same-date sell: stable sort keeps input
	// order, so the sell replays after both buys.
	txns := []domain.Transaction{
		tx("XEQT", "2024-05-01", domain.TransactionBuy, 10, 30),
		tx("XEQT", "2024-05-01", domain.TransactionBuy, 10, 40),
		tx("XEQT", "2024-05-01", domain.TransactionSell, 10, 45),
	}

	pos := Reconstruct(txns, "XEQT")

	assert.True(t, pos.TotalShares.Equal(decimal.NewFromInt(10)))
	assert.True(t, pos.AvgCostPerShare.Equal(decimal.NewFromInt(35)))
	assert.True(t, pos.TotalCost.Equal(decimal.NewFromInt(350)))
}

func TestReconstruct_FiltersBySymbol(t *testing.T) {
	txns := []domain.Transaction{
		tx("AAPL", "2024-01-01", domain.TransactionBuy, 10, 100),
		tx("MSFT", "2024-01-02", domain.TransactionBuy, 99, 999),
	}

	pos := Reconstruct(txns, "AAPL")

	assert.Equal(t, "AAPL", pos.Symbol)
	assert.True(t, pos.TotalShares.Equal(decimal.NewFromInt(10)))
	assert.True(t, pos.TotalCost.Equal(decimal.NewFromInt(1000)))
}

func TestReconstruct_EmptyInput(t *testing.T) {
	pos := Reconstruct(nil, "AAPL")

	assert.True(t, pos.TotalShares.IsZero())
	assert.True(t, pos.AvgCostPerShare.IsZero())
	assert.True(t, pos.TotalCost.IsZero())
}

func TestReconstruct_Deterministic(t *testing.T) {
	txns := []domain.Transaction{
		tx("KWEB", "2024-06-26", domain.TransactionBuy, 20, 34.61),
		tx("KWEB", "2024-07-22", domain.TransactionBuy, 18, 33.81),
		tx("KWEB", "2024-07-22", domain.TransactionBuy, 12, 36.49),
		tx("KWEB", "2024-08-01", domain.TransactionSell, 15, 35.00),
	}

	a := Reconstruct(txns, "KWEB")
	b := Reconstruct(txns, "KWEB")

	assert.True(t, a.TotalShares.Equal(b.TotalShares))
	assert.True(t, a.AvgCostPerShare.Equal(b.AvgCostPerShare))
	assert.True(t, a.TotalCost.Equal(b.TotalCost))
}

func TestReconstruct_FractionalQuantities(t *testing.T) {
	// Fractional share purchases must not drift: 3 buys of 0.1 at $10
	// give exactly 0.3 shares at $10 average.
	txns := []domain.Transaction{
		tx("VOO", "2024-01-01", domain.TransactionBuy, 0.1, 10),
		tx("VOO", "2024-01-02", domain.TransactionBuy, 0.1, 10),
		tx("VOO", "2024-01-03", domain.TransactionBuy, 0.1, 10),
	}

	pos := Reconstruct(txns, "VOO")

	require.True(t, pos.TotalShares.Equal(decimal.NewFromFloat(0.3)), "got %s", pos.TotalShares)
	assert.True(t, pos.AvgCostPerShare.Equal(decimal.NewFromInt(10)), "got %s", pos.AvgCostPerShare)
}

func TestReconstruct_DoesNotMutateInput(t *testing.T) {
	txns := []domain.Transaction{
		tx("AAPL", "2024-02-01", domain.TransactionBuy, 5, 120),
		tx("AAPL", "2024-01-01", domain.TransactionBuy, 5, 100),
	}

	_ = Reconstruct(txns, "AAPL")

	// Input order preserved even though replay sorts internally.
	assert.Equal(t, "2024-02-01", txns[0].TransactionDate)
	assert.Equal(t, "2024-01-01", txns[1].TransactionDate)
}
