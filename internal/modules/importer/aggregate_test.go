package importer

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/arniesaha/portfolio-tracker/internal/domain"
)

func parsedTx(symbol string, txType domain.TransactionType) ParsedTransaction {
	return ParsedTransaction{
		Symbol:          symbol,
		TransactionType: txType,
		Quantity:        decimal.NewFromInt(1),
		PricePerShare:   decimal.NewFromInt(10),
		TransactionDate: "2024-01-01",
	}
}

func TestAggregate_EmptyInput(t *testing.T) {
	agg := Aggregate(nil)

	assert.Zero(t, agg.TotalTransactions)
	assert.Zero(t, agg.BuyTransactions)
	assert.Zero(t, agg.SellTransactions)
	assert.Zero(t, agg.PotentialDuplicates)
	assert.Empty(t, agg.Transactions)
	assert.Empty(t, agg.NewSymbols)
	assert.Empty(t, agg.ExistingSymbols)
	assert.Empty(t, agg.Warnings)
}

func TestAggregate_Identity(t *testing.T) {
	p := ImportPreview{
		TotalTransactions:   3,
		BuyTransactions:     2,
		SellTransactions:    1,
		Transactions:        []ParsedTransaction{parsedTx("AAPL", domain.TransactionBuy), parsedTx("TSLA", domain.TransactionBuy), parsedTx("AAPL", domain.TransactionSell)},
		NewSymbols:          []string{"TSLA", "AAPL"},
		ExistingSymbols:     []string{"MSFT"},
		PotentialDuplicates: 1,
		Warnings:            []string{"row 7: missing price"},
	}

	agg := Aggregate([]ImportPreview{p})

	assert.Equal(t, p.TotalTransactions, agg.TotalTransactions)
	assert.Equal(t, p.BuyTransactions, agg.BuyTransactions)
	assert.Equal(t, p.SellTransactions, agg.SellTransactions)
	assert.Equal(t, p.PotentialDuplicates, agg.PotentialDuplicates)
	assert.Equal(t, p.Transactions, agg.Transactions)
	// Set conversion must not reorder or drop anything on the identity case.
	assert.Equal(t, []string{"TSLA", "AAPL"}, agg.NewSymbols)
	assert.Equal(t, []string{"MSFT"}, agg.ExistingSymbols)
	assert.Equal(t, p.Warnings, agg.Warnings)
}

func TestAggregate_Additivity(t *testing.T) {
	a := ImportPreview{
		TotalTransactions: 3,
		BuyTransactions:   2,
		SellTransactions:  1,
		Transactions: []ParsedTransaction{
			parsedTx("AAPL", domain.TransactionBuy),
			parsedTx("AAPL", domain.TransactionBuy),
			parsedTx("AAPL", domain.TransactionSell),
		},
		PotentialDuplicates: 1,
	}
	b := ImportPreview{
		TotalTransactions: 5,
		BuyTransactions:   4,
		SellTransactions:  1,
		Transactions: []ParsedTransaction{
			parsedTx("NVDA", domain.TransactionBuy),
			parsedTx("NVDA", domain.TransactionBuy),
			parsedTx("NVDA", domain.TransactionBuy),
			parsedTx("NVDA", domain.TransactionBuy),
			parsedTx("NVDA", domain.TransactionSell),
		},
		PotentialDuplicates: 2,
	}

	agg := Aggregate([]ImportPreview{a, b})

	assert.Equal(t, 8, agg.TotalTransactions)
	assert.Equal(t, 6, agg.BuyTransactions)
	assert.Equal(t, 2, agg.SellTransactions)
	assert.Equal(t, 3, agg.PotentialDuplicates)
	assert.Len(t, agg.Transactions, 8)
	// total == buys + sells held for every input, so it holds after merge
	assert.Equal(t, agg.TotalTransactions, agg.BuyTransactions+agg.SellTransactions)
}

func TestAggregate_PreservesFileOrder(t *testing.T) {
	a := ImportPreview{Transactions: []ParsedTransaction{parsedTx("AAPL", domain.TransactionBuy)}, Warnings: []string{"file1: w1"}}
	b := ImportPreview{Transactions: []ParsedTransaction{parsedTx("TSLA", domain.TransactionBuy)}, Warnings: []string{"file2: w1", "file2: w2"}}

	agg := Aggregate([]ImportPreview{a, b})

	assert.Equal(t, "AAPL", agg.Transactions[0].Symbol)
	assert.Equal(t, "TSLA", agg.Transactions[1].Symbol)
	assert.Equal(t, []string{"file1: w1", "file2: w1", "file2: w2"}, agg.Warnings)
}

func TestAggregate_SymbolSetDedup(t *testing.T) {
	a := ImportPreview{NewSymbols: []string{"AAPL", "TSLA"}}
	b := ImportPreview{NewSymbols: []string{"TSLA", "MSFT"}}

	agg := Aggregate([]ImportPreview{a, b})

	assert.Equal(t, []string{"AAPL", "TSLA", "MSFT"}, agg.NewSymbols)
}

func TestAggregate_NoSymbolNormalization(t *testing.T) {
	// Membership is exact string equality; differing case stays distinct.
	a := ImportPreview{ExistingSymbols: []string{"Brk.b"}}
	b := ImportPreview{ExistingSymbols: []string{"BRK.B"}}

	agg := Aggregate([]ImportPreview{a, b})

	assert.Equal(t, []string{"Brk.b", "BRK.B"}, agg.ExistingSymbols)
}

func TestAggregate_DoesNotMutateInputs(t *testing.T) {
	a := ImportPreview{NewSymbols: []string{"AAPL"}}
	b := ImportPreview{NewSymbols: []string{"AAPL", "MSFT"}}
	previews := []ImportPreview{a, b}

	_ = Aggregate(previews)

	assert.Equal(t, []string{"AAPL"}, previews[0].NewSymbols)
	assert.Equal(t, []string{"AAPL", "MSFT"}, previews[1].NewSymbols)
}
