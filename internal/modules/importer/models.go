package importer

import (
	"github.com/shopspring/decimal"

	"github.com/arniesaha/portfolio-tracker/internal/domain"
)

// ParsedTransaction is a transaction candidate extracted from an uploaded
// file. It has not been committed; IDs are assigned only at import time.
type ParsedTransaction struct {
	Symbol          string                 `json:"symbol"`
	CompanyName     string                 `json:"company_name,omitempty"`
	TransactionType domain.TransactionType `json:"transaction_type"`
	Quantity        decimal.Decimal        `json:"quantity"`
	PricePerShare   decimal.Decimal        `json:"price_per_share"`
	Fees            decimal.Decimal        `json:"fees"`
	TransactionDate string                 `json:"transaction_date"` // YYYY-MM-DD
	Currency        string                 `json:"currency,omitempty"`
}

// ImportPreview is the dry-run classification of one uploaded file, or the
// merged classification of several (see Aggregate).
type ImportPreview struct {
	TotalTransactions   int                 `json:"total_transactions"`
	BuyTransactions     int                 `json:"buy_transactions"`
	SellTransactions    int                 `json:"sell_transactions"`
	Transactions        []ParsedTransaction `json:"transactions"`
	NewSymbols          []string            `json:"new_symbols"`
	ExistingSymbols     []string            `json:"existing_symbols"`
	PotentialDuplicates int                 `json:"potential_duplicates"`
	Warnings            []string            `json:"warnings"`
}

// ImportResult reports what a confirmed import actually wrote.
type ImportResult struct {
	TransactionsImported int      `json:"transactions_imported"`
	HoldingsCreated      int      `json:"holdings_created"`
	HoldingsUpdated      int      `json:"holdings_updated"`
	DuplicatesSkipped    int      `json:"duplicates_skipped"`
	Errors               []string `json:"errors"`
	Warnings             []string `json:"warnings"`
}
