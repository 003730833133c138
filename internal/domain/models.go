package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the side of a trade
type TransactionType string

const (
	TransactionBuy  TransactionType = "BUY"
	TransactionSell TransactionType = "SELL"
)

// Valid reports whether t is a known transaction type
func (t TransactionType) Valid() bool {
	return t == TransactionBuy || t == TransactionSell
}

// Transaction is an immutable record of one trade.
// Quantity and monetary fields use decimal arithmetic throughout; the
// reconciliation check compares against stored decimal values with a small
// tolerance, so binary floats would drift across many small trades.
type Transaction struct {
	ID              int64           `json:"id"`
	HoldingID       int64           `json:"holding_id"`
	Symbol          string          `json:"symbol"`
	TransactionType TransactionType `json:"transaction_type"`
	Quantity        decimal.Decimal `json:"quantity"`
	PricePerShare   decimal.Decimal `json:"price_per_share"`
	Fees            decimal.Decimal `json:"fees"`
	TransactionDate string          `json:"transaction_date"` // YYYY-MM-DD
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Holding is the persisted record of a current position. It is the
// authoritative side of reconciliation; derived positions are checked
// against it, never the other way around.
type Holding struct {
	ID                int64           `json:"id"`
	Symbol            string          `json:"symbol"`
	CompanyName       string          `json:"company_name,omitempty"`
	Exchange          string          `json:"exchange"`
	Country           string          `json:"country"`
	Quantity          decimal.Decimal `json:"quantity"`
	AvgPurchasePrice  decimal.Decimal `json:"avg_purchase_price"`
	Currency          string          `json:"currency"`
	FirstPurchaseDate string          `json:"first_purchase_date,omitempty"` // YYYY-MM-DD
	Notes             string          `json:"notes,omitempty"`
	IsActive          bool            `json:"is_active"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}
