package prices

import (
	"time"

	"github.com/shopspring/decimal"
)

// CachedPrice is the last fetched quote for a symbol
type CachedPrice struct {
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`
	Currency  string          `json:"currency"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// RefreshResult summarizes one refresh pass over the active holdings
type RefreshResult struct {
	Requested int      `json:"requested"`
	Updated   int      `json:"updated"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors"`
}
