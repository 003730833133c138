package portfolio

import (
	"time"

	"github.com/shopspring/decimal"
)

// HoldingValuation is one holding priced at the latest cached quote
type HoldingValuation struct {
	Symbol           string          `json:"symbol"`
	CompanyName      string          `json:"company_name,omitempty"`
	Quantity         decimal.Decimal `json:"quantity"`
	AvgPurchasePrice decimal.Decimal `json:"avg_purchase_price"`
	CostBasis        decimal.Decimal `json:"cost_basis"`
	CurrentPrice     decimal.Decimal `json:"current_price"`
	MarketValue      decimal.Decimal `json:"market_value"`
	UnrealizedPnL    decimal.Decimal `json:"unrealized_pnl"`
	Currency         string          `json:"currency"`
	PriceAsOf        *time.Time      `json:"price_as_of,omitempty"`
}

// Summary is the portfolio valued at the latest cached quotes. Holdings
// without a cached price are valued at cost and listed in MissingPrices.
type Summary struct {
	TotalMarketValue   decimal.Decimal    `json:"total_market_value"`
	TotalCostBasis     decimal.Decimal    `json:"total_cost_basis"`
	TotalUnrealizedPnL decimal.Decimal    `json:"total_unrealized_pnl"`
	UnrealizedPnLPct   float64            `json:"unrealized_pnl_pct"`
	HoldingCount       int                `json:"holding_count"`
	MissingPrices      []string           `json:"missing_prices"`
	Holdings           []HoldingValuation `json:"holdings"`
	GeneratedAt        time.Time          `json:"generated_at"`
}

// AllocationSlice is one bucket's share of total market value
type AllocationSlice struct {
	Name        string          `json:"name"`
	MarketValue decimal.Decimal `json:"market_value"`
	Percentage  float64         `json:"percentage"`
}

// TopHolding is one of the largest holdings by market value
type TopHolding struct {
	Symbol       string          `json:"symbol"`
	CompanyName  string          `json:"company_name,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	MarketValue  decimal.Decimal `json:"market_value"`
	Currency     string          `json:"currency"`
	Percentage   float64         `json:"percentage"`
}

// Allocation breaks the portfolio down by country and exchange. Only
// holdings with a cached quote participate; unpriced ones are omitted
// rather than weighted at cost.
type Allocation struct {
	TotalMarketValue decimal.Decimal   `json:"total_market_value"`
	ByCountry        []AllocationSlice `json:"by_country"`
	ByExchange       []AllocationSlice `json:"by_exchange"`
	TopHoldings      []TopHolding      `json:"top_holdings"`
	GeneratedAt      time.Time         `json:"generated_at"`
}

// Snapshot is one day's portfolio valuation, kept for history and stats.
// Snapshots are derived analytics, so float64 is enough here; the
// accounting records stay decimal.
type Snapshot struct {
	Date          string  `json:"date"` // YYYY-MM-DD
	TotalValue    float64 `json:"total_value"`
	TotalCost     float64 `json:"total_cost"`
	UnrealizedPnL float64 `json:"unrealized_pnl"`
	HoldingCount  int     `json:"holding_count"`
}

// HistoryStats are risk metrics computed over a snapshot window
type HistoryStats struct {
	Change               float64  `json:"change"`
	ChangePct            float64  `json:"change_pct"`
	AnnualizedVolatility *float64 `json:"annualized_volatility,omitempty"`
	MaxDrawdown          *float64 `json:"max_drawdown,omitempty"`
	SharpeRatio          *float64 `json:"sharpe_ratio,omitempty"`
}

// History is a snapshot window with its stats, oldest first
type History struct {
	Days      int          `json:"days"`
	Snapshots []Snapshot   `json:"snapshots"`
	Stats     HistoryStats `json:"stats"`
}
