package portfolio

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/arniesaha/portfolio-tracker/internal/domain"
	"github.com/arniesaha/portfolio-tracker/internal/modules/prices"
	"github.com/arniesaha/portfolio-tracker/pkg/formulas"
)

// riskFreeRate is the annual rate used for the Sharpe ratio
const riskFreeRate = 0.02

// HoldingSource lists the active holdings to value
type HoldingSource interface {
	GetAllActive() ([]domain.Holding, error)
}

// PriceSource supplies the cached quotes used for valuation
type PriceSource interface {
	GetAll() (map[string]prices.CachedPrice, error)
}

// SnapshotStore persists daily snapshots
type SnapshotStore interface {
	Upsert(s Snapshot) error
	GetHistory(days int) ([]Snapshot, error)
}

// Service values the portfolio and maintains its snapshot history
type Service struct {
	holdings  HoldingSource
	prices    PriceSource
	snapshots SnapshotStore
	log       zerolog.Logger
}

// NewService creates a new portfolio service
func NewService(holdings HoldingSource, priceSource PriceSource, snapshots SnapshotStore, log zerolog.Logger) *Service {
	return &Service{
		holdings:  holdings,
		prices:    priceSource,
		snapshots: snapshots,
		log:       log.With().Str("service", "portfolio").Logger(),
	}
}

// Summary values every active holding at its latest cached quote. A
// holding with no cached price is valued at cost so totals stay complete,
// and its symbol is reported in MissingPrices.
func (s *Service) Summary() (Summary, error) {
	holdings, err := s.holdings.GetAllActive()
	if err != nil {
		return Summary{}, fmt.Errorf("failed to list holdings: %w", err)
	}

	cached, err := s.prices.GetAll()
	if err != nil {
		return Summary{}, fmt.Errorf("failed to load price cache: %w", err)
	}

	summary := Summary{
		MissingPrices: []string{},
		Holdings:      make([]HoldingValuation, 0, len(holdings)),
		HoldingCount:  len(holdings),
		GeneratedAt:   time.Now().UTC(),
	}

	for _, h := range holdings {
		v := HoldingValuation{
			Symbol:           h.Symbol,
			CompanyName:      h.CompanyName,
			Quantity:         h.Quantity,
			AvgPurchasePrice: h.AvgPurchasePrice,
			CostBasis:        h.Quantity.Mul(h.AvgPurchasePrice),
			Currency:         h.Currency,
		}

		if quote, ok := cached[h.Symbol]; ok {
			v.CurrentPrice = quote.Price
			asOf := quote.FetchedAt
			v.PriceAsOf = &asOf
		} else {
			v.CurrentPrice = h.AvgPurchasePrice
			summary.MissingPrices = append(summary.MissingPrices, h.Symbol)
		}

		v.MarketValue = h.Quantity.Mul(v.CurrentPrice)
		v.UnrealizedPnL = v.MarketValue.Sub(v.CostBasis)

		summary.TotalMarketValue = summary.TotalMarketValue.Add(v.MarketValue)
		summary.TotalCostBasis = summary.TotalCostBasis.Add(v.CostBasis)
		summary.TotalUnrealizedPnL = summary.TotalUnrealizedPnL.Add(v.UnrealizedPnL)
		summary.Holdings = append(summary.Holdings, v)
	}

	if summary.TotalCostBasis.IsPositive() {
		pct, _ := summary.TotalUnrealizedPnL.Div(summary.TotalCostBasis).Mul(decimal.NewFromInt(100)).Float64()
		summary.UnrealizedPnLPct = round(pct, 2)
	}

	return summary, nil
}

// topHoldingsLimit caps the top-holdings list in the allocation breakdown
const topHoldingsLimit = 10

// Allocation breaks the priced part of the portfolio down by country and
// exchange and lists the largest holdings by market value. Holdings
// without a cached quote are skipped: valuing them at cost would distort
// the weights.
func (s *Service) Allocation() (Allocation, error) {
	holdings, err := s.holdings.GetAllActive()
	if err != nil {
		return Allocation{}, fmt.Errorf("failed to list holdings: %w", err)
	}

	cached, err := s.prices.GetAll()
	if err != nil {
		return Allocation{}, fmt.Errorf("failed to load price cache: %w", err)
	}

	alloc := Allocation{
		TopHoldings: []TopHolding{},
		GeneratedAt: time.Now().UTC(),
	}

	byCountry := make(map[string]decimal.Decimal)
	byExchange := make(map[string]decimal.Decimal)

	for _, h := range holdings {
		quote, ok := cached[h.Symbol]
		if !ok {
			continue
		}

		value := h.Quantity.Mul(quote.Price)
		byCountry[h.Country] = byCountry[h.Country].Add(value)
		byExchange[h.Exchange] = byExchange[h.Exchange].Add(value)
		alloc.TotalMarketValue = alloc.TotalMarketValue.Add(value)

		alloc.TopHoldings = append(alloc.TopHoldings, TopHolding{
			Symbol:       h.Symbol,
			CompanyName:  h.CompanyName,
			Quantity:     h.Quantity,
			CurrentPrice: quote.Price,
			MarketValue:  value,
			Currency:     h.Currency,
		})
	}

	alloc.ByCountry = allocationSlices(byCountry, alloc.TotalMarketValue)
	alloc.ByExchange = allocationSlices(byExchange, alloc.TotalMarketValue)

	sort.SliceStable(alloc.TopHoldings, func(i, j int) bool {
		return alloc.TopHoldings[i].MarketValue.GreaterThan(alloc.TopHoldings[j].MarketValue)
	})
	if len(alloc.TopHoldings) > topHoldingsLimit {
		alloc.TopHoldings = alloc.TopHoldings[:topHoldingsLimit]
	}
	for i := range alloc.TopHoldings {
		alloc.TopHoldings[i].Percentage = percentageOf(alloc.TopHoldings[i].MarketValue, alloc.TotalMarketValue)
	}

	return alloc, nil
}

// allocationSlices converts bucket totals to slices sorted by name
func allocationSlices(buckets map[string]decimal.Decimal, total decimal.Decimal) []AllocationSlice {
	slices := make([]AllocationSlice, 0, len(buckets))
	for name, value := range buckets {
		slices = append(slices, AllocationSlice{
			Name:        name,
			MarketValue: value,
			Percentage:  percentageOf(value, total),
		})
	}
	sort.Slice(slices, func(i, j int) bool { return slices[i].Name < slices[j].Name })
	return slices
}

func percentageOf(value, total decimal.Decimal) float64 {
	if !total.IsPositive() {
		return 0
	}
	pct, _ := value.Div(total).Mul(decimal.NewFromInt(100)).Float64()
	return round(pct, 2)
}

// TakeSnapshot values the portfolio and stores today's snapshot,
// replacing an earlier one for the same date.
func (s *Service) TakeSnapshot() (Snapshot, error) {
	summary, err := s.Summary()
	if err != nil {
		return Snapshot{}, err
	}

	snapshot := Snapshot{
		Date:          time.Now().UTC().Format("2006-01-02"),
		TotalValue:    summary.TotalMarketValue.InexactFloat64(),
		TotalCost:     summary.TotalCostBasis.InexactFloat64(),
		UnrealizedPnL: summary.TotalUnrealizedPnL.InexactFloat64(),
		HoldingCount:  summary.HoldingCount,
	}
	if err := s.snapshots.Upsert(snapshot); err != nil {
		return Snapshot{}, err
	}

	s.log.Info().
		Str("date", snapshot.Date).
		Float64("total_value", snapshot.TotalValue).
		Int("holdings", snapshot.HoldingCount).
		Msg("Portfolio snapshot taken")
	return snapshot, nil
}

// History returns the last N daily snapshots with risk metrics computed
// over the window. Metrics needing more data than the window holds are
// left nil.
func (s *Service) History(days int) (History, error) {
	snapshots, err := s.snapshots.GetHistory(days)
	if err != nil {
		return History{}, fmt.Errorf("failed to load snapshots: %w", err)
	}

	history := History{Days: days, Snapshots: snapshots}
	if len(snapshots) < 2 {
		return history, nil
	}

	values := make([]float64, len(snapshots))
	for i, snap := range snapshots {
		values[i] = snap.TotalValue
	}

	oldest, latest := values[0], values[len(values)-1]
	history.Stats.Change = round(latest-oldest, 2)
	if oldest > 0 {
		history.Stats.ChangePct = round((latest-oldest)/oldest*100, 2)
	}

	returns := formulas.CalculateReturns(values)
	if vol := formulas.AnnualizedVolatility(returns); vol > 0 {
		history.Stats.AnnualizedVolatility = &vol
	}
	history.Stats.MaxDrawdown = formulas.CalculateMaxDrawdown(values)
	history.Stats.SharpeRatio = formulas.CalculateSharpeRatio(returns, riskFreeRate, 252)

	return history, nil
}

// round rounds a float64 to n decimal places
func round(val float64, decimals int) float64 {
	multiplier := math.Pow(10, float64(decimals))
	return math.Round(val*multiplier) / multiplier
}
