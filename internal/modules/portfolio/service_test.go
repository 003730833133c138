package portfolio

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arniesaha/portfolio-tracker/internal/domain"
	"github.com/arniesaha/portfolio-tracker/internal/modules/prices"
	"github.com/arniesaha/portfolio-tracker/pkg/logger"
)

type fakeHoldingSource struct {
	holdings []domain.Holding
}

func (f *fakeHoldingSource) GetAllActive() ([]domain.Holding, error) {
	return f.holdings, nil
}

type fakePriceSource struct {
	cached map[string]prices.CachedPrice
}

func (f *fakePriceSource) GetAll() (map[string]prices.CachedPrice, error) {
	return f.cached, nil
}

type fakeSnapshotStore struct {
	saved     []Snapshot
	snapshots []Snapshot
}

func (f *fakeSnapshotStore) Upsert(s Snapshot) error {
	f.saved = append(f.saved, s)
	return nil
}

func (f *fakeSnapshotStore) GetHistory(days int) ([]Snapshot, error) {
	if len(f.snapshots) > days {
		return f.snapshots[len(f.snapshots)-days:], nil
	}
	return f.snapshots, nil
}

func newTestService(holdings *fakeHoldingSource, priceSource *fakePriceSource, snapshots *fakeSnapshotStore) *Service {
	return NewService(holdings, priceSource, snapshots, logger.New(logger.Config{Level: "error"}))
}

func holding(symbol string, qty, avgPrice float64) domain.Holding {
	return domain.Holding{
		Symbol:           symbol,
		Quantity:         decimal.NewFromFloat(qty),
		AvgPurchasePrice: decimal.NewFromFloat(avgPrice),
		Currency:         "CAD",
		IsActive:         true,
	}
}

func cachedPrice(price float64) prices.CachedPrice {
	return prices.CachedPrice{
		Price:     decimal.NewFromFloat(price),
		Currency:  "CAD",
		FetchedAt: time.Now().UTC(),
	}
}

func TestService_Summary(t *testing.T) {
	holdings := &fakeHoldingSource{holdings: []domain.Holding{
		holding("SHOP", 10, 100), // cost 1000, value 1200
		holding("VDY", 20, 50),   // cost 1000, value 900
	}}
	priceSource := &fakePriceSource{cached: map[string]prices.CachedPrice{
		"SHOP": cachedPrice(120),
		"VDY":  cachedPrice(45),
	}}
	svc := newTestService(holdings, priceSource, &fakeSnapshotStore{})

	summary, err := svc.Summary()
	require.NoError(t, err)

	assert.Equal(t, 2, summary.HoldingCount)
	assert.True(t, summary.TotalMarketValue.Equal(decimal.NewFromInt(2100)), "got %s", summary.TotalMarketValue)
	assert.True(t, summary.TotalCostBasis.Equal(decimal.NewFromInt(2000)))
	assert.True(t, summary.TotalUnrealizedPnL.Equal(decimal.NewFromInt(100)))
	assert.InDelta(t, 5.0, summary.UnrealizedPnLPct, 1e-9)
	assert.Empty(t, summary.MissingPrices)
	require.Len(t, summary.Holdings, 2)
	assert.True(t, summary.Holdings[0].UnrealizedPnL.Equal(decimal.NewFromInt(200)))
}

func TestService_Summary_MissingPriceValuedAtCost(t *testing.T) {
	holdings := &fakeHoldingSource{holdings: []domain.Holding{
		holding("SHOP", 10, 100),
	}}
	svc := newTestService(holdings, &fakePriceSource{}, &fakeSnapshotStore{})

	summary, err := svc.Summary()
	require.NoError(t, err)

	assert.Equal(t, []string{"SHOP"}, summary.MissingPrices)
	assert.True(t, summary.TotalMarketValue.Equal(decimal.NewFromInt(1000)))
	assert.True(t, summary.TotalUnrealizedPnL.IsZero())
	assert.Nil(t, summary.Holdings[0].PriceAsOf)
}

func TestService_Summary_Empty(t *testing.T) {
	svc := newTestService(&fakeHoldingSource{}, &fakePriceSource{}, &fakeSnapshotStore{})

	summary, err := svc.Summary()
	require.NoError(t, err)

	assert.Zero(t, summary.HoldingCount)
	assert.True(t, summary.TotalMarketValue.IsZero())
	assert.Zero(t, summary.UnrealizedPnLPct)
	assert.Empty(t, summary.Holdings)
}

func listedHolding(symbol string, qty, avgPrice float64, exchange, country string) domain.Holding {
	h := holding(symbol, qty, avgPrice)
	h.Exchange = exchange
	h.Country = country
	return h
}

func TestService_Allocation(t *testing.T) {
	holdings := &fakeHoldingSource{holdings: []domain.Holding{
		listedHolding("SHOP", 10, 100, "TSX", "CA"), // value 1200
		listedHolding("VDY", 20, 50, "TSX", "CA"),   // value 900
		listedHolding("NVDA", 5, 120, "NYSE", "US"), // value 900
		listedHolding("TATA", 30, 40, "NSE", "IN"),  // no cached quote, skipped
	}}
	priceSource := &fakePriceSource{cached: map[string]prices.CachedPrice{
		"SHOP": cachedPrice(120),
		"VDY":  cachedPrice(45),
		"NVDA": cachedPrice(180),
	}}
	svc := newTestService(holdings, priceSource, &fakeSnapshotStore{})

	alloc, err := svc.Allocation()
	require.NoError(t, err)

	assert.True(t, alloc.TotalMarketValue.Equal(decimal.NewFromInt(3000)), "got %s", alloc.TotalMarketValue)

	require.Len(t, alloc.ByCountry, 2)
	assert.Equal(t, "CA", alloc.ByCountry[0].Name)
	assert.True(t, alloc.ByCountry[0].MarketValue.Equal(decimal.NewFromInt(2100)))
	assert.InDelta(t, 70, alloc.ByCountry[0].Percentage, 1e-9)
	assert.Equal(t, "US", alloc.ByCountry[1].Name)
	assert.InDelta(t, 30, alloc.ByCountry[1].Percentage, 1e-9)

	require.Len(t, alloc.ByExchange, 2)
	assert.Equal(t, "NYSE", alloc.ByExchange[0].Name)
	assert.Equal(t, "TSX", alloc.ByExchange[1].Name)
	assert.True(t, alloc.ByExchange[1].MarketValue.Equal(decimal.NewFromInt(2100)))

	require.Len(t, alloc.TopHoldings, 3)
	assert.Equal(t, "SHOP", alloc.TopHoldings[0].Symbol)
	assert.True(t, alloc.TopHoldings[0].MarketValue.Equal(decimal.NewFromInt(1200)))
	assert.InDelta(t, 40, alloc.TopHoldings[0].Percentage, 1e-9)
}

func TestService_Allocation_CapsTopHoldings(t *testing.T) {
	var all []domain.Holding
	cached := map[string]prices.CachedPrice{}
	for i := 0; i < 12; i++ {
		symbol := string(rune('A' + i))
		all = append(all, listedHolding(symbol, float64(i+1), 10, "TSX", "CA"))
		cached[symbol] = cachedPrice(10)
	}
	svc := newTestService(&fakeHoldingSource{holdings: all}, &fakePriceSource{cached: cached}, &fakeSnapshotStore{})

	alloc, err := svc.Allocation()
	require.NoError(t, err)

	require.Len(t, alloc.TopHoldings, 10)
	// Largest first; the two smallest positions fall off the list.
	assert.Equal(t, "L", alloc.TopHoldings[0].Symbol)
	assert.Equal(t, "C", alloc.TopHoldings[9].Symbol)
}

func TestService_Allocation_Empty(t *testing.T) {
	svc := newTestService(&fakeHoldingSource{}, &fakePriceSource{}, &fakeSnapshotStore{})

	alloc, err := svc.Allocation()
	require.NoError(t, err)

	assert.True(t, alloc.TotalMarketValue.IsZero())
	assert.Empty(t, alloc.ByCountry)
	assert.Empty(t, alloc.ByExchange)
	assert.Empty(t, alloc.TopHoldings)
}

func TestService_TakeSnapshot(t *testing.T) {
	holdings := &fakeHoldingSource{holdings: []domain.Holding{
		holding("SHOP", 10, 100),
	}}
	priceSource := &fakePriceSource{cached: map[string]prices.CachedPrice{
		"SHOP": cachedPrice(120),
	}}
	store := &fakeSnapshotStore{}
	svc := newTestService(holdings, priceSource, store)

	snapshot, err := svc.TakeSnapshot()
	require.NoError(t, err)

	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), snapshot.Date)
	assert.InDelta(t, 1200, snapshot.TotalValue, 1e-9)
	assert.InDelta(t, 200, snapshot.UnrealizedPnL, 1e-9)
	assert.Equal(t, 1, snapshot.HoldingCount)
	require.Len(t, store.saved, 1)
}

func TestService_History_Stats(t *testing.T) {
	store := &fakeSnapshotStore{snapshots: []Snapshot{
		{Date: "2024-01-01", TotalValue: 1000},
		{Date: "2024-01-02", TotalValue: 1200},
		{Date: "2024-01-03", TotalValue: 900},
		{Date: "2024-01-04", TotalValue: 1100},
	}}
	svc := newTestService(&fakeHoldingSource{}, &fakePriceSource{}, store)

	history, err := svc.History(90)
	require.NoError(t, err)

	assert.Equal(t, 90, history.Days)
	require.Len(t, history.Snapshots, 4)
	assert.InDelta(t, 100, history.Stats.Change, 1e-9)
	assert.InDelta(t, 10, history.Stats.ChangePct, 1e-9)
	require.NotNil(t, history.Stats.MaxDrawdown)
	assert.InDelta(t, 0.25, *history.Stats.MaxDrawdown, 1e-9)
	assert.NotNil(t, history.Stats.AnnualizedVolatility)
}

func TestService_History_TooShortForStats(t *testing.T) {
	store := &fakeSnapshotStore{snapshots: []Snapshot{
		{Date: "2024-01-01", TotalValue: 1000},
	}}
	svc := newTestService(&fakeHoldingSource{}, &fakePriceSource{}, store)

	history, err := svc.History(30)
	require.NoError(t, err)

	assert.Len(t, history.Snapshots, 1)
	assert.Zero(t, history.Stats.Change)
	assert.Nil(t, history.Stats.MaxDrawdown)
	assert.Nil(t, history.Stats.SharpeRatio)
}
