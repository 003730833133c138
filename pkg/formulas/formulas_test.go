package formulas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateReturns(t *testing.T) {
	returns := CalculateReturns([]float64{100, 110, 99})
	require.Len(t, returns, 2)
	assert.InDelta(t, 0.10, returns[0], 1e-9)
	assert.InDelta(t, -0.10, returns[1], 1e-9)
}

func TestCalculateReturns_TooShort(t *testing.T) {
	assert.Empty(t, CalculateReturns([]float64{100}))
	assert.Empty(t, CalculateReturns(nil))
}

func TestCalculateMaxDrawdown(t *testing.T) {
	// Peak 120, trough 90 -> 25% drawdown
	dd := CalculateMaxDrawdown([]float64{100, 120, 90, 110})
	require.NotNil(t, dd)
	assert.InDelta(t, 0.25, *dd, 1e-9)
}

func TestCalculateMaxDrawdown_MonotonicRise(t *testing.T) {
	dd := CalculateMaxDrawdown([]float64{100, 110, 120})
	require.NotNil(t, dd)
	assert.Zero(t, *dd)
}

func TestCalculateMaxDrawdown_TooShort(t *testing.T) {
	assert.Nil(t, CalculateMaxDrawdown([]float64{100}))
}

func TestCalculateSharpeRatio_ZeroVariance(t *testing.T) {
	assert.Nil(t, CalculateSharpeRatio([]float64{0.01, 0.01, 0.01}, 0.02, 252))
}

func TestCalculateSharpeRatio_PositiveForRisingSeries(t *testing.T) {
	returns := CalculateReturns([]float64{100, 101, 103, 104, 107})
	sharpe := CalculateSharpeRatio(returns, 0, 252)
	require.NotNil(t, sharpe)
	assert.Greater(t, *sharpe, 0.0)
}

func TestAnnualizedVolatility_Empty(t *testing.T) {
	assert.Zero(t, AnnualizedVolatility(nil))
}
