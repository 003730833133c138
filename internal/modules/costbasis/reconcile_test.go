package costbasis

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/arniesaha/portfolio-tracker/internal/domain"
)

func TestReconcile_ToleranceBoundary(t *testing.T) {
	tests := []struct {
		name     string
		computed float64
		reported float64
		want     Outcome
	}{
		{"exact match", 10.0, 10.0, Match},
		{"within tolerance", 10.004, 10.0, Match},
		{"just under tolerance", 10.0099, 10.0, Match},
		{"beyond tolerance", 10.02, 10.0, Discrepancy},
		{"exactly at tolerance", 10.01, 10.0, Discrepancy}, // strict less-than
		{"negative drift", 9.98, 10.0, Discrepancy},
		{"zero vs zero", 0, 0, Match},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			computed := Position{
				Symbol:      "AAPL",
				TotalShares: decimal.NewFromFloat(tt.computed),
			}
			reported := &domain.Holding{
				Symbol:   "AAPL",
				Quantity: decimal.NewFromFloat(tt.reported),
			}

			assert.Equal(t, tt.want, Reconcile(computed, reported))
		})
	}
}

func TestReconcile_NoReportedHolding(t *testing.T) {
	computed := Position{Symbol: "TSLA", TotalShares: decimal.NewFromInt(10)}

	assert.Equal(t, NoReportedHolding, Reconcile(computed, nil))
}

func TestReconcile_IgnoresAverageCost(t *testing.T) {
	// Verdict covers share count only; wildly different average costs
	// still match when the share counts agree.
	computed := Position{
		Symbol:          "VGT",
		TotalShares:     decimal.NewFromInt(7),
		AvgCostPerShare: decimal.NewFromInt(100),
	}
	reported := &domain.Holding{
		Symbol:           "VGT",
		Quantity:         decimal.NewFromInt(7),
		AvgPurchasePrice: decimal.NewFromInt(999),
	}

	assert.Equal(t, Match, Reconcile(computed, reported))
}
