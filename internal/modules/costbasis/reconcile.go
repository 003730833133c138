package costbasis

import (
	"github.com/shopspring/decimal"

	"github.com/arniesaha/portfolio-tracker/internal/domain"
)

// Outcome classifies a reconciliation check
type Outcome string

const (
	// Match means the computed share count agrees with the stored holding
	// within tolerance.
	Match Outcome = "MATCH"
	// Discrepancy means the computed share count disagrees with the stored
	// holding beyond tolerance.
	Discrepancy Outcome = "DISCREPANCY"
	// NoReportedHolding means there is no stored holding to compare
	// against. Distinct from Discrepancy: nothing to disagree with.
	NoReportedHolding Outcome = "NO_REPORTED_HOLDING"
)

// ShareTolerance is the absolute share-count difference below which a
// computed position and a stored holding are considered to agree.
var ShareTolerance = decimal.NewFromFloat(0.01)

// Reconcile compares a reconstructed position against the stored holding for
// the same symbol. The verdict covers share count only; average cost and
// total cost are displayed for information but do not affect it.
//
// Pure comparison: no mutation, no I/O.
func Reconcile(computed Position, reported *domain.Holding) Outcome {
	if reported == nil {
		return NoReportedHolding
	}
	diff := computed.TotalShares.Sub(reported.Quantity).Abs()
	if diff.LessThan(ShareTolerance) {
		return Match
	}
	return Discrepancy
}
