package importer

import (
	"fmt"
	"time"
)

// ValidationError marks a transaction candidate rejected at the ingestion
// boundary. The cost-basis reconstructor is total over any BUY/SELL
// sequence, so malformed rows must be stopped here, before storage.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validate checks a parsed transaction candidate against the ingestion
// rules: known type, non-empty symbol, positive quantity, non-negative
// price and fees, and a real calendar date.
func (t ParsedTransaction) Validate() error {
	if t.Symbol == "" {
		return &ValidationError{Field: "symbol", Reason: "must not be empty"}
	}
	if !t.TransactionType.Valid() {
		return &ValidationError{Field: "transaction_type", Reason: fmt.Sprintf("unknown type %q", t.TransactionType)}
	}
	if !t.Quantity.IsPositive() {
		return &ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	if t.PricePerShare.IsNegative() {
		return &ValidationError{Field: "price_per_share", Reason: "must not be negative"}
	}
	if t.Fees.IsNegative() {
		return &ValidationError{Field: "fees", Reason: "must not be negative"}
	}
	if _, err := time.Parse("2006-01-02", t.TransactionDate); err != nil {
		return &ValidationError{Field: "transaction_date", Reason: fmt.Sprintf("%q is not a YYYY-MM-DD date", t.TransactionDate)}
	}
	return nil
}
