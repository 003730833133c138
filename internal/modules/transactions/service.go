package transactions

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/arniesaha/portfolio-tracker/internal/domain"
	"github.com/arniesaha/portfolio-tracker/internal/modules/costbasis"
)

// Typed errors the handlers map to HTTP statuses
var (
	ErrHoldingNotFound    = errors.New("holding not found")
	ErrSymbolMismatch     = errors.New("transaction symbol does not match holding")
	ErrInsufficientShares = errors.New("cannot sell more shares than held")
)

// ValidationError marks a transaction rejected at the ingestion boundary
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// HoldingStore is the holdings access the transaction service needs
type HoldingStore interface {
	GetByID(id int64) (*domain.Holding, error)
	GetBySymbol(symbol string) (*domain.Holding, error)
	UpdatePosition(id int64, quantity, avgPrice decimal.Decimal) error
}

// TransactionStore is the transaction access the service needs.
// *Repository satisfies it.
type TransactionStore interface {
	GetBySymbol(symbol string) ([]domain.Transaction, error)
	Create(t *domain.Transaction) (int64, error)
}

// Service owns transaction writes and the holdings verification check.
// Reads go straight to the repository.
type Service struct {
	store    TransactionStore
	holdings HoldingStore
	log      zerolog.Logger
}

// NewService creates a new transactions service
func NewService(store TransactionStore, holdings HoldingStore, log zerolog.Logger) *Service {
	return &Service{
		store:    store,
		holdings: holdings,
		log:      log.With().Str("service", "transactions").Logger(),
	}
}

// Create validates and stores a transaction, then rolls its effect into the
// holding's quantity and average purchase price with the moving-average
// cost rule. A SELL exceeding the held quantity is rejected here; the
// reconstructor itself stays total over any stored sequence.
func (s *Service) Create(t *domain.Transaction) error {
	if err := validate(t); err != nil {
		return err
	}

	holding, err := s.holdings.GetByID(t.HoldingID)
	if err != nil {
		return fmt.Errorf("failed to look up holding: %w", err)
	}
	if holding == nil || !holding.IsActive {
		return ErrHoldingNotFound
	}
	if holding.Symbol != t.Symbol {
		return ErrSymbolMismatch
	}
	if t.TransactionType == domain.TransactionSell && holding.Quantity.LessThan(t.Quantity) {
		return ErrInsufficientShares
	}

	id, err := s.store.Create(t)
	if err != nil {
		return err
	}
	t.ID = id

	quantity, avgPrice := costbasis.ApplyTrade(
		holding.Quantity, holding.AvgPurchasePrice,
		t.TransactionType, t.Quantity, t.PricePerShare,
	)
	if err := s.holdings.UpdatePosition(holding.ID, quantity, avgPrice); err != nil {
		return fmt.Errorf("failed to update holding position: %w", err)
	}

	s.log.Info().
		Str("symbol", t.Symbol).
		Str("type", string(t.TransactionType)).
		Str("quantity", t.Quantity.String()).
		Msg("Transaction recorded")
	return nil
}

// VerificationResult is the holdings verification card: the position
// replayed from transaction history next to the stored holding, with the
// reconciliation verdict.
type VerificationResult struct {
	Symbol   string             `json:"symbol"`
	Computed costbasis.Position `json:"computed"`
	Reported *domain.Holding    `json:"reported,omitempty"`
	Outcome  costbasis.Outcome  `json:"outcome"`
}

// Verify replays the stored transactions for a symbol through the
// cost-basis reconstructor and reconciles the result against the stored
// holding. The repository returns a fully-materialized snapshot, so the
// replay sees a consistent view.
func (s *Service) Verify(symbol string) (*VerificationResult, error) {
	txns, err := s.store.GetBySymbol(symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	holding, err := s.holdings.GetBySymbol(symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to load holding: %w", err)
	}

	computed := costbasis.Reconstruct(txns, symbol)
	return &VerificationResult{
		Symbol:   symbol,
		Computed: computed,
		Reported: holding,
		Outcome:  costbasis.Reconcile(computed, holding),
	}, nil
}

func validate(t *domain.Transaction) error {
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
