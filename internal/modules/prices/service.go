package prices

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/arniesaha/portfolio-tracker/internal/domain"
)

// QuoteSource fetches a live price for a symbol on an exchange.
// The Yahoo Finance client satisfies it.
type QuoteSource interface {
	CurrentPrice(symbol, exchange string) (price float64, currency string, err error)
}

// HoldingSource lists the holdings whose prices need refreshing
type HoldingSource interface {
	GetAllActive() ([]domain.Holding, error)
}

// PriceStore persists fetched quotes
type PriceStore interface {
	Upsert(p CachedPrice) error
	GetAll() (map[string]CachedPrice, error)
}

// Service refreshes the price cache from the quote source
type Service struct {
	quotes   QuoteSource
	holdings HoldingSource
	store    PriceStore
	log      zerolog.Logger
}

// NewService creates a new prices service
func NewService(quotes QuoteSource, holdings HoldingSource, store PriceStore, log zerolog.Logger) *Service {
	return &Service{
		quotes:   quotes,
		holdings: holdings,
		store:    store,
		log:      log.With().Str("service", "prices").Logger(),
	}
}

// RefreshAll fetches a fresh quote for every active holding and caches it.
// Failures for individual symbols are collected, not fatal; the cache keeps
// the previous price for symbols that fail.
func (s *Service) RefreshAll() (RefreshResult, error) {
	holdings, err := s.holdings.GetAllActive()
	if err != nil {
		return RefreshResult{}, fmt.Errorf("failed to list holdings: %w", err)
	}

	result := RefreshResult{Requested: len(holdings), Errors: []string{}}
	for _, h := range holdings {
		price, currency, err := s.quotes.CurrentPrice(h.Symbol, h.Exchange)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", h.Symbol, err))
			s.log.Warn().Err(err).Str("symbol", h.Symbol).Msg("Price fetch failed")
			continue
		}

		if currency == "" {
			currency = h.Currency
		}
		cached := CachedPrice{
			Symbol:    h.Symbol,
			Price:     decimal.NewFromFloat(price),
			Currency:  currency,
			FetchedAt: time.Now().UTC(),
		}
		if err := s.store.Upsert(cached); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", h.Symbol, err))
			s.log.Error().Err(err).Str("symbol", h.Symbol).Msg("Price cache write failed")
			continue
		}
		result.Updated++
	}

	s.log.Info().
		Int("requested", result.Requested).
		Int("updated", result.Updated).
		Int("failed", result.Failed).
		Msg("Price refresh completed")
	return result, nil
}

// GetAll returns the current price cache keyed by symbol
func (s *Service) GetAll() (map[string]CachedPrice, error) {
	return s.store.GetAll()
}
