package prices

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Repository handles price cache database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new price cache repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "prices").Logger(),
	}
}

// Upsert stores the latest quote for a symbol, replacing any previous one
func (r *Repository) Upsert(p CachedPrice) error {
	_, err := r.db.Exec(`
		INSERT INTO price_cache (symbol, price, currency, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET
			price = excluded.price,
			currency = excluded.currency,
			fetched_at = excluded.fetched_at`,
		strings.ToUpper(strings.TrimSpace(p.Symbol)),
		p.Price,
		p.Currency,
		p.FetchedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert price: %w", err)
	}
	return nil
}

// GetBySymbol returns the cached price for a symbol, or nil if never fetched
func (r *Repository) GetBySymbol(symbol string) (*CachedPrice, error) {
	rows, err := r.db.Query(
		"SELECT symbol, price, currency, fetched_at FROM price_cache WHERE symbol = ?",
		strings.ToUpper(strings.TrimSpace(symbol)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query price: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("error iterating prices: %w", err)
		}
		return nil, nil
	}
	p, err := scanPrice(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan price: %w", err)
	}
	return &p, nil
}

// GetAll returns every cached price keyed by symbol
func (r *Repository) GetAll() (map[string]CachedPrice, error) {
	rows, err := r.db.Query("SELECT symbol, price, currency, fetched_at FROM price_cache")
	if err != nil {
		return nil, fmt.Errorf("failed to query prices: %w", err)
	}
	defer rows.Close()

	out := make(map[string]CachedPrice)
	for rows.Next() {
		p, err := scanPrice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan price: %w", err)
		}
		out[p.Symbol] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prices: %w", err)
	}
	return out, nil
}

// DeleteStale removes cached prices older than the cutoff
func (r *Repository) DeleteStale(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	result, err := r.db.Exec("DELETE FROM price_cache WHERE fetched_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale prices: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check deletion: %w", err)
	}
	return affected, nil
}

func scanPrice(rows *sql.Rows) (CachedPrice, error) {
	var p CachedPrice
	if err := rows.Scan(&p.Symbol, &p.Price, &p.Currency, &p.FetchedAt); err != nil {
		return CachedPrice{}, err
	}
	return p, nil
}
