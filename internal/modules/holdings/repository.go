package holdings

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/arniesaha/portfolio-tracker/internal/domain"
)

// Repository handles holding database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new holdings repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "holdings").Logger(),
	}
}

const holdingColumns = `id, symbol, company_name, exchange, country, quantity,
	avg_purchase_price, currency, first_purchase_date, notes, is_active,
	created_at, updated_at`

// GetAll returns all holdings, active and inactive
func (r *Repository) GetAll() ([]domain.Holding, error) {
	return r.query("SELECT " + holdingColumns + " FROM holdings ORDER BY symbol")
}

// GetAllActive returns all active holdings
func (r *Repository) GetAllActive() ([]domain.Holding, error) {
	return r.query("SELECT " + holdingColumns + " FROM holdings WHERE is_active = 1 ORDER BY symbol")
}

// GetByID returns a holding by ID, or nil if not found
func (r *Repository) GetByID(id int64) (*domain.Holding, error) {
	rows, err := r.db.Query("SELECT "+holdingColumns+" FROM holdings WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to query holding by id: %w", err)
	}
	defer rows.Close()
	return r.first(rows)
}

// GetBySymbol returns the active holding for a symbol, or nil if not found
func (r *Repository) GetBySymbol(symbol string) (*domain.Holding, error) {
	rows, err := r.db.Query(
		"SELECT "+holdingColumns+" FROM holdings WHERE symbol = ? AND is_active = 1",
		strings.ToUpper(strings.TrimSpace(symbol)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query holding by symbol: %w", err)
	}
	defer rows.Close()
	return r.first(rows)
}

// Create inserts a new holding and returns its ID
func (r *Repository) Create(h *domain.Holding) (int64, error) {
	now := time.Now().UTC()
	result, err := r.db.Exec(`
		INSERT INTO holdings (symbol, company_name, exchange, country, quantity,
			avg_purchase_price, currency, first_purchase_date, notes, is_active,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		strings.ToUpper(strings.TrimSpace(h.Symbol)),
		h.CompanyName,
		h.Exchange,
		h.Country,
		h.Quantity,
		h.AvgPurchasePrice,
		h.Currency,
		nullableString(h.FirstPurchaseDate),
		nullableString(h.Notes),
		h.IsActive,
		now,
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert holding: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get holding id: %w", err)
	}

	r.log.Debug().Str("symbol", h.Symbol).Int64("id", id).Msg("Holding created")
	return id, nil
}

// Update overwrites a holding's descriptive fields
func (r *Repository) Update(h *domain.Holding) error {
	_, err := r.db.Exec(`
		UPDATE holdings
		SET company_name = ?, exchange = ?, country = ?, quantity = ?,
			avg_purchase_price = ?, currency = ?, first_purchase_date = ?,
			notes = ?, updated_at = ?
		WHERE id = ?`,
		h.CompanyName,
		h.Exchange,
		h.Country,
		h.Quantity,
		h.AvgPurchasePrice,
		h.Currency,
		nullableString(h.FirstPurchaseDate),
		nullableString(h.Notes),
		time.Now().UTC(),
		h.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update holding: %w", err)
	}
	return nil
}

// UpdatePosition sets a holding's quantity and average purchase price
func (r *Repository) UpdatePosition(id int64, quantity, avgPrice decimal.Decimal) error {
	_, err := r.db.Exec(
		"UPDATE holdings SET quantity = ?, avg_purchase_price = ?, updated_at = ? WHERE id = ?",
		quantity, avgPrice, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update holding position: %w", err)
	}
	return nil
}

// Deactivate soft-deletes a holding
func (r *Repository) Deactivate(id int64) error {
	result, err := r.db.Exec(
		"UPDATE holdings SET is_active = 0, updated_at = ? WHERE id = ?",
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate holding: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deactivation: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *Repository) query(query string, args ...interface{}) ([]domain.Holding, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	defer rows.Close()

	holdings := []domain.Holding{}
	for rows.Next() {
		h, err := scanHolding(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		holdings = append(holdings, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holdings: %w", err)
	}
	return holdings, nil
}

func (r *Repository) first(rows *sql.Rows) (*domain.Holding, error) {
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("error iterating holdings: %w", err)
		}
		return nil, nil
	}
	h, err := scanHolding(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan holding: %w", err)
	}
	return &h, nil
}

func scanHolding(rows *sql.Rows) (domain.Holding, error) {
	var h domain.Holding
	var companyName, firstPurchase, notes sql.NullString
	err := rows.Scan(
		&h.ID,
		&h.Symbol,
		&companyName,
		&h.Exchange,
		&h.Country,
		&h.Quantity,
		&h.AvgPurchasePrice,
		&h.Currency,
		&firstPurchase,
		&notes,
		&h.IsActive,
		&h.CreatedAt,
		&h.UpdatedAt,
	)
	if err != nil {
		return domain.Holding{}, err
	}
	h.CompanyName = companyName.String
	h.FirstPurchaseDate = firstPurchase.String
	h.Notes = notes.String
	return h, nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
