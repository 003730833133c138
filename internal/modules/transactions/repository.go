package transactions

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/arniesaha/portfolio-tracker/internal/domain"
)

// Filter narrows a transaction listing. Zero values mean "no constraint".
type Filter struct {
	HoldingID       int64
	TransactionType domain.TransactionType
	StartDate       string // YYYY-MM-DD inclusive
	EndDate         string // YYYY-MM-DD inclusive
	Offset          int
	Limit           int
}

// Repository handles transaction database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new transactions repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "transactions").Logger(),
	}
}

const transactionColumns = `id, holding_id, symbol, transaction_type, quantity,
	price_per_share, fees, transaction_date, notes, created_at`

// GetAll returns all transactions ordered by date ascending. This is the
// snapshot the cost-basis reconstructor replays, so the full set is
// returned without paging.
func (r *Repository) GetAll() ([]domain.Transaction, error) {
	return r.query("SELECT " + transactionColumns + " FROM transactions ORDER BY transaction_date, id")
}

// List returns transactions matching the filter, newest first
func (r *Repository) List(f Filter) ([]domain.Transaction, error) {
	var conditions []string
	var args []interface{}

	if f.HoldingID != 0 {
		conditions = append(conditions, "holding_id = ?")
		args = append(args, f.HoldingID)
	}
	if f.TransactionType != "" {
		conditions = append(conditions, "transaction_type = ?")
		args = append(args, string(f.TransactionType))
	}
	if f.StartDate != "" {
		conditions = append(conditions, "transaction_date >= ?")
		args = append(args, f.StartDate)
	}
	if f.EndDate != "" {
		conditions = append(conditions, "transaction_date <= ?")
		args = append(args, f.EndDate)
	}

	query := "SELECT " + transactionColumns + " FROM transactions"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY transaction_date DESC, id DESC"

	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, f.Offset)

	return r.query(query, args...)
}

// GetByHolding returns all transactions for one holding, newest first
func (r *Repository) GetByHolding(holdingID int64) ([]domain.Transaction, error) {
	return r.query(
		"SELECT "+transactionColumns+" FROM transactions WHERE holding_id = ? ORDER BY transaction_date DESC, id DESC",
		holdingID,
	)
}

// GetBySymbol returns all transactions for a symbol ordered by date ascending
func (r *Repository) GetBySymbol(symbol string) ([]domain.Transaction, error) {
	return r.query(
		"SELECT "+transactionColumns+" FROM transactions WHERE symbol = ? ORDER BY transaction_date, id",
		strings.ToUpper(strings.TrimSpace(symbol)),
	)
}

// Create inserts a new transaction and returns its ID
func (r *Repository) Create(t *domain.Transaction) (int64, error) {
	result, err := r.db.Exec(`
		INSERT INTO transactions (holding_id, symbol, transaction_type, quantity,
			price_per_share, fees, transaction_date, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.HoldingID,
		strings.ToUpper(strings.TrimSpace(t.Symbol)),
		string(t.TransactionType),
		t.Quantity,
		t.PricePerShare,
		t.Fees,
		t.TransactionDate,
		t.Notes,
		time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert transaction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get transaction id: %w", err)
	}
	return id, nil
}

// Delete removes a transaction
func (r *Repository) Delete(id int64) error {
	result, err := r.db.Exec("DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deletion: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *Repository) query(query string, args ...interface{}) ([]domain.Transaction, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	txns := []domain.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return txns, nil
}

func scanTransaction(rows *sql.Rows) (domain.Transaction, error) {
	var t domain.Transaction
	var txType string
	var notes sql.NullString
	err := rows.Scan(
		&t.ID,
		&t.HoldingID,
		&t.Symbol,
		&txType,
		&t.Quantity,
		&t.PricePerShare,
		&t.Fees,
		&t.TransactionDate,
		&notes,
		&t.CreatedAt,
	)
	if err != nil {
		return domain.Transaction{}, err
	}
	t.TransactionType = domain.TransactionType(txType)
	t.Notes = notes.String
	return t, nil
}
