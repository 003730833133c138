package portfolio

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Repository handles portfolio snapshot database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new portfolio snapshot repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "portfolio").Logger(),
	}
}

const snapshotColumns = "date, total_value, total_cost, unrealized_pnl, holding_count"

// Upsert inserts or replaces the snapshot for its date
func (r *Repository) Upsert(s Snapshot) error {
	_, err := r.db.Exec(`
		INSERT OR REPLACE INTO portfolio_snapshots
		(date, total_value, total_cost, unrealized_pnl, holding_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		s.Date,
		s.TotalValue,
		s.TotalCost,
		s.UnrealizedPnL,
		s.HoldingCount,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}

	r.log.Debug().Str("date", s.Date).Msg("Portfolio snapshot stored")
	return nil
}

// GetHistory returns the last N daily snapshots, oldest first
func (r *Repository) GetHistory(days int) ([]Snapshot, error) {
	rows, err := r.db.Query(`
		SELECT `+snapshotColumns+` FROM (
			SELECT `+snapshotColumns+` FROM portfolio_snapshots
			ORDER BY date DESC LIMIT ?
		) ORDER BY date ASC`, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio history: %w", err)
	}
	defer rows.Close()

	snapshots := []Snapshot{}
	for rows.Next() {
		var s Snapshot
		if err := rows.Scan(&s.Date, &s.TotalValue, &s.TotalCost, &s.UnrealizedPnL, &s.HoldingCount); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}
	return snapshots, nil
}

// DeleteBefore deletes snapshots older than the date, returning the count
func (r *Repository) DeleteBefore(date string) (int64, error) {
	result, err := r.db.Exec("DELETE FROM portfolio_snapshots WHERE date < ?", date)
	if err != nil {
		return 0, fmt.Errorf("failed to delete snapshots: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check deletion: %w", err)
	}
	if affected > 0 {
		r.log.Info().Str("before_date", date).Int64("count", affected).Msg("Portfolio snapshots deleted")
	}
	return affected, nil
}
