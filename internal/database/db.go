package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// DB wraps the database connection
type DB struct {
	conn *sql.DB
	path string
}

// New creates a new database connection
func New(dbPath string) (*DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Use WAL mode for better concurrency
	conn, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)

	return &DB{
		conn: conn,
		path: dbPath,
	}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying sql.DB connection
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// schema is applied idempotently on startup. Quantities and monetary
// values are stored as TEXT so decimal values round-trip exactly.
const schema = `
CREATE TABLE IF NOT EXISTS holdings (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	symbol TEXT NOT NULL UNIQUE,
	company_name TEXT,
	exchange TEXT NOT NULL,
	country TEXT NOT NULL,
	quantity TEXT NOT NULL DEFAULT '0',
	avg_purchase_price TEXT NOT NULL DEFAULT '0',
	currency TEXT NOT NULL DEFAULT 'CAD',
	first_purchase_date TEXT,
	notes TEXT,
	is_active INTEGER NOT NULL DEFAULT 1,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	holding_id INTEGER NOT NULL REFERENCES holdings(id),
	symbol TEXT NOT NULL,
	transaction_type TEXT NOT NULL CHECK (transaction_type IN ('BUY', 'SELL')),
	quantity TEXT NOT NULL,
	price_per_share TEXT NOT NULL,
	fees TEXT NOT NULL DEFAULT '0',
	transaction_date TEXT NOT NULL,
	notes TEXT,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_transactions_symbol_date
	ON transactions(symbol, transaction_date);
CREATE INDEX IF NOT EXISTS idx_transactions_holding
	ON transactions(holding_id);

CREATE TABLE IF NOT EXISTS price_cache (
	symbol TEXT PRIMARY KEY,
	price TEXT NOT NULL,
	currency TEXT NOT NULL,
	fetched_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS portfolio_snapshots (
	date TEXT PRIMARY KEY,
	total_value REAL NOT NULL,
	total_cost REAL NOT NULL,
	unrealized_pnl REAL NOT NULL,
	holding_count INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL
);
`

// Migrate creates the schema if it does not exist
func (db *DB) Migrate() error {
	if _, err := db.conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Begin starts a new transaction
func (db *DB) Begin() (*sql.Tx, error) {
	return db.conn.Begin()
}

// Exec executes a query without returning rows
func (db *DB) Exec(query string, args ...interface{}) (sql.Result, error) {
	return db.conn.Exec(query, args...)
}

// Query executes a query that returns rows
func (db *DB) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return db.conn.Query(query, args...)
}

// QueryRow executes a query that returns at most one row
func (db *DB) QueryRow(query string, args ...interface{}) *sql.Row {
	return db.conn.QueryRow(query, args...)
}
