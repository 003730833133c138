package transactions

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/arniesaha/portfolio-tracker/internal/domain"
)

// Handlers contains HTTP handlers for the transactions API
type Handlers struct {
	repo    *Repository
	service *Service
	log     zerolog.Logger
}

// NewHandlers creates a new transactions handlers instance
func NewHandlers(repo *Repository, service *Service, log zerolog.Logger) *Handlers {
	return &Handlers{
		repo:    repo,
		service: service,
		log:     log.With().Str("handler", "transactions").Logger(),
	}
}

// HandleList returns transactions with optional filters
// GET /api/transactions?holding_id=&transaction_type=&start_date=&end_date=&skip=&limit=
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := Filter{
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
	}
	if raw := q.Get("holding_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.HoldingID = id
		}
	}
	if raw := q.Get("transaction_type"); raw != "" {
		filter.TransactionType = domain.TransactionType(strings.ToUpper(raw))
	}
	if raw := q.Get("skip"); raw != "" {
		if skip, err := strconv.Atoi(raw); err == nil {
			filter.Offset = skip
		}
	}
	if raw := q.Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			filter.Limit = limit
		}
	}

	txns, err := h.repo.List(filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list transactions")
		http.Error(w, "Failed to list transactions", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, txns)
}

// HandleListByHolding returns all transactions for one holding
// GET /api/transactions/holding/{id}
func (h *Handlers) HandleListByHolding(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid holding id", http.StatusBadRequest)
		return
	}

	txns, err := h.repo.GetByHolding(id)
	if err != nil {
		h.log.Error().Err(err).Int64("holding_id", id).Msg("Failed to list transactions")
		http.Error(w, "Failed to list transactions", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, txns)
}

// transactionRequest is the create payload
type transactionRequest struct {
	HoldingID       int64           `json:"holding_id"`
	Symbol          string          `json:"symbol"`
	TransactionType string          `json:"transaction_type"`
	Quantity        decimal.Decimal `json:"quantity"`
	PricePerShare   decimal.Decimal `json:"price_per_share"`
	Fees            decimal.Decimal `json:"fees"`
	TransactionDate string          `json:"transaction_date"`
	Notes           string          `json:"notes"`
}

// HandleCreate records a new transaction
// POST /api/transactions
func (h *Handlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	txn := &domain.Transaction{
		HoldingID:       req.HoldingID,
		Symbol:          strings.ToUpper(strings.TrimSpace(req.Symbol)),
		TransactionType: domain.TransactionType(strings.ToUpper(req.TransactionType)),
		Quantity:        req.Quantity,
		PricePerShare:   req.PricePerShare,
		Fees:            req.Fees,
		TransactionDate: req.TransactionDate,
		Notes:           req.Notes,
	}

	if err := h.service.Create(txn); err != nil {
		var verr *ValidationError
		switch {
		case errors.As(err, &verr):
			http.Error(w, verr.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrHoldingNotFound):
			http.Error(w, "Holding not found", http.StatusNotFound)
		case errors.Is(err, ErrSymbolMismatch):
			http.Error(w, "Symbol does not match holding", http.StatusBadRequest)
		case errors.Is(err, ErrInsufficientShares):
			http.Error(w, "Cannot sell more shares than held", http.StatusBadRequest)
		default:
			h.log.Error().Err(err).Str("symbol", txn.Symbol).Msg("Failed to create transaction")
			http.Error(w, "Failed to create transaction", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, txn)
}

// HandleDelete removes a transaction
// DELETE /api/transactions/{id}
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return
	}

	if err := h.repo.Delete(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Transaction not found", http.StatusNotFound)
			return
		}
		h.log.Error().Err(err).Int64("id", id).Msg("Failed to delete transaction")
		http.Error(w, "Failed to delete transaction", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleVerify replays a symbol's transactions and reconciles the result
// against the stored holding
// GET /api/transactions/verify/{symbol}
func (h *Handlers) HandleVerify(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "symbol")))
	if symbol == "" {
		http.Error(w, "Symbol is required", http.StatusBadRequest)
		return
	}

	result, err := h.service.Verify(symbol)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Verification failed")
		http.Error(w, "Verification failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
