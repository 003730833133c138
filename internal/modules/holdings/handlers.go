package holdings

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/arniesaha/portfolio-tracker/internal/domain"
)

// Handlers contains HTTP handlers for the holdings API
type Handlers struct {
	repo *Repository
	log  zerolog.Logger
}

// NewHandlers creates a new holdings handlers instance
func NewHandlers(repo *Repository, log zerolog.Logger) *Handlers {
	return &Handlers{
		repo: repo,
		log:  log.With().Str("handler", "holdings").Logger(),
	}
}

// holdingRequest is the create/update payload
type holdingRequest struct {
	Symbol            string          `json:"symbol"`
	CompanyName       string          `json:"company_name"`
	Exchange          string          `json:"exchange"`
	Country           string          `json:"country"`
	Quantity          decimal.Decimal `json:"quantity"`
	AvgPurchasePrice  decimal.Decimal `json:"avg_purchase_price"`
	Currency          string          `json:"currency"`
	FirstPurchaseDate string          `json:"first_purchase_date"`
	Notes             string          `json:"notes"`
}

func (req *holdingRequest) validate() string {
	if strings.TrimSpace(req.Symbol) == "" {
		return "symbol is required"
	}
	if req.Exchange == "" {
		return "exchange is required"
	}
	if req.Country == "" {
		return "country is required"
	}
	if req.Quantity.IsNegative() {
		return "quantity must not be negative"
	}
	if req.AvgPurchasePrice.IsNegative() {
		return "avg_purchase_price must not be negative"
	}
	if req.FirstPurchaseDate != "" {
		if _, err := time.Parse("2006-01-02", req.FirstPurchaseDate); err != nil {
			return "first_purchase_date must be YYYY-MM-DD"
		}
	}
	return ""
}

// HandleList returns all active holdings
// GET /api/holdings
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	holdings, err := h.repo.GetAllActive()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list holdings")
		http.Error(w, "Failed to list holdings", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, holdings)
}

// HandleGet returns one holding
// GET /api/holdings/{id}
func (h *Handlers) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	holding, err := h.repo.GetByID(id)
	if err != nil {
		h.log.Error().Err(err).Int64("id", id).Msg("Failed to get holding")
		http.Error(w, "Failed to get holding", http.StatusInternalServerError)
		return
	}
	if holding == nil {
		http.Error(w, "Holding not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, holding)
}

// HandleCreate creates a new holding
// POST /api/holdings
func (h *Handlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req holdingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if msg := req.validate(); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if existing, err := h.repo.GetBySymbol(symbol); err != nil {
		h.log.Error().Err(err).Msg("Failed to check existing holding")
		http.Error(w, "Failed to create holding", http.StatusInternalServerError)
		return
	} else if existing != nil {
		http.Error(w, "Holding already exists for symbol "+symbol, http.StatusConflict)
		return
	}

	holding := &domain.Holding{
		Symbol:            symbol,
		CompanyName:       req.CompanyName,
		Exchange:          req.Exchange,
		Country:           req.Country,
		Quantity:          req.Quantity,
		AvgPurchasePrice:  req.AvgPurchasePrice,
		Currency:          defaultCurrency(req.Currency),
		FirstPurchaseDate: req.FirstPurchaseDate,
		Notes:             req.Notes,
		IsActive:          true,
	}

	id, err := h.repo.Create(holding)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to create holding")
		http.Error(w, "Failed to create holding", http.StatusInternalServerError)
		return
	}
	holding.ID = id

	writeJSON(w, http.StatusCreated, holding)
}

// HandleUpdate overwrites a holding's fields
// PUT /api/holdings/{id}
func (h *Handlers) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	holding, err := h.repo.GetByID(id)
	if err != nil {
		h.log.Error().Err(err).Int64("id", id).Msg("Failed to get holding")
		http.Error(w, "Failed to update holding", http.StatusInternalServerError)
		return
	}
	if holding == nil {
		http.Error(w, "Holding not found", http.StatusNotFound)
		return
	}

	var req holdingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if msg := req.validate(); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	holding.CompanyName = req.CompanyName
	holding.Exchange = req.Exchange
	holding.Country = req.Country
	holding.Quantity = req.Quantity
	holding.AvgPurchasePrice = req.AvgPurchasePrice
	holding.Currency = defaultCurrency(req.Currency)
	holding.FirstPurchaseDate = req.FirstPurchaseDate
	holding.Notes = req.Notes

	if err := h.repo.Update(holding); err != nil {
		h.log.Error().Err(err).Int64("id", id).Msg("Failed to update holding")
		http.Error(w, "Failed to update holding", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, holding)
}

// HandleDelete soft-deletes a holding
// DELETE /api/holdings/{id}
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.repo.Deactivate(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Holding not found", http.StatusNotFound)
			return
		}
		h.log.Error().Err(err).Int64("id", id).Msg("Failed to delete holding")
		http.Error(w, "Failed to delete holding", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func defaultCurrency(currency string) string {
	if currency == "" {
		return "CAD"
	}
	return strings.ToUpper(currency)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
