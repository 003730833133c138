package portfolio

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
)

// defaultHistoryDays is the snapshot window when none is requested
const defaultHistoryDays = 90

// Handlers contains HTTP handlers for the portfolio API
type Handlers struct {
	service *Service
	log     zerolog.Logger
}

// NewHandlers creates a new portfolio handlers instance
func NewHandlers(service *Service, log zerolog.Logger) *Handlers {
	return &Handlers{
		service: service,
		log:     log.With().Str("handler", "portfolio").Logger(),
	}
}

// HandleSummary returns the portfolio valued at the latest cached quotes
// GET /api/portfolio/summary
func (h *Handlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build portfolio summary")
		http.Error(w, "Failed to build portfolio summary", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// HandleAllocation returns the allocation breakdown by country and
// exchange plus the largest holdings
// GET /api/portfolio/allocation
func (h *Handlers) HandleAllocation(w http.ResponseWriter, r *http.Request) {
	allocation, err := h.service.Allocation()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build allocation breakdown")
		http.Error(w, "Failed to build allocation breakdown", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, allocation)
}

// HandleHistory returns the snapshot history with risk metrics
// GET /api/portfolio/history?days=90
func (h *Handlers) HandleHistory(w http.ResponseWriter, r *http.Request) {
	days := defaultHistoryDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "days must be a positive integer", http.StatusBadRequest)
			return
		}
		days = parsed
	}

	history, err := h.service.History(days)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load portfolio history")
		http.Error(w, "Failed to load portfolio history", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

// HandleSnapshot values the portfolio and stores today's snapshot
// POST /api/portfolio/snapshot
func (h *Handlers) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.TakeSnapshot()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to take snapshot")
		http.Error(w, "Failed to take snapshot", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, snapshot)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
