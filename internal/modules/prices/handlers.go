package prices

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

// Handlers contains HTTP handlers for the prices API
type Handlers struct {
	service *Service
	log     zerolog.Logger
}

// NewHandlers creates a new prices handlers instance
func NewHandlers(service *Service, log zerolog.Logger) *Handlers {
	return &Handlers{
		service: service,
		log:     log.With().Str("handler", "prices").Logger(),
	}
}

// HandleList returns the current price cache
// GET /api/prices
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	cached, err := h.service.GetAll()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list prices")
		http.Error(w, "Failed to list prices", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, cached)
}

// HandleRefresh fetches fresh quotes for all active holdings
// POST /api/prices/refresh
func (h *Handlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.RefreshAll()
	if err != nil {
		h.log.Error().Err(err).Msg("Price refresh failed")
		http.Error(w, "Price refresh failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
