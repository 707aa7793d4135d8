package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/finai/folio/internal/domain"
)

// MarketHandlers exposes raw market data endpoints. Unlike the valuation
// paths, a failed lookup here surfaces to the caller: the endpoint exists to
// inspect the quote provider directly.
type MarketHandlers struct {
	quotes domain.QuoteClient
	log    zerolog.Logger
}

// NewMarketHandlers creates market data handlers
func NewMarketHandlers(quotes domain.QuoteClient, log zerolog.Logger) *MarketHandlers {
	return &MarketHandlers{
		quotes: quotes,
		log:    log.With().Str("handler", "market").Logger(),
	}
}

// Routes mounts the market endpoints on a chi router
func (h *MarketHandlers) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/quote/{ticker}", h.HandleGetQuote)
	return r
}

// HandleGetQuote fetches a live quote for one ticker
func (h *MarketHandlers) HandleGetQuote(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	quote, err := h.quotes.GetQuote(r.Context(), ticker)
	if err != nil {
		h.log.Warn().Err(err).Str("ticker", ticker).Msg("Quote lookup failed")
		h.writeJSON(w, http.StatusBadGateway, map[string]interface{}{
			"success": false,
			"message": "Quote unavailable for " + ticker,
			"error":   err.Error(),
		})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Quote fetched successfully",
		"data":    quote,
	})
}

func (h *MarketHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
