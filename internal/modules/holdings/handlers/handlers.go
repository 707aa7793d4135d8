// Package handlers provides HTTP handlers for investment management.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/finai/folio/internal/domain"
	"github.com/finai/folio/internal/modules/holdings"
)

// Handler handles investment HTTP requests
type Handler struct {
	service *holdings.Service
	log     zerolog.Logger
}

// NewHandler creates a new investments handler
func NewHandler(service *holdings.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "investments").Logger(),
	}
}

// Routes mounts the investment endpoints on a chi router
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/{userID}", h.HandleListInvestments)
	r.Post("/{userID}", h.HandleAddInvestment)
	r.Get("/{userID}/holdings", h.HandleAggregatedHoldings)
	r.Get("/{userID}/holdings/{platformID}", h.HandlePlatformHoldings)
	r.Post("/{userID}/connect", h.HandleConnectAccount)
	r.Delete("/{userID}/investments/{investmentID}", h.HandleRemoveInvestment)
	r.Get("/{userID}/summary/live", h.HandlePortfolioSummary)
	r.Get("/{userID}/chart-data", h.HandleChartData)

	return r
}

// HandleListInvestments returns the owner's holdings, live-priced
func (h *Handler) HandleListInvestments(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "userID")

	investments, err := h.service.ListInvestments(r.Context(), owner)
	if err != nil {
		h.writeServiceError(w, err, "Error fetching investments")
		return
	}

	message := "Investments fetched successfully"
	if len(investments) == 0 {
		message = "No investments found for this user"
	}
	h.writeSuccess(w, http.StatusOK, message, investments)
}

// HandleAddInvestment creates a new holding for the owner
func (h *Handler) HandleAddInvestment(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "userID")

	var input holdings.AddInvestmentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.service.AddInvestment(owner, input)
	if err != nil {
		h.writeServiceError(w, err, "Error adding investment")
		return
	}

	h.writeSuccess(w, http.StatusCreated, "Investment added successfully", created)
}

// HandleAggregatedHoldings returns per-platform aggregates of stored values
func (h *Handler) HandleAggregatedHoldings(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "userID")

	aggregate, err := h.service.AggregatedHoldings(owner)
	if err != nil {
		h.writeServiceError(w, err, "Error fetching holdings")
		return
	}

	message := "Aggregated holdings fetched successfully"
	if len(aggregate) == 0 {
		message = "No holdings found"
	}
	h.writeSuccess(w, http.StatusOK, message, aggregate)
}

// HandlePlatformHoldings returns the owner's holdings on one platform
func (h *Handler) HandlePlatformHoldings(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "userID")
	platform := chi.URLParam(r, "platformID")

	found, err := h.service.PlatformHoldings(owner, platform)
	if err != nil {
		h.writeServiceError(w, err, "Error fetching platform holdings")
		return
	}

	message := "Platform holdings fetched successfully"
	if len(found) == 0 {
		message = "No holdings found for platform " + platform
	}
	h.writeSuccess(w, http.StatusOK, message, found)
}

// connectRequest is the body of a platform account link request
type connectRequest struct {
	Platform  string `json:"platform"`
	AccountID string `json:"accountId"`
}

// HandleConnectAccount links a brokerage account to the owner
func (h *Handler) HandleConnectAccount(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "userID")

	var req connectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.ConnectAccount(owner, req.Platform, req.AccountID); err != nil {
		h.writeServiceError(w, err, "Error connecting investment account")
		return
	}

	h.writeSuccess(w, http.StatusOK, req.Platform+" account linked successfully", nil)
}

// HandleRemoveInvestment deletes an owner-scoped holding
func (h *Handler) HandleRemoveInvestment(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "userID")
	investmentID := chi.URLParam(r, "investmentID")

	if _, err := h.service.RemoveInvestment(owner, investmentID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "Investment not found or not owned by user")
			return
		}
		h.writeServiceError(w, err, "Error removing investment")
		return
	}

	h.writeSuccess(w, http.StatusOK, "Investment removed successfully", nil)
}

// HandlePortfolioSummary returns the live-priced portfolio roll-up
func (h *Handler) HandlePortfolioSummary(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "userID")

	summary, err := h.service.PortfolioSummary(r.Context(), owner)
	if err != nil {
		h.writeServiceError(w, err, "Error fetching portfolio summary")
		return
	}

	h.writeSuccess(w, http.StatusOK, "Portfolio summary fetched successfully", summary)
}

// HandleChartData returns chart buckets over stored values
func (h *Handler) HandleChartData(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "userID")

	buckets, err := h.service.ChartData(owner)
	if err != nil {
		h.writeServiceError(w, err, "Error generating chart data")
		return
	}

	h.writeSuccess(w, http.StatusOK, "Chart data generated successfully", buckets)
}

// envelope is the response shape shared by all investment endpoints
type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// writeServiceError maps a service error onto the HTTP status taxonomy:
// validation errors are 400s, missing records 404s, store failures 500s.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error, message string) {
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		h.writeError(w, http.StatusBadRequest, validationErr.Error())
	case errors.Is(err, domain.ErrNotFound):
		h.writeError(w, http.StatusNotFound, message)
	default:
		h.log.Error().Err(err).Msg(message)
		h.writeErrorWithDetail(w, http.StatusInternalServerError, message, err.Error())
	}
}

func (h *Handler) writeSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	h.writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, envelope{Success: false, Message: message})
}

func (h *Handler) writeErrorWithDetail(w http.ResponseWriter, status int, message, detail string) {
	h.writeJSON(w, status, envelope{Success: false, Message: message, Error: detail})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
