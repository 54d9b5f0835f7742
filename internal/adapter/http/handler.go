package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"nexora/internal/core/port"
)

// Handler contains dependencies and routes. It is an inbound adapter for
// HTTP: it holds the use cases executing business logic and a logger for
// structured logging. Routes are registered on a chi.Router.
type Handler struct {
	campaigns  port.CampaignUseCase
	automation port.AutomationUseCase
	auth       port.AuthorizationUseCase
	logger     *slog.Logger
	router     chi.Router
}

// NewHandler creates a handler with all routes configured.
func NewHandler(campaigns port.CampaignUseCase, automation port.AutomationUseCase, auth port.AuthorizationUseCase, logger *slog.Logger) *Handler {
	h := &Handler{campaigns: campaigns, automation: automation, auth: auth, logger: logger}
	r := chi.NewRouter()

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/campaigns", h.handleCreateCampaign)
		r.Get("/campaigns", h.handleListCampaigns)
		r.Get("/campaigns/{id}", h.handleGetCampaign)
		r.Post("/campaigns/{id}/status", h.handleChangeStatus)
		r.Post("/campaigns/{id}/metrics", h.handleIngestMetrics)
		r.Get("/campaigns/{id}/performance", h.handlePerformance)
		r.Post("/campaigns/{id}/optimize", h.handleOptimizeOne)

		r.Post("/optimize", h.handleSweep)

		r.Get("/authorizations/pending", h.handlePendingAuthorizations)
		r.Post("/authorizations/{id}/approve", h.handleApprove)
		r.Post("/authorizations/{id}/reject", h.handleReject)

		r.Get("/reports/automation", h.handleAutomationReport)
	})
	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// encoding should rarely fail; log and move on
		h.logger.Error("encode response error", slog.Any("error", err))
	}
}
