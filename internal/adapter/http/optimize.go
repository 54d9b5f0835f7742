package httpadapter

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"nexora/internal/core/port"
)

// handleOptimizeOne runs one optimization pass over a single campaign and
// returns the decisions it took. Persistence failures during application
// show up inside the result, not as an HTTP error.
func (h *Handler) handleOptimizeOne(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res, err := h.automation.AutoOptimize(r.Context(), id)
	if errors.Is(err, port.ErrCampaignNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.logger.Error("optimize error", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

// handleSweep triggers a batch sweep over all active campaigns. The sweep
// always completes and reports per-campaign outcomes; an overlapping
// trigger returns HTTP 409.
func (h *Handler) handleSweep(w http.ResponseWriter, r *http.Request) {
	items, err := h.automation.OptimizeAllActive(r.Context())
	if errors.Is(err, port.ErrSweepInProgress) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		h.logger.Error("sweep error", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, struct {
		Campaigns int              `json:"campaigns"`
		Results   []port.SweepItem `json:"results"`
	}{len(items), items})
}

// handlePerformance returns the read-only score report for a campaign.
func (h *Handler) handlePerformance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	report, err := h.automation.Performance(r.Context(), id)
	if errors.Is(err, port.ErrCampaignNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.logger.Error("performance error", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}
