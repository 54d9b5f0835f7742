package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"nexora/internal/core/domain"
	"nexora/internal/core/port"
)

type createCampaignBody struct {
	Name        string          `json:"name"`
	Platform    string          `json:"platform"`
	Objective   string          `json:"objective"`
	DailyBudget decimal.Decimal `json:"daily_budget"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     time.Time       `json:"end_date"`
	CreatedBy   string          `json:"created_by"`
}

type campaignResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Platform    string          `json:"platform"`
	Status      string          `json:"status"`
	Objective   string          `json:"objective"`
	DailyBudget decimal.Decimal `json:"daily_budget"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     time.Time       `json:"end_date"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func toCampaignResponse(c domain.Campaign) campaignResponse {
	return campaignResponse{
		ID:          c.ID,
		Name:        c.Name,
		Platform:    string(c.Platform),
		Status:      string(c.Status),
		Objective:   string(c.Objective),
		DailyBudget: c.DailyBudget,
		StartDate:   c.StartDate,
		EndDate:     c.EndDate,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// handleCreateCampaign creates a campaign. Creation passes the
// authorization gate with the daily budget as the amount, so the response
// includes the resulting authorization: auto-approved creations come back
// active, gated ones stay in draft.
func (h *Handler) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var body createCampaignBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	res, err := h.campaigns.Create(r.Context(), port.CreateCampaignRequest{
		Name:        body.Name,
		Platform:    domain.Platform(body.Platform),
		Objective:   domain.Objective(body.Objective),
		DailyBudget: body.DailyBudget,
		StartDate:   body.StartDate,
		EndDate:     body.EndDate,
		CreatedBy:   body.CreatedBy,
	})
	if errors.Is(err, port.ErrInvalidCampaign) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		h.logger.Error("create campaign error", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusCreated, struct {
		Campaign      campaignResponse      `json:"campaign"`
		Authorization authorizationResponse `json:"authorization"`
	}{toCampaignResponse(res.Campaign), toAuthorizationResponse(res.Authorization)})
}

// handleGetCampaign returns one campaign by its {id} path parameter.
func (h *Handler) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	c, err := h.campaigns.Get(r.Context(), id)
	if errors.Is(err, port.ErrCampaignNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.logger.Error("get campaign error", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, toCampaignResponse(*c))
}

// handleListCampaigns lists campaigns, optionally filtered by ?status=.
func (h *Handler) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	filter := port.CampaignFilter{Status: domain.Status(r.URL.Query().Get("status"))}
	items, err := h.campaigns.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list campaigns error", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	out := make([]campaignResponse, 0, len(items))
	for _, c := range items {
		out = append(out, toCampaignResponse(c))
	}
	h.writeJSON(w, http.StatusOK, out)
}

type changeStatusBody struct {
	Status string `json:"status"`
	Actor  string `json:"actor"`
	Reason string `json:"reason"`
}

// handleChangeStatus performs a manual lifecycle move. Illegal
// transitions (e.g. resurrecting a deleted campaign) return HTTP 409.
func (h *Handler) handleChangeStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body changeStatusBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	err := h.campaigns.ChangeStatus(r.Context(), id, domain.Status(body.Status), body.Actor, body.Reason)
	switch {
	case errors.Is(err, port.ErrCampaignNotFound):
		http.NotFound(w, r)
	case errors.Is(err, port.ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	case err != nil:
		h.logger.Error("change status error", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

type snapshotBody struct {
	Date        time.Time       `json:"date"`
	Impressions int64           `json:"impressions"`
	Clicks      int64           `json:"clicks"`
	Conversions int64           `json:"conversions"`
	Spend       decimal.Decimal `json:"spend"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// handleIngestMetrics stores one daily metric snapshot for a campaign.
// Snapshots are immutable: a second write for the same day returns 409.
func (h *Handler) handleIngestMetrics(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body snapshotBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	err := h.campaigns.IngestSnapshot(r.Context(), domain.MetricSnapshot{
		CampaignID:  id,
		Date:        body.Date,
		Impressions: body.Impressions,
		Clicks:      body.Clicks,
		Conversions: body.Conversions,
		Spend:       body.Spend,
		Revenue:     body.Revenue,
	})
	switch {
	case errors.Is(err, port.ErrInvalidSnapshot):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, port.ErrCampaignNotFound):
		http.NotFound(w, r)
	case errors.Is(err, port.ErrDuplicateSnapshot):
		http.Error(w, err.Error(), http.StatusConflict)
	case err != nil:
		h.logger.Error("ingest metrics error", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusCreated)
	}
}
