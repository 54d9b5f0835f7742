package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"nexora/internal/core/domain"
	"nexora/internal/core/port"
)

type authorizationResponse struct {
	ID          string          `json:"id"`
	CampaignID  *string         `json:"campaign_id,omitempty"`
	Action      string          `json:"action"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Status      string          `json:"status"`
	Notes       string          `json:"notes,omitempty"`
	RequestedBy string          `json:"requested_by,omitempty"`
	RequestedAt time.Time       `json:"requested_at"`
	RespondedAt *time.Time      `json:"responded_at,omitempty"`
	ResponseBy  string          `json:"response_by,omitempty"`
}

func toAuthorizationResponse(a domain.SpendAuthorization) authorizationResponse {
	return authorizationResponse{
		ID:          a.ID,
		CampaignID:  a.CampaignID,
		Action:      string(a.Action),
		Amount:      a.Amount,
		Currency:    a.Currency,
		Status:      string(a.Status),
		Notes:       a.Notes,
		RequestedBy: a.RequestedBy,
		RequestedAt: a.RequestedAt,
		RespondedAt: a.RespondedAt,
		ResponseBy:  a.ResponseBy,
	}
}

// handlePendingAuthorizations lists undecided spend requests, newest
// first. Pending requests have no expiry; stale ones stay visible here.
func (h *Handler) handlePendingAuthorizations(w http.ResponseWriter, r *http.Request) {
	items, err := h.auth.ListPending(r.Context())
	if err != nil {
		h.logger.Error("list pending authorizations error", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	out := make([]authorizationResponse, 0, len(items))
	for _, a := range items {
		out = append(out, toAuthorizationResponse(a))
	}
	h.writeJSON(w, http.StatusOK, out)
}

type decisionBody struct {
	Responder string `json:"responder"`
	Reason    string `json:"reason"`
}

// handleApprove resolves a pending request positively. Deciding an
// already resolved request returns HTTP 409.
func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, true)
}

// handleReject resolves a pending request negatively with a reason.
func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, false)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, approve bool) {
	id := chi.URLParam(r, "id")
	var body decisionBody
	// an empty body is a valid decision with the default responder
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if body.Responder == "" {
		body.Responder = "user"
	}

	var err error
	if approve {
		err = h.auth.Approve(r.Context(), id, body.Responder)
	} else {
		err = h.auth.Reject(r.Context(), id, body.Responder, body.Reason)
	}
	switch {
	case errors.Is(err, port.ErrAuthorizationNotFound):
		http.NotFound(w, r)
	case errors.Is(err, port.ErrAlreadyResolved):
		http.Error(w, err.Error(), http.StatusConflict)
	case err != nil:
		h.logger.Error("decide authorization error", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleAutomationReport aggregates automation activity over a trailing
// ?days= window (default 7).
func (h *Handler) handleAutomationReport(w http.ResponseWriter, r *http.Request) {
	days := 7
	if v := r.URL.Query().Get("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			http.Error(w, "invalid days", http.StatusBadRequest)
			return
		}
		days = parsed
	}
	report, err := h.auth.Report(r.Context(), days)
	if err != nil {
		h.logger.Error("automation report error", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}
