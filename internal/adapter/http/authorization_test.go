package httpadapter

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"nexora/internal/adapter/memory"
	"nexora/internal/adapter/usecase"
	"nexora/internal/core/domain"
	"nexora/internal/core/port"
)

func newTestHandler(store *memory.Store) (*Handler, *usecase.AuthorizationService) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	auth := usecase.NewAuthorizationService(store, usecase.NewGate(usecase.DefaultGateLimits()), logger)
	optimizer := usecase.NewOptimizer(store, usecase.NewScorer(usecase.DefaultScoreThresholds()),
		auth, usecase.DefaultOptimizerSettings(), logger)
	campaigns := usecase.NewCampaignService(store, auth, logger)
	return NewHandler(campaigns, optimizer, auth, logger), auth
}

func pendingAuthorization(t *testing.T, auth *usecase.AuthorizationService) *domain.SpendAuthorization {
	t.Helper()
	a, err := auth.Request(context.Background(), port.SpendRequest{
		Action: domain.ActionMajorBudgetIncrease,
		Amount: decimal.NewFromInt(5000),
	})
	require.NoError(t, err)
	require.Equal(t, domain.AuthPending, a.Status)
	return a
}

func TestApproveWithoutBodyDefaultsResponder(t *testing.T) {
	store := memory.NewStore()
	h, auth := newTestHandler(store)
	a := pendingAuthorization(t, auth)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/authorizations/"+a.ID+"/approve", nil)
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)

	got, err := store.GetAuthorization(context.Background(), a.ID)
	require.NoError(t, err)
	require.Equal(t, domain.AuthApproved, got.Status)
	require.Equal(t, "user", got.ResponseBy)
}

func TestRejectWithoutBodyDefaultsResponder(t *testing.T) {
	store := memory.NewStore()
	h, auth := newTestHandler(store)
	a := pendingAuthorization(t, auth)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/authorizations/"+a.ID+"/reject", nil)
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)

	got, err := store.GetAuthorization(context.Background(), a.ID)
	require.NoError(t, err)
	require.Equal(t, domain.AuthRejected, got.Status)
	require.Equal(t, "user", got.ResponseBy)
}

func TestDecideRejectsMalformedJSON(t *testing.T) {
	store := memory.NewStore()
	h, auth := newTestHandler(store)
	a := pendingAuthorization(t, auth)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/authorizations/"+a.ID+"/approve",
		strings.NewReader("{"))
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	got, err := store.GetAuthorization(context.Background(), a.ID)
	require.NoError(t, err)
	require.Equal(t, domain.AuthPending, got.Status)
}

func TestDecideUnknownAuthorization(t *testing.T) {
	h, _ := newTestHandler(memory.NewStore())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/authorizations/missing/approve", nil)
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
