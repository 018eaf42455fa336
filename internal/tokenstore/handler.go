package tokenstore

import (
	"net/http"
	"time"

	"github.com/2beens/healthzones/internal/providers"
	"github.com/2beens/healthzones/internal/telemetry/tracing"
	"github.com/2beens/healthzones/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{
		store: store,
	}
}

// SetupRoutes registers the token endpoints. /cron/* is guarded by the cron secret in the auth middleware.
func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/cron/refresh-tokens", handler.handleRefreshTokens).Methods("GET", "POST").Name("cron-refresh-tokens")
	router.HandleFunc("/tokens/status", handler.handleStatus).Methods("GET", "OPTIONS").Name("tokens-status")
}

type refreshResponse struct {
	Success     bool                      `json:"success"`
	RefreshedAt time.Time                 `json:"refreshed_at"`
	Results     map[providers.Name]string `json:"results"`
}

func (handler *Handler) handleRefreshTokens(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "tokensHandler.refresh")
	defer span.End()

	results := handler.store.RefreshAll(ctx)
	log.Debugf("cron token refresh: %v", results)

	pkg.WriteJSON(w, refreshResponse{
		Success:     true,
		RefreshedAt: time.Now().UTC(),
		Results:     results,
	}, http.StatusOK)
}

type providerStatus struct {
	Connected bool       `json:"connected"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Expired   bool       `json:"expired"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func (handler *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "tokensHandler.status")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "GET, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	tokens, err := handler.store.Status(ctx)
	if err != nil {
		log.Errorf("get tokens status: %s", err)
		http.Error(w, "failed to get tokens status", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	resp := make(map[providers.Name]providerStatus, len(tokens))
	for p, token := range tokens {
		if token == nil {
			resp[p] = providerStatus{}
			continue
		}
		updatedAt := token.UpdatedAt
		resp[p] = providerStatus{
			Connected: true,
			ExpiresAt: token.ExpiresAt,
			Expired:   token.ExpiresWithin(now, 0),
			UpdatedAt: &updatedAt,
		}
	}

	pkg.WriteJSON(w, resp, http.StatusOK)
}
