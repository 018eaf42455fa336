package oauth

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/2beens/healthzones/internal/providers"
	"github.com/2beens/healthzones/internal/telemetry/tracing"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/oauth2"
)

type tokenSaver interface {
	SaveOAuthToken(ctx context.Context, provider providers.Name, token *oauth2.Token) error
}

type Handler struct {
	registry   Registry
	states     *StateStore
	tokens     tokenSaver
	httpClient *http.Client

	verifierFunc func() string
}

func NewHandler(
	registry Registry,
	states *StateStore,
	tokens tokenSaver,
	httpClient *http.Client,
) *Handler {
	return &Handler{
		registry:   registry,
		states:     states,
		tokens:     tokens,
		httpClient: httpClient,

		verifierFunc: oauth2.GenerateVerifier,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/oauth/{provider}/authorize", handler.handleAuthorize).Methods("GET").Name("oauth-authorize")
	router.HandleFunc("/oauth/{provider}/callback", handler.handleCallback).Methods("GET").Name("oauth-callback")
}

func (handler *Handler) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "oauthHandler.authorize")
	defer span.End()

	provider, err := handler.registry.Get(mux.Vars(r)["provider"])
	if err != nil {
		http.Error(w, "unknown or unconfigured provider", http.StatusNotFound)
		return
	}
	span.SetAttributes(attribute.String("provider", string(provider.Name)))

	var verifier string
	var opts []oauth2.AuthCodeOption
	if provider.UsePKCE {
		verifier = handler.verifierFunc()
		opts = append(opts, oauth2.S256ChallengeOption(verifier))
	}

	state, err := handler.states.Begin(ctx, provider.Name, verifier)
	if err != nil {
		log.Errorf("oauth authorize %s: %s", provider.Name, err)
		http.Error(w, "failed to start authorization", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, provider.Config.AuthCodeURL(state, opts...), http.StatusFound)
}

func (handler *Handler) handleCallback(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "oauthHandler.callback")
	defer span.End()

	provider, err := handler.registry.Get(mux.Vars(r)["provider"])
	if err != nil {
		http.Error(w, "unknown or unconfigured provider", http.StatusNotFound)
		return
	}
	span.SetAttributes(attribute.String("provider", string(provider.Name)))

	query := r.URL.Query()
	if providerErr := query.Get("error"); providerErr != "" {
		log.Warnf("oauth callback %s: provider error: %s", provider.Name, providerErr)
		redirectHome(w, r, "error", providerErr)
		return
	}

	code := query.Get("code")
	if code == "" {
		redirectHome(w, r, "error", "no_code")
		return
	}

	verifier, err := handler.states.Take(ctx, provider.Name, query.Get("state"))
	if err != nil {
		if !errors.Is(err, ErrStateMismatch) {
			log.Errorf("oauth callback %s: %s", provider.Name, err)
		}
		redirectHome(w, r, "error", "state_mismatch")
		return
	}

	var opts []oauth2.AuthCodeOption
	if verifier != "" {
		opts = append(opts, oauth2.VerifierOption(verifier))
	}
	if handler.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, handler.httpClient)
	}

	token, err := provider.Config.Exchange(ctx, code, opts...)
	if err != nil {
		log.Errorf("oauth callback %s: exchange code: %s", provider.Name, err)
		redirectHome(w, r, "error", "token_failed")
		return
	}

	if err := handler.tokens.SaveOAuthToken(ctx, provider.Name, token); err != nil {
		log.Errorf("oauth callback %s: save token: %s", provider.Name, err)
		redirectHome(w, r, "error", "save_failed")
		return
	}

	log.Printf("oauth: %s connected", provider.Name)
	redirectHome(w, r, "connected", string(provider.Name))
}

func redirectHome(w http.ResponseWriter, r *http.Request, key, value string) {
	http.Redirect(w, r, "/?"+url.Values{key: {value}}.Encode(), http.StatusFound)
}
