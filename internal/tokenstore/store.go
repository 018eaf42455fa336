package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/2beens/healthzones/internal/providers"
	"github.com/2beens/healthzones/internal/telemetry/metrics"
	"github.com/2beens/healthzones/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

const DefaultRefreshBuffer = 5 * time.Minute

var (
	ErrRefreshUnavailable = errors.New("token expired and no refresh token available")
	ErrNoOAuthConfig      = errors.New("no oauth config for provider")
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=tokenstore_test

type tokensRepo interface {
	Get(ctx context.Context, provider providers.Name) (*Token, error)
	Save(ctx context.Context, token *Token) error
	Delete(ctx context.Context, provider providers.Name) error
}

type refresher interface {
	Refresh(ctx context.Context, provider providers.Name, refreshToken string) (*oauth2.Token, error)
}

// BootstrapToken is a token pair taken from the environment, used only
// until the first token for the provider is stored.
type BootstrapToken struct {
	AccessToken  string
	RefreshToken string
}

type Store struct {
	repo           tokensRepo
	refresher      refresher
	bootstrap      map[providers.Name]BootstrapToken
	refreshBuffer  time.Duration
	metricsManager *metrics.Manager
	now            func() time.Time

	// refresh tokens are single use, so one refresh per provider may be in flight
	refreshGroup singleflight.Group
}

func NewStore(
	repo tokensRepo,
	refresher refresher,
	bootstrap map[providers.Name]BootstrapToken,
	refreshBuffer time.Duration,
	metricsManager *metrics.Manager,
) *Store {
	if refreshBuffer <= 0 {
		refreshBuffer = DefaultRefreshBuffer
	}
	if bootstrap == nil {
		bootstrap = map[providers.Name]BootstrapToken{}
	}
	return &Store{
		repo:           repo,
		refresher:      refresher,
		bootstrap:      bootstrap,
		refreshBuffer:  refreshBuffer,
		metricsManager: metricsManager,
		now:            time.Now,
	}
}

// ValidAccessToken returns an access token that stays valid for at least the
// refresh buffer, refreshing and persisting it when needed.
func (s *Store) ValidAccessToken(ctx context.Context, provider providers.Name) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "tokenStore.validAccessToken")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	token, err := s.repo.Get(ctx, provider)
	if errors.Is(err, ErrTokenNotFound) {
		return s.fromBootstrap(ctx, provider)
	}
	if err != nil {
		return "", err
	}

	if !token.ExpiresWithin(s.now(), s.refreshBuffer) {
		return token.AccessToken, nil
	}

	log.Debugf("%s token expiring at %s, refreshing", provider, token.ExpiresAt)
	refreshed, err := s.sharedRefresh(ctx, provider, false)
	if err != nil {
		return "", err
	}
	return refreshed.AccessToken, nil
}

// Refresh forces a token refresh regardless of the stored expiry.
func (s *Store) Refresh(ctx context.Context, provider providers.Name) (*Token, error) {
	return s.sharedRefresh(ctx, provider, true)
}

// sharedRefresh runs at most one refresh per provider at a time, callers arriving
// meanwhile share its result. The token is read again inside the flight so a
// rotated refresh token is never sent twice.
func (s *Store) sharedRefresh(ctx context.Context, provider providers.Name, force bool) (*Token, error) {
	// the flight outlives any single caller's cancellation
	flightCtx := context.WithoutCancel(ctx)
	v, err, shared := s.refreshGroup.Do(string(provider), func() (any, error) {
		token, err := s.repo.Get(flightCtx, provider)
		if err != nil {
			return nil, err
		}
		if !force && !token.ExpiresWithin(s.now(), s.refreshBuffer) {
			return token, nil
		}
		if token.RefreshToken == "" {
			log.Errorf("%s token expired and no refresh token available", provider)
			return nil, ErrRefreshUnavailable
		}
		return s.refresh(flightCtx, provider, token.RefreshToken)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		log.Tracef("%s token refresh shared between callers", provider)
	}
	return v.(*Token), nil
}

// RefreshAll makes sure every provider holds a token that outlives the refresh
// buffer and reports the outcome per provider: ok, no_token or the error.
func (s *Store) RefreshAll(ctx context.Context) map[providers.Name]string {
	results := make(map[providers.Name]string, len(providers.All))
	for _, p := range providers.All {
		_, err := s.ValidAccessToken(ctx, p)
		switch {
		case err == nil:
			results[p] = "ok"
		case errors.Is(err, ErrTokenNotFound):
			results[p] = "no_token"
		default:
			log.Errorf("refresh %s token: %s", p, err)
			results[p] = fmt.Sprintf("error: %s", err)
		}
	}
	return results
}

// SaveOAuthToken stores a token obtained from an authorization code exchange.
func (s *Store) SaveOAuthToken(ctx context.Context, provider providers.Name, token *oauth2.Token) error {
	return s.repo.Save(ctx, fromOAuth(provider, token))
}

// Status lists the stored token for each provider; nil entries mean not connected.
func (s *Store) Status(ctx context.Context) (map[providers.Name]*Token, error) {
	status := make(map[providers.Name]*Token, len(providers.All))
	for _, p := range providers.All {
		token, err := s.repo.Get(ctx, p)
		if errors.Is(err, ErrTokenNotFound) {
			status[p] = nil
			continue
		}
		if err != nil {
			return nil, err
		}
		status[p] = token
	}
	return status, nil
}

func (s *Store) Disconnect(ctx context.Context, provider providers.Name) error {
	return s.repo.Delete(ctx, provider)
}

// For adapts the store into a TokenSource for one provider's API client.
func (s *Store) For(provider providers.Name) providers.TokenSource {
	return &providerTokens{store: s, provider: provider}
}

type providerTokens struct {
	store    *Store
	provider providers.Name
}

func (p *providerTokens) AccessToken(ctx context.Context) (string, error) {
	return p.store.ValidAccessToken(ctx, p.provider)
}

func (s *Store) fromBootstrap(ctx context.Context, provider providers.Name) (string, error) {
	b, ok := s.bootstrap[provider]
	if !ok || b.AccessToken == "" {
		return "", ErrTokenNotFound
	}

	token := &Token{
		Provider:     provider,
		AccessToken:  b.AccessToken,
		RefreshToken: b.RefreshToken,
	}
	if err := s.repo.Save(ctx, token); err != nil {
		// the env token is still usable, it just won't be persisted
		log.Errorf("save bootstrap %s token: %s", provider, err)
	} else {
		log.Debugf("%s token bootstrapped from environment", provider)
	}
	return b.AccessToken, nil
}

func (s *Store) refresh(ctx context.Context, provider providers.Name, refreshToken string) (*Token, error) {
	oauthToken, err := s.refresher.Refresh(ctx, provider, refreshToken)
	if err != nil {
		s.countRefresh(provider, "failed")
		return nil, fmt.Errorf("refresh %s token: %w", provider, err)
	}

	token := fromOAuth(provider, oauthToken)
	if err := s.repo.Save(ctx, token); err != nil {
		s.countRefresh(provider, "failed")
		return nil, err
	}

	s.countRefresh(provider, "ok")
	log.Debugf("%s token refreshed", provider)
	return token, nil
}

func (s *Store) countRefresh(provider providers.Name, status string) {
	if s.metricsManager == nil {
		return
	}
	s.metricsManager.CounterTokenRefreshes.WithLabelValues(string(provider), status).Inc()
}

func fromOAuth(provider providers.Name, t *oauth2.Token) *Token {
	token := &Token{
		Provider:     provider,
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
	}
	if !t.Expiry.IsZero() {
		expiry := t.Expiry
		token.ExpiresAt = &expiry
	}
	return token
}

// OAuthRefresher exchanges refresh tokens at each provider's token endpoint.
type OAuthRefresher struct {
	configs    map[providers.Name]*oauth2.Config
	httpClient *http.Client
}

func NewOAuthRefresher(configs map[providers.Name]*oauth2.Config, httpClient *http.Client) *OAuthRefresher {
	return &OAuthRefresher{
		configs:    configs,
		httpClient: httpClient,
	}
}

func (r *OAuthRefresher) Refresh(ctx context.Context, provider providers.Name, refreshToken string) (*oauth2.Token, error) {
	cfg, ok := r.configs[provider]
	if !ok || cfg == nil {
		return nil, ErrNoOAuthConfig
	}
	if r.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, r.httpClient)
	}

	// an empty access token makes the token source go straight to the refresh grant
	return cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
}
