package internal

import (
	"net/http"

	"github.com/2beens/healthzones/internal/aggregation"
	"github.com/2beens/healthzones/internal/config"
	"github.com/2beens/healthzones/internal/oauth"
	"github.com/2beens/healthzones/internal/providers"
	"github.com/2beens/healthzones/internal/providers/oura"
	"github.com/2beens/healthzones/internal/providers/whoop"
	syncjob "github.com/2beens/healthzones/internal/sync"
	"github.com/2beens/healthzones/internal/telemetry/metrics"
	"github.com/2beens/healthzones/internal/tokenstore"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// SyncComponents is everything needed to pull provider data and turn it into zones.
// The service and the CLI build it the same way.
type SyncComponents struct {
	Registry   oauth.Registry
	Tokens     *tokenstore.Store
	Fetcher    *syncjob.Fetcher
	Aggregator *aggregation.Aggregator
}

func NewSyncComponents(
	cfg *config.Config,
	secrets config.Secrets,
	dbPool *pgxpool.Pool,
	httpClient *http.Client,
	metricsManager *metrics.Manager,
) *SyncComponents {
	registry := oauth.NewRegistry(
		cfg.PublicURL,
		map[providers.Name]oauth.Credentials{
			providers.Oura:  {ClientID: secrets.OuraClientID, ClientSecret: secrets.OuraClientSecret},
			providers.Whoop: {ClientID: secrets.WhoopClientID, ClientSecret: secrets.WhoopClientSecret},
		},
		cfg.OAuthUsePKCE,
	)

	tokens := tokenstore.NewStore(
		tokenstore.NewRepo(dbPool),
		tokenstore.NewOAuthRefresher(registry.Configs(), httpClient),
		map[providers.Name]tokenstore.BootstrapToken{
			providers.Oura:  {AccessToken: secrets.OuraAccessToken, RefreshToken: secrets.OuraRefreshToken},
			providers.Whoop: {AccessToken: secrets.WhoopAccessToken, RefreshToken: secrets.WhoopRefreshToken},
		},
		tokenstore.DefaultRefreshBuffer,
		metricsManager,
	)

	// both clients are always wired: a provider nobody connected reports no token
	fetcher := syncjob.NewClientFetcher(
		oura.NewClient(cfg.OuraBaseURL, tokens.For(providers.Oura), httpClient),
		whoop.NewClient(cfg.WhoopBaseURL, tokens.For(providers.Whoop), httpClient),
		metricsManager,
	)

	return &SyncComponents{
		Registry:   registry,
		Tokens:     tokens,
		Fetcher:    fetcher,
		Aggregator: aggregation.NewAggregator(cfg.Thresholds),
	}
}

// NewEnvTokenFetcher builds a fetcher that uses the access tokens from the
// environment as they are, for offline runs without postgres.
func NewEnvTokenFetcher(
	cfg *config.Config,
	secrets config.Secrets,
	httpClient *http.Client,
	metricsManager *metrics.Manager,
) *syncjob.Fetcher {
	var ouraClient *oura.Client
	if secrets.OuraAccessToken != "" {
		ouraClient = oura.NewClient(cfg.OuraBaseURL, providers.StaticToken(secrets.OuraAccessToken), httpClient)
	} else {
		log.Warnln("OURA_ACCESS_TOKEN not set, skipping oura")
	}

	var whoopClient *whoop.Client
	if secrets.WhoopAccessToken != "" {
		whoopClient = whoop.NewClient(cfg.WhoopBaseURL, providers.StaticToken(secrets.WhoopAccessToken), httpClient)
	} else {
		log.Warnln("WHOOP_ACCESS_TOKEN not set, skipping whoop")
	}

	return syncjob.NewClientFetcher(ouraClient, whoopClient, metricsManager)
}
