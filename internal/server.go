package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/healthzones/internal/auth"
	"github.com/2beens/healthzones/internal/config"
	"github.com/2beens/healthzones/internal/db"
	"github.com/2beens/healthzones/internal/health"
	"github.com/2beens/healthzones/internal/middleware"
	"github.com/2beens/healthzones/internal/misc"
	"github.com/2beens/healthzones/internal/oauth"
	"github.com/2beens/healthzones/internal/providers"
	"github.com/2beens/healthzones/internal/rollups"
	syncjob "github.com/2beens/healthzones/internal/sync"
	"github.com/2beens/healthzones/internal/telemetry/metrics"
	"github.com/2beens/healthzones/internal/telemetry/tracing"
	"github.com/2beens/healthzones/internal/tokenstore"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
)

const (
	providerHTTPTimeout    = 30 * time.Second
	sessionCleanupInterval = 8 * time.Hour
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string
	cronSecret        string

	config      *config.Config
	dbPool      *pgxpool.Pool
	redisClient *redis.Client

	loginChecker *auth.LoginChecker
	authService  *auth.Service

	components *SyncComponents
	stateStore *oauth.StateStore
	httpClient *http.Client
	rollups    *rollups.PgRepo
	syncer     *syncjob.Syncer
	scheduler  *syncjob.Scheduler
	cache      *health.ResponseCache

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config      *config.Config
	Secrets     config.Secrets
	VersionInfo string
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config
	secrets := params.Secrets

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         cfg.PostgresHost,
		DBPort:         cfg.PostgresPort,
		DBName:         cfg.PostgresDBName,
		DBUser:         cfg.PostgresUser,
		DBPassword:     secrets.PostgresPassword,
		TracingEnabled: secrets.HoneycombEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	} else if err := db.EnsureSchema(ctx, dbPool); err != nil {
		return nil, err
	}

	promRegistry := metrics.SetupPrometheus()
	if err := metrics.RegisterDBPool(promRegistry, dbPool, cfg.PostgresDBName); err != nil {
		log.Errorf("register db pool collector: %s", err)
	}
	metricsManager := metrics.NewManager("healthzones", "service", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password: secrets.RedisPassword,
		DB:       0,
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	authService := auth.NewAuthService(&auth.Admin{
		Username:     secrets.AdminUsername,
		PasswordHash: secrets.AdminPasswordHash,
	}, cfg.SessionTTL(), rdb)
	go func() {
		ticker := time.NewTicker(sessionCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				authService.ScanAndClean(ctx)
			}
		}
	}()

	otelShutdown, err := tracing.HoneycombSetup(secrets.HoneycombEnabled, "healthzones", rdb)
	if err != nil {
		return nil, err
	}

	httpClient := providers.NewHTTPClient(providerHTTPTimeout)
	components := NewSyncComponents(cfg, secrets, dbPool, httpClient, metricsManager)
	rollupsRepo := rollups.NewPgRepo(dbPool)
	syncer := syncjob.NewSyncer(components.Fetcher, components.Aggregator, rollupsRepo, metricsManager)

	scheduler, err := syncjob.NewScheduler(
		syncer,
		components.Tokens,
		cfg.SyncDailyAt,
		cfg.SyncWeeks,
		cfg.TokenRefreshInterval(),
	)
	if err != nil {
		return nil, fmt.Errorf("new sync scheduler: %w", err)
	}

	return &Server{
		config:      cfg,
		dbPool:      dbPool,
		redisClient: rdb,
		versionInfo: params.VersionInfo,
		cronSecret:  secrets.CronSecret,

		authService:  authService,
		loginChecker: auth.NewLoginChecker(cfg.SessionTTL(), rdb),

		components: components,
		stateStore: oauth.NewStateStore(rdb),
		httpClient: httpClient,
		rollups:    rollupsRepo,
		syncer:     syncer,
		scheduler:  scheduler,
		cache:      health.NewResponseCache(cfg.HealthCacheSizeMB*1024*1024, cfg.HealthCacheTTL(), metricsManager),

		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("healthzones-router"))

	reqRateLimiter := redis_rate.NewLimiter(s.redisClient)

	miscHandler := misc.NewHandler(s.versionInfo, s.authService, s.config.SessionTTL(), s.config.SecureCookies)
	miscHandler.SetupRoutes(
		r,
		reqRateLimiter,
		s.config.LoginRateLimitAllowedPerMin,
		s.metricsManager,
		s.config.CorsAllowedOrigins,
	)

	healthHandler := health.NewHandler(
		s.components.Aggregator,
		s.components.Fetcher,
		s.rollups,
		s.syncer,
		s.cache,
	)
	healthHandler.SetupRoutes(r, reqRateLimiter, s.config.SyncRateLimitAllowedPerMin, s.metricsManager)

	oauthHandler := oauth.NewHandler(s.components.Registry, s.stateStore, s.components.Tokens, s.httpClient)
	oauthHandler.SetupRoutes(r)

	tokensHandler := tokenstore.NewHandler(s.components.Tokens)
	tokensHandler.SetupRoutes(r)

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "OPTIONS").Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.cronSecret, s.loginChecker)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.CorsAllowedOrigins...))
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve(ctx context.Context, host string, port int) {
	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      s.routerSetup(),
		Addr:         ipAndPort,
		WriteTimeout: 2 * time.Minute, // a sync of many weeks takes a while
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	go s.scheduler.Start(ctx)

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")
	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Errorf(" >>> failed to gracefully shutdown http server: %s", err)
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Errorf(" >>> failed to gracefully shutdown metrics http server: %s", err)
		}
		log.Warnln("metrics server shut down")
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
