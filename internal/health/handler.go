package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/healthzones/internal/aggregation"
	"github.com/2beens/healthzones/internal/middleware"
	syncjob "github.com/2beens/healthzones/internal/sync"
	"github.com/2beens/healthzones/internal/telemetry/metrics"
	"github.com/2beens/healthzones/internal/telemetry/tracing"
	"github.com/2beens/healthzones/pkg"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	SourceLive   = "live"
	SourceStored = "stored"

	demoMessage = "Using demo data. Connect Oura or Whoop to see real data."
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=health_test

type fetcher interface {
	Fetch(ctx context.Context, start, end time.Time) (*syncjob.FetchResult, error)
}

type syncRunner interface {
	Run(ctx context.Context, weeks int) (*syncjob.Result, error)
}

type rollupsReader interface {
	DailyRange(ctx context.Context, start, end string) ([]aggregation.DailyRecord, error)
	WeeklyLatest(ctx context.Context, limit int) ([]aggregation.WeeklyRecord, error)
}

type Handler struct {
	aggregator *aggregation.Aggregator
	fetcher    fetcher
	stored     rollupsReader
	syncer     syncRunner
	cache      *ResponseCache
	faker      *gofakeit.Faker
	now        func() time.Time
}

func NewHandler(
	aggregator *aggregation.Aggregator,
	fetcher fetcher,
	stored rollupsReader,
	syncer syncRunner,
	cache *ResponseCache,
) *Handler {
	return &Handler{
		aggregator: aggregator,
		fetcher:    fetcher,
		stored:     stored,
		syncer:     syncer,
		cache:      cache,
		faker:      gofakeit.New(0),
		now:        time.Now,
	}
}

func (handler *Handler) SetupRoutes(
	router *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	syncAllowedPerMin int,
	metricsManager *metrics.Manager,
) {
	router.HandleFunc("/health", handler.handleHealth).Methods("GET", "OPTIONS").Name("health")
	router.HandleFunc("/thresholds", handler.handleThresholds).Methods("GET", "OPTIONS").Name("thresholds")

	syncRouter := router.PathPrefix("/sync").Subrouter()
	syncRouter.HandleFunc("", handler.handleSync).Methods("POST", "OPTIONS").Name("sync")
	// a sync hits both provider APIs, keep it rare
	syncRouter.Use(middleware.RateLimit(rateLimiter, "sync", syncAllowedPerMin, metricsManager))
}

type Sources struct {
	Oura   bool `json:"oura"`
	Whoop  bool `json:"whoop"`
	Cached bool `json:"cached"`
	Demo   bool `json:"demo"`
}

type Response struct {
	Success bool              `json:"success"`
	Data    []aggregation.Row `json:"data"`
	Sources Sources           `json:"sources"`
	Message string            `json:"message,omitempty"`
	Error   string            `json:"error,omitempty"`
}

func parseWeeks(r *http.Request) (int, error) {
	weeksParam := r.URL.Query().Get("weeks")
	if weeksParam == "" {
		return syncjob.DefaultWeeks, nil
	}
	weeks, err := strconv.Atoi(weeksParam)
	if err != nil {
		return 0, fmt.Errorf("invalid weeks: %s", weeksParam)
	}
	if weeks < 1 {
		weeks = 1
	}
	return syncjob.ClampWeeks(weeks), nil
}

func (handler *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "healthHandler.health")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "GET, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	weeks, err := parseWeeks(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	source := r.URL.Query().Get("source")
	if source == "" {
		source = SourceLive
	}
	if source != SourceLive && source != SourceStored {
		http.Error(w, "invalid source", http.StatusBadRequest)
		return
	}
	useCache := r.URL.Query().Get("cache") != "false"

	now := handler.now()
	start, end := syncjob.Range(now, weeks)
	cacheKey := fmt.Sprintf("health|%d|%s|%s", weeks, source, end.Format(aggregation.DateLayout))
	span.SetAttributes(
		attribute.Int("weeks", weeks),
		attribute.String("source", source),
		attribute.Bool("cache", useCache),
	)

	if useCache && handler.cache != nil {
		if cached, ok := handler.cache.Get(cacheKey); ok {
			pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, cached)
			return
		}
	}

	var resp *Response
	switch source {
	case SourceStored:
		resp, err = handler.fromStored(ctx, start, end, weeks)
	default:
		resp = handler.fromProviders(ctx, start, end)
	}
	if err != nil {
		log.Errorf("health %s: %s", source, err)
		pkg.WriteJSON(w, Response{Success: false, Data: []aggregation.Row{}, Error: err.Error()}, http.StatusInternalServerError)
		return
	}

	if resp.Sources.Demo {
		resp.Data = handler.demoRows(start, end)
		resp.Message = demoMessage
	} else if handler.cache != nil {
		resp.Sources.Cached = true
		if cachedBytes, err := json.Marshal(resp); err == nil {
			handler.cache.Set(cacheKey, cachedBytes)
		}
		resp.Sources.Cached = false
	}

	pkg.WriteJSON(w, resp, http.StatusOK)
}

func (handler *Handler) fromProviders(ctx context.Context, start, end time.Time) *Response {
	fetched, err := handler.fetcher.Fetch(ctx, start, end)
	if err != nil {
		// a failed provider still leaves the other one's data
		log.Warnf("health: provider fetch: %s", err)
	}
	if fetched == nil || !fetched.Sources.Any() {
		return &Response{Success: true, Sources: Sources{Demo: true}}
	}

	return &Response{
		Success: true,
		Data:    handler.aggregator.Aggregate(fetched.Oura, fetched.Whoop, start, end),
		Sources: Sources{
			Oura:  fetched.Sources.Oura,
			Whoop: fetched.Sources.Whoop,
		},
	}
}

// fromStored serves the stored weekly rollups of the range. Stored days only
// feed the day rows of an incomplete week, unless no weekly rows exist yet.
func (handler *Handler) fromStored(ctx context.Context, start, end time.Time, weeks int) (*Response, error) {
	if handler.stored == nil {
		return nil, errors.New("stored rollups not available")
	}

	startDate, endDate := start.Format(aggregation.DateLayout), end.Format(aggregation.DateLayout)
	days, err := handler.stored.DailyRange(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}
	// a Sunday-aligned range spans one week more than asked for
	latest, err := handler.stored.WeeklyLatest(ctx, weeks+1)
	if err != nil {
		return nil, err
	}
	stored := make([]aggregation.WeeklyRecord, 0, len(latest))
	for _, w := range latest {
		if w.StartDate >= startDate && w.StartDate <= endDate {
			stored = append(stored, w)
		}
	}

	var rows []aggregation.Row
	switch {
	case len(stored) > 0:
		rows = aggregation.StoredRows(stored, days)
	case len(days) > 0:
		rows = handler.aggregator.RowsFromDays(days)
	default:
		return &Response{Success: true, Sources: Sources{Demo: true}}, nil
	}

	oura, whoop := storedSources(stored, days)
	return &Response{
		Success: true,
		Data:    rows,
		Sources: Sources{Oura: oura, Whoop: whoop},
		Message: "Data from stored rollups",
	}, nil
}

// storedSources infers the contributing providers from metrics only one of them reports.
func storedSources(weeks []aggregation.WeeklyRecord, days []aggregation.DailyRecord) (oura, whoop bool) {
	for _, w := range weeks {
		if w.AvgReadiness != nil || w.AvgSteps != nil {
			oura = true
		}
		if w.TotalStrain != nil {
			whoop = true
		}
	}
	for _, d := range days {
		if d.ReadinessScore != nil || d.Steps != nil {
			oura = true
		}
		if d.Strain != nil || d.Kilojoule != nil {
			whoop = true
		}
	}
	return oura, whoop
}

func (handler *Handler) demoRows(start, end time.Time) []aggregation.Row {
	oura, whoop := DemoData(handler.faker, start, end)
	return handler.aggregator.Aggregate(oura, whoop, start, end)
}

type syncResponse struct {
	Success bool            `json:"success"`
	Result  *syncjob.Result `json:"result,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func (handler *Handler) handleSync(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "healthHandler.sync")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	weeks, err := parseWeeks(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := handler.syncer.Run(ctx, weeks)
	if err != nil {
		log.Errorf("sync %d weeks: %s", weeks, err)
		status := http.StatusInternalServerError
		if result != nil && !result.Sources.Any() {
			status = http.StatusBadGateway
		}
		pkg.WriteJSON(w, syncResponse{Success: false, Result: result, Error: err.Error()}, status)
		return
	}

	if handler.cache != nil {
		handler.cache.Clear()
	}
	pkg.WriteJSON(w, syncResponse{Success: true, Result: result}, http.StatusOK)
}

func (handler *Handler) handleThresholds(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "GET, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}
	pkg.WriteJSON(w, handler.aggregator.Thresholds(), http.StatusOK)
}
