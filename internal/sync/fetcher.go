package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/healthzones/internal/aggregation"
	"github.com/2beens/healthzones/internal/providers"
	"github.com/2beens/healthzones/internal/providers/oura"
	"github.com/2beens/healthzones/internal/providers/whoop"
	"github.com/2beens/healthzones/internal/telemetry/metrics"
	"github.com/2beens/healthzones/internal/telemetry/tracing"
	"github.com/2beens/healthzones/internal/tokenstore"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=sync_test

type ouraFetcher interface {
	FetchAll(ctx context.Context, start, end time.Time) (*aggregation.OuraData, error)
}

type whoopFetcher interface {
	FetchAll(ctx context.Context, start, end time.Time) (*aggregation.WhoopData, error)
}

// Sources tells which providers contributed data.
type Sources struct {
	Oura  bool `json:"oura"`
	Whoop bool `json:"whoop"`
}

func (s Sources) Any() bool {
	return s.Oura || s.Whoop
}

func (s Sources) String() string {
	switch {
	case s.Oura && s.Whoop:
		return "oura,whoop"
	case s.Oura:
		return "oura"
	case s.Whoop:
		return "whoop"
	}
	return "none"
}

type FetchResult struct {
	Oura    *aggregation.OuraData
	Whoop   *aggregation.WhoopData
	Sources Sources
}

// Fetcher pulls both providers concurrently. Either client may be nil when the
// provider is not configured.
type Fetcher struct {
	oura           ouraFetcher
	whoop          whoopFetcher
	metricsManager *metrics.Manager
}

func NewFetcher(oura ouraFetcher, whoop whoopFetcher, metricsManager *metrics.Manager) *Fetcher {
	return &Fetcher{
		oura:           oura,
		whoop:          whoop,
		metricsManager: metricsManager,
	}
}

// NewClientFetcher wires the provider API clients. A nil client leaves that provider out.
func NewClientFetcher(ouraClient *oura.Client, whoopClient *whoop.Client, metricsManager *metrics.Manager) *Fetcher {
	f := &Fetcher{metricsManager: metricsManager}
	if ouraClient != nil {
		f.oura = ouraClient
	}
	if whoopClient != nil {
		f.whoop = whoopClient
	}
	return f
}

// Fetch never fails as a whole: a provider without a token, or one that errors,
// contributes nil data. Provider errors are combined into the returned error,
// which is set alongside whatever data was fetched.
func (f *Fetcher) Fetch(ctx context.Context, start, end time.Time) (*FetchResult, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "fetcher.fetch")
	defer span.End()

	var (
		result            FetchResult
		ouraErr, whoopErr error
		g                 errgroup.Group
	)

	if f.oura != nil {
		g.Go(func() error {
			data, err := f.oura.FetchAll(ctx, start, end)
			ouraErr = f.check(providers.Oura, err)
			if ouraErr == nil && data != nil {
				result.Oura = data
			}
			return nil
		})
	}
	if f.whoop != nil {
		g.Go(func() error {
			data, err := f.whoop.FetchAll(ctx, start, end)
			whoopErr = f.check(providers.Whoop, err)
			if whoopErr == nil && data != nil {
				result.Whoop = data
			}
			return nil
		})
	}
	_ = g.Wait()

	result.Sources = Sources{
		Oura:  result.Oura != nil,
		Whoop: result.Whoop != nil,
	}

	err := multierr.Combine(ouraErr, whoopErr)
	if err != nil {
		span.RecordError(err)
	}
	return &result, err
}

// check counts the fetch outcome. A missing token only means the provider is not
// connected, so it is not reported as an error.
func (f *Fetcher) check(provider providers.Name, err error) error {
	status := "ok"
	switch {
	case err == nil:
	case errors.Is(err, tokenstore.ErrTokenNotFound):
		status = "no_token"
		log.Debugf("fetch %s: not connected", provider)
		err = nil
	default:
		status = "failed"
		log.Errorf("fetch %s: %s", provider, err)
		err = fmt.Errorf("%s: %w", provider, err)
	}

	if f.metricsManager != nil {
		f.metricsManager.CounterProviderFetches.WithLabelValues(string(provider), status).Inc()
	}
	return err
}
