package oura

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/2beens/healthzones/internal/aggregation"
	"github.com/2beens/healthzones/internal/providers"
	"github.com/2beens/healthzones/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultBaseURL = "https://api.ouraring.com/v2/usercollection"

	// stop following next_token after this many pages
	maxPages = 50
)

type Client struct {
	baseURL    string
	tokens     providers.TokenSource
	httpClient *http.Client
}

func NewClient(baseURL string, tokens providers.TokenSource, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		tokens:     tokens,
		httpClient: httpClient,
	}
}

func (c *Client) Readiness(ctx context.Context, start, end time.Time) ([]Readiness, error) {
	return collect[Readiness](ctx, c, "daily_readiness", start, end)
}

func (c *Client) Sleep(ctx context.Context, start, end time.Time) ([]Sleep, error) {
	return collect[Sleep](ctx, c, "daily_sleep", start, end)
}

func (c *Client) Activity(ctx context.Context, start, end time.Time) ([]Activity, error) {
	return collect[Activity](ctx, c, "daily_activity", start, end)
}

// FetchAll pulls the three daily collections concurrently and adapts them for aggregation.
func (c *Client) FetchAll(ctx context.Context, start, end time.Time) (data *aggregation.OuraData, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "oura.fetchAll")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var (
		readiness []Readiness
		sleep     []Sleep
		activity  []Activity
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		readiness, err = c.Readiness(gCtx, start, end)
		return err
	})
	g.Go(func() error {
		var err error
		sleep, err = c.Sleep(gCtx, start, end)
		return err
	})
	g.Go(func() error {
		var err error
		activity, err = c.Activity(gCtx, start, end)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("readiness", len(readiness)),
		attribute.Int("sleep", len(sleep)),
		attribute.Int("activity", len(activity)),
	)

	return Adapt(readiness, sleep, activity), nil
}

func collect[T any](ctx context.Context, c *Client, endpoint string, start, end time.Time) ([]T, error) {
	accessToken, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("oura access token: %w", err)
	}

	params := url.Values{}
	params.Set("start_date", start.Format(aggregation.DateLayout))
	params.Set("end_date", end.Format(aggregation.DateLayout))

	var all []T
	for i := 0; i < maxPages; i++ {
		reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode())

		var p page[T]
		if err := providers.GetJSON(ctx, c.httpClient, providers.Oura, reqURL, accessToken, &p); err != nil {
			return nil, fmt.Errorf("get %s: %w", endpoint, err)
		}
		all = append(all, p.Data...)

		if p.NextToken == nil || *p.NextToken == "" {
			return all, nil
		}
		params.Set("next_token", *p.NextToken)
	}

	log.Warnf("oura %s: stopped paging after %d pages", endpoint, maxPages)
	return all, nil
}
