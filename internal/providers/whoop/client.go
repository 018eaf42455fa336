package whoop

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
	DefaultBaseURL = "https://api.prod.whoop.com/developer/v2"

	pageLimit = 25
	maxPages  = 50
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

func (c *Client) Cycles(ctx context.Context, start, end time.Time) ([]Cycle, error) {
	return collect[Cycle](ctx, c, "cycle", start, end)
}

func (c *Client) Recovery(ctx context.Context, start, end time.Time) ([]Recovery, error) {
	return collect[Recovery](ctx, c, "recovery", start, end)
}

func (c *Client) Sleep(ctx context.Context, start, end time.Time) ([]Sleep, error) {
	return collect[Sleep](ctx, c, "activity/sleep", start, end)
}

// FetchAll pulls cycles, recoveries and sleeps concurrently and adapts them for aggregation.
// The window is widened by a day on both sides so cycles that started the evening
// before the range still yield the recovery for its first day.
func (c *Client) FetchAll(ctx context.Context, start, end time.Time) (data *aggregation.WhoopData, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "whoop.fetchAll")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	from := start.AddDate(0, 0, -1)
	to := end.AddDate(0, 0, 1)

	var (
		cycles   []Cycle
		recovery []Recovery
		sleep    []Sleep
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cycles, err = c.Cycles(gCtx, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		recovery, err = c.Recovery(gCtx, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		sleep, err = c.Sleep(gCtx, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("cycles", len(cycles)),
		attribute.Int("recovery", len(recovery)),
		attribute.Int("sleep", len(sleep)),
	)

	return Adapt(cycles, recovery, sleep), nil
}

func collect[T any](ctx context.Context, c *Client, endpoint string, start, end time.Time) ([]T, error) {
	accessToken, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("whoop access token: %w", err)
	}

	params := url.Values{}
	params.Set("start", start.UTC().Format(time.RFC3339))
	params.Set("end", end.UTC().Format(time.RFC3339))
	params.Set("limit", fmt.Sprintf("%d", pageLimit))

	var all []T
	for i := 0; i < maxPages; i++ {
		reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode())

		var p page[T]
		if err := providers.GetJSON(ctx, c.httpClient, providers.Whoop, reqURL, accessToken, &p); err != nil {
			return nil, fmt.Errorf("get %s: %w", endpoint, err)
		}
		all = append(all, p.Records...)

		if p.NextToken == nil || *p.NextToken == "" || len(p.Records) == 0 {
			return all, nil
		}
		params.Set("nextToken", *p.NextToken)
	}

	log.Warnf("whoop %s: stopped paging after %d pages", endpoint, maxPages)
	return all, nil
}
