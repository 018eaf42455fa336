package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Name string

const (
	Oura  Name = "oura"
	Whoop Name = "whoop"
)

var All = []Name{Oura, Whoop}

func ParseName(s string) (Name, bool) {
	switch Name(s) {
	case Oura:
		return Oura, true
	case Whoop:
		return Whoop, true
	}
	return "", false
}

var ErrUnexpectedStatus = errors.New("unexpected response status")

// StatusError is returned for any non-2xx provider response.
type StatusError struct {
	Provider   Name
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s api: %d: %s", e.Provider, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

// TokenSource hands out a currently valid access token for one provider.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

func (t StaticToken) AccessToken(_ context.Context) (string, error) {
	if t == "" {
		return "", errors.New("empty static token")
	}
	return string(t), nil
}

// NewHTTPClient returns a client whose outgoing requests are traced.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// GetJSON performs an authenticated GET and decodes the JSON body into out.
func GetJSON(ctx context.Context, httpClient *http.Client, provider Name, url, accessToken string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	log.Tracef("%s api: GET %s", provider, url)

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", provider, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body := string(respBytes)
		if len(body) > 256 {
			body = body[:256]
		}
		return &StatusError{
			Provider:   provider,
			StatusCode: resp.StatusCode,
			Body:       body,
		}
	}

	if err := json.Unmarshal(respBytes, out); err != nil {
		return fmt.Errorf("unmarshal %s response: %w", provider, err)
	}
	return nil
}
