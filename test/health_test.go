//go:build integration_test || all_tests

package test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/2beens/healthzones/internal/aggregation"
	"github.com/2beens/healthzones/internal/health"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(respBytes, v), string(respBytes))
}

func (s *IntegrationTestSuite) TestHealth_NeedsSession() {
	t := s.T()
	ctx := context.Background()

	for _, path := range []string{"/health", "/thresholds", "/tokens/status"} {
		resp := s.authedRequest(ctx, t, "GET", path, "")
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
}

func (s *IntegrationTestSuite) TestHealth_LiveWithoutTokensIsDemo() {
	t := s.T()
	ctx := context.Background()
	token := s.doLogin(ctx, t)

	resp := s.authedRequest(ctx, t, "GET", "/health?weeks=2", token)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var healthResp health.Response
	decodeJSON(t, resp, &healthResp)
	assert.True(t, healthResp.Success)
	assert.True(t, healthResp.Sources.Demo)
	assert.False(t, healthResp.Sources.Oura)
	assert.NotEmpty(t, healthResp.Message)
	assert.NotEmpty(t, healthResp.Data)
}

func (s *IntegrationTestSuite) TestHealth_Stored() {
	t := s.T()
	ctx := context.Background()
	token := s.doLogin(ctx, t)

	_, err := s.DB.ExecContext(ctx, `DELETE FROM daily_records`)
	require.NoError(t, err)

	today := time.Now().UTC()
	for i := 1; i <= 3; i++ {
		day := today.AddDate(0, 0, -i).Format(aggregation.DateLayout)
		_, err := s.DB.ExecContext(
			ctx,
			`INSERT INTO daily_records (date, readiness_score, sleep_score, met_minutes, zone, trend) VALUES ($1, $2, $3, $4, $5, $6)`,
			day, 80+i, 75, 160.0, string(aggregation.ZoneOptimal), string(aggregation.TrendFlat),
		)
		require.NoError(t, err)
	}

	resp := s.authedRequest(ctx, t, "GET", "/health?source=stored&weeks=1&cache=false", token)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var healthResp health.Response
	decodeJSON(t, resp, &healthResp)
	assert.True(t, healthResp.Success)
	assert.False(t, healthResp.Sources.Demo)
	assert.True(t, healthResp.Sources.Oura)
	assert.False(t, healthResp.Sources.Whoop)
	require.NotEmpty(t, healthResp.Data)

	dayRows := 0
	for _, row := range healthResp.Data {
		if row.RowType == aggregation.RowKindDayDetail {
			dayRows++
		}
	}
	assert.Equal(t, 3, dayRows)

	badResp := s.authedRequest(ctx, t, "GET", "/health?source=nowhere", token)
	badResp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, badResp.StatusCode)
}

func (s *IntegrationTestSuite) TestSync_NoProviderData() {
	t := s.T()
	ctx := context.Background()
	token := s.doLogin(ctx, t)

	resp := s.authedRequest(ctx, t, "POST", "/sync?weeks=1", token)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var status string
	require.NoError(t, s.DB.QueryRowContext(
		ctx,
		`SELECT status FROM sync_log ORDER BY started_at DESC LIMIT 1`,
	).Scan(&status))
	assert.Equal(t, "failed", status)
}

func (s *IntegrationTestSuite) TestTokens() {
	t := s.T()
	ctx := context.Background()
	token := s.doLogin(ctx, t)

	resp := s.authedRequest(ctx, t, "GET", "/tokens/status", token)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var status map[string]struct {
		Connected bool `json:"connected"`
	}
	decodeJSON(t, resp, &status)
	require.Contains(t, status, "oura")
	require.Contains(t, status, "whoop")
	assert.False(t, status["oura"].Connected)
	assert.False(t, status["whoop"].Connected)

	t.Run("cron refresh", func(t *testing.T) {
		req, err := http.NewRequestWithContext(ctx, "POST", serverEndpoint+"/cron/refresh-tokens", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+testCronSecret)
		cronResp, err := s.httpClient.Do(req)
		require.NoError(t, err)
		defer cronResp.Body.Close()
		require.Equal(t, http.StatusOK, cronResp.StatusCode)

		var refreshResp struct {
			Success bool              `json:"success"`
			Results map[string]string `json:"results"`
		}
		decodeJSON(t, cronResp, &refreshResp)
		assert.True(t, refreshResp.Success)
		assert.Equal(t, "no_token", refreshResp.Results["oura"])
		assert.Equal(t, "no_token", refreshResp.Results["whoop"])

		req, err = http.NewRequestWithContext(ctx, "POST", serverEndpoint+"/cron/refresh-tokens", strings.NewReader(""))
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer wrong")
		cronResp, err = s.httpClient.Do(req)
		require.NoError(t, err)
		cronResp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, cronResp.StatusCode)
	})
}
