//go:build integration_test || all_tests

package test

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/2beens/healthzones/internal/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) TestLogin() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cases := map[string]struct {
		username           string
		password           string
		expectedStatusCode int
		expectedBody       string
	}{
		"bad password": {
			username:           testUsername,
			password:           "bad-password",
			expectedStatusCode: http.StatusUnauthorized,
			expectedBody:       "error, wrong credentials",
		},
		"unknown user": {
			username:           "someone",
			password:           testPassword,
			expectedStatusCode: http.StatusUnauthorized,
			expectedBody:       "error, wrong credentials",
		},
		"empty password": {
			username:           testUsername,
			expectedStatusCode: http.StatusBadRequest,
			expectedBody:       "error, password empty",
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			resp := s.postLogin(ctx, t, tc.username, tc.password)
			defer resp.Body.Close()
			assert.Equal(t, tc.expectedStatusCode, resp.StatusCode)

			respBytes, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tc.expectedBody, strings.TrimSpace(string(respBytes)))
		})
	}

	t.Run("good creds, then logout", func(t *testing.T) {
		resp := s.postLogin(ctx, t, testUsername, testPassword)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var sessionCookie *http.Cookie
		for _, c := range resp.Cookies() {
			if c.Name == middleware.SessionCookieName {
				sessionCookie = c
			}
		}
		require.NotNil(t, sessionCookie)
		assert.True(t, sessionCookie.HttpOnly)

		thresholdsResp := s.authedRequest(ctx, t, "GET", "/thresholds", sessionCookie.Value)
		thresholdsResp.Body.Close()
		assert.Equal(t, http.StatusOK, thresholdsResp.StatusCode)

		logoutResp := s.authedRequest(ctx, t, "GET", "/a/logout", sessionCookie.Value)
		logoutResp.Body.Close()
		assert.Equal(t, http.StatusOK, logoutResp.StatusCode)

		thresholdsResp = s.authedRequest(ctx, t, "GET", "/thresholds", sessionCookie.Value)
		thresholdsResp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, thresholdsResp.StatusCode)
	})
}
