//go:build integration_test || all_tests

package auth

import (
	"context"
	"testing"
	"time"

	testingpkg "github.com/2beens/healthzones/pkg/testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_SessionLifecycle_Redis(t *testing.T) {
	rdb := testingpkg.RedisClient(t, 3)
	ctx := context.Background()

	ttl := time.Hour
	service := NewAuthService(testAdmin, ttl, rdb)
	checker := NewLoginChecker(ttl, rdb)

	token, err := service.Login(ctx, testCredentials, time.Now())
	require.NoError(t, err)
	require.Len(t, token, tokenLength)

	logged, err := checker.IsLogged(ctx, token)
	require.NoError(t, err)
	assert.True(t, logged)

	keyTTL, err := rdb.TTL(ctx, sessionKeyPrefix+token).Result()
	require.NoError(t, err)
	assert.Greater(t, keyTTL, time.Duration(0))
	assert.LessOrEqual(t, keyTTL, ttl)

	// a session created before the TTL window is dropped by the cleaner
	stale, err := service.Login(ctx, testCredentials, time.Now().Add(-2*ttl))
	require.NoError(t, err)
	service.ScanAndClean(ctx)

	logged, err = checker.IsLogged(ctx, stale)
	require.NoError(t, err)
	assert.False(t, logged)
	members, err := rdb.SMembers(ctx, tokensSetKey).Result()
	require.NoError(t, err)
	assert.Equal(t, []string{token}, members)

	wasLogged, err := service.Logout(ctx, token)
	require.NoError(t, err)
	assert.True(t, wasLogged)

	logged, err = checker.IsLogged(ctx, token)
	require.NoError(t, err)
	assert.False(t, logged)

	wasLogged, err = service.Logout(ctx, token)
	require.NoError(t, err)
	assert.False(t, wasLogged)
}
