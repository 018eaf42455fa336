package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/healthzones/internal/providers"
	"github.com/2beens/healthzones/pkg"

	"github.com/go-redis/redis/v8"
)

const (
	StateTTL       = 10 * time.Minute
	stateKeyPrefix = "healthzones-oauth-state||"
	stateLength    = 32
)

var ErrStateMismatch = errors.New("oauth state mismatch or expired")

type pendingAuth struct {
	Provider providers.Name `json:"provider"`
	Verifier string         `json:"verifier,omitempty"`
}

// StateStore keeps the pending authorization (state and PKCE verifier) in redis
// until the provider redirects back.
type StateStore struct {
	redisClient *redis.Client
	ttl         time.Duration
	// injectable for tests
	RandStringFunc func(s int) (string, error)
}

func NewStateStore(redisClient *redis.Client) *StateStore {
	return &StateStore{
		redisClient:    redisClient,
		ttl:            StateTTL,
		RandStringFunc: pkg.GenerateRandomString,
	}
}

// Begin stores a new pending authorization and returns its state value.
func (s *StateStore) Begin(ctx context.Context, provider providers.Name, verifier string) (string, error) {
	state, err := s.RandStringFunc(stateLength)
	if err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}

	payload, err := json.Marshal(pendingAuth{Provider: provider, Verifier: verifier})
	if err != nil {
		return "", err
	}

	if err := s.redisClient.Set(ctx, stateKeyPrefix+state, string(payload), s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store state: %w", err)
	}
	return state, nil
}

// Take consumes the pending authorization for state and returns its verifier.
// A state can be taken once, and only for the provider it was issued for.
func (s *StateStore) Take(ctx context.Context, provider providers.Name, state string) (string, error) {
	if state == "" {
		return "", ErrStateMismatch
	}

	key := stateKeyPrefix + state
	raw, err := s.redisClient.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return "", ErrStateMismatch
	}
	if err != nil {
		return "", fmt.Errorf("get state: %w", err)
	}

	deleted, err := s.redisClient.Del(ctx, key).Result()
	if err != nil {
		return "", fmt.Errorf("delete state: %w", err)
	}
	if deleted == 0 {
		// consumed by a concurrent callback
		return "", ErrStateMismatch
	}

	var pending pendingAuth
	if err := json.Unmarshal(raw, &pending); err != nil {
		return "", fmt.Errorf("decode state: %w", err)
	}
	if pending.Provider != provider {
		return "", ErrStateMismatch
	}
	return pending.Verifier, nil
}
