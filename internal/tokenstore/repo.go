package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/healthzones/internal/providers"
	"github.com/2beens/healthzones/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var ErrTokenNotFound = errors.New("token not found")

type Token struct {
	Provider     providers.Name `json:"provider"`
	AccessToken  string         `json:"-"`
	RefreshToken string         `json:"-"`
	ExpiresAt    *time.Time     `json:"expires_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// ExpiresWithin reports whether the token expires before now+buffer.
// Tokens without a known expiry never expire.
func (t *Token) ExpiresWithin(now time.Time, buffer time.Duration) bool {
	if t.ExpiresAt == nil {
		return false
	}
	return now.Add(buffer).After(*t.ExpiresAt)
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Get(ctx context.Context, provider providers.Name) (_ *Token, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "tokenRepo.get")
	span.SetAttributes(attribute.String("provider", string(provider)))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	token := &Token{Provider: provider}
	var refreshToken *string
	err = r.db.QueryRow(
		ctx,
		`SELECT access_token, refresh_token, expires_at, updated_at FROM oauth_tokens WHERE provider = $1;`,
		string(provider),
	).Scan(&token.AccessToken, &refreshToken, &token.ExpiresAt, &token.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("get %s token: %w", provider, err)
	}

	if refreshToken != nil {
		token.RefreshToken = *refreshToken
	}
	return token, nil
}

// Save upserts the token. An empty refresh token keeps the stored one, since
// not every refresh response rotates it.
func (r *Repo) Save(ctx context.Context, token *Token) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "tokenRepo.save")
	span.SetAttributes(attribute.String("provider", string(token.Provider)))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if token.AccessToken == "" {
		return errors.New("access token empty")
	}

	var refreshToken *string
	if token.RefreshToken != "" {
		refreshToken = &token.RefreshToken
	}

	_, err = r.db.Exec(
		ctx,
		`
			INSERT INTO oauth_tokens (provider, access_token, refresh_token, expires_at, updated_at)
			VALUES ($1, $2, $3, $4, now())
			ON CONFLICT (provider) DO UPDATE SET
				access_token = excluded.access_token,
				refresh_token = COALESCE(excluded.refresh_token, oauth_tokens.refresh_token),
				expires_at = excluded.expires_at,
				updated_at = now();`,
		string(token.Provider), token.AccessToken, refreshToken, token.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("save %s token: %w", token.Provider, err)
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, provider providers.Name) error {
	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM oauth_tokens WHERE provider = $1;`,
		string(provider),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTokenNotFound
	}
	return nil
}
