package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/2beens/healthzones/internal"
	"github.com/2beens/healthzones/internal/aggregation"
	"github.com/2beens/healthzones/internal/config"
	"github.com/2beens/healthzones/internal/db"
	"github.com/2beens/healthzones/internal/logging"
	"github.com/2beens/healthzones/internal/providers"
	"github.com/2beens/healthzones/internal/rollups"
	syncjob "github.com/2beens/healthzones/internal/sync"
	"github.com/2beens/healthzones/internal/tokenstore"
	"github.com/2beens/healthzones/pkg"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

var (
	flagEnv      string
	flagConfig   string
	flagDotEnv   string
	flagLogLevel string

	cfg     *config.Config
	secrets config.Secrets
)

var rootCmd = &cobra.Command{
	Use:   "healthsync",
	Short: "Sync Oura and Whoop data into weekly training zones",
	Long: `healthsync pulls daily data from Oura and Whoop, classifies every day and
week into a training zone and stores the rollups.

  $ healthsync sync --weeks 12               # sync into postgres
  $ healthsync sync --local ./health.db      # sync into a local sqlite file
  $ healthsync show --weeks 4 --local ./health.db
  $ healthsync tokens refresh                # force-refresh both providers

Provider credentials and tokens come from the environment (or --dotenv).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(flagDotEnv); err != nil {
			return fmt.Errorf("load dotenv: %w", err)
		}

		var err error
		cfg, err = config.Load(flagEnv, flagConfig)
		if err != nil {
			return err
		}
		secrets = config.SecretsFromEnv()

		logging.Setup(logging.LoggerSetupParams{
			LogToStdout: true,
			LogLevel:    flagLogLevel,
			Environment: cfg.Environment,
		})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagEnv, "env", "development", "environment [prod | production | dev | development]")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "./config.toml", "path for the TOML config file")
	rootCmd.PersistentFlags().StringVar(&flagDotEnv, "dotenv", ".env", "path for an optional .env file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "log level")
}

// backend is the storage and data sources one command works against.
type backend struct {
	repo       rollups.Repo
	fetcher    *syncjob.Fetcher
	aggregator *aggregation.Aggregator
	tokens     *tokenstore.Store
	closer     io.Closer
}

func (b *backend) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}

type poolCloser struct {
	pool *pgxpool.Pool
}

func (p poolCloser) Close() error {
	p.pool.Close()
	return nil
}

// openBackend uses the sqlite file at localPath when set, postgres otherwise.
func openBackend(ctx context.Context, localPath string) (*backend, error) {
	httpClient := providers.NewHTTPClient(30 * time.Second)

	if localPath != "" {
		dir := filepath.Dir(localPath)
		if exists, err := pkg.PathExists(dir, true); err != nil || !exists {
			return nil, fmt.Errorf("local db dir %s not usable (exists: %t): %v", dir, exists, err)
		}
		repo, err := rollups.OpenSQLite(ctx, localPath)
		if err != nil {
			return nil, err
		}
		return &backend{
			repo:       repo,
			fetcher:    internal.NewEnvTokenFetcher(cfg, secrets, httpClient, nil),
			aggregator: aggregation.NewAggregator(cfg.Thresholds),
			closer:     repo,
		}, nil
	}

	pool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:     cfg.PostgresHost,
		DBPort:     cfg.PostgresPort,
		DBName:     cfg.PostgresDBName,
		DBUser:     cfg.PostgresUser,
		DBPassword: secrets.PostgresPassword,
		MaxConns:   4,
	})
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	components := internal.NewSyncComponents(cfg, secrets, pool, httpClient, nil)
	return &backend{
		repo:       rollups.NewPgRepo(pool),
		fetcher:    components.Fetcher,
		aggregator: components.Aggregator,
		tokens:     components.Tokens,
		closer:     poolCloser{pool: pool},
	}, nil
}
