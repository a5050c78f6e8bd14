package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"cryptostats/api/binance"
	"cryptostats/cache"
	"cryptostats/config"
	c "cryptostats/core"
	r "cryptostats/data/repos"
	"cryptostats/logging"
)

var (
	configFile string

	cfg    *config.Config
	logger *logrus.Logger

	// closed after every command
	closers []func()
)

var rootCmd = &cobra.Command{
	Use:   "cryptostats",
	Short: "Binance market cap rankings and monthly return statistics",
	Long: `Ranks USDT quoted Binance products by market cap, stores their klines and
computes monthly returns, Sharpe and Sortino ratios and pairwise correlations.

Examples:
  cryptostats rank --top 10
  cryptostats fetch --top 20 --start 2020-01-01 --end 2021-05-31
  cryptostats compute --start 2019-12-31 --end 2021-05-31 --save
  cryptostats serve`,
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ./config.yaml)")
}

func main() {
	// cancelled on interrupt and term, every command runs under it
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if logger != nil {
			logger.WithError(err).Error("command failed")
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		stop()
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	if cfg, err = config.Load(configFile); err != nil {
		return err
	}
	logger = logging.New(cfg.LogLevel, cfg.LogFormat)
	return nil
}

func teardown(cmd *cobra.Command, args []string) error {
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
	closers = nil
	return nil
}

// serviceContext wires the collaborators the config asks for. Postgres and redis are only
// connected when their address is set.
func serviceContext(ctx context.Context) (*c.ServiceContext, error) {
	client, err := binance.GetClient(binance.Settings{
		ApiBase:           cfg.Binance.ApiBase,
		WebBase:           cfg.Binance.WebBase,
		Timeout:           cfg.Binance.Timeout,
		RequestsPerSecond: cfg.Binance.RequestsPerSecond,
		Workers:           cfg.Binance.Workers,
		Logger:            logger,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating binance client: %w", err)
	}

	sc := &c.ServiceContext{
		Context:   ctx,
		Fetcher:   client,
		Logger:    logger,
		StoreFile: filepath.Join(cfg.DataDir, cfg.StoreFile),
		Sink:      c.DefaultFileSink(cfg.DataDir),
	}

	if cfg.Database.Url != "" {
		pg, err := r.GetPostgresConnection(ctx, cfg.Database.Url)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		closers = append(closers, pg.Close)
		sc.Repository = pg
	} else {
		logger.Debug("no database url, postgres disabled")
	}

	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRankingCache(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
		if err != nil {
			// rankings still work without the cache
			logger.WithError(err).Warn("redis unavailable, ranking cache disabled")
		} else {
			closers = append(closers, func() { _ = rc.Close() })
			sc.Cache = rc
		}
	}

	return sc, nil
}
