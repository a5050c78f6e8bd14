package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	c "cryptostats/core"
	r "cryptostats/data/repos"
	sm "cryptostats/models"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Print the top symbols by market cap",
	RunE:  runRank,
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download klines for the top symbols into the store file and postgres",
	RunE:  runFetch,
}

var computeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Compute monthly returns, risk ratios and pair correlations",
	RunE:  runCompute,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve rankings and statistics over http",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the postgres tables",
	RunE:  runMigrate,
}

var (
	rankTop int

	fetchTop      int
	fetchStart    string
	fetchEnd      string
	fetchInterval string

	computeStart  string
	computeEnd    string
	computeSource string
	computeSave   bool

	serveAddr string
)

func init() {
	rootCmd.AddCommand(rankCmd, fetchCmd, computeCmd, serveCmd, migrateCmd)

	rankCmd.Flags().IntVar(&rankTop, "top", 10, "number of symbols")

	fetchCmd.Flags().IntVar(&fetchTop, "top", 20, "number of symbols")
	fetchCmd.Flags().StringVar(&fetchStart, "start", "2019-12-31", "first day, yyyy-m-d")
	fetchCmd.Flags().StringVar(&fetchEnd, "end", "2021-06-10", "last day, yyyy-m-d")
	fetchCmd.Flags().StringVar(&fetchInterval, "interval", "1d", "kline interval (1m|5m|15m|30m|1h|4h|1d|1w|1M)")

	computeCmd.Flags().StringVar(&computeStart, "start", "2019-12-31", "first month end, yyyy-m-d")
	computeCmd.Flags().StringVar(&computeEnd, "end", "2021-05-31", "last month end, yyyy-m-d")
	computeCmd.Flags().StringVar(&computeSource, "source", c.SourceFile, "where to read closes from (file|db)")
	computeCmd.Flags().BoolVar(&computeSave, "save", false, "write the result files and the postgres run")

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runRank(cmd *cobra.Command, args []string) error {
	sc, err := serviceContext(cmd.Context())
	if err != nil {
		return err
	}

	ranks, err := sc.GetTopByMarketCap(rankTop)
	if err != nil {
		return err
	}
	return printJSON(ranks)
}

func runFetch(cmd *cobra.Command, args []string) error {
	sc, err := serviceContext(cmd.Context())
	if err != nil {
		return err
	}

	res, err := sc.SyncMarketData(sm.SyncRequest{Top: fetchTop, Start: fetchStart, End: fetchEnd, Interval: fetchInterval})
	if err != nil {
		return err
	}
	return printJSON(res)
}

func runCompute(cmd *cobra.Command, args []string) error {
	sc, err := serviceContext(cmd.Context())
	if err != nil {
		return err
	}

	store, err := sc.LoadStore(computeSource)
	if err != nil {
		return err
	}

	res, err := sc.ComputeMonthlyStatistics(store, sm.StatisticsRequest{Start: computeStart, End: computeEnd, Save: computeSave})
	if err != nil {
		return err
	}
	return printJSON(res)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sc, err := serviceContext(ctx)
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}
	s := c.GetHttpServer(sc, addr)

	serveErr := make(chan error, 1)
	go func() {
		logger.WithField("addr", s.Addr).Info("starting cryptostats server")
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("received shutdown signal, shutting down gracefully")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	if cfg.Database.Url == "" {
		return errors.New("migrate needs a database url, set DATABASE_URL")
	}

	pg, err := r.GetPostgresConnection(cmd.Context(), cfg.Database.Url)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pg.Close()

	if err := pg.EnsureSchema(cmd.Context()); err != nil {
		return err
	}
	logger.Info("schema ready")
	return nil
}
