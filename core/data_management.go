package core

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"cryptostats/api/binance"
	ex "cryptostats/data/extensions"
	m "cryptostats/data/models"
	sm "cryptostats/models"
)

// store sources
const (
	SourceFile = "file"
	SourceDb   = "db"
)

// GetTopByMarketCap serves the ranking from the cache when it has it. A cache that errors
// is logged and skipped.
func (sc *ServiceContext) GetTopByMarketCap(n int) ([]m.MarketCapRank, error) {
	if n <= 0 {
		return nil, ex.InvalidInputf("n must be positive, got %d", n)
	}

	logger := sc.Logger.WithField("n", n)

	if sc.Cache != nil {
		ranks, ok, err := sc.Cache.Get(sc.Context, n)
		if err != nil {
			logger.WithError(err).Warn("ranking cache read failed")
		} else if ok {
			logger.Debug("ranking served from cache")
			return ranks, nil
		}
	}

	ranks, err := sc.Fetcher.GetTopByMarketCap(sc.Context, n)
	if err != nil {
		return nil, fmt.Errorf("error getting top %d by market cap: %w", n, err)
	}

	if sc.Cache != nil {
		if err := sc.Cache.Set(sc.Context, n, ranks); err != nil {
			logger.WithError(err).Warn("ranking cache write failed")
		}
	}

	return ranks, nil
}

// SyncMarketData ranks the top symbols, loads their klines, writes the store file and, when
// postgres is configured, stores every symbol's new rows
func (sc *ServiceContext) SyncMarketData(req sm.SyncRequest) (*sm.SyncResponse, error) {
	started := time.Now()

	if req.Interval == "" {
		req.Interval = binance.TimeIntervalDaily.Interval()
	}
	ti, err := binance.ParseTimeInterval(req.Interval)
	if err != nil {
		return nil, err
	}

	start, err := ParseDate(req.Start)
	if err != nil {
		return nil, err
	}
	end, err := ParseDate(req.End)
	if err != nil {
		return nil, err
	}
	if err := binance.ValidateFetchRange(start, end); err != nil {
		return nil, err
	}

	ranks, err := sc.GetTopByMarketCap(req.Top)
	if err != nil {
		return nil, err
	}

	store, err := sc.Fetcher.GetTimeSeries(sc.Context, ranks, start, end, ti)
	if err != nil {
		return nil, err
	}

	if err := SaveTimeSeriesStore(sc.StoreFile, store); err != nil {
		return nil, err
	}

	res := &sm.SyncResponse{
		Symbols:   make([]string, len(ranks)),
		StoreFile: sc.StoreFile,
	}
	for i, rank := range ranks {
		res.Symbols[i] = rank.Symbol
		res.Days += len(store[rank.Symbol])
	}

	if sc.Repository != nil {
		for _, rank := range ranks {
			ra, err := sc.Repository.SaveSymbolTimeSeries(sc.Context, rank, store[rank.Symbol])
			if err != nil {
				return nil, fmt.Errorf("error saving %s: %w", rank.Symbol, err)
			}
			res.RowsInserted += ra
		}
	}

	sc.Logger.WithFields(logrus.Fields{
		"symbols":  len(res.Symbols),
		"days":     res.Days,
		"inserted": res.RowsInserted,
		"elapsed":  time.Since(started),
	}).Info("market data synced")

	return res, nil
}

// LoadStore reads the time series store from the store file or from postgres
func (sc *ServiceContext) LoadStore(source string) (m.TimeSeriesStore, error) {
	switch source {
	case SourceFile, "":
		return LoadTimeSeriesStore(sc.StoreFile)
	case SourceDb:
		if sc.Repository == nil {
			return nil, ex.InvalidInputf("source %q needs a database url", source)
		}
		return sc.Repository.GetTimeSeriesStore(sc.Context)
	default:
		return nil, ex.InvalidInputf("unknown store source %q, expected %s or %s", source, SourceFile, SourceDb)
	}
}
