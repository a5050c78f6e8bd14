package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"cryptostats/api"
	ex "cryptostats/data/extensions"
	m "cryptostats/data/models"
)

// binance returns 12 values per kline, open time first
const rawKlineFields = m.BinanceKlineValues + 1

var (
	// EarliestFetchDate is the first day klines are requested for
	EarliestFetchDate = time.Date(2019, time.December, 31, 0, 0, 0, 0, time.UTC)
	// LatestFetchDate is the last day the ranking supply is considered representative for
	LatestFetchDate = time.Date(2021, time.June, 10, 0, 0, 0, 0, time.UTC)
)

// GetKlines returns the candles of one symbol between start and end, keyed by the UTC date of
// the open time. The market cap of each candle is its close times the given supply.
func (bc *BinanceClient) GetKlines(ctx context.Context, rank m.MarketCapRank, start, end time.Time, ti TimeInterval) (m.SymbolSeries, error) {
	pair := rank.Symbol + QuoteAsset
	endpoint := api.BuildRequestPath(klinesPath, map[string]string{
		symbol:    pair,
		interval:  ti.Interval(),
		startTime: strconv.FormatInt(start.UnixMilli(), 10),
		endTime:   strconv.FormatInt(end.UnixMilli(), 10),
		limit:     strconv.Itoa(klineLimit),
	})

	body, err := bc.api.Request(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("error getting klines for %s: %w", pair, err)
	}

	series, count, err := parseKlines(body, rank.Supply)
	if err != nil {
		return nil, fmt.Errorf("error parsing klines for %s: %w", pair, err)
	}

	if count >= klineLimit {
		bc.logger.WithFields(logrus.Fields{
			"symbol": rank.Symbol,
			"count":  count,
		}).Warn("kline response filled the page limit, later dates may be missing")
	}

	return series, nil
}

// ValidateFetchRange checks start and end against the window klines can be fetched for
func ValidateFetchRange(start, end time.Time) error {
	if start.Before(EarliestFetchDate) {
		return ex.InvalidInputf("start date %s must be on or after %s", ex.FmtShort(start), ex.FmtShort(EarliestFetchDate))
	}
	if end.After(LatestFetchDate) {
		return ex.InvalidInputf("end date %s must be on or before %s", ex.FmtShort(end), ex.FmtShort(LatestFetchDate))
	}
	if !end.After(start) {
		return ex.InvalidInputf("end date %s must be after start date %s", ex.FmtShort(end), ex.FmtShort(start))
	}
	return nil
}

// GetTimeSeries fetches every ranked symbol concurrently. The first failure cancels the rest.
func (bc *BinanceClient) GetTimeSeries(ctx context.Context, ranks []m.MarketCapRank, start, end time.Time, ti TimeInterval) (m.TimeSeriesStore, error) {
	if err := ValidateFetchRange(start, end); err != nil {
		return nil, err
	}

	store := make(m.TimeSeriesStore, len(ranks))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bc.workers)

	for _, rank := range ranks {
		g.Go(func() error {
			series, err := bc.GetKlines(ctx, rank, start, end, ti)
			if err != nil {
				return err
			}

			mu.Lock()
			store[rank.Symbol] = series
			mu.Unlock()

			bc.logger.WithFields(logrus.Fields{
				"symbol": rank.Symbol,
				"days":   len(series),
			}).Debug("klines loaded")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return store, nil
}

func parseKlines(body []byte, supply float64) (m.SymbolSeries, int, error) {
	var raw [][]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, 0, fmt.Errorf("%w: klines are not an array of arrays: %v", ex.ErrInvalidInput, err)
	}

	series := make(m.SymbolSeries, len(raw))
	for i, values := range raw {
		if len(values) != rawKlineFields {
			return nil, 0, ex.InvalidInputf("kline %d has %d values, expected %d", i, len(values), rawKlineFields)
		}

		openTime, err := m.ParseNumber(values[0])
		if err != nil {
			return nil, 0, fmt.Errorf("kline %d open time: %w", i, err)
		}

		k, err := m.KlineFromBinance(values[1:])
		if err != nil {
			return nil, 0, fmt.Errorf("kline %d: %w", i, err)
		}
		k.MarketCap = k.Close * supply

		date := ex.FmtShort(time.UnixMilli(int64(openTime)).UTC())
		series[date] = k
	}

	return series, len(raw), nil
}
