package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptostats/api/binance"
	ex "cryptostats/data/extensions"
	m "cryptostats/data/models"
	sm "cryptostats/models"
)

type fakeFetcher struct {
	ranks      []m.MarketCapRank
	store      m.TimeSeriesStore
	err        error
	rankCalls  int
	seriesArgs []binance.TimeInterval
}

func (f *fakeFetcher) GetTopByMarketCap(ctx context.Context, n int) ([]m.MarketCapRank, error) {
	f.rankCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.ranks[:ex.Min(n, len(f.ranks))], nil
}

func (f *fakeFetcher) GetTimeSeries(ctx context.Context, ranks []m.MarketCapRank, start, end time.Time, ti binance.TimeInterval) (m.TimeSeriesStore, error) {
	f.seriesArgs = append(f.seriesArgs, ti)
	if f.err != nil {
		return nil, f.err
	}
	return f.store, nil
}

type fakeCache struct {
	entries map[int][]m.MarketCapRank
	err     error
}

func (fc *fakeCache) Get(ctx context.Context, n int) ([]m.MarketCapRank, bool, error) {
	if fc.err != nil {
		return nil, false, fc.err
	}
	ranks, ok := fc.entries[n]
	return ranks, ok, nil
}

func (fc *fakeCache) Set(ctx context.Context, n int, ranks []m.MarketCapRank) error {
	if fc.err != nil {
		return fc.err
	}
	fc.entries[n] = ranks
	return nil
}

type fakeRepository struct {
	saved     map[string]int
	runs      []*m.MonthlyStatistics
	store     m.TimeSeriesStore
	insertErr error
}

func (fr *fakeRepository) SaveSymbolTimeSeries(ctx context.Context, rank m.MarketCapRank, series m.SymbolSeries) (int64, error) {
	fr.saved[rank.Symbol] = len(series)
	return int64(len(series)), nil
}

func (fr *fakeRepository) InsertMonthlyStatistics(ctx context.Context, stats *m.MonthlyStatistics) (int32, int64, error) {
	if fr.insertErr != nil {
		return 0, 0, fr.insertErr
	}
	fr.runs = append(fr.runs, stats)
	return int32(len(fr.runs)), 1, nil
}

func (fr *fakeRepository) GetTimeSeriesStore(ctx context.Context) (m.TimeSeriesStore, error) {
	return fr.store, nil
}

var testRanks = []m.MarketCapRank{
	{Symbol: "A", MarketCap: 2000, Supply: 20},
	{Symbol: "B", MarketCap: 500, Supply: 10},
}

func getTestServiceContext(t *testing.T) (*ServiceContext, *fakeFetcher) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	dir := t.TempDir()

	f := &fakeFetcher{
		ranks: testRanks,
		store: buildStore(map[string][]float64{
			"A": {100, 110, 132},
			"B": {50, 55, 66},
		}, 10),
	}

	return &ServiceContext{
		Context:   context.Background(),
		Fetcher:   f,
		Logger:    logger,
		StoreFile: filepath.Join(dir, DefaultStoreFile),
		Sink:      DefaultFileSink(dir),
	}, f
}

func Test_Service_RankingUsesCache(t *testing.T) {
	sc, f := getTestServiceContext(t)
	cache := &fakeCache{entries: map[int][]m.MarketCapRank{}}
	sc.Cache = cache

	ranks, err := sc.GetTopByMarketCap(2)
	require.NoError(t, err)
	assert.Equal(t, testRanks, ranks)
	assert.Contains(t, cache.entries, 2)

	_, err = sc.GetTopByMarketCap(2)
	require.NoError(t, err)
	ex.AssertAreEqual(t, "fetcher calls", 1, f.rankCalls)
}

func Test_Service_RankingCacheErrorFallsThrough(t *testing.T) {
	sc, f := getTestServiceContext(t)
	sc.Cache = &fakeCache{err: errors.New("connection refused")}

	ranks, err := sc.GetTopByMarketCap(1)
	require.NoError(t, err)
	require.Len(t, ranks, 1)
	ex.AssertAreEqual(t, "fetcher calls", 1, f.rankCalls)
}

func Test_Service_RankingInvalidN(t *testing.T) {
	sc, f := getTestServiceContext(t)

	_, err := sc.GetTopByMarketCap(0)
	assert.ErrorIs(t, err, ex.ErrInvalidInput)
	ex.AssertAreEqual(t, "fetcher calls", 0, f.rankCalls)
}

func Test_Service_SyncWritesStoreAndRepository(t *testing.T) {
	sc, f := getTestServiceContext(t)
	repo := &fakeRepository{saved: map[string]int{}}
	sc.Repository = repo

	res, err := sc.SyncMarketData(sm.SyncRequest{Top: 2, Start: "2020-01-01", End: "2020-03-31"})
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, res.Symbols)
	ex.AssertAreEqual(t, "days", 6, res.Days)
	ex.AssertAreEqual(t, "rows", int64(6), res.RowsInserted)
	assert.Equal(t, map[string]int{"A": 3, "B": 3}, repo.saved)
	assert.Equal(t, []binance.TimeInterval{binance.TimeIntervalDaily}, f.seriesArgs)

	loaded, err := LoadTimeSeriesStore(sc.StoreFile)
	require.NoError(t, err)
	assert.Equal(t, f.store, loaded)
}

func Test_Service_SyncRejectsBadInput(t *testing.T) {
	sc, _ := getTestServiceContext(t)

	cases := []sm.SyncRequest{
		{Top: 2, Start: "2020-01-01", End: "2020-03-31", Interval: "2d"},
		{Top: 2, Start: "2020/01/01", End: "2020-03-31"},
		{Top: 0, Start: "2020-01-01", End: "2020-03-31"},
	}
	for _, req := range cases {
		_, err := sc.SyncMarketData(req)
		assert.ErrorIs(t, err, ex.ErrInvalidInput)
	}

	_, err := os.Stat(sc.StoreFile)
	assert.True(t, os.IsNotExist(err))
}

func Test_Service_SyncChecksWindowBeforeRanking(t *testing.T) {
	sc, f := getTestServiceContext(t)

	cases := []sm.SyncRequest{
		{Top: 2, Start: "2019-01-01", End: "2020-03-31"},
		{Top: 2, Start: "2020-01-01", End: "2021-07-01"},
		{Top: 2, Start: "2020-03-31", End: "2020-01-01"},
	}
	for _, req := range cases {
		_, err := sc.SyncMarketData(req)
		assert.ErrorIs(t, err, ex.ErrInvalidInput)
	}
	ex.AssertAreEqual(t, "fetcher calls", 0, f.rankCalls)
}

func Test_Service_SyncFetchFailureWritesNothing(t *testing.T) {
	sc, f := getTestServiceContext(t)
	f.err = ex.ErrNetwork

	_, err := sc.SyncMarketData(sm.SyncRequest{Top: 2, Start: "2020-01-01", End: "2020-03-31"})
	assert.ErrorIs(t, err, ex.ErrNetwork)

	_, err = os.Stat(sc.StoreFile)
	assert.True(t, os.IsNotExist(err))
}

func Test_Service_LoadStore(t *testing.T) {
	sc, f := getTestServiceContext(t)
	require.NoError(t, SaveTimeSeriesStore(sc.StoreFile, f.store))

	store, err := sc.LoadStore(SourceFile)
	require.NoError(t, err)
	assert.Len(t, store, 2)

	_, err = sc.LoadStore(SourceDb)
	assert.ErrorIs(t, err, ex.ErrInvalidInput)

	sc.Repository = &fakeRepository{store: f.store}
	store, err = sc.LoadStore(SourceDb)
	require.NoError(t, err)
	assert.Equal(t, f.store, store)

	_, err = sc.LoadStore("s3")
	assert.ErrorIs(t, err, ex.ErrInvalidInput)
}

func Test_Service_ComputeSaves(t *testing.T) {
	sc, f := getTestServiceContext(t)
	repo := &fakeRepository{}
	sc.Repository = repo

	res, err := sc.ComputeMonthlyStatistics(f.store, sm.StatisticsRequest{Start: "2020-01-31", End: "2020-03-31", Save: true})
	require.NoError(t, err)
	assert.Len(t, res.Boundaries, 2)

	for _, name := range []string{DefaultStatsFile, DefaultCorrelationsFile, DefaultReturnsFile} {
		_, err := os.Stat(filepath.Join(filepath.Dir(sc.StoreFile), name))
		assert.NoError(t, err, name)
	}
	require.Len(t, repo.runs, 1)
	assert.Same(t, res, repo.runs[0])
}

func Test_Service_ComputeFailureWritesNothing(t *testing.T) {
	sc, _ := getTestServiceContext(t)
	repo := &fakeRepository{}
	sc.Repository = repo

	store := buildStore(map[string][]float64{"A": {100, 110, 121}, "B": {50, 55}}, 1)
	_, err := sc.ComputeMonthlyStatistics(store, sm.StatisticsRequest{Start: "2020-01-31", End: "2020-03-31", Save: true})
	assert.ErrorIs(t, err, ex.ErrMissingData)

	_, err = os.Stat(sc.Sink.StatsFile)
	assert.True(t, os.IsNotExist(err))
	assert.Empty(t, repo.runs)
}

func Test_Service_ComputeRepositoryFailureWritesNothing(t *testing.T) {
	sc, f := getTestServiceContext(t)
	sc.Repository = &fakeRepository{insertErr: errors.New("connection reset")}

	_, err := sc.ComputeMonthlyStatistics(f.store, sm.StatisticsRequest{Start: "2020-01-31", End: "2020-03-31", Save: true})
	assert.ErrorContains(t, err, "connection reset")

	entries, err := os.ReadDir(filepath.Dir(sc.Sink.StatsFile))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func Test_Service_ComputeWithoutSave(t *testing.T) {
	sc, f := getTestServiceContext(t)
	repo := &fakeRepository{insertErr: errors.New("should not be called")}
	sc.Repository = repo

	_, err := sc.ComputeMonthlyStatistics(f.store, sm.StatisticsRequest{Start: "2020-01-31", End: "2020-03-31"})
	require.NoError(t, err)

	_, err = os.Stat(sc.Sink.StatsFile)
	assert.True(t, os.IsNotExist(err))
}
