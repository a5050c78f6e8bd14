package core

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ex "cryptostats/data/extensions"
	m "cryptostats/data/models"
)

func Test_Sink_StoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultStoreFile)

	store := m.TimeSeriesStore{
		"BTC": {
			"2020-01-31": {
				Open: 9350.23, High: 9420.1, Low: 9200, Close: 9344.365, Volume: 1234.5678,
				CloseTime: 1580515199999, QuoteVolume: 11536821.3, TradeCount: 102345,
				TakerBuyBase: 600.1, TakerBuyQuote: 5600000.25, Ignore: 0, MarketCap: 1.7536e11,
			},
		},
		"ETH": {
			"2020-01-31": {Close: 179.94, MarketCap: 1.98e10},
			"2020-02-29": {Close: 217.21, MarketCap: 2.39e10},
		},
	}

	require.NoError(t, SaveTimeSeriesStore(path, store))

	loaded, err := LoadTimeSeriesStore(path)
	require.NoError(t, err)
	assert.Equal(t, store, loaded)
}

func Test_Sink_StoreFileUsesPositionalRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultStoreFile)
	store := m.TimeSeriesStore{"BTC": {"2020-01-31": {Close: 9344.36, CloseTime: 1580515199999, TradeCount: 5, MarketCap: 10}}}
	require.NoError(t, SaveTimeSeriesStore(path, store))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string]map[string][]any
	require.NoError(t, json.Unmarshal(data, &raw))
	record := raw["BTC"]["2020-01-31"]
	require.Len(t, record, 12)
	ex.AssertAreEqual(t, "close", any("9344.36"), record[3])
}

func Test_Sink_LoadRejectsMalformedRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"BTC":{"2020-01-31":["1","2","3"]}}`), 0o644))

	_, err := LoadTimeSeriesStore(path)
	assert.ErrorIs(t, err, ex.ErrInvalidInput)
}

func Test_Sink_LoadRejectsNonFiniteClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nan.json")
	record := `["1","2","0.5","NaN","5",6,"7",8,"9","10","0",12]`
	require.NoError(t, os.WriteFile(path, []byte(`{"BTC":{"2020-02-29":`+record+`}}`), 0o644))

	_, err := LoadTimeSeriesStore(path)
	assert.ErrorIs(t, err, ex.ErrInvalidInput)
}

func Test_Sink_LoadMissingFile(t *testing.T) {
	_, err := LoadTimeSeriesStore(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, ex.ErrIO)
}

func Test_Sink_WriteJSONFailsAsIO(t *testing.T) {
	err := WriteJSON(filepath.Join(t.TempDir(), "missing", "dir", "out.json"), map[string]int{"a": 1})
	assert.ErrorIs(t, err, ex.ErrIO)
}

func Test_Sink_FileSinkWritesSeparateDocuments(t *testing.T) {
	dir := t.TempDir()
	sink := DefaultFileSink(dir)

	stats := &m.MonthlyStatistics{
		Returns: map[string][]float64{"A": {0.1, 0.2}, "B": {0.1, 0.2}},
		Stats: m.AggregateStats{
			"2020-03-31": {
				"A": {Symbol: "A", Return: 0.2},
				"B": {Symbol: "B", Return: 0.2},
			},
		},
		Correlations: m.PairCorrelationTable{
			"2020-03-31": {{Pair: "A,B", Correlation: 1}},
		},
	}
	require.NoError(t, sink.Save(stats))

	var gotStats m.AggregateStats
	readTestJSON(t, filepath.Join(dir, DefaultStatsFile), &gotStats)
	assert.Equal(t, stats.Stats, gotStats)

	var gotCorr m.PairCorrelationTable
	readTestJSON(t, filepath.Join(dir, DefaultCorrelationsFile), &gotCorr)
	assert.Equal(t, stats.Correlations, gotCorr)

	var gotReturns map[string][]float64
	readTestJSON(t, filepath.Join(dir, DefaultReturnsFile), &gotReturns)
	assert.Equal(t, stats.Returns, gotReturns)

	// no temp files left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func Test_Sink_FileSinkFailureWritesNothing(t *testing.T) {
	dir := t.TempDir()
	sink := DefaultFileSink(dir)
	sink.ReturnsFile = filepath.Join(dir, "missing", DefaultReturnsFile)

	stats := &m.MonthlyStatistics{
		Returns: map[string][]float64{"A": {0.1}},
		Stats:   m.AggregateStats{"2020-02-29": {"A": {Symbol: "A", Return: 0.1}}},
	}
	assert.ErrorIs(t, sink.Save(stats), ex.ErrIO)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func Test_Sink_StagedFilesDiscard(t *testing.T) {
	dir := t.TempDir()
	sink := DefaultFileSink(dir)

	staged, err := sink.Stage(&m.MonthlyStatistics{Returns: map[string][]float64{"A": {0.1}}})
	require.NoError(t, err)

	_, err = os.Stat(sink.StatsFile)
	assert.True(t, os.IsNotExist(err))

	staged.Discard()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func readTestJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
}
