package repos

import (
	"context"
	"fmt"
	"time"

	"github.com/guregu/null/v6"
	"github.com/jackc/pgx/v5"

	ex "cryptostats/data/extensions"
	m "cryptostats/data/models"
	q "cryptostats/data/queries"
)

const timeSeriesTable = "crypto_time_series_data"

var timeSeriesColumns = []string{
	"source_id", "date", "open", "high", "low", "close", "volume", "close_time",
	"quote_volume", "trade_count", "taker_buy_base", "taker_buy_quote", "ignore", "market_cap",
}

// GetTimeSeriesStore loads every stored symbol into the same shape, and the same values, the
// json store file has
func (pg *Postgres) GetTimeSeriesStore(ctx context.Context) (m.TimeSeriesStore, error) {
	rows, err := Query[m.TimeSeriesData](ctx, pg.db, q.Get(q.QueryHelper.Select.TimeSeriesData), pgx.NamedArgs{})
	if err != nil {
		return nil, fmt.Errorf("unable to query time series store: %w", err)
	}

	store := make(m.TimeSeriesStore)
	for _, row := range rows {
		if store[row.Symbol] == nil {
			store[row.Symbol] = make(m.SymbolSeries)
		}
		store[row.Symbol][ex.FmtShort(row.Date)] = row.ToKline()
	}

	return store, nil
}

// GetMostRecentDateForSymbol returns an invalid null.Time when nothing is stored for the symbol
func (pg *Postgres) GetMostRecentDateForSymbol(ctx context.Context, symbol string, tx pgx.Tx) (null.Time, error) {
	args := pgx.NamedArgs{
		"symbol": symbol,
	}

	var mrd null.Time
	if err := pg.executor(tx).QueryRow(ctx, q.Get(q.QueryHelper.Select.MostRecentDateBySymbol), args).Scan(&mrd); err != nil {
		return null.Time{}, fmt.Errorf("error getting most recent date for %s: %w", symbol, err)
	}
	return mrd, nil
}

func (pg *Postgres) InsertTimeSeriesData(ctx context.Context, data []*m.TimeSeriesData, tx pgx.Tx) (int64, error) {
	entries := make([][]any, len(data))
	for i, ent := range data {
		entries[i] = []any{
			ent.SourceId, ent.Date, ent.Open, ent.High, ent.Low, ent.Close, ent.Volume, ent.CloseTime,
			ent.QuoteVolume, ent.TradeCount, ent.TakerBuyBase, ent.TakerBuyQuote, ent.Ignore, ent.MarketCap,
		}
	}

	return pg.BulkInsert(ctx, timeSeriesTable, timeSeriesColumns, entries, tx)
}

// SaveSymbolTimeSeries stores the rows of a symbol newer than what is already in the db, and
// refreshes its supply and market cap, all in one transaction
func (pg *Postgres) SaveSymbolTimeSeries(ctx context.Context, rank m.MarketCapRank, series m.SymbolSeries) (int64, error) {
	tx, err := pg.GetTransaction(ctx)
	if err != nil {
		return 0, fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) // this will kick off if we return before committing

	md, err := pg.GetMetaDataBySymbol(ctx, rank.Symbol, tx)
	if err != nil {
		return 0, err
	}

	if md == nil {
		md = &m.CryptoMetadata{Symbol: rank.Symbol}
		if err := pg.InsertNewMetaData(ctx, md, tx); err != nil {
			return 0, fmt.Errorf("error adding %s to db: %w", rank.Symbol, err)
		}
	}

	mrd, err := pg.GetMostRecentDateForSymbol(ctx, rank.Symbol, tx)
	if err != nil {
		return 0, err
	}

	rows := make([]*m.TimeSeriesData, 0, len(series))
	for _, date := range ex.SortedKeys(series) {
		row, err := m.NewTimeSeriesData(md.Id, date, series[date])
		if err != nil {
			return 0, err
		}
		rows = append(rows, row)
	}

	f := func(d *m.TimeSeriesData) bool { return !mrd.Valid || d.Date.After(mrd.Time) }
	toInsert := ex.FilterMultiplePtr(rows, f)

	var ra int64
	if len(toInsert) > 0 {
		ra, err = pg.InsertTimeSeriesData(ctx, toInsert, tx)
		if err != nil {
			return 0, fmt.Errorf("error inserting time series data: %w", err)
		}
	}

	md.CirculatingSupply = null.FloatFrom(rank.Supply)
	md.MarketCap = null.FloatFrom(rank.MarketCap)
	md.LastRefreshed = null.TimeFrom(time.Now().UTC())
	if err := pg.UpdateLastRefreshedDate(ctx, md, tx); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("error committing transaction for symbol %s: %w", rank.Symbol, err)
	}

	return ra, nil
}
