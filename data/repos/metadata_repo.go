package repos

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	m "cryptostats/data/models"
	q "cryptostats/data/queries"
)

// GetMetaDataBySymbol returns nil, nil when the symbol has never been stored
func (pg *Postgres) GetMetaDataBySymbol(ctx context.Context, symbol string, tx pgx.Tx) (*m.CryptoMetadata, error) {
	args := pgx.NamedArgs{
		"symbol": symbol,
	}

	res, err := Query[m.CryptoMetadata](ctx, pg.executor(tx), q.Get(q.QueryHelper.Select.MetaDataBySymbol), args)
	if err != nil {
		return nil, fmt.Errorf("unable to query metadata by symbol (%s): %w", symbol, err)
	}

	if len(res) == 0 {
		return nil, nil
	}

	return res[0], nil
}

func (pg *Postgres) InsertNewMetaData(ctx context.Context, metadata *m.CryptoMetadata, tx pgx.Tx) error {
	args := pgx.NamedArgs{
		"symbol":             metadata.Symbol,
		"circulating_supply": metadata.CirculatingSupply,
		"market_cap":         metadata.MarketCap,
		"last_refreshed":     metadata.LastRefreshed,
	}

	err := pg.executor(tx).QueryRow(ctx, q.Get(q.QueryHelper.Insert.Metadata), args).Scan(&metadata.Id)
	if err != nil {
		return fmt.Errorf("error inserting new metadata: %w", err)
	}

	return nil
}

func (pg *Postgres) UpdateLastRefreshedDate(ctx context.Context, metadata *m.CryptoMetadata, tx pgx.Tx) error {
	args := pgx.NamedArgs{
		"symbol":             metadata.Symbol,
		"circulating_supply": metadata.CirculatingSupply,
		"market_cap":         metadata.MarketCap,
		"last_refreshed":     metadata.LastRefreshed,
	}

	if _, err := pg.executor(tx).Exec(ctx, q.Get(q.QueryHelper.Update.LastRefreshedDate), args); err != nil {
		return fmt.Errorf("error updating last refreshed date for %s: %w", metadata.Symbol, err)
	}

	return nil
}
