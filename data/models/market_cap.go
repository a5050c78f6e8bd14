package models

import (
	"github.com/guregu/null/v6"
)

// MarketCapRank is one entry of the top n ranking by market cap
type MarketCapRank struct {
	Symbol    string  `json:"symbol"`
	MarketCap float64 `json:"marketCap"`
	Supply    float64 `json:"supply"`
}

// CryptoMetadata is a row of crypto_metadata, supply and market cap are null until the
// first ranking that includes the symbol has been stored
type CryptoMetadata struct {
	Id                int32      `db:"id"`
	Symbol            string     `db:"symbol"`
	CirculatingSupply null.Float `db:"circulating_supply"`
	MarketCap         null.Float `db:"market_cap"`
	LastRefreshed     null.Time  `db:"last_refreshed"`
}
