package binance

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"

	"cryptostats/api"
	ex "cryptostats/data/extensions"
	m "cryptostats/data/models"
)

type productsResponse struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Data    []product `json:"data"`
}

// product is one row of the exchange product list, only the fields we read
type product struct {
	Symbol     string     `json:"s"`
	BaseAsset  string     `json:"b"`
	QuoteAsset string     `json:"q"`
	LastPrice  string     `json:"c"`
	Supply     null.Float `json:"cs"`
}

// GetTopByMarketCap ranks the USDT quoted products by last price times circulating supply
// and returns the n largest. Products without a supply are skipped.
func (bc *BinanceClient) GetTopByMarketCap(ctx context.Context, n int) ([]m.MarketCapRank, error) {
	if n <= 0 {
		return nil, ex.InvalidInputf("n must be positive, got %d", n)
	}

	body, err := bc.web.Request(ctx, api.BuildRequestPath(productsPath, nil))
	if err != nil {
		return nil, err
	}

	return parseProducts(body, n)
}

func parseProducts(body []byte, n int) ([]m.MarketCapRank, error) {
	var res productsResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("%w: error unmarshaling products: %v", ex.ErrNetwork, err)
	}

	ranks := make([]m.MarketCapRank, 0, len(res.Data))
	for _, p := range res.Data {
		if !strings.HasSuffix(p.Symbol, QuoteAsset) || p.BaseAsset == "" {
			continue
		}
		if !p.Supply.Valid || p.Supply.Float64 <= 0 {
			continue
		}

		price, err := decimal.NewFromString(p.LastPrice)
		if err != nil {
			return nil, fmt.Errorf("%w: price %q for %s: %v", ex.ErrInvalidInput, p.LastPrice, p.Symbol, err)
		}

		supply := decimal.NewFromFloat(p.Supply.Float64)
		ranks = append(ranks, m.MarketCapRank{
			Symbol:    p.BaseAsset,
			MarketCap: price.Mul(supply).InexactFloat64(),
			Supply:    p.Supply.Float64,
		})
	}

	slices.SortStableFunc(ranks, func(a, b m.MarketCapRank) int {
		return cmp.Compare(b.MarketCap, a.MarketCap)
	})

	return ranks[:ex.Min(n, len(ranks))], nil
}
