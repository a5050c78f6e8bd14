package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	ex "cryptostats/data/extensions"
)

// BinanceKlineValues is the number of values binance sends per kline after the open time
const BinanceKlineValues = 11

// klineFields is the number of elements in the persisted array form of a Kline:
// the binance values after the open time, then the market cap.
const klineFields = BinanceKlineValues + 1

// Kline is one daily candle for a symbol with the market cap at its close
type Kline struct {
	Open          float64
	High          float64
	Low           float64
	Close         float64
	Volume        float64
	CloseTime     int64
	QuoteVolume   float64
	TradeCount    int64
	TakerBuyBase  float64
	TakerBuyQuote float64
	Ignore        float64
	MarketCap     float64
}

// SymbolSeries maps a date (YYYY-MM-DD) to the kline for that day
type SymbolSeries map[string]*Kline

// TimeSeriesStore maps a symbol to its daily series
type TimeSeriesStore map[string]SymbolSeries

// Close returns the close price for the symbol on the date, and whether it exists
func (ts TimeSeriesStore) Close(symbol, date string) (float64, bool) {
	k, ok := ts.lookup(symbol, date)
	if !ok {
		return 0, false
	}
	return k.Close, true
}

// MarketCap returns the market cap for the symbol on the date, and whether it exists
func (ts TimeSeriesStore) MarketCap(symbol, date string) (float64, bool) {
	k, ok := ts.lookup(symbol, date)
	if !ok {
		return 0, false
	}
	return k.MarketCap, true
}

func (ts TimeSeriesStore) lookup(symbol, date string) (*Kline, bool) {
	series, ok := ts[symbol]
	if !ok {
		return nil, false
	}
	k, ok := series[date]
	if !ok || k == nil {
		return nil, false
	}
	return k, true
}

// MarshalJSON writes the kline in the same positional form binance uses,
// prices as strings and the market cap appended as a number
func (k Kline) MarshalJSON() ([]byte, error) {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return json.Marshal([]any{
		f(k.Open), f(k.High), f(k.Low), f(k.Close), f(k.Volume),
		k.CloseTime,
		f(k.QuoteVolume),
		k.TradeCount,
		f(k.TakerBuyBase), f(k.TakerBuyQuote), f(k.Ignore),
		k.MarketCap,
	})
}

// UnmarshalJSON validates the positional form at the ingestion boundary.
// Every element has to be a finite number, either as a json number or a numeric string.
func (k *Kline) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: kline is not an array: %v", ex.ErrInvalidInput, err)
	}

	if len(raw) != klineFields {
		return ex.InvalidInputf("kline has %d elements, expected %d", len(raw), klineFields)
	}

	parsed, err := KlineFromBinance(raw[:BinanceKlineValues])
	if err != nil {
		return err
	}

	mc, err := ParseNumber(raw[BinanceKlineValues])
	if err != nil {
		return fmt.Errorf("kline element %d: %w", BinanceKlineValues, err)
	}
	parsed.MarketCap = mc

	*k = *parsed
	return nil
}

// KlineFromBinance builds a kline from the values binance sends after the open time.
// The market cap is left at 0 for the caller to fill in.
func KlineFromBinance(values []json.RawMessage) (*Kline, error) {
	if len(values) != BinanceKlineValues {
		return nil, ex.InvalidInputf("kline has %d values after the open time, expected %d", len(values), BinanceKlineValues)
	}

	v := make([]float64, BinanceKlineValues)
	for i, raw := range values {
		n, err := ParseNumber(raw)
		if err != nil {
			return nil, fmt.Errorf("kline element %d: %w", i, err)
		}
		v[i] = n
	}

	return &Kline{
		Open:          v[0],
		High:          v[1],
		Low:           v[2],
		Close:         v[3],
		Volume:        v[4],
		CloseTime:     int64(v[5]),
		QuoteVolume:   v[6],
		TradeCount:    int64(v[7]),
		TakerBuyBase:  v[8],
		TakerBuyQuote: v[9],
		Ignore:        v[10],
	}, nil
}

// ParseNumber reads a json number or a quoted numeric string. NaN and infinities are
// rejected, strconv would otherwise accept them in the quoted form.
func ParseNumber(raw json.RawMessage) (float64, error) {
	var f float64

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err = strconv.ParseFloat(s, 64); err != nil {
			return 0, fmt.Errorf("%w: value %q is not numeric", ex.ErrInvalidInput, s)
		}
	} else if err := json.Unmarshal(raw, &f); err != nil {
		return 0, fmt.Errorf("%w: value %s is not numeric", ex.ErrInvalidInput, string(raw))
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: value %s is not finite", ex.ErrInvalidInput, string(raw))
	}
	return f, nil
}

// TimeSeriesData is a row of crypto_time_series_data
type TimeSeriesData struct {
	SourceId      int32     `db:"source_id"`
	Symbol        string    `db:"symbol"`
	Date          time.Time `db:"date"`
	Open          float64   `db:"open"`
	High          float64   `db:"high"`
	Low           float64   `db:"low"`
	Close         float64   `db:"close"`
	Volume        float64   `db:"volume"`
	CloseTime     int64     `db:"close_time"`
	QuoteVolume   float64   `db:"quote_volume"`
	TradeCount    int64     `db:"trade_count"`
	TakerBuyBase  float64   `db:"taker_buy_base"`
	TakerBuyQuote float64   `db:"taker_buy_quote"`
	Ignore        float64   `db:"ignore"`
	MarketCap     float64   `db:"market_cap"`
}

func (d *TimeSeriesData) ToKline() *Kline {
	return &Kline{
		Open:          d.Open,
		High:          d.High,
		Low:           d.Low,
		Close:         d.Close,
		Volume:        d.Volume,
		CloseTime:     d.CloseTime,
		QuoteVolume:   d.QuoteVolume,
		TradeCount:    d.TradeCount,
		TakerBuyBase:  d.TakerBuyBase,
		TakerBuyQuote: d.TakerBuyQuote,
		Ignore:        d.Ignore,
		MarketCap:     d.MarketCap,
	}
}

// NewTimeSeriesData builds a db row from a kline, date must be YYYY-MM-DD
func NewTimeSeriesData(sourceId int32, date string, k *Kline) (*TimeSeriesData, error) {
	d, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return nil, fmt.Errorf("%w: date %s: %v", ex.ErrInvalidInput, date, err)
	}

	return &TimeSeriesData{
		SourceId:      sourceId,
		Date:          d,
		Open:          k.Open,
		High:          k.High,
		Low:           k.Low,
		Close:         k.Close,
		Volume:        k.Volume,
		CloseTime:     k.CloseTime,
		QuoteVolume:   k.QuoteVolume,
		TradeCount:    k.TradeCount,
		TakerBuyBase:  k.TakerBuyBase,
		TakerBuyQuote: k.TakerBuyQuote,
		Ignore:        k.Ignore,
		MarketCap:     k.MarketCap,
	}, nil
}
