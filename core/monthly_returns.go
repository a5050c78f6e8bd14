package core

import (
	"strings"

	ex "cryptostats/data/extensions"
	m "cryptostats/data/models"
)

// GetMonthlyReturnsAndStatistics walks the month ends between start and end and, for every
// symbol in the store, derives the monthly return, its risk ratios to date and the rank
// correlation between its returns and market caps. After each month the return histories
// of every pair of symbols are correlated.
//
// A symbol without a positive close on a month end it is asked for fails the whole run with
// a MissingDataError. Ratios and correlations that cannot be computed are recorded as 0.
func GetMonthlyReturnsAndStatistics(store m.TimeSeriesStore, start, end string, observer Observer) (*m.MonthlyStatistics, error) {
	s, e, err := ValidateRange(start, end)
	if err != nil {
		return nil, err
	}

	if observer == nil {
		observer = nopObserver{}
	}

	res := &m.MonthlyStatistics{
		Start:            ex.FmtShort(s),
		End:              ex.FmtShort(e),
		Boundaries:       []string{},
		Returns:          make(map[string][]float64),
		MarketCaps:       make(map[string][]float64),
		RankCorrelations: make(map[string][]float64),
		Stats:            make(m.AggregateStats),
		Correlations:     make(m.PairCorrelationTable),
	}

	symbols := ex.SortedKeys(store)

	for prev, cur := range MonthEndBoundaries(s, e) {
		previous, current := ex.FmtShort(prev), ex.FmtShort(cur)
		res.Boundaries = append(res.Boundaries, current)

		for _, symbol := range symbols {
			stats, err := addMonth(res, store, symbol, previous, current)
			if err != nil {
				return nil, err
			}
			observer.OnReturn(previous, current, stats)
		}

		correlations := pairCorrelations(res.Returns)
		if len(correlations) > 0 {
			res.Correlations[current] = correlations
			observer.OnCorrelations(current, correlations)
		}
	}

	return res, nil
}

// addMonth appends the symbol's return and market cap for the month and recomputes its
// statistics over the whole history
func addMonth(res *m.MonthlyStatistics, store m.TimeSeriesStore, symbol, previous, current string) (m.ReturnStats, error) {
	closeCur, err := closeOn(store, symbol, current)
	if err != nil {
		return m.ReturnStats{}, err
	}
	closePrev, err := closeOn(store, symbol, previous)
	if err != nil {
		return m.ReturnStats{}, err
	}

	ret := closeCur/closePrev - 1
	marketCap, _ := store.MarketCap(symbol, current)

	returns := append(res.Returns[symbol], ret)
	caps := append(res.MarketCaps[symbol], marketCap)
	res.Returns[symbol] = returns
	res.MarketCaps[symbol] = caps

	rankCorr := orZero(RankCorrelation(returns, caps))
	res.RankCorrelations[symbol] = append(res.RankCorrelations[symbol], rankCorr)

	stats := m.ReturnStats{
		Symbol:          symbol,
		Return:          ret,
		Sharpe:          orZero(SharpeRatio(returns, len(returns), nil)),
		Sortino:         orZero(SortinoRatio(returns, len(returns), 0)),
		RankCorrelation: rankCorr,
	}

	if res.Stats[current] == nil {
		res.Stats[current] = make(map[string]m.ReturnStats)
	}
	res.Stats[current][symbol] = stats

	return stats, nil
}

// closeOn is the close of the symbol on the date, which has to be present and positive
func closeOn(store m.TimeSeriesStore, symbol, date string) (float64, error) {
	c, ok := store.Close(symbol, date)
	if !ok || c <= 0 {
		return 0, &ex.MissingDataError{Symbol: symbol, Date: date}
	}
	return c, nil
}

// pairCorrelations correlates the full return history of every pair of symbols that has one,
// pairs are named "A,B" with A sorting first
func pairCorrelations(returns map[string][]float64) []m.PairCorrelation {
	symbols := ex.FilterMultiple(ex.SortedKeys(returns), func(s string) bool { return len(returns[s]) > 0 })

	pairs := ex.Combinations(symbols)
	res := make([]m.PairCorrelation, 0, len(pairs))
	for _, p := range pairs {
		res = append(res, m.PairCorrelation{
			Pair:        strings.Join(p[:], ","),
			Correlation: orZero(Correlation(returns[p[0]], returns[p[1]])),
		})
	}
	return res
}

// orZero drops the error of a statistic that degrades to 0
func orZero(v float64, err error) float64 {
	if err != nil {
		return 0
	}
	return v
}
