package models

import "time"

// ReturnStats is the summary for one symbol at one month end
type ReturnStats struct {
	Symbol          string  `json:"symbol"`
	Return          float64 `json:"return"`
	Sharpe          float64 `json:"sharpe"`
	Sortino         float64 `json:"sortino"`
	RankCorrelation float64 `json:"rankCorrelation"`
}

// PairCorrelation is the pearson correlation of two symbols' return histories, pair is "A,B"
type PairCorrelation struct {
	Pair        string  `json:"pair"`
	Correlation float64 `json:"correlation"`
}

// AggregateStats is keyed by month end, then symbol
type AggregateStats map[string]map[string]ReturnStats

// PairCorrelationTable is keyed by month end
type PairCorrelationTable map[string][]PairCorrelation

// MonthlyStatistics is everything one run of the monthly returns engine produces.
// All per symbol series are index aligned with Boundaries.
type MonthlyStatistics struct {
	Start            string               `json:"start"`
	End              string               `json:"end"`
	Boundaries       []string             `json:"boundaries"`
	Returns          map[string][]float64 `json:"returns"`
	MarketCaps       map[string][]float64 `json:"marketCaps"`
	RankCorrelations map[string][]float64 `json:"rankCorrelations"`
	Stats            AggregateStats       `json:"stats"`
	Correlations     PairCorrelationTable `json:"correlations"`
}

// StatisticsRun is a row of statistics_run
type StatisticsRun struct {
	Id        int32     `db:"id"`
	StartDate time.Time `db:"start_date"`
	EndDate   time.Time `db:"end_date"`
	CreatedAt time.Time `db:"created_at"`
}
