package repos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	ex "cryptostats/data/extensions"
	m "cryptostats/data/models"
	q "cryptostats/data/queries"
)

var (
	monthlyReturnStatsColumns = []string{"run_id", "month_end", "symbol", "monthly_return", "sharpe", "sortino", "rank_correlation"}
	pairCorrelationColumns    = []string{"run_id", "month_end", "symbol_a", "symbol_b", "correlation"}
)

// InsertMonthlyStatistics stores one engine run, returning the run id and the number of
// stat and correlation rows written
func (pg *Postgres) InsertMonthlyStatistics(ctx context.Context, stats *m.MonthlyStatistics) (int32, int64, error) {
	start, err := time.Parse(time.DateOnly, stats.Start)
	if err != nil {
		return 0, 0, ex.InvalidInputf("run start %s: %v", stats.Start, err)
	}
	end, err := time.Parse(time.DateOnly, stats.End)
	if err != nil {
		return 0, 0, ex.InvalidInputf("run end %s: %v", stats.End, err)
	}

	statRows, err := monthlyReturnStatsRows(stats.Stats)
	if err != nil {
		return 0, 0, err
	}
	correlationRows, err := pairCorrelationRows(stats.Correlations)
	if err != nil {
		return 0, 0, err
	}

	tx, err := pg.GetTransaction(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	args := pgx.NamedArgs{
		"start_date": start,
		"end_date":   end,
	}

	var runId int32
	if err := tx.QueryRow(ctx, q.Get(q.QueryHelper.Insert.StatisticsRun), args).Scan(&runId); err != nil {
		return 0, 0, fmt.Errorf("error inserting statistics run: %w", err)
	}

	for _, r := range statRows {
		r[0] = runId
	}
	for _, r := range correlationRows {
		r[0] = runId
	}

	var total int64
	if len(statRows) > 0 {
		n, err := pg.BulkInsert(ctx, "monthly_return_stats", monthlyReturnStatsColumns, statRows, tx)
		if err != nil {
			return 0, 0, fmt.Errorf("error inserting monthly return stats: %w", err)
		}
		total += n
	}

	if len(correlationRows) > 0 {
		n, err := pg.BulkInsert(ctx, "pair_correlation", pairCorrelationColumns, correlationRows, tx)
		if err != nil {
			return 0, 0, fmt.Errorf("error inserting pair correlations: %w", err)
		}
		total += n
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, fmt.Errorf("error committing statistics run: %w", err)
	}

	return runId, total, nil
}

// the run id in the first column is filled in once the run row exists
func monthlyReturnStatsRows(stats m.AggregateStats) ([][]any, error) {
	var rows [][]any
	for _, monthEnd := range ex.SortedKeys(stats) {
		d, err := time.Parse(time.DateOnly, monthEnd)
		if err != nil {
			return nil, ex.InvalidInputf("month end %s: %v", monthEnd, err)
		}
		for _, symbol := range ex.SortedKeys(stats[monthEnd]) {
			s := stats[monthEnd][symbol]
			rows = append(rows, []any{int32(0), d, s.Symbol, s.Return, s.Sharpe, s.Sortino, s.RankCorrelation})
		}
	}
	return rows, nil
}

func pairCorrelationRows(correlations m.PairCorrelationTable) ([][]any, error) {
	var rows [][]any
	for _, monthEnd := range ex.SortedKeys(correlations) {
		d, err := time.Parse(time.DateOnly, monthEnd)
		if err != nil {
			return nil, ex.InvalidInputf("month end %s: %v", monthEnd, err)
		}
		for _, pc := range correlations[monthEnd] {
			a, b, ok := strings.Cut(pc.Pair, ",")
			if !ok {
				return nil, ex.InvalidInputf("pair %q is not of the form A,B", pc.Pair)
			}
			rows = append(rows, []any{int32(0), d, a, b, pc.Correlation})
		}
	}
	return rows, nil
}
