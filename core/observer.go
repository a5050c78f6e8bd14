package core

import (
	"github.com/sirupsen/logrus"

	m "cryptostats/data/models"
)

// Observer receives results as the engine produces them
type Observer interface {
	OnReturn(previous, current string, stats m.ReturnStats)
	OnCorrelations(monthEnd string, correlations []m.PairCorrelation)
}

type nopObserver struct{}

func (nopObserver) OnReturn(string, string, m.ReturnStats) {}
func (nopObserver) OnCorrelations(string, []m.PairCorrelation) {}

// LogObserver writes one line per monthly return and the most correlated pair of each month
type LogObserver struct {
	Logger logrus.FieldLogger
}

func (lo LogObserver) OnReturn(previous, current string, stats m.ReturnStats) {
	lo.Logger.WithFields(logrus.Fields{
		"previous":         previous,
		"month_end":        current,
		"symbol":           stats.Symbol,
		"return":           stats.Return,
		"sharpe":           stats.Sharpe,
		"sortino":          stats.Sortino,
		"rank_correlation": stats.RankCorrelation,
	}).Info("monthly return")
}

func (lo LogObserver) OnCorrelations(monthEnd string, correlations []m.PairCorrelation) {
	if len(correlations) == 0 {
		return
	}

	// first of the highest wins ties
	best := correlations[0]
	for _, pc := range correlations[1:] {
		if pc.Correlation > best.Correlation {
			best = pc
		}
	}

	lo.Logger.WithFields(logrus.Fields{
		"month_end":   monthEnd,
		"pair":        best.Pair,
		"correlation": best.Correlation,
	}).Info("pair with max correlation")
}
