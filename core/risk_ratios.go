package core

import (
	"fmt"
	"math"

	ex "cryptostats/data/extensions"
	sm "cryptostats/models"
)

// SharpeRatio is the mean excess return over the standard deviation of returns. A nil
// riskFreeRates means a risk free rate of zero. Histories longer than a year are annualized.
func SharpeRatio(returns []float64, periodCount int, riskFreeRates []float64) (float64, error) {
	if riskFreeRates == nil {
		riskFreeRates = make([]float64, len(returns))
	}

	excess, err := Subtract(returns, riskFreeRates)
	if err != nil {
		return 0, err
	}

	rm, err := Mean(excess)
	if err != nil {
		return 0, err
	}

	s, err := StandardDeviation(returns)
	if err != nil {
		return 0, err
	}

	return riskAdjusted(rm, s, periodCount)
}

// SortinoRatio only looks at the returns below mar. It is 0 when there are none.
func SortinoRatio(returns []float64, periodCount int, mar float64) (float64, error) {
	downside := ex.FilterMultiple(returns, func(r float64) bool { return r < mar })
	if len(downside) == 0 {
		return 0, nil
	}

	dm, err := Mean(downside)
	if err != nil {
		return 0, err
	}

	s, err := StandardDeviation(downside)
	if err != nil {
		return 0, err
	}

	return riskAdjusted(dm-mar, s, periodCount)
}

func riskAdjusted(rm, s float64, periodCount int) (float64, error) {
	if periodCount > sm.Monthly {
		var err error
		if rm, err = Annualize(rm, periodCount, sm.Monthly); err != nil {
			return 0, err
		}
		s *= math.Sqrt(sm.Monthly)
	}

	if s == 0 {
		return 0, fmt.Errorf("%w: standard deviation is zero", ex.ErrComputation)
	}

	return rm / s, nil
}
