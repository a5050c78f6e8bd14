package core

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	ex "cryptostats/data/extensions"
)

func Mean(xs []float64) (float64, error) {
	if len(xs) == 0 {
		return 0, fmt.Errorf("%w: mean of an empty series", ex.ErrDivideByZero)
	}
	return stat.Mean(xs, nil), nil
}

// Variance is the sample variance (n-1), so it needs at least two points
func Variance(xs []float64) (float64, error) {
	if len(xs) < 2 {
		return 0, ex.InvalidInputf("variance needs at least 2 points, got %d", len(xs))
	}
	return stat.Variance(xs, nil), nil
}

func StandardDeviation(xs []float64) (float64, error) {
	v, err := Variance(xs)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(v), nil
}

// Covariance is the sample covariance (n-1)
func Covariance(xs, ys []float64) (float64, error) {
	if len(xs) != len(ys) {
		return 0, fmt.Errorf("%w: covariance of %d and %d points", ex.ErrLengthMismatch, len(xs), len(ys))
	}
	if len(xs) < 2 {
		return 0, ex.InvalidInputf("covariance needs at least 2 points, got %d", len(xs))
	}
	return stat.Covariance(xs, ys, nil), nil
}

// Correlation is the pearson correlation. It is 0 when either series has no variation.
func Correlation(xs, ys []float64) (float64, error) {
	if len(xs) != len(ys) {
		return 0, fmt.Errorf("%w: correlation of %d and %d points", ex.ErrLengthMismatch, len(xs), len(ys))
	}

	sdx, err := StandardDeviation(xs)
	if err != nil {
		return 0, err
	}
	sdy, err := StandardDeviation(ys)
	if err != nil {
		return 0, err
	}

	if sdx == 0 || sdy == 0 {
		return 0, nil
	}

	cov, err := Covariance(xs, ys)
	if err != nil {
		return 0, err
	}

	// rounding can push a perfect correlation just past 1
	return math.Max(-1, math.Min(1, cov/sdx/sdy)), nil
}

// Rank returns the 1 based rank of each element in input order, ties share the average rank
func Rank(xs []float64) []float64 {
	order := make([]int, len(xs))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int { return cmp.Compare(xs[a], xs[b]) })

	ranks := make([]float64, len(xs))
	for i := 0; i < len(order); {
		j := i
		for j+1 < len(order) && xs[order[j+1]] == xs[order[i]] {
			j++
		}

		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[order[k]] = avg
		}
		i = j + 1
	}

	return ranks
}

// Annualize compounds a return over periodsPerYear periods into its equivalent over periodsInYear,
// months use models.Monthly
func Annualize(x float64, periodsPerYear, periodsInYear int) (float64, error) {
	if periodsPerYear <= 0 {
		return 0, ex.InvalidInputf("periods per year must be positive, got %d", periodsPerYear)
	}
	return math.Pow(1+x, float64(periodsInYear)/float64(periodsPerYear)) - 1, nil
}

// Subtract is the element wise xs - ys
func Subtract(xs, ys []float64) ([]float64, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("%w: subtract %d and %d points", ex.ErrLengthMismatch, len(xs), len(ys))
	}

	res := make([]float64, len(xs))
	for i := range xs {
		res[i] = xs[i] - ys[i]
	}
	return res, nil
}

// RankCorrelation is the pearson correlation of the rank transformed series
func RankCorrelation(xs, ys []float64) (float64, error) {
	if len(xs) != len(ys) {
		return 0, fmt.Errorf("%w: rank correlation of %d and %d points", ex.ErrLengthMismatch, len(xs), len(ys))
	}
	return Correlation(Rank(xs), Rank(ys))
}
