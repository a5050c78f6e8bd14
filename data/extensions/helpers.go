package extensions

import (
	"cmp"
	"maps"
	"slices"
	"time"
)

type Number interface {
	~int | ~int32 | ~int64 | ~float32 | ~float64
}

// FilterMultiple return all elements that satisfy the predicate
func FilterMultiple[T any](elements []T, predicate func(T) bool) (results []T) {
	for _, element := range elements {
		if predicate(element) {
			results = append(results, element)
		}
	}
	return
}

// FilterMultiplePtr return all pointers that satisfy the predicate
func FilterMultiplePtr[T any](elements []*T, predicate func(*T) bool) (results []*T) {
	for _, element := range elements {
		if predicate(element) {
			results = append(results, element)
		}
	}
	return
}

// SortedKeys returns the keys of a map in ascending order
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	return slices.Sorted(maps.Keys(m))
}

// Combinations returns every unordered pair of elements, keeping the input order
// (a, b) with a before b.
func Combinations[T any](elements []T) [][2]T {
	n := len(elements)
	if n < 2 {
		return nil
	}

	res := make([][2]T, 0, n*(n-1)/2)
	for i := range n {
		for j := i + 1; j < n; j++ {
			res = append(res, [2]T{elements[i], elements[j]})
		}
	}
	return res
}

// FmtShort formats a time in a date only string
func FmtShort(t time.Time) string {
	return t.Format(time.DateOnly)
}

func Min[T Number](a, b T) T {
	if a < b {
		return a
	}
	return b
}
