package extensions

import (
	"math"
	"testing"
)

func AssertAreEqual[T comparable](t *testing.T, name string, expected T, actual T) {
	t.Helper()
	if expected != actual {
		t.Fatalf("value mismatch for %s, expected %v, got %v", name, expected, actual)
	}
}

// AssertInDelta is AssertAreEqual for floats that went through arithmetic
func AssertInDelta(t *testing.T, name string, expected, actual, delta float64) {
	t.Helper()
	if math.Abs(expected-actual) > delta {
		t.Fatalf("value mismatch for %s, expected %v, got %v (delta %v)", name, expected, actual, delta)
	}
}

func AssertSliceInDelta(t *testing.T, name string, expected, actual []float64, delta float64) {
	t.Helper()
	if len(expected) != len(actual) {
		t.Fatalf("length mismatch for %s, expected %d, got %d", name, len(expected), len(actual))
	}
	for i := range expected {
		if math.Abs(expected[i]-actual[i]) > delta {
			t.Fatalf("value mismatch for %s[%d], expected %v, got %v", name, i, expected[i], actual[i])
		}
	}
}
