package render

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Method selects how attribute values are split into classes.
type Method string

const (
	// EqualInterval splits the value range into classes of equal width.
	EqualInterval Method = "equal"
	// Quantile puts roughly the same number of features in each class.
	Quantile Method = "quantile"
)

// Breaks computes the n-1 inner class boundaries for n classes. The
// boundaries are ascending; Classify maps a value to its class with them.
func Breaks(values []float64, n int, method Method) ([]float64, error) {
	if n < 2 {
		return nil, fmt.Errorf("need at least 2 classes, got %d", n)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("no values to classify")
	}

	switch method {
	case EqualInterval:
		min, max := values[0], values[0]
		for _, v := range values {
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		if min == max {
			return nil, fmt.Errorf("all values equal (%v); nothing to classify", min)
		}

		width := (max - min) / float64(n)
		out := make([]float64, n-1)
		for i := range out {
			out[i] = min + width*float64(i+1)
		}
		return out, nil

	case Quantile:
		sorted := make([]float64, len(values))
		copy(sorted, values)
		sort.Float64s(sorted)

		out := make([]float64, n-1)
		for i := range out {
			p := float64(i+1) / float64(n)
			out[i] = stat.Quantile(p, stat.Empirical, sorted, nil)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unknown classification method %q", method)
	}
}

// Classify returns the class index (0-based) of a value given ascending
// inner breaks.
func Classify(v float64, breaks []float64) int {
	for i, b := range breaks {
		if v <= b {
			return i
		}
	}
	return len(breaks)
}
