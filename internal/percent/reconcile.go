// Package percent turns category magnitudes into two-decimal proportions
// that add up to exactly 1.00.
package percent

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

const unit = 0.01

// Round2 rounds half-to-even to two decimals.
func Round2(x float64) float64 {
	return math.RoundToEven(x*100) / 100
}

// Reconcile returns one proportion per value. Each proportion is rounded to
// whole percent and the rounded set always sums to 1.00.
func Reconcile(values ...float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	sum := floats.Sum(values)
	if sum <= 0 {
		return out
	}

	exact := make([]float64, len(values))
	for i, v := range values {
		exact[i] = v / sum * 100
		out[i] = math.RoundToEven(exact[i]) / 100
	}

	units := int(math.Round((Round2(floats.Sum(out)) - 1) * 100))
	switch {
	case units == 0:
		return out
	case units == 1 || units == -1:
		i := adjustIndex(out)
		// Empty slots, and slots the fix would push below zero, go through spread.
		if v := Round2(out[i] - float64(units)*unit); out[i] > 0 && v >= 0 {
			out[i] = v
			return out
		}
		spread(out, exact, units)
	default:
		spread(out, exact, units)
	}
	return out
}

// adjustIndex picks the slot that absorbs a single-unit rounding error. The
// scan looks for the first value breaking an all-equal prefix and must stay
// as is: historical reports depend on its choice.
func adjustIndex(p []float64) int {
	if len(p) <= 1 {
		return 0
	}
	start, cur := 0, 1
	for start != len(p) {
		if cur == len(p)-1 && p[cur] != p[start] {
			return start
		}
		if p[cur] == p[start] {
			start++
			cur = 0
		}
		cur++
	}
	return 0
}

// spread corrects a deviation of several units one unit at a time, at the
// slots whose rounding moved them furthest in the wrong direction.
func spread(out, exact []float64, units int) {
	order := make([]int, len(out))
	for i := range order {
		order[i] = i
	}
	// remainder > 0 means the slot was rounded down.
	rem := func(i int) float64 { return exact[i] - out[i]*100 }
	if units > 0 {
		sort.SliceStable(order, func(a, b int) bool { return rem(order[a]) < rem(order[b]) })
	} else {
		sort.SliceStable(order, func(a, b int) bool { return rem(order[a]) > rem(order[b]) })
	}

	step := unit
	n := units
	if units < 0 {
		step = -unit
		n = -units
	}
	for _, i := range order {
		if n == 0 {
			break
		}
		if step > 0 && out[i] < unit {
			continue
		}
		out[i] = Round2(out[i] - step)
		n--
	}
}
