package optimizer

import (
	"fmt"
	"math"
)

// combinationWarnThreshold is the combination count above which Expand
// records a performance warning. No hard cap is enforced.
const combinationWarnThreshold = 1000

// Expand produces the full Cartesian product of the optimizable dimensions
// in schema order, filling non-optimized parameters from their defaults.
//
// Both range endpoints are always tested: values step from min by step, and
// max is force-included when the last stepped value undershoots it. A
// dimension with NaN bounds or a non-positive step is frozen at its default
// and recorded as a warning instead of aborting the expansion. Expand never
// returns zero combinations; with nothing to optimize it returns the
// defaults as a singleton.
func Expand(specs []ParameterSpec) ([]Combination, []string) {
	var warnings []string

	combinations := []Combination{Defaults(specs)}

	for _, spec := range specs {
		if !spec.Optimizable() {
			continue
		}

		values, warning := gridValues(spec)
		if warning != "" {
			warnings = append(warnings, warning)
			continue
		}

		next := make([]Combination, 0, len(combinations)*len(values))

		for _, base := range combinations {
			for _, v := range values {
				combination := base.Clone()
				combination[spec.Name] = spec.value(v)
				next = append(next, combination)
			}
		}

		combinations = next
	}

	if len(combinations) > combinationWarnThreshold {
		warnings = append(warnings, fmt.Sprintf(
			"grid expansion produced %d combinations, evaluation may be slow", len(combinations)))
	}

	return combinations, warnings
}

// gridValues expands one dimension's range into its candidate values.
// A non-empty warning means the dimension must stay at its default.
func gridValues(spec ParameterSpec) ([]float64, string) {
	min := spec.Min.Unwrap()
	max := spec.Max.Unwrap()
	step := spec.Step.Unwrap()

	if math.IsNaN(min) || math.IsNaN(max) || math.IsNaN(step) {
		return nil, fmt.Sprintf(
			"parameter %q has NaN bounds (min=%v max=%v step=%v), using default", spec.Name, min, max, step)
	}

	if step <= 0 {
		return nil, fmt.Sprintf(
			"parameter %q has non-positive step %v, using default", spec.Name, step)
	}

	if max < min {
		return nil, fmt.Sprintf(
			"parameter %q has max %v below min %v, using default", spec.Name, max, min)
	}

	var values []float64

	// Index-based stepping avoids accumulating float error across iterations.
	for i := 0; ; i++ {
		v := min + float64(i)*step
		if v > max {
			break
		}

		values = append(values, v)
	}

	// Force-include max when stepping undershot it, so both endpoints are
	// always tested regardless of whether step divides the range evenly.
	if len(values) == 0 || values[len(values)-1] < max {
		values = append(values, max)
	}

	return values, ""
}
