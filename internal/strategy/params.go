package strategy

import "github.com/Atypix/Smart100-sub002/internal/optimizer"

// ParamInt reads an integer parameter from a combination. Grid expansion
// stores typed ints while hand-written defaults may be float64 or int, so
// both representations are accepted.
func ParamInt(params optimizer.Combination, name string, fallback int) int {
	raw, ok := params[name]
	if !ok {
		return fallback
	}

	switch v := raw.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return fallback
	}
}

// ParamFloat reads a float parameter from a combination, accepting int and
// float64 representations.
func ParamFloat(params optimizer.Combination, name string, fallback float64) float64 {
	raw, ok := params[name]
	if !ok {
		return fallback
	}

	switch v := raw.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return fallback
	}
}

// ParamString reads a string parameter from a combination.
func ParamString(params optimizer.Combination, name string, fallback string) string {
	if v, ok := params[name].(string); ok {
		return v
	}

	return fallback
}

// ParamBool reads a boolean parameter from a combination.
func ParamBool(params optimizer.Combination, name string, fallback bool) bool {
	if v, ok := params[name].(bool); ok {
		return v
	}

	return fallback
}

// MergeParams overlays winning values onto a strategy's defaults. Values in
// override take precedence; every schema parameter is covered.
func MergeParams(specs []optimizer.ParameterSpec, override optimizer.Combination) optimizer.Combination {
	merged := optimizer.Defaults(specs)
	for k, v := range override {
		merged[k] = v
	}

	return merged
}
