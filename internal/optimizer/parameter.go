package optimizer

import (
	"math"

	"github.com/moznion/go-optional"
)

// ParameterType defines the data type of a strategy parameter.
type ParameterType string

const (
	// TypeInt represents integer parameters
	TypeInt ParameterType = "int"
	// TypeFloat represents floating-point parameters
	TypeFloat ParameterType = "float"
	// TypeBool represents boolean parameters
	TypeBool ParameterType = "bool"
	// TypeString represents string parameters
	TypeString ParameterType = "string"
)

// ParameterSpec describes one parameter of a strategy's schema. Numeric
// parameters may carry min/max/step bounds, in which case grid expansion
// branches over them; parameters without bounds stay at their default.
type ParameterSpec struct {
	// Name of the parameter.
	Name string
	// Description of what the parameter does.
	Description string
	// Type of the parameter.
	Type ParameterType
	// Default value. Fills the combination when the dimension is not optimized.
	Default any
	// Min is the inclusive lower bound for grid expansion.
	Min optional.Option[float64]
	// Max is the inclusive upper bound for grid expansion.
	Max optional.Option[float64]
	// Step is the grid increment between Min and Max.
	Step optional.Option[float64]
}

// Optimizable reports whether the parameter carries a complete numeric range.
func (s ParameterSpec) Optimizable() bool {
	return s.Min.IsSome() && s.Max.IsSome() && s.Step.IsSome()
}

// value converts a stepped grid value to the parameter's declared type.
func (s ParameterSpec) value(v float64) any {
	if s.Type == TypeInt {
		return int(math.Round(v))
	}

	return v
}

// Combination maps parameter names to concrete values. Every combination
// produced by the grid contains a value for every parameter in the schema.
type Combination map[string]any

// Clone creates a deep copy of the combination.
func (c Combination) Clone() Combination {
	clone := make(Combination, len(c))
	for k, v := range c {
		clone[k] = v
	}

	return clone
}

// Defaults builds the combination holding every spec's default value.
func Defaults(specs []ParameterSpec) Combination {
	combination := make(Combination, len(specs))
	for _, spec := range specs {
		combination[spec.Name] = spec.Default
	}

	return combination
}
