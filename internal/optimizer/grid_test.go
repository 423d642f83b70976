package optimizer

import (
	"math"
	"testing"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"
)

type GridTestSuite struct {
	suite.Suite
}

func TestGridSuite(t *testing.T) {
	suite.Run(t, new(GridTestSuite))
}

func intSpec(name string, def int, min, max, step float64) ParameterSpec {
	return ParameterSpec{
		Name:    name,
		Type:    TypeInt,
		Default: def,
		Min:     optional.Some(min),
		Max:     optional.Some(max),
		Step:    optional.Some(step),
	}
}

func (suite *GridTestSuite) TestEndpointsAlwaysIncluded() {
	combinations, warnings := Expand([]ParameterSpec{intSpec("period", 14, 5, 200, 5)})
	suite.Empty(warnings)
	suite.Len(combinations, 40)

	min, max := math.MaxInt, math.MinInt
	for _, c := range combinations {
		v, ok := c["period"].(int)
		suite.Require().True(ok)
		suite.GreaterOrEqual(v, 5)
		suite.LessOrEqual(v, 200)

		if v < min {
			min = v
		}

		if v > max {
			max = v
		}
	}

	suite.Equal(5, min)
	suite.Equal(200, max)
}

func (suite *GridTestSuite) TestMaxForceIncludedOnOvershoot() {
	combinations, warnings := Expand([]ParameterSpec{intSpec("period", 10, 10, 12, 5)})
	suite.Empty(warnings)
	suite.Require().Len(combinations, 2)
	suite.Equal(10, combinations[0]["period"])
	suite.Equal(12, combinations[1]["period"])
}

func (suite *GridTestSuite) TestNaNBoundsFreezeToDefault() {
	spec := ParameterSpec{
		Name:    "threshold",
		Type:    TypeFloat,
		Default: 30.0,
		Min:     optional.Some(math.NaN()),
		Max:     optional.Some(70.0),
		Step:    optional.Some(5.0),
	}

	combinations, warnings := Expand([]ParameterSpec{spec})
	suite.Require().Len(combinations, 1)
	suite.Equal(30.0, combinations[0]["threshold"])
	suite.Require().Len(warnings, 1)
	suite.Contains(warnings[0], "threshold")
}

func (suite *GridTestSuite) TestNonPositiveStepFreezesToDefault() {
	combinations, warnings := Expand([]ParameterSpec{intSpec("period", 14, 5, 20, 0)})
	suite.Require().Len(combinations, 1)
	suite.Equal(14, combinations[0]["period"])
	suite.Require().Len(warnings, 1)
	suite.Contains(warnings[0], "non-positive step")
}

func (suite *GridTestSuite) TestNoOptimizableDimensionsYieldsDefaults() {
	specs := []ParameterSpec{
		{Name: "period", Type: TypeInt, Default: 14},
		{Name: "source", Type: TypeString, Default: "close"},
	}

	combinations, warnings := Expand(specs)
	suite.Empty(warnings)
	suite.Require().Len(combinations, 1)
	suite.Equal(14, combinations[0]["period"])
	suite.Equal("close", combinations[0]["source"])
}

func (suite *GridTestSuite) TestEmptySpecListYieldsSingleton() {
	combinations, warnings := Expand(nil)
	suite.Empty(warnings)
	suite.Require().Len(combinations, 1)
	suite.Empty(combinations[0])
}

func (suite *GridTestSuite) TestEveryCombinationCoversFullSchema() {
	specs := []ParameterSpec{
		intSpec("fastPeriod", 10, 5, 10, 5),
		{Name: "source", Type: TypeString, Default: "close"},
		intSpec("slowPeriod", 30, 20, 30, 10),
	}

	combinations, warnings := Expand(specs)
	suite.Empty(warnings)
	suite.Len(combinations, 4)

	for _, c := range combinations {
		suite.Contains(c, "fastPeriod")
		suite.Contains(c, "slowPeriod")
		suite.Equal("close", c["source"])
	}
}

func (suite *GridTestSuite) TestEnumerationOrderIsDeterministic() {
	specs := []ParameterSpec{
		intSpec("a", 1, 1, 2, 1),
		intSpec("b", 1, 1, 2, 1),
	}

	combinations, _ := Expand(specs)
	suite.Require().Len(combinations, 4)

	// First dimension varies slowest, in schema order.
	suite.Equal(1, combinations[0]["a"])
	suite.Equal(1, combinations[0]["b"])
	suite.Equal(1, combinations[1]["a"])
	suite.Equal(2, combinations[1]["b"])
	suite.Equal(2, combinations[2]["a"])
	suite.Equal(1, combinations[2]["b"])
	suite.Equal(2, combinations[3]["a"])
	suite.Equal(2, combinations[3]["b"])
}

func (suite *GridTestSuite) TestLargeGridWarnsWithoutCapping() {
	specs := []ParameterSpec{
		intSpec("a", 1, 1, 11, 1),
		intSpec("b", 1, 1, 10, 1),
		intSpec("c", 1, 1, 10, 1),
	}

	combinations, warnings := Expand(specs)
	suite.Len(combinations, 1100)
	suite.Require().Len(warnings, 1)
	suite.Contains(warnings[0], "1100 combinations")
}

func (suite *GridTestSuite) TestFloatStepUndershootKeepsMax() {
	spec := ParameterSpec{
		Name:    "ratio",
		Type:    TypeFloat,
		Default: 0.5,
		Min:     optional.Some(0.1),
		Max:     optional.Some(0.4),
		Step:    optional.Some(0.1),
	}

	combinations, warnings := Expand([]ParameterSpec{spec})
	suite.Empty(warnings)

	last := combinations[len(combinations)-1]["ratio"].(float64)
	suite.Equal(0.4, last)
}

func (suite *GridTestSuite) TestCombinationClone() {
	original := Combination{"period": 14, "source": "close"}
	clone := original.Clone()
	clone["period"] = 28

	suite.Equal(14, original["period"])
	suite.Equal(28, clone["period"])
}

func (suite *GridTestSuite) TestOptimizableRequiresAllBounds() {
	spec := ParameterSpec{
		Name:    "period",
		Type:    TypeInt,
		Default: 14,
		Min:     optional.Some(5.0),
		Max:     optional.Some(20.0),
	}

	suite.False(spec.Optimizable())

	spec.Step = optional.Some(5.0)
	suite.True(spec.Optimizable())
}

func (suite *GridTestSuite) TestInvertedRangeFreezesToDefault() {
	combinations, warnings := Expand([]ParameterSpec{intSpec("period", 14, 20, 5, 5)})
	suite.Require().Len(combinations, 1)
	suite.Equal(14, combinations[0]["period"])
	suite.Require().Len(warnings, 1)
}
