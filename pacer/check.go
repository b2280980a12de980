/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package pacer

import (
	"fmt"
	"math"

	"github.com/Knetic/govaluate"
)

// CheckHelp is a help message used by flags in main
const CheckHelp = `The check expression decides whether a loop kept its cadence:
supported operations:
  evaluation is done with govaluate, please check https://github.com/Knetic/govaluate/blob/master/MANUAL.md
supported variables (seconds unless noted):
  period (desired period)
  mean, stddev (of signed per-cycle drift)
  p50, p99, max (of absolute per-cycle drift)
  accumulated (accumulated error after the last sample)
  samples, clamped, resets (counts)
supported functions:
  abs(value) - absolute value of single float64, for example abs(-1) = 1`

// DefaultCheck passes while the loop is within one period of its schedule
const DefaultCheck = "abs(accumulated) < period"

var checkVariables = []string{
	"period",
	"mean",
	"stddev",
	"p50",
	"p99",
	"max",
	"accumulated",
	"samples",
	"clamped",
	"resets",
}

func isSupportedVar(varName string) bool {
	for _, v := range checkVariables {
		if v == varName {
			return true
		}
	}
	return false
}

var checkFunctions = map[string]govaluate.ExpressionFunction{
	"abs": func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("abs: wrong number of arguments: want 1, got %d", len(args))
		}
		val, ok := args[0].(float64)
		if !ok {
			return nil, fmt.Errorf("abs: argument must be a number")
		}
		return math.Abs(val), nil
	},
}

func prepareCheck(exprStr string) (*govaluate.EvaluableExpression, error) {
	expr, err := govaluate.NewEvaluableExpressionWithFunctions(exprStr, checkFunctions)
	if err != nil {
		return nil, err
	}
	for _, v := range expr.Vars() {
		if !isSupportedVar(v) {
			return nil, fmt.Errorf("unsupported variable %q", v)
		}
	}
	return expr, nil
}

// Parameters returns Summary as check expression variables
func (s Summary) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"period":      s.Period,
		"mean":        s.MeanDrift,
		"stddev":      s.StddevDrift,
		"p50":         s.P50Drift,
		"p99":         s.P99Drift,
		"max":         s.MaxDrift,
		"accumulated": s.AccumulatedError,
		"samples":     float64(s.Samples),
		"clamped":     float64(s.Clamped),
		"resets":      float64(s.Resets),
	}
}

// Evaluate runs the check expression against the summary. Config must be validated first.
func (c *Config) Evaluate(s Summary) (bool, error) {
	if c.checkExpr == nil {
		return false, fmt.Errorf("check expression is not prepared, call EvalAndValidate first")
	}
	res, err := c.checkExpr.Evaluate(s.Parameters())
	if err != nil {
		return false, fmt.Errorf("evaluating check %q: %w", c.Check, err)
	}
	ok, isBool := res.(bool)
	if !isBool {
		return false, fmt.Errorf("check %q returned %v, want boolean", c.Check, res)
	}
	return ok, nil
}
