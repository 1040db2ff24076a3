package formula

import (
	"math"
	"strings"
)

// variadic marks a builtin that accepts one or more arguments.
const variadic = -1

type builtin struct {
	arity int
	call  func(args []float64) float64
}

func unary(f func(float64) float64) builtin {
	return builtin{arity: 1, call: func(a []float64) float64 { return f(a[0]) }}
}

func binary(f func(float64, float64) float64) builtin {
	return builtin{arity: 2, call: func(a []float64) float64 { return f(a[0], a[1]) }}
}

var builtins = map[string]builtin{
	"abs":   unary(math.Abs),
	"sqrt":  unary(math.Sqrt),
	"cbrt":  unary(math.Cbrt),
	"exp":   unary(math.Exp),
	"expm1": unary(math.Expm1),
	"log":   unary(math.Log),
	"ln":    unary(math.Log),
	"log10": unary(math.Log10),
	"log2":  unary(math.Log2),
	"log1p": unary(math.Log1p),
	"sin":   unary(math.Sin),
	"cos":   unary(math.Cos),
	"tan":   unary(math.Tan),
	"asin":  unary(math.Asin),
	"acos":  unary(math.Acos),
	"atan":  unary(math.Atan),
	"sinh":  unary(math.Sinh),
	"cosh":  unary(math.Cosh),
	"tanh":  unary(math.Tanh),
	"floor": unary(math.Floor),
	"ceil":  unary(math.Ceil),
	"trunc": unary(math.Trunc),
	"round": unary(roundHalfUp),
	"sign":  unary(sign),
	"atan2": binary(math.Atan2),
	"pow":   binary(math.Pow),
	"hypot": binary(math.Hypot),
	"min":   {arity: variadic, call: minOf},
	"max":   {arity: variadic, call: maxOf},
}

var constants = map[string]float64{
	"pi": math.Pi,
	"PI": math.Pi,
	"e":  math.E,
	"E":  math.E,
}

// canonicalName strips the optional "Math." prefix legacy formulas use.
func canonicalName(name string) string {
	return strings.TrimPrefix(name, "Math.")
}

// roundHalfUp rounds half-way cases towards positive infinity.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

func sign(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return v
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return v
}

func minOf(args []float64) float64 {
	m := math.Inf(1)
	for _, v := range args {
		if math.IsNaN(v) {
			return v
		}
		m = math.Min(m, v)
	}
	return m
}

func maxOf(args []float64) float64 {
	m := math.Inf(-1)
	for _, v := range args {
		if math.IsNaN(v) {
			return v
		}
		m = math.Max(m, v)
	}
	return m
}
