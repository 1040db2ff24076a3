package formula

import (
	"math"
	"strconv"
	"strings"
)

// node is an element of a compiled formula. Evaluation is a pure function
// of the bound variable.
type node interface {
	eval(x float64) float64
	String() string
}

type numberNode struct {
	value float64
}

func (n numberNode) eval(float64) float64 { return n.value }

func (n numberNode) String() string {
	return strconv.FormatFloat(n.value, 'g', -1, 64)
}

type variableNode struct {
	name string
}

func (n variableNode) eval(x float64) float64 { return x }
func (n variableNode) String() string         { return n.name }

type unaryNode struct {
	op  tokenKind
	arg node
}

func (n unaryNode) eval(x float64) float64 {
	if n.op == tokMinus {
		return -n.arg.eval(x)
	}
	return n.arg.eval(x)
}

func (n unaryNode) String() string {
	if n.op == tokMinus {
		return "(-" + n.arg.String() + ")"
	}
	return n.arg.String()
}

type binaryNode struct {
	op          tokenKind
	left, right node
}

func (n binaryNode) eval(x float64) float64 {
	l, r := n.left.eval(x), n.right.eval(x)
	switch n.op {
	case tokPlus:
		return l + r
	case tokMinus:
		return l - r
	case tokStar:
		return l * r
	case tokSlash:
		return l / r
	case tokPercent:
		return math.Mod(l, r)
	case tokPow:
		return math.Pow(l, r)
	}
	return math.NaN()
}

var binarySymbols = map[tokenKind]string{
	tokPlus:    "+",
	tokMinus:   "-",
	tokStar:    "*",
	tokSlash:   "/",
	tokPercent: "%",
	tokPow:     "**",
}

func (n binaryNode) String() string {
	return "(" + n.left.String() + " " + binarySymbols[n.op] + " " + n.right.String() + ")"
}

type callNode struct {
	name string
	fn   builtin
	args []node
}

func (n callNode) eval(x float64) float64 {
	switch len(n.args) {
	case 1:
		return n.fn.call([]float64{n.args[0].eval(x)})
	case 2:
		return n.fn.call([]float64{n.args[0].eval(x), n.args[1].eval(x)})
	}
	vals := make([]float64, len(n.args))
	for i, a := range n.args {
		vals[i] = a.eval(x)
	}
	return n.fn.call(vals)
}

func (n callNode) String() string {
	parts := make([]string, len(n.args))
	for i, a := range n.args {
		parts[i] = a.String()
	}
	return n.name + "(" + strings.Join(parts, ", ") + ")"
}
