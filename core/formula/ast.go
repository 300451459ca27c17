// Package formula - Expression AST and tree-walking evaluator
// The evaluator has no access to any ambient namespace: the single
// identifier `total` is bound to the subtotal argument and nothing
// else exists.
package formula

import (
	"github.com/shopspring/decimal"

	"glassquote/internal/errors"
)

// Node is an expression tree node
type Node interface {
	// Eval computes the node's value with `total` bound to total.
	// Arithmetic failures (division by zero) come back as
	// COMPUTATION_ERROR, never as a panic.
	Eval(total decimal.Decimal) (decimal.Decimal, error)

	// Walk visits the node and its children depth-first
	Walk(visit func(Node))
}

// NumberNode is a numeric literal
type NumberNode struct {
	Value decimal.Decimal
}

// Eval returns the literal value
func (n *NumberNode) Eval(total decimal.Decimal) (decimal.Decimal, error) {
	return n.Value, nil
}

// Walk visits the literal
func (n *NumberNode) Walk(visit func(Node)) {
	visit(n)
}

// TotalNode is the single bound identifier `total`
type TotalNode struct{}

// Eval returns the bound subtotal
func (n *TotalNode) Eval(total decimal.Decimal) (decimal.Decimal, error) {
	return total, nil
}

// Walk visits the identifier
func (n *TotalNode) Walk(visit func(Node)) {
	visit(n)
}

// NegateNode is unary minus
type NegateNode struct {
	Child Node
}

// Eval negates the child value
func (n *NegateNode) Eval(total decimal.Decimal) (decimal.Decimal, error) {
	v, err := n.Child.Eval(total)
	if err != nil {
		return decimal.Zero, err
	}
	return v.Neg(), nil
}

// Walk visits the node and its child
func (n *NegateNode) Walk(visit func(Node)) {
	visit(n)
	n.Child.Walk(visit)
}

// BinaryOp is a binary arithmetic operator
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
)

// BinaryNode is a binary arithmetic expression
type BinaryNode struct {
	Op    BinaryOp
	Left  Node
	Right Node
}

// Eval computes both operands, then the operation
func (n *BinaryNode) Eval(total decimal.Decimal) (decimal.Decimal, error) {
	left, err := n.Left.Eval(total)
	if err != nil {
		return decimal.Zero, err
	}
	right, err := n.Right.Eval(total)
	if err != nil {
		return decimal.Zero, err
	}

	switch n.Op {
	case OpAdd:
		return left.Add(right), nil
	case OpSub:
		return left.Sub(right), nil
	case OpMul:
		return left.Mul(right), nil
	case OpDiv:
		if right.IsZero() {
			return decimal.Zero, errors.Computation("division by zero")
		}
		return left.Div(right), nil
	}
	return decimal.Zero, errors.Computation("unknown operator")
}

// Walk visits the node and both operands
func (n *BinaryNode) Walk(visit func(Node)) {
	visit(n)
	n.Left.Walk(visit)
	n.Right.Walk(visit)
}

// CallNode is a call to one of the closed set of functions
type CallNode struct {
	Fn   string
	Args []Node
}

// Eval computes the arguments, then applies the function
func (n *CallNode) Eval(total decimal.Decimal) (decimal.Decimal, error) {
	args := make([]decimal.Decimal, len(n.Args))
	for i, arg := range n.Args {
		v, err := arg.Eval(total)
		if err != nil {
			return decimal.Zero, err
		}
		args[i] = v
	}

	switch n.Fn {
	case "abs":
		return args[0].Abs(), nil
	case "min":
		if args[0].LessThan(args[1]) {
			return args[0], nil
		}
		return args[1], nil
	case "max":
		if args[0].GreaterThan(args[1]) {
			return args[0], nil
		}
		return args[1], nil
	case "round":
		places := int64(0)
		if len(args) == 2 {
			p := args[1]
			places = p.IntPart()
			if !p.Equal(decimal.NewFromInt(places)) {
				return decimal.Zero, errors.Computation("round places must be an integer")
			}
			if places < -12 || places > 12 {
				return decimal.Zero, errors.Computation("round places out of range")
			}
		}
		return args[0].Round(int32(places)), nil
	}
	return decimal.Zero, errors.Computation("unknown function " + n.Fn)
}

// Walk visits the node and every argument
func (n *CallNode) Walk(visit func(Node)) {
	visit(n)
	for _, arg := range n.Args {
		arg.Walk(visit)
	}
}
