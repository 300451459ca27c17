// Package formula - Recursive-descent parser for the closed grammar
//
//	expr    := term { ("+" | "-") term }
//	term    := unary { ("*" | "/") unary }
//	unary   := "-" unary | primary
//	primary := number | "total" | fn "(" expr { "," expr } ")" | "(" expr ")"
//
// The only identifiers are `total` and the function names abs, min,
// max, round. Anything else is a syntax error. There is no assignment,
// no member access, no string literal, and no loop construct, so
// evaluation time is bounded by expression length.
package formula

import (
	"fmt"

	"github.com/shopspring/decimal"

	"glassquote/internal/errors"
)

// MaxExpressionLength bounds accepted expressions. Far beyond anything
// an administrator would type; keeps parse cost trivially small.
const MaxExpressionLength = 512

// identTotal is the single free variable of the grammar
const identTotal = "total"

// functionArity maps each allowed function to its min/max argument count
var functionArity = map[string][2]int{
	"abs":   {1, 1},
	"min":   {2, 2},
	"max":   {2, 2},
	"round": {1, 2},
}

// Parse compiles an expression into an AST, failing closed on any
// token or construct outside the grammar.
func Parse(input string) (Node, error) {
	if len(input) == 0 {
		return nil, errors.Formula("empty expression")
	}
	if len(input) > MaxExpressionLength {
		return nil, errors.Newf(errors.TypeFormula, "expression exceeds %d characters", MaxExpressionLength)
	}

	tokens, err := scan(input)
	if err != nil {
		return nil, errors.Wrap(errors.TypeFormula, "invalid expression", err)
	}

	p := &parser{tokens: tokens}
	node, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokenEOF {
		return nil, p.errorf("unexpected %s", p.peek().kind)
	}
	return node, nil
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokenEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind tokenKind) (token, error) {
	t := p.peek()
	if t.kind != kind {
		return t, p.errorf("expected %s, found %s", kind, t.kind)
	}
	return p.next(), nil
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return errors.Newf(errors.TypeFormula, "position %d: %s", p.peek().pos, fmt.Sprintf(format, args...))
}

func (p *parser) parseExpr() (Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	for {
		switch p.peek().kind {
		case tokenPlus:
			p.next()
			right, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			left = &BinaryNode{Op: OpAdd, Left: left, Right: right}
		case tokenMinus:
			p.next()
			right, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			left = &BinaryNode{Op: OpSub, Left: left, Right: right}
		default:
			return left, nil
		}
	}
}

func (p *parser) parseTerm() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		switch p.peek().kind {
		case tokenStar:
			p.next()
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = &BinaryNode{Op: OpMul, Left: left, Right: right}
		case tokenSlash:
			p.next()
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = &BinaryNode{Op: OpDiv, Left: left, Right: right}
		default:
			return left, nil
		}
	}
}

func (p *parser) parseUnary() (Node, error) {
	if p.peek().kind == tokenMinus {
		p.next()
		child, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &NegateNode{Child: child}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Node, error) {
	t := p.peek()

	switch t.kind {
	case tokenNumber:
		p.next()
		value, err := decimal.NewFromString(t.text)
		if err != nil {
			return nil, errors.Newf(errors.TypeFormula, "position %d: malformed number %q", t.pos, t.text)
		}
		return &NumberNode{Value: value}, nil

	case tokenIdent:
		p.next()
		if p.peek().kind == tokenLParen {
			return p.parseCall(t)
		}
		if t.text != identTotal {
			return nil, errors.Newf(errors.TypeFormula, "position %d: unknown identifier %q", t.pos, t.text)
		}
		return &TotalNode{}, nil

	case tokenLParen:
		p.next()
		node, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenRParen); err != nil {
			return nil, err
		}
		return node, nil
	}

	return nil, p.errorf("unexpected %s", t.kind)
}

func (p *parser) parseCall(fn token) (Node, error) {
	arity, ok := functionArity[fn.text]
	if !ok {
		return nil, errors.Newf(errors.TypeFormula, "position %d: unknown function %q", fn.pos, fn.text)
	}

	if _, err := p.expect(tokenLParen); err != nil {
		return nil, err
	}

	var args []Node
	for {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		if p.peek().kind == tokenComma {
			p.next()
			continue
		}
		break
	}

	if _, err := p.expect(tokenRParen); err != nil {
		return nil, err
	}

	if len(args) < arity[0] || len(args) > arity[1] {
		if arity[0] == arity[1] {
			return nil, errors.Newf(errors.TypeFormula,
				"position %d: %s takes %d arguments, got %d", fn.pos, fn.text, arity[0], len(args))
		}
		return nil, errors.Newf(errors.TypeFormula,
			"position %d: %s takes %d to %d arguments, got %d", fn.pos, fn.text, arity[0], arity[1], len(args))
	}

	return &CallNode{Fn: fn.text, Args: args}, nil
}
