// Package formula - Token scanner for the pricing expression grammar
// The scanner fails closed: any rune outside the grammar is a syntax
// error, never silently skipped.
package formula

import (
	"fmt"
	"strings"
	"unicode"
)

// tokenKind classifies a scanned token
type tokenKind int

const (
	tokenNumber tokenKind = iota
	tokenIdent
	tokenPlus
	tokenMinus
	tokenStar
	tokenSlash
	tokenLParen
	tokenRParen
	tokenComma
	tokenEOF
)

func (k tokenKind) String() string {
	switch k {
	case tokenNumber:
		return "number"
	case tokenIdent:
		return "identifier"
	case tokenPlus:
		return "'+'"
	case tokenMinus:
		return "'-'"
	case tokenStar:
		return "'*'"
	case tokenSlash:
		return "'/'"
	case tokenLParen:
		return "'('"
	case tokenRParen:
		return "')'"
	case tokenComma:
		return "','"
	case tokenEOF:
		return "end of expression"
	}
	return "invalid"
}

// token is a scanned lexeme with its position
type token struct {
	kind tokenKind
	text string
	pos  int
}

// scan tokenizes an expression against the closed grammar
func scan(input string) ([]token, error) {
	var tokens []token
	runes := []rune(input)
	i := 0

	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '+':
			tokens = append(tokens, token{tokenPlus, "+", i})
			i++
		case r == '-':
			tokens = append(tokens, token{tokenMinus, "-", i})
			i++
		case r == '*':
			// '**' is not an operator in this grammar; reject it here
			// so the error names the exponent attempt, not a dangling '*'.
			if i+1 < len(runes) && runes[i+1] == '*' {
				return nil, fmt.Errorf("unexpected '**' at position %d: exponentiation is not supported", i)
			}
			tokens = append(tokens, token{tokenStar, "*", i})
			i++
		case r == '/':
			tokens = append(tokens, token{tokenSlash, "/", i})
			i++
		case r == '(':
			tokens = append(tokens, token{tokenLParen, "(", i})
			i++
		case r == ')':
			tokens = append(tokens, token{tokenRParen, ")", i})
			i++
		case r == ',':
			tokens = append(tokens, token{tokenComma, ",", i})
			i++
		case unicode.IsDigit(r) || r == '.':
			start := i
			seenDot := false
			for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.') {
				if runes[i] == '.' {
					if seenDot {
						return nil, fmt.Errorf("malformed number at position %d", start)
					}
					seenDot = true
				}
				i++
			}
			text := string(runes[start:i])
			if text == "." {
				return nil, fmt.Errorf("malformed number at position %d", start)
			}
			tokens = append(tokens, token{tokenNumber, text, start})
		case unicode.IsLetter(r):
			start := i
			for i < len(runes) && unicode.IsLetter(runes[i]) {
				i++
			}
			tokens = append(tokens, token{tokenIdent, strings.ToLower(string(runes[start:i])), start})
		default:
			return nil, fmt.Errorf("unexpected character %q at position %d", r, i)
		}
	}

	tokens = append(tokens, token{tokenEOF, "", len(runes)})
	return tokens, nil
}
