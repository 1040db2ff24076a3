package formula

import (
	"strconv"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokPercent
	tokPow
	tokLParen
	tokRParen
	tokComma
)

var tokenNames = map[tokenKind]string{
	tokEOF:     "end of formula",
	tokNumber:  "number",
	tokIdent:   "identifier",
	tokPlus:    "'+'",
	tokMinus:   "'-'",
	tokStar:    "'*'",
	tokSlash:   "'/'",
	tokPercent: "'%'",
	tokPow:     "'**'",
	tokLParen:  "'('",
	tokRParen:  "')'",
	tokComma:   "','",
}

func (k tokenKind) String() string {
	return tokenNames[k]
}

type token struct {
	kind tokenKind
	text string
	num  float64
	pos  int
}

// lex splits a formula into tokens. Identifiers may contain dots so that
// names such as "Math.exp" arrive as a single token.
func lex(src string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case isDigit(c) || (c == '.' && i+1 < len(src) && isDigit(src[i+1])):
			end := scanNumber(src, i)
			v, err := strconv.ParseFloat(src[i:end], 64)
			if err != nil {
				return nil, malformed(src, i, "invalid number %q", src[i:end])
			}
			tokens = append(tokens, token{kind: tokNumber, text: src[i:end], num: v, pos: i})
			i = end
		case isIdentStart(c):
			end := i + 1
			for end < len(src) && (isIdentPart(src[end]) || src[end] == '.') {
				end++
			}
			name := src[i:end]
			if strings.HasSuffix(name, ".") {
				return nil, malformed(src, end-1, "dangling '.' in %q", name)
			}
			tokens = append(tokens, token{kind: tokIdent, text: name, pos: i})
			i = end
		default:
			kind, width := operator(src, i)
			if width == 0 {
				r := []rune(src[i:])[0]
				if unicode.IsPrint(r) {
					return nil, malformed(src, i, "unexpected character %q", r)
				}
				return nil, malformed(src, i, "unexpected character %U", r)
			}
			tokens = append(tokens, token{kind: kind, text: src[i : i+width], pos: i})
			i += width
		}
	}
	tokens = append(tokens, token{kind: tokEOF, pos: len(src)})
	return tokens, nil
}

func operator(src string, i int) (tokenKind, int) {
	switch src[i] {
	case '+':
		return tokPlus, 1
	case '-':
		return tokMinus, 1
	case '*':
		if i+1 < len(src) && src[i+1] == '*' {
			return tokPow, 2
		}
		return tokStar, 1
	case '/':
		return tokSlash, 1
	case '%':
		return tokPercent, 1
	case '^':
		return tokPow, 1
	case '(':
		return tokLParen, 1
	case ')':
		return tokRParen, 1
	case ',':
		return tokComma, 1
	}
	return tokEOF, 0
}

func scanNumber(src string, i int) int {
	for i < len(src) && isDigit(src[i]) {
		i++
	}
	if i < len(src) && src[i] == '.' {
		i++
		for i < len(src) && isDigit(src[i]) {
			i++
		}
	}
	if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
		j := i + 1
		if j < len(src) && (src[j] == '+' || src[j] == '-') {
			j++
		}
		if j < len(src) && isDigit(src[j]) {
			i = j
			for i < len(src) && isDigit(src[i]) {
				i++
			}
		}
	}
	return i
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
