package formula

import "strings"

// parser is a recursive-descent parser over a token slice.
//
//	expr    = term { ("+" | "-") term }
//	term    = unary { ("*" | "/" | "%") unary }
//	unary   = ("+" | "-") unary | power
//	power   = primary [ ("**" | "^") unary ]
//	primary = number | ident | ident "(" [ expr { "," expr } ] ")" | "(" expr ")"
type parser struct {
	src      string
	variable string
	tokens   []token
	pos      int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind tokenKind) (token, error) {
	t := p.next()
	if t.kind != kind {
		return t, p.unexpected(t, "expected "+kind.String())
	}
	return t, nil
}

func (p *parser) unexpected(t token, hint string) error {
	found := t.kind.String()
	if t.kind == tokIdent || t.kind == tokNumber {
		found = t.kind.String() + " " + t.text
	}
	if hint == "" {
		return malformed(p.src, t.pos, "unexpected %s", found)
	}
	return malformed(p.src, t.pos, "unexpected %s, %s", found, hint)
}

func (p *parser) parse() (node, error) {
	if p.peek().kind == tokEOF {
		err := malformed(p.src, -1, "no expression")
		err.Err = ErrEmptyFormula
		return nil, err
	}
	n, err := p.expr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, p.unexpected(t, "expected operator")
	}
	return n, nil
}

func (p *parser) expr() (node, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek().kind
		if op != tokPlus && op != tokMinus {
			return left, nil
		}
		p.next()
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, left: left, right: right}
	}
}

func (p *parser) term() (node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek().kind
		if op != tokStar && op != tokSlash && op != tokPercent {
			return left, nil
		}
		p.next()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, left: left, right: right}
	}
}

func (p *parser) unary() (node, error) {
	if op := p.peek().kind; op == tokPlus || op == tokMinus {
		p.next()
		arg, err := p.unary()
		if err != nil {
			return nil, err
		}
		return unaryNode{op: op, arg: arg}, nil
	}
	return p.power()
}

func (p *parser) power() (node, error) {
	base, err := p.primary()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokPow {
		return base, nil
	}
	p.next()
	// Right-associative: the exponent may itself be a power or signed.
	exp, err := p.unary()
	if err != nil {
		return nil, err
	}
	return binaryNode{op: tokPow, left: base, right: exp}, nil
}

func (p *parser) primary() (node, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		return numberNode{value: t.num}, nil
	case tokLParen:
		n, err := p.expr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return n, nil
	case tokIdent:
		if p.peek().kind == tokLParen {
			return p.call(t)
		}
		return p.identifier(t)
	}
	return nil, p.unexpected(t, "expected operand")
}

func (p *parser) identifier(t token) (node, error) {
	if t.text == p.variable {
		return variableNode{name: t.text}, nil
	}
	name := canonicalName(t.text)
	if v, ok := constants[name]; ok {
		return numberNode{value: v}, nil
	}
	if _, ok := builtins[name]; ok {
		return nil, malformed(p.src, t.pos, "function %s used without arguments", t.text)
	}
	return nil, malformed(p.src, t.pos, "unknown identifier %q (the variable is %q)", t.text, p.variable)
}

func (p *parser) call(t token) (node, error) {
	name := canonicalName(t.text)
	fn, ok := builtins[name]
	if !ok {
		return nil, malformed(p.src, t.pos, "unknown function %q", t.text)
	}
	p.next() // (
	var args []node
	if p.peek().kind != tokRParen {
		for {
			arg, err := p.expr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.peek().kind != tokComma {
				break
			}
			p.next()
		}
	}
	if _, err := p.expect(tokRParen); err != nil {
		return nil, err
	}
	if fn.arity == variadic && len(args) == 0 {
		return nil, malformed(p.src, t.pos, "%s expects at least one argument", name)
	}
	if fn.arity != variadic && len(args) != fn.arity {
		return nil, malformed(p.src, t.pos, "%s expects %d argument(s), got %d", name, fn.arity, len(args))
	}
	return callNode{name: name, fn: fn, args: args}, nil
}

func validVariable(name string) bool {
	if name == "" || strings.Contains(name, ".") || !isIdentStart(name[0]) {
		return false
	}
	for i := 1; i < len(name); i++ {
		if !isIdentPart(name[i]) {
			return false
		}
	}
	return true
}
