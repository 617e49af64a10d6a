package shikigami

// parser is a recursive-descent parser over a fully prefix grammar. Every
// parse function takes the index of the first token of an expression and
// returns a node whose Next() is the index just past it; no backtracking is
// needed because operand boundaries follow from operator arity alone.
type parser struct {
	tokens []Token
	source string

	// functions maps names of functions whose definitions have been parsed
	// so far to their arity. A definition becomes visible only once its
	// body has been parsed, so bare prefix calls work in later statements
	// but not inside the function's own body.
	functions map[string]int

	depth    int
	maxDepth int
}

func newParser(tokens []Token, source string, known map[string]int, maxDepth int) *parser {
	functions := make(map[string]int, len(known))
	for name, arity := range known {
		functions[name] = arity
	}
	return &parser{tokens: tokens, source: source, functions: functions, maxDepth: maxDepth}
}

// Parse builds a Program from a token sequence, allowing expressions to nest
// up to the default nesting limit.
func Parse(tokens []Token) (*Program, error) {
	return newParser(tokens, "", nil, defaultNestingLimit).parseProgram()
}

func (p *parser) parseProgram() (*Program, error) {
	program := &Program{source: p.source}
	i := 0
	for i < len(p.tokens) {
		if p.tokens[i].Type == tokenSemicolon {
			i++
			continue
		}
		node, err := p.parseExpression(i)
		if err != nil {
			return nil, err
		}
		program.Statements = append(program.Statements, node)
		i = node.Next()
	}
	return program, nil
}

func (p *parser) parseExpression(i int) (Node, error) {
	if i >= len(p.tokens) {
		return nil, p.errorEndOfInput()
	}
	tok := p.tokens[i]
	p.depth++
	defer func() { p.depth-- }()
	if p.maxDepth > 0 && p.depth > p.maxDepth {
		return nil, p.errorAt(ErrNestingLimitExceeded, tok.Pos, "expression nesting exceeds %d levels", p.maxDepth)
	}
	switch tok.Type {
	case tokenNumber:
		value, err := ParseRational(tok.Literal)
		if err != nil {
			return nil, p.attach(err, tok.Pos)
		}
		return &NumberLit{Value: value, span: span{tok.Pos, i + 1}}, nil
	case tokenString:
		return &StringLit{Value: unquote(tok.Literal), span: span{tok.Pos, i + 1}}, nil
	case tokenIdent:
		return p.parseIdentifier(i)
	case tokenAssign:
		return p.parseAssignment(i)
	}
	if isBinaryOperator(tok.Type) {
		return p.parseBinary(i)
	}
	return nil, p.errorUnexpected(tok)
}

func (p *parser) parseIdentifier(i int) (Node, error) {
	tok := p.tokens[i]
	if p.peekIs(i+1, tokenLParen) {
		return p.parseCall(i)
	}
	if arity, ok := p.functions[tok.Literal]; ok && arity > 0 && p.startsOperand(i+1) {
		return p.parseBareCall(i, arity)
	}
	return &VarRef{Name: tok.Literal, span: span{tok.Pos, i + 1}}, nil
}

// startsOperand reports whether a token exists at i that could begin an
// argument. Closing punctuation never can, so a function name directly
// before it is read as a plain reference.
func (p *parser) startsOperand(i int) bool {
	if i >= len(p.tokens) {
		return false
	}
	switch p.tokens[i].Type {
	case tokenRParen, tokenComma, tokenSemicolon:
		return false
	}
	return true
}

func (p *parser) parseCall(i int) (Node, error) {
	name := p.tokens[i]
	call := &FunctionCall{Name: name.Literal, Args: []Node{}}
	j := i + 2
	if p.peekIs(j, tokenRParen) {
		call.span = span{name.Pos, j + 1}
		return call, nil
	}
	for {
		arg, err := p.parseExpression(j)
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
		j = arg.Next()
		switch {
		case p.peekIs(j, tokenComma):
			j++
		case p.peekIs(j, tokenRParen):
			call.span = span{name.Pos, j + 1}
			return call, nil
		default:
			return nil, p.errorCloseParen(j, "in call to "+name.Literal)
		}
	}
}

func (p *parser) parseBareCall(i, arity int) (Node, error) {
	name := p.tokens[i]
	call := &FunctionCall{Name: name.Literal, Args: make([]Node, 0, arity), Bare: true}
	j := i + 1
	for range arity {
		arg, err := p.parseExpression(j)
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
		j = arg.Next()
	}
	call.span = span{name.Pos, j}
	return call, nil
}

func (p *parser) parseAssignment(i int) (Node, error) {
	eq := p.tokens[i]
	if i+2 >= len(p.tokens) {
		return nil, p.errorAt(ErrInvalidAssignmentExpression, eq.Pos, "'=' expects a name and a value")
	}
	name := p.tokens[i+1]
	if name.Type != tokenIdent {
		return nil, p.errorAt(ErrInvalidAssignmentExpression, name.Pos, "'=' expects a name, got %q", name.Literal)
	}
	if p.peekIs(i+2, tokenLParen) {
		return p.parseFunctionDef(i)
	}
	value, err := p.parseExpression(i + 2)
	if err != nil {
		return nil, err
	}
	return &Assignment{Name: name.Literal, Value: value, span: span{eq.Pos, value.Next()}}, nil
}

func (p *parser) parseFunctionDef(i int) (Node, error) {
	eq := p.tokens[i]
	name := p.tokens[i+1].Literal
	params := []string{}
	j := i + 3
	if p.peekIs(j, tokenRParen) {
		j++
	} else {
	params:
		for {
			if j >= len(p.tokens) {
				return nil, p.errorCloseParen(j, "after parameters of "+name)
			}
			param := p.tokens[j]
			if param.Type != tokenIdent {
				return nil, p.errorAt(ErrInvalidParameterName, param.Pos, "invalid parameter name %q in definition of %s", param.Literal, name)
			}
			params = append(params, param.Literal)
			j++
			switch {
			case p.peekIs(j, tokenComma):
				j++
			case p.peekIs(j, tokenRParen):
				j++
				break params
			default:
				return nil, p.errorCloseParen(j, "after parameters of "+name)
			}
		}
	}
	body, err := p.parseExpression(j)
	if err != nil {
		return nil, err
	}
	p.functions[name] = len(params)
	return &FunctionDef{Name: name, Params: params, Body: body, span: span{eq.Pos, body.Next()}}, nil
}

func (p *parser) parseBinary(i int) (Node, error) {
	op := p.tokens[i]
	left, err := p.parseExpression(i + 1)
	if err != nil {
		return nil, err
	}
	right, err := p.parseExpression(left.Next())
	if err != nil {
		return nil, err
	}
	return &BinaryExpr{Op: op.Literal, Left: left, Right: right, span: span{op.Pos, right.Next()}}, nil
}

func (p *parser) peekIs(i int, tt TokenType) bool {
	return i < len(p.tokens) && p.tokens[i].Type == tt
}
