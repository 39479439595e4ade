package parser

import (
	"strconv"
	"strings"

	"vsharp/internal/ast"
	"vsharp/internal/diag"
	"vsharp/internal/source"
	"vsharp/internal/token"
)

func (p *Parser) parseExpr() (ast.Expr, error) { return p.parseOr() }

func (p *Parser) binary(left ast.Expr, op ast.BinaryOp, next func() (ast.Expr, error)) (ast.Expr, error) {
	p.next()
	right, err := next()
	if err != nil {
		return nil, err
	}
	sp := left.Span().Cover(right.Span())
	return &ast.Binary{Pos: ast.Pos{Sp: sp}, Op: op, Left: left, Right: right}, nil
}

func (p *Parser) parseOr() (ast.Expr, error) {
	x, err := p.parseAnd()
	for err == nil && p.at(token.KwOr) {
		x, err = p.binary(x, ast.OpOr, p.parseAnd)
	}
	return x, err
}

func (p *Parser) parseAnd() (ast.Expr, error) {
	x, err := p.parseEquality()
	for err == nil && p.at(token.KwAnd) {
		x, err = p.binary(x, ast.OpAnd, p.parseEquality)
	}
	return x, err
}

func (p *Parser) parseEquality() (ast.Expr, error) {
	x, err := p.parseRelational()
	for err == nil {
		switch p.peek().Kind {
		case token.EqEq:
			x, err = p.binary(x, ast.OpEq, p.parseRelational)
		case token.BangEq:
			x, err = p.binary(x, ast.OpNe, p.parseRelational)
		default:
			return x, nil
		}
	}
	return nil, err
}

var relationalOps = map[token.Kind]ast.BinaryOp{
	token.Lt:   ast.OpLt,
	token.LtEq: ast.OpLe,
	token.Gt:   ast.OpGt,
	token.GtEq: ast.OpGe,
	token.KwIn: ast.OpIn,
}

func (p *Parser) parseRelational() (ast.Expr, error) {
	x, err := p.parseAdditive()
	for err == nil {
		if p.at(token.KwIs) {
			p.next()
			var tp ast.TypeExpr
			if tp, err = p.parseType(); err != nil {
				return nil, err
			}
			x = &ast.Is{Pos: ast.Pos{Sp: x.Span().Cover(tp.Span())}, X: x, Type: tp}
			continue
		}
		op, ok := relationalOps[p.peek().Kind]
		if !ok {
			return x, nil
		}
		x, err = p.binary(x, op, p.parseAdditive)
	}
	return nil, err
}

func (p *Parser) parseAdditive() (ast.Expr, error) {
	x, err := p.parseMultiplicative()
	for err == nil {
		switch p.peek().Kind {
		case token.Plus:
			x, err = p.binary(x, ast.OpAdd, p.parseMultiplicative)
		case token.Minus:
			x, err = p.binary(x, ast.OpSub, p.parseMultiplicative)
		default:
			return x, nil
		}
	}
	return nil, err
}

func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	x, err := p.parseUnary()
	for err == nil {
		switch p.peek().Kind {
		case token.Star:
			x, err = p.binary(x, ast.OpMul, p.parseUnary)
		case token.Slash:
			x, err = p.binary(x, ast.OpDiv, p.parseUnary)
		case token.Percent:
			x, err = p.binary(x, ast.OpMod, p.parseUnary)
		default:
			return x, nil
		}
	}
	return nil, err
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	tok := p.peek()
	var op ast.UnaryOp
	switch tok.Kind {
	case token.Minus:
		op = ast.OpNeg
	case token.Bang:
		op = ast.OpNot
	default:
		return p.parsePostfix()
	}
	p.next()
	x, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &ast.Unary{Pos: ast.Pos{Sp: tok.Span.Cover(x.Span())}, Op: op, X: x}, nil
}

func (p *Parser) parsePostfix() (ast.Expr, error) {
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		switch {
		case tok.Kind == token.LParen && !tok.NewlineBefore:
			if x, err = p.parseCall(x, nil); err != nil {
				return nil, err
			}
		case tok.Kind == token.Lt && tok.Span.Start == p.prevEnd():
			targs, ok := p.tryTypeArgs()
			if !ok {
				return x, nil
			}
			if x, err = p.parseCall(x, targs); err != nil {
				return nil, err
			}
		case tok.Kind == token.LBracket && !tok.NewlineBefore:
			p.next()
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBracket); err != nil {
				return nil, err
			}
			x = &ast.Index{Pos: ast.Pos{Sp: p.spanFrom(x.Span())}, X: x, Index: idx}
		case tok.Kind == token.Dot:
			p.next()
			name, err := p.expect(token.Ident)
			if err != nil {
				return nil, err
			}
			x = &ast.Member{Pos: ast.Pos{Sp: p.spanFrom(x.Span())}, X: x, Name: name.Text}
		default:
			return x, nil
		}
	}
}

// tryTypeArgs speculatively parses `<T, ...>(`; on failure the position is restored.
func (p *Parser) tryTypeArgs() ([]ast.TypeExpr, bool) {
	save := p.pos
	p.next()
	var args []ast.TypeExpr
	err := p.commaList(token.Gt, func() error {
		tp, err := p.parseType()
		if err != nil {
			return err
		}
		args = append(args, tp)
		return nil
	})
	if err != nil || len(args) == 0 || !p.at(token.LParen) {
		p.pos = save
		return nil, false
	}
	return args, true
}

func (p *Parser) parseCall(callee ast.Expr, targs []ast.TypeExpr) (ast.Expr, error) {
	p.next()
	call := &ast.Call{Callee: callee, TypeArgs: targs}
	err := p.commaList(token.RParen, func() error {
		arg, err := p.parseExpr()
		if err != nil {
			return err
		}
		call.Args = append(call.Args, arg)
		return nil
	})
	if err != nil {
		return nil, err
	}
	call.Sp = p.spanFrom(callee.Span())
	return call, nil
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.peek()
	pos := ast.Pos{Sp: tok.Span}
	switch tok.Kind {
	case token.IntLit:
		p.next()
		v, err := strconv.ParseInt(strings.ReplaceAll(tok.Text, "_", ""), 10, 64)
		if err != nil {
			return nil, diag.ParseErrorf(diag.LexBadNumber, tok.Span, "integer literal %s out of range", tok.Text)
		}
		return &ast.IntLit{Pos: pos, Value: v}, nil
	case token.FloatLit:
		p.next()
		v, err := strconv.ParseFloat(strings.ReplaceAll(tok.Text, "_", ""), 64)
		if err != nil {
			return nil, diag.ParseErrorf(diag.LexBadNumber, tok.Span, "malformed float literal %s", tok.Text)
		}
		return &ast.FloatLit{Pos: pos, Value: v}, nil
	case token.StringLit:
		p.next()
		return &ast.StringLit{Pos: pos, Value: tok.Text}, nil
	case token.KwTrue, token.KwFalse:
		p.next()
		return &ast.BoolLit{Pos: pos, Value: tok.Kind == token.KwTrue}, nil
	case token.Ident:
		p.next()
		return &ast.Ident{Pos: pos, Name: tok.Text}, nil
	case token.LParen:
		p.next()
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		return x, nil
	case token.LBrace:
		return p.parseBlock()
	case token.LBracket:
		return p.parseBracketLit()
	case token.KwFunc:
		p.next()
		return p.parseFuncRest(tok.Span)
	case token.KwIf:
		return p.parseIf()
	case token.KwWhile:
		return p.parseWhile()
	case token.KwFor:
		return p.parseFor()
	}
	return nil, diag.ParseErrorf(diag.SynExpectExpression, tok.Span, "expected expression, found %s", describe(tok))
}

// parseBracketLit parses `[]`, `[a, b]` or `[name = v, ...]`.
func (p *Parser) parseBracketLit() (ast.Expr, error) {
	open := p.next()
	if p.at(token.Ident) && p.peekAt(1).Kind == token.Assign {
		obj := &ast.ObjectLit{}
		err := p.commaList(token.RBracket, func() error {
			name, err := p.expect(token.Ident)
			if err != nil {
				return err
			}
			if _, err := p.expect(token.Assign); err != nil {
				return err
			}
			v, err := p.parseExpr()
			if err != nil {
				return err
			}
			obj.Fields = append(obj.Fields, ast.FieldInit{Pos: ast.Pos{Sp: p.spanFrom(name.Span)}, Name: name.Text, Value: v})
			return nil
		})
		if err != nil {
			return nil, err
		}
		obj.Sp = p.spanFrom(open.Span)
		return obj, nil
	}
	arr := &ast.ArrayLit{}
	err := p.commaList(token.RBracket, func() error {
		item, err := p.parseExpr()
		if err != nil {
			return err
		}
		arr.Items = append(arr.Items, item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	arr.Sp = p.spanFrom(open.Span)
	return arr, nil
}

// parseFuncRest parses what follows `func` (or `func name`): generics, params, result and body.
func (p *Parser) parseFuncRest(start source.Span) (*ast.FuncLit, error) {
	fn := &ast.FuncLit{}
	var err error
	if fn.Generics, err = p.parseGenericParams(); err != nil {
		return nil, err
	}
	if _, err = p.expect(token.LParen); err != nil {
		return nil, err
	}
	err = p.commaList(token.RParen, func() error {
		name, err := p.expect(token.Ident)
		if err != nil {
			return err
		}
		param := ast.Param{Name: name.Text}
		if p.accept(token.Colon) {
			if param.Type, err = p.parseType(); err != nil {
				return err
			}
		}
		param.Sp = p.spanFrom(name.Span)
		fn.Params = append(fn.Params, param)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if p.accept(token.Colon) {
		if fn.Result, err = p.parseType(); err != nil {
			return nil, err
		}
	}
	if fn.Body, err = p.parseBlock(); err != nil {
		return nil, err
	}
	fn.Sp = p.spanFrom(start)
	return fn, nil
}

func (p *Parser) parseCond() (ast.Expr, error) {
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	_, err = p.expect(token.RParen)
	return cond, err
}

// parseBody parses a branch or loop body. Statement keywords are wrapped in a block.
func (p *Parser) parseBody() (ast.Expr, error) {
	switch p.peek().Kind {
	case token.KwSet, token.KwReturn, token.KwBreak, token.KwContinue:
		st, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		return &ast.Block{Pos: ast.Pos{Sp: st.Span()}, Stmts: []ast.Stmt{st}}, nil
	}
	return p.parseExpr()
}

func (p *Parser) parseIf() (ast.Expr, error) {
	start := p.next().Span
	cond, err := p.parseCond()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	x := &ast.If{Cond: cond, Then: then}
	if p.accept(token.KwElse) {
		if x.Else, err = p.parseBody(); err != nil {
			return nil, err
		}
	}
	x.Sp = p.spanFrom(start)
	return x, nil
}

func (p *Parser) parseWhile() (ast.Expr, error) {
	start := p.next().Span
	cond, err := p.parseCond()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	return &ast.While{Pos: ast.Pos{Sp: p.spanFrom(start)}, Cond: cond, Body: body}, nil
}

func (p *Parser) parseFor() (ast.Expr, error) {
	start := p.next().Span
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	name, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.KwIn); err != nil {
		return nil, err
	}
	iter, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	body, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	return &ast.For{Pos: ast.Pos{Sp: p.spanFrom(start)}, Var: name.Text, Iter: iter, Body: body}, nil
}
