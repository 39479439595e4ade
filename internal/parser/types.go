package parser

import (
	"vsharp/internal/ast"
	"vsharp/internal/diag"
	"vsharp/internal/token"
)

// parseType parses `A | B`, where `&` binds tighter than `|`.
func (p *Parser) parseType() (ast.TypeExpr, error) {
	left, err := p.parseIntersectionType()
	for err == nil && p.accept(token.Pipe) {
		var right ast.TypeExpr
		if right, err = p.parseIntersectionType(); err != nil {
			break
		}
		left = &ast.UnionType{Pos: ast.Pos{Sp: left.Span().Cover(right.Span())}, Left: left, Right: right}
	}
	return left, err
}

func (p *Parser) parseIntersectionType() (ast.TypeExpr, error) {
	left, err := p.parsePrimaryType()
	for err == nil && p.accept(token.Amp) {
		var right ast.TypeExpr
		if right, err = p.parsePrimaryType(); err != nil {
			break
		}
		left = &ast.IntersectionType{Pos: ast.Pos{Sp: left.Span().Cover(right.Span())}, Left: left, Right: right}
	}
	return left, err
}

func (p *Parser) parsePrimaryType() (ast.TypeExpr, error) {
	tok := p.peek()
	switch tok.Kind {
	case token.LParen:
		p.next()
		tp, err := p.parseType()
		if err != nil {
			return nil, err
		}
		_, err = p.expect(token.RParen)
		return tp, err
	case token.LBracket:
		p.next()
		if p.at(token.Ident) && p.peekAt(1).Kind == token.Colon {
			return p.parseObjectType(tok)
		}
		item, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RBracket); err != nil {
			return nil, err
		}
		return &ast.ArrayType{Pos: ast.Pos{Sp: p.spanFrom(tok.Span)}, Item: item}, nil
	case token.KwFunc:
		p.next()
		if _, err := p.expect(token.LParen); err != nil {
			return nil, err
		}
		fn := &ast.FuncType{}
		err := p.commaList(token.RParen, func() error {
			tp, err := p.parseType()
			if err != nil {
				return err
			}
			fn.Params = append(fn.Params, tp)
			return nil
		})
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Colon); err != nil {
			return nil, err
		}
		if fn.Result, err = p.parseType(); err != nil {
			return nil, err
		}
		fn.Sp = p.spanFrom(tok.Span)
		return fn, nil
	case token.Ident:
		path, err := p.dottedName()
		if err != nil {
			return nil, err
		}
		named := &ast.NamedType{Path: path}
		if p.accept(token.Lt) {
			err = p.commaList(token.Gt, func() error {
				arg, err := p.parseType()
				if err != nil {
					return err
				}
				named.Args = append(named.Args, arg)
				return nil
			})
			if err != nil {
				return nil, err
			}
		}
		named.Sp = p.spanFrom(tok.Span)
		return named, nil
	}
	return nil, diag.ParseErrorf(diag.SynExpectType, tok.Span, "expected type, found %s", describe(tok))
}

func (p *Parser) parseObjectType(open token.Token) (ast.TypeExpr, error) {
	obj := &ast.ObjectType{}
	err := p.commaList(token.RBracket, func() error {
		name, err := p.expect(token.Ident)
		if err != nil {
			return err
		}
		if _, err := p.expect(token.Colon); err != nil {
			return err
		}
		tp, err := p.parseType()
		if err != nil {
			return err
		}
		obj.Fields = append(obj.Fields, ast.FieldType{Pos: ast.Pos{Sp: p.spanFrom(name.Span)}, Name: name.Text, Type: tp})
		return nil
	})
	if err != nil {
		return nil, err
	}
	obj.Sp = p.spanFrom(open.Span)
	return obj, nil
}
