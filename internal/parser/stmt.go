package parser

import (
	"path"
	"strings"

	"vsharp/internal/ast"
	"vsharp/internal/diag"
	"vsharp/internal/token"
)

func (p *Parser) parseStmt() (ast.Stmt, error) {
	tok := p.peek()
	var (
		st  ast.Stmt
		err error
	)
	switch tok.Kind {
	case token.KwSet:
		st, err = p.parseSet()
	case token.KwFunc:
		if p.peekAt(1).Kind == token.Ident {
			st, err = p.parseFuncDecl()
		} else {
			st, err = p.parseExprStmt()
		}
	case token.KwImport:
		st, err = p.parseImport()
	case token.KwType:
		st, err = p.parseTypeStmt()
	case token.KwReturn:
		p.next()
		ret := &ast.ReturnStmt{}
		if p.startsValue() {
			ret.Value, err = p.parseExpr()
		}
		ret.Sp = p.spanFrom(tok.Span)
		st = ret
	case token.KwBreak:
		p.next()
		st = &ast.BreakStmt{Pos: ast.Pos{Sp: tok.Span}}
	case token.KwContinue:
		p.next()
		st = &ast.ContinueStmt{Pos: ast.Pos{Sp: tok.Span}}
	default:
		st, err = p.parseExprStmt()
	}
	if err != nil {
		return nil, err
	}
	for p.accept(token.Semicolon) {
	}
	return st, nil
}

// startsValue reports whether a return value follows on the same line.
func (p *Parser) startsValue() bool {
	tok := p.peek()
	if tok.NewlineBefore {
		return false
	}
	switch tok.Kind {
	case token.EOF, token.RBrace, token.Semicolon, token.KwElse:
		return false
	}
	return true
}

func (p *Parser) parseExprStmt() (ast.Stmt, error) {
	x, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.ExprStmt{Pos: ast.Pos{Sp: x.Span()}, X: x}, nil
}

func (p *Parser) parseSet() (ast.Stmt, error) {
	start := p.next().Span
	target, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	switch target.(type) {
	case *ast.Ident, *ast.Member, *ast.Index:
	default:
		return nil, diag.ParseErrorf(diag.SynBadAssignTarget, target.Span(), "cannot assign to this expression")
	}
	if _, err := p.expect(token.Assign); err != nil {
		return nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.SetStmt{Pos: ast.Pos{Sp: p.spanFrom(start)}, Target: target, Value: value}, nil
}

// parseFuncDecl desugars `func name<G>(...) {...}` into `set name = func<G>(...) {...}`.
func (p *Parser) parseFuncDecl() (ast.Stmt, error) {
	start := p.next().Span
	name := p.next()
	fn, err := p.parseFuncRest(start)
	if err != nil {
		return nil, err
	}
	target := &ast.Ident{Pos: ast.Pos{Sp: name.Span}, Name: name.Text}
	return &ast.SetStmt{Pos: ast.Pos{Sp: p.spanFrom(start)}, Target: target, Value: fn}, nil
}

func (p *Parser) parseImport() (ast.Stmt, error) {
	start := p.next().Span
	imp := &ast.ImportStmt{}
	if p.accept(token.LBrace) {
		err := p.commaList(token.RBrace, func() error {
			name, err := p.expect(token.Ident)
			if err != nil {
				return err
			}
			imp.Items = append(imp.Items, ast.ImportItem{Pos: ast.Pos{Sp: name.Span}, Name: name.Text})
			return nil
		})
		if err != nil {
			return nil, err
		}
		if len(imp.Items) == 0 {
			return nil, diag.ParseErrorf(diag.SynBadImport, p.spanFrom(start), "empty import selection")
		}
		if _, err := p.expect(token.KwFrom); err != nil {
			return nil, err
		}
	}
	src, err := p.parseImportSource()
	if err != nil {
		return nil, err
	}
	imp.Source = src
	if imp.Items == nil {
		if p.accept(token.KwAs) {
			alias, err := p.expect(token.Ident)
			if err != nil {
				return nil, err
			}
			imp.Alias = alias.Text
		} else {
			imp.Alias = defaultAlias(src)
		}
	}
	imp.Sp = p.spanFrom(start)
	return imp, nil
}

func (p *Parser) parseImportSource() (ast.ImportSource, error) {
	tok := p.peek()
	if tok.Kind == token.StringLit {
		p.next()
		return ast.ImportSource{Pos: ast.Pos{Sp: tok.Span}, Path: tok.Text}, nil
	}
	parts, err := p.dottedName()
	if err != nil {
		return ast.ImportSource{}, diag.ParseErrorf(diag.SynBadImport, tok.Span, "expected a quoted path or namespace")
	}
	return ast.ImportSource{Pos: ast.Pos{Sp: p.spanFrom(tok.Span)}, Namespace: strings.Join(parts, ".")}, nil
}

func defaultAlias(src ast.ImportSource) string {
	if src.IsScript() {
		base := path.Base(src.Path)
		return strings.TrimSuffix(base, path.Ext(base))
	}
	if i := strings.LastIndexByte(src.Namespace, '.'); i >= 0 {
		return src.Namespace[i+1:]
	}
	return src.Namespace
}

func (p *Parser) dottedName() ([]string, error) {
	first, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	parts := []string{first.Text}
	for p.at(token.Dot) && p.peekAt(1).Kind == token.Ident {
		p.next()
		parts = append(parts, p.next().Text)
	}
	return parts, nil
}

func (p *Parser) parseTypeStmt() (ast.Stmt, error) {
	start := p.next().Span
	name, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	generics, err := p.parseGenericParams()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Assign); err != nil {
		return nil, err
	}
	tp, err := p.parseType()
	if err != nil {
		return nil, err
	}
	return &ast.TypeStmt{Pos: ast.Pos{Sp: p.spanFrom(start)}, Name: name.Text, Generics: generics, Type: tp}, nil
}

func (p *Parser) parseGenericParams() ([]string, error) {
	if !p.accept(token.Lt) {
		return nil, nil
	}
	var names []string
	err := p.commaList(token.Gt, func() error {
		name, err := p.expect(token.Ident)
		if err != nil {
			return err
		}
		names = append(names, name.Text)
		return nil
	})
	return names, err
}

func (p *Parser) parseBlock() (*ast.Block, error) {
	open, err := p.expect(token.LBrace)
	if err != nil {
		return nil, err
	}
	blk := &ast.Block{}
	for !p.at(token.RBrace) {
		if p.at(token.EOF) {
			return nil, diag.ParseErrorf(diag.SynUnclosedDelimiter, open.Span, "unclosed block")
		}
		if p.accept(token.Semicolon) {
			continue
		}
		st, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		blk.Stmts = append(blk.Stmts, st)
	}
	p.next()
	blk.Sp = p.spanFrom(open.Span)
	return blk, nil
}
