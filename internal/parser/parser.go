// Package parser is a recursive-descent parser for V# source files.
package parser

import (
	"vsharp/internal/ast"
	"vsharp/internal/diag"
	"vsharp/internal/lexer"
	"vsharp/internal/project"
	"vsharp/internal/source"
	"vsharp/internal/token"
)

type Parser struct {
	toks []token.Token
	pos  int
	file source.FileID
}

// ParseFile parses the file id of fs as module sig.
func ParseFile(fs *source.FileSet, id source.FileID, sig project.Signature) (*ast.Module, error) {
	f := fs.Get(id)
	if f == nil {
		return nil, diag.ParseErrorf(diag.SynUnexpectedToken, source.Span{File: id}, "unknown file %d", id)
	}
	toks, err := lexer.Tokenize(f)
	if err != nil {
		return nil, err
	}
	p := &Parser{toks: toks, file: id}
	mod := &ast.Module{Sig: sig, File: id}
	for !p.at(token.EOF) {
		if p.accept(token.Semicolon) {
			continue
		}
		st, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		mod.Stmts = append(mod.Stmts, st)
	}
	return mod, nil
}

// ParseSource registers src in fs under name and parses it.
func ParseSource(fs *source.FileSet, name string, src []byte, sig project.Signature) (*ast.Module, error) {
	id := fs.AddVirtual(name, src)
	return ParseFile(fs, id, sig)
}

func (p *Parser) peek() token.Token { return p.toks[p.pos] }

func (p *Parser) peekAt(n int) token.Token {
	if p.pos+n < len(p.toks) {
		return p.toks[p.pos+n]
	}
	return p.toks[len(p.toks)-1]
}

func (p *Parser) at(k token.Kind) bool { return p.peek().Kind == k }

func (p *Parser) next() token.Token {
	tok := p.toks[p.pos]
	if tok.Kind != token.EOF {
		p.pos++
	}
	return tok
}

func (p *Parser) accept(k token.Kind) bool {
	if p.at(k) {
		p.next()
		return true
	}
	return false
}

func (p *Parser) expect(k token.Kind) (token.Token, error) {
	tok := p.peek()
	if tok.Kind != k {
		code := diag.SynUnexpectedToken
		switch k {
		case token.Ident:
			code = diag.SynExpectIdentifier
		case token.RParen, token.RBrace, token.RBracket:
			code = diag.SynUnclosedDelimiter
		}
		return tok, diag.ParseErrorf(code, tok.Span, "expected %s, found %s", k, describe(tok))
	}
	return p.next(), nil
}

// prevEnd is the span end of the last consumed token.
func (p *Parser) prevEnd() uint32 {
	if p.pos == 0 {
		return 0
	}
	return p.toks[p.pos-1].Span.End
}

func (p *Parser) spanFrom(start source.Span) source.Span {
	return source.Span{File: p.file, Start: start.Start, End: p.prevEnd()}
}

func describe(tok token.Token) string {
	switch tok.Kind {
	case token.EOF:
		return "end of file"
	case token.Ident, token.IntLit, token.FloatLit:
		return tok.Kind.String() + " " + tok.Text
	case token.StringLit:
		return "string literal"
	}
	return "'" + tok.Kind.String() + "'"
}

// commaList parses items until close, allowing a trailing comma.
func (p *Parser) commaList(close token.Kind, item func() error) error {
	for !p.at(close) {
		if err := item(); err != nil {
			return err
		}
		if !p.accept(token.Comma) {
			break
		}
	}
	_, err := p.expect(close)
	return err
}
