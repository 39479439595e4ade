package lexer

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"fortio.org/safecast"
	"golang.org/x/text/unicode/norm"

	"vsharp/internal/diag"
	"vsharp/internal/source"
	"vsharp/internal/token"
)

// Lexer turns one file into tokens. Identifiers and string literal values
// are NFC-normalized so that canonically equal spellings compare equal.
type Lexer struct {
	file    *source.File
	off     int
	newline bool
}

func New(file *source.File) *Lexer {
	return &Lexer{file: file}
}

// Tokenize scans the whole file, ending with an EOF token.
func Tokenize(file *source.File) ([]token.Token, error) {
	lx := New(file)
	var out []token.Token
	for {
		tok, err := lx.Next()
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
		if tok.Kind == token.EOF {
			return out, nil
		}
	}
}

// Next returns the next significant token.
func (lx *Lexer) Next() (token.Token, error) {
	if err := lx.skipTrivia(); err != nil {
		return token.Token{}, err
	}
	nl := lx.newline
	lx.newline = false
	start := lx.off
	if lx.off >= len(lx.file.Content) {
		return token.Token{Kind: token.EOF, Span: lx.span(start), NewlineBefore: nl}, nil
	}

	var (
		tok token.Token
		err error
	)
	r, size := utf8.DecodeRune(lx.file.Content[lx.off:])
	switch {
	case r == '_' || unicode.IsLetter(r):
		tok = lx.scanIdent()
	case r >= '0' && r <= '9':
		tok, err = lx.scanNumber()
	case r == '"':
		tok, err = lx.scanString()
	default:
		tok, err = lx.scanPunct(r, size)
	}
	if err != nil {
		return token.Token{}, err
	}
	tok.NewlineBefore = nl
	return tok, nil
}

func (lx *Lexer) span(start int) source.Span {
	s, err := safecast.Conv[uint32](start)
	if err != nil {
		panic(fmt.Errorf("token offset overflow: %w", err))
	}
	e, err := safecast.Conv[uint32](lx.off)
	if err != nil {
		panic(fmt.Errorf("token offset overflow: %w", err))
	}
	return source.Span{File: lx.file.ID, Start: s, End: e}
}

func (lx *Lexer) peekByte(ahead int) byte {
	if lx.off+ahead < len(lx.file.Content) {
		return lx.file.Content[lx.off+ahead]
	}
	return 0
}

func (lx *Lexer) skipTrivia() error {
	content := lx.file.Content
	for lx.off < len(content) {
		switch c := content[lx.off]; {
		case c == '\n':
			lx.newline = true
			lx.off++
		case c == ' ' || c == '\t' || c == '\r':
			lx.off++
		case c == '/' && lx.peekByte(1) == '/':
			for lx.off < len(content) && content[lx.off] != '\n' {
				lx.off++
			}
		case c == '/' && lx.peekByte(1) == '*':
			start := lx.off
			lx.off += 2
			for {
				if lx.off+1 >= len(content) {
					lx.off = len(content)
					return diag.ParseErrorf(diag.SynUnclosedDelimiter, lx.span(start), "unterminated block comment")
				}
				if content[lx.off] == '*' && content[lx.off+1] == '/' {
					lx.off += 2
					break
				}
				if content[lx.off] == '\n' {
					lx.newline = true
				}
				lx.off++
			}
		default:
			return nil
		}
	}
	return nil
}

func (lx *Lexer) scanIdent() token.Token {
	start := lx.off
	for lx.off < len(lx.file.Content) {
		r, size := utf8.DecodeRune(lx.file.Content[lx.off:])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsMark(r) {
			break
		}
		lx.off += size
	}
	text := norm.NFC.String(string(lx.file.Content[start:lx.off]))
	kind := token.Ident
	if kw, ok := token.LookupKeyword(text); ok {
		kind = kw
	}
	return token.Token{Kind: kind, Span: lx.span(start), Text: text}
}

func (lx *Lexer) scanNumber() (token.Token, error) {
	start := lx.off
	content := lx.file.Content
	for lx.off < len(content) && isDigitOrSep(content[lx.off]) {
		lx.off++
	}
	kind := token.IntLit
	if lx.peekByte(0) == '.' && isDigit(lx.peekByte(1)) {
		kind = token.FloatLit
		lx.off++
		for lx.off < len(content) && isDigitOrSep(content[lx.off]) {
			lx.off++
		}
	}
	if c := lx.peekByte(0); c == 'e' || c == 'E' {
		kind = token.FloatLit
		lx.off++
		if c := lx.peekByte(0); c == '+' || c == '-' {
			lx.off++
		}
		if !isDigit(lx.peekByte(0)) {
			return token.Token{}, diag.ParseErrorf(diag.LexBadNumber, lx.span(start), "missing exponent digits")
		}
		for lx.off < len(content) && isDigit(content[lx.off]) {
			lx.off++
		}
	}
	if lx.off < len(content) {
		if r, _ := utf8.DecodeRune(content[lx.off:]); r == '_' || unicode.IsLetter(r) {
			return token.Token{}, diag.ParseErrorf(diag.LexBadNumber, lx.span(start), "invalid character %q in number", r)
		}
	}
	return token.Token{Kind: kind, Span: lx.span(start), Text: string(content[start:lx.off])}, nil
}

func (lx *Lexer) scanString() (token.Token, error) {
	start := lx.off
	lx.off++
	var buf []byte
	content := lx.file.Content
	for {
		if lx.off >= len(content) || content[lx.off] == '\n' {
			return token.Token{}, diag.ParseErrorf(diag.LexUnterminatedString, lx.span(start), "unterminated string literal")
		}
		c := content[lx.off]
		if c == '"' {
			lx.off++
			break
		}
		if c == '\\' {
			esc := lx.peekByte(1)
			switch esc {
			case 'n':
				buf = append(buf, '\n')
			case 't':
				buf = append(buf, '\t')
			case 'r':
				buf = append(buf, '\r')
			case '"', '\\':
				buf = append(buf, esc)
			case '0':
				buf = append(buf, 0)
			default:
				lx.off += 2
				return token.Token{}, diag.ParseErrorf(diag.LexUnterminatedString, lx.span(lx.off-2), "unknown escape \\%c", esc)
			}
			lx.off += 2
			continue
		}
		buf = append(buf, c)
		lx.off++
	}
	return token.Token{Kind: token.StringLit, Span: lx.span(start), Text: norm.NFC.String(string(buf))}, nil
}

var twoByte = map[string]token.Kind{
	"==": token.EqEq,
	"!=": token.BangEq,
	"<=": token.LtEq,
	">=": token.GtEq,
}

var oneByte = map[byte]token.Kind{
	'(': token.LParen,
	')': token.RParen,
	'{': token.LBrace,
	'}': token.RBrace,
	'[': token.LBracket,
	']': token.RBracket,
	',': token.Comma,
	'.': token.Dot,
	':': token.Colon,
	';': token.Semicolon,
	'=': token.Assign,
	'<': token.Lt,
	'>': token.Gt,
	'+': token.Plus,
	'-': token.Minus,
	'*': token.Star,
	'/': token.Slash,
	'%': token.Percent,
	'!': token.Bang,
	'|': token.Pipe,
	'&': token.Amp,
}

func (lx *Lexer) scanPunct(r rune, size int) (token.Token, error) {
	start := lx.off
	if lx.off+2 <= len(lx.file.Content) {
		if k, ok := twoByte[string(lx.file.Content[lx.off:lx.off+2])]; ok {
			lx.off += 2
			return token.Token{Kind: k, Span: lx.span(start), Text: string(lx.file.Content[start:lx.off])}, nil
		}
	}
	if r < utf8.RuneSelf {
		if k, ok := oneByte[byte(r)]; ok {
			lx.off++
			return token.Token{Kind: k, Span: lx.span(start), Text: string(rune(r))}, nil
		}
	}
	lx.off += size
	return token.Token{}, diag.ParseErrorf(diag.LexUnknownChar, lx.span(start), "unexpected character %q", r)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isDigitOrSep(c byte) bool { return isDigit(c) || c == '_' }
