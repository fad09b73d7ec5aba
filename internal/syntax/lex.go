package syntax

import (
	"fmt"

	"fortio.org/safecast"

	"macrobridge/internal/source"
	"macrobridge/internal/token"
)

// двухсимвольные операторы, остальное одиночная пунктуация
var twoCharPuncts = map[string]struct{}{
	"::": {}, "=>": {}, "->": {}, "==": {}, "!=": {}, "<=": {}, ">=": {},
	"&&": {}, "||": {}, "..": {}, "+=": {}, "-=": {}, "*=": {}, "/=": {},
}

type cursor struct {
	file source.FileID
	base uint32
	text string
	off  int
	hold []token.Trivia
}

// Lex splits text into tokens. base is the file offset of text[0].
// The result always ends with an EOF token that carries trailing trivia.
func Lex(file source.FileID, base uint32, text string) []token.Token {
	c := &cursor{file: file, base: base, text: text}
	var out []token.Token
	for {
		c.collectTrivia()
		start := c.off
		if c.off >= len(c.text) {
			out = append(out, c.emit(token.EOF, start))
			return out
		}
		out = append(out, c.emit(c.scan(), start))
	}
}

func (c *cursor) span(start, end int) source.Span {
	s, err := safecast.Conv[uint32](start)
	if err != nil {
		panic(fmt.Errorf("token start overflow: %w", err))
	}
	e, err := safecast.Conv[uint32](end)
	if err != nil {
		panic(fmt.Errorf("token end overflow: %w", err))
	}
	return source.Span{File: c.file, Start: c.base + s, End: c.base + e}
}

func (c *cursor) emit(kind token.Kind, start int) token.Token {
	tok := token.Token{
		Kind:    kind,
		Span:    c.span(start, c.off),
		Text:    c.text[start:c.off],
		Leading: c.hold,
	}
	c.hold = nil
	return tok
}

func (c *cursor) peek(n int) byte {
	if c.off+n >= len(c.text) {
		return 0
	}
	return c.text[c.off+n]
}

func (c *cursor) collectTrivia() {
	for c.off < len(c.text) {
		start := c.off
		var kind token.TriviaKind
		switch b := c.text[c.off]; {
		case b == ' ' || b == '\t' || b == '\r':
			for c.off < len(c.text) && (c.text[c.off] == ' ' || c.text[c.off] == '\t' || c.text[c.off] == '\r') {
				c.off++
			}
			kind = token.TriviaSpace
		case b == '\n':
			for c.off < len(c.text) && c.text[c.off] == '\n' {
				c.off++
			}
			kind = token.TriviaNewline
		case b == '/' && c.peek(1) == '/':
			for c.off < len(c.text) && c.text[c.off] != '\n' {
				c.off++
			}
			kind = token.TriviaLineComment
		default:
			return
		}
		c.hold = append(c.hold, token.Trivia{
			Kind: kind,
			Span: c.span(start, c.off),
			Text: c.text[start:c.off],
		})
	}
}

func (c *cursor) scan() token.Kind {
	b := c.text[c.off]
	switch {
	case isIdentStart(b):
		for c.off < len(c.text) && isIdentContinue(c.text[c.off]) {
			c.off++
		}
		return token.Ident
	case isDigit(b):
		for c.off < len(c.text) && isIdentContinue(c.text[c.off]) {
			c.off++
		}
		return token.Number
	case b == '"' || b == '\'':
		return c.scanString(b)
	}
	if c.off+2 <= len(c.text) {
		if _, ok := twoCharPuncts[c.text[c.off:c.off+2]]; ok {
			c.off += 2
			return token.Punct
		}
	}
	c.off++
	if b < 0x20 || b >= 0x7f {
		return token.Invalid
	}
	return token.Punct
}

func (c *cursor) scanString(quote byte) token.Kind {
	c.off++
	for c.off < len(c.text) {
		switch c.text[c.off] {
		case '\\':
			c.off += 2
			if c.off > len(c.text) {
				c.off = len(c.text)
			}
		case quote:
			c.off++
			return token.String
		case '\n':
			return token.Invalid
		default:
			c.off++
		}
	}
	return token.Invalid
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentContinue(b byte) bool {
	return isIdentStart(b) || isDigit(b)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
