package token

import (
	"strings"

	"macrobridge/internal/source"
)

type TriviaKind uint8

const (
	TriviaSpace TriviaKind = iota
	TriviaNewline
	TriviaLineComment
)

// Trivia is whitespace or a comment carried in front of a token.
type Trivia struct {
	Kind TriviaKind
	Span source.Span
	Text string
}

type Token struct {
	Kind    Kind
	Span    source.Span
	Text    string
	Leading []Trivia
}

func (t Token) IsIdent() bool { return t.Kind == Ident }

// IsPunct matches punctuation by its exact text.
func (t Token) IsPunct(text string) bool { return t.Kind == Punct && t.Text == text }

// FullText is the token with its leading trivia.
func (t Token) FullText() string {
	if len(t.Leading) == 0 {
		return t.Text
	}
	var sb strings.Builder
	t.writeTo(&sb)
	return sb.String()
}

func (t Token) writeTo(sb *strings.Builder) {
	for _, tr := range t.Leading {
		sb.WriteString(tr.Text)
	}
	sb.WriteString(t.Text)
}

// Render rebuilds the source text of a token run.
func Render(tokens []Token) string {
	var sb strings.Builder
	for _, tok := range tokens {
		tok.writeTo(&sb)
	}
	return sb.String()
}
