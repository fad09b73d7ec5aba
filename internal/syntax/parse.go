package syntax

import (
	"errors"
	"fmt"
	"strings"

	"macrobridge/internal/source"
	"macrobridge/internal/token"
)

var (
	// ErrEmpty is returned when there is nothing but trivia to parse.
	ErrEmpty = errors.New("empty input")
	// ErrUnclosed is returned for an unbalanced delimiter.
	ErrUnclosed = errors.New("unclosed delimiter")
)

var closing = map[string]string{"(": ")", "[": "]", "{": "}"}

// ParseItem parses outer attributes followed by the item body.
func ParseItem(file source.FileID, base uint32, text string) (Item, error) {
	toks := trimEOF(Lex(file, base, text))
	if len(toks) == 0 {
		return Item{}, ErrEmpty
	}
	item := Item{Node: NewNode(KindItem, toks)}
	i := 0
	for i+1 < len(toks) && toks[i].IsPunct("#") && toks[i+1].IsPunct("[") {
		end, err := matchDelim(toks, i+1)
		if err != nil {
			return Item{}, fmt.Errorf("attribute at %s: %w", toks[i].Span, err)
		}
		attr, err := parseAttribute(toks[i : end+1])
		if err != nil {
			return Item{}, err
		}
		attr.first, attr.last = i, end+1
		item.Attributes = append(item.Attributes, attr)
		i = end + 1
	}
	if i == len(toks) {
		return Item{}, fmt.Errorf("attributes without an item: %w", ErrEmpty)
	}
	return item, nil
}

// parseAttribute handles `# [ path ( args ) ]`.
func parseAttribute(toks []token.Token) (Attribute, error) {
	attr := Attribute{Node: NewNode(KindAttribute, toks)}
	inner := toks[2 : len(toks)-1]
	name, rest := parsePath(inner)
	if name == "" {
		return Attribute{}, fmt.Errorf("attribute at %s: expected a name", toks[0].Span)
	}
	attr.Name = name
	if len(rest) == 0 {
		return attr, nil
	}
	if !rest[0].IsPunct("(") {
		return Attribute{}, fmt.Errorf("attribute %q: unexpected %q", name, rest[0].Text)
	}
	end, err := matchDelim(rest, 0)
	if err != nil {
		return Attribute{}, fmt.Errorf("attribute %q: %w", name, err)
	}
	if end != len(rest)-1 {
		return Attribute{}, fmt.Errorf("attribute %q: trailing tokens after arguments", name)
	}
	args := NewNode(KindAttributeArgs, rest)
	attr.Args = &args
	return attr, nil
}

// ParseInlineMacro parses `path!(args)`.
func ParseInlineMacro(file source.FileID, base uint32, text string) (InlineMacro, error) {
	toks := trimEOF(Lex(file, base, text))
	if len(toks) == 0 {
		return InlineMacro{}, ErrEmpty
	}
	name, rest := parsePath(toks)
	if name == "" || len(rest) < 2 || !rest[0].IsPunct("!") {
		return InlineMacro{}, fmt.Errorf("inline macro: expected `name!(...)`")
	}
	if _, ok := closing[rest[1].Text]; !ok || rest[1].Kind != token.Punct {
		return InlineMacro{}, fmt.Errorf("inline macro %q: expected a delimiter after `!`", name)
	}
	end, err := matchDelim(rest, 1)
	if err != nil {
		return InlineMacro{}, fmt.Errorf("inline macro %q: %w", name, err)
	}
	if end != len(rest)-1 {
		return InlineMacro{}, fmt.Errorf("inline macro %q: trailing tokens after arguments", name)
	}
	return InlineMacro{
		Node: NewNode(KindInlineMacro, toks),
		Name: name,
		Args: NewNode(KindInlineMacroArgs, rest[1:]),
	}, nil
}

// parsePath reads `a::b::c` and returns it with whitespace dropped.
func parsePath(toks []token.Token) (string, []token.Token) {
	var sb strings.Builder
	i := 0
	for i < len(toks) && toks[i].IsIdent() {
		sb.WriteString(toks[i].Text)
		i++
		if i+1 < len(toks) && toks[i].IsPunct("::") && toks[i+1].IsIdent() {
			sb.WriteString("::")
			i++
			continue
		}
		break
	}
	return sb.String(), toks[i:]
}

// matchDelim returns the index of the delimiter closing toks[open].
func matchDelim(toks []token.Token, open int) (int, error) {
	var stack []string
	for i := open; i < len(toks); i++ {
		tok := toks[i]
		if tok.Kind != token.Punct {
			continue
		}
		if want, ok := closing[tok.Text]; ok {
			stack = append(stack, want)
			continue
		}
		if len(stack) > 0 && tok.Text == stack[len(stack)-1] {
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i, nil
			}
		}
	}
	return 0, ErrUnclosed
}

func trimEOF(toks []token.Token) []token.Token {
	if n := len(toks); n > 0 && toks[n-1].Kind == token.EOF {
		return toks[:n-1]
	}
	return toks
}
