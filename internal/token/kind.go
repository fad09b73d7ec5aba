package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF
	// Ident represents an identifier or keyword; keywords are not
	// distinguished at this level.
	Ident
	// Number represents an integer literal, including hex and suffixed forms.
	Number
	// String represents a quoted string or short-string literal.
	String
	// Punct represents an operator or delimiter.
	Punct
)

func (k Kind) String() string {
	switch k {
	case Invalid:
		return "invalid"
	case EOF:
		return "eof"
	case Ident:
		return "ident"
	case Number:
		return "number"
	case String:
		return "string"
	case Punct:
		return "punct"
	default:
		return "unknown"
	}
}
