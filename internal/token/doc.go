// Package token defines the tokens the host hands to macro plugins.
// Invariants:
//   - Token.Text is the exact source text of the token, without trivia.
//   - Token.Span matches Text exactly (Start..End).
//   - Whitespace and comments are represented as leading Trivia and
//     never appear as tokens of their own.
//   - Concatenating Leading trivia and Text of every token reproduces
//     the original text byte for byte.
package token
