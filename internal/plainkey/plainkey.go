// Package plainkey flattens expansion requests into hashable cache keys.
//
// Token streams are reduced to their rendered text, so two requests that
// differ only in how their tokens were split compare equal. Every other
// field is copied as is. Derive names keep the order they were requested
// in: the server concatenates derive output in that order, so the same
// set in another order is a different request.
package plainkey

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"

	"github.com/vmihailenco/msgpack/v5"

	"macrobridge/internal/protocol/v2"
)

// Digest is a SHA-256 over the canonical encoding of a key.
type Digest [32]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// Combine salts d with extra, e.g. a server fingerprint.
func (d Digest) Combine(extra ...string) Digest {
	h := sha256.New()
	_, _ = h.Write(d[:])
	for _, e := range extra {
		_, _ = h.Write([]byte(e))
		_, _ = h.Write([]byte{0})
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// Shape tells the three request kinds apart.
type Shape uint8

const (
	ShapeAttribute Shape = iota + 1
	ShapeDerive
	ShapeInline
)

func (s Shape) String() string {
	switch s {
	case ShapeAttribute:
		return "attribute"
	case ShapeDerive:
		return "derive"
	case ShapeInline:
		return "inline"
	default:
		return "unknown"
	}
}

// Key is implemented by Attribute, Derive and Inline.
type Key interface {
	Shape() Shape
	Digest() Digest
	fmt.Stringer
}

type Attribute struct {
	Context  v2.ProcMacroScope `msgpack:"context"`
	Attr     string            `msgpack:"attr"`
	Args     string            `msgpack:"args"`
	Item     string            `msgpack:"item"`
	CallSite v2.TextSpan       `msgpack:"call_site"`
}

type Derive struct {
	Context  v2.ProcMacroScope `msgpack:"context"`
	Derives  []string          `msgpack:"derives"`
	Item     string            `msgpack:"item"`
	CallSite v2.TextSpan       `msgpack:"call_site"`
}

type Inline struct {
	Context  v2.ProcMacroScope `msgpack:"context"`
	Name     string            `msgpack:"name"`
	Args     string            `msgpack:"args"`
	CallSite v2.TextSpan       `msgpack:"call_site"`
}

func FromAttribute(p v2.ExpandAttributeParams) Attribute {
	return Attribute{
		Context:  p.Context,
		Attr:     p.Attr,
		Args:     p.Args.String(),
		Item:     p.Item.String(),
		CallSite: p.CallSite,
	}
}

func FromDerive(p v2.ExpandDeriveParams) Derive {
	var derives []string
	if len(p.Derives) > 0 {
		derives = slices.Clone(p.Derives)
	}
	return Derive{
		Context:  p.Context,
		Derives:  derives,
		Item:     p.Item.String(),
		CallSite: p.CallSite,
	}
}

func FromInline(p v2.ExpandInlineParams) Inline {
	return Inline{
		Context:  p.Context,
		Name:     p.Name,
		Args:     p.Args.String(),
		CallSite: p.CallSite,
	}
}

func (Attribute) Shape() Shape { return ShapeAttribute }
func (Derive) Shape() Shape    { return ShapeDerive }
func (Inline) Shape() Shape    { return ShapeInline }

func (k Attribute) Digest() Digest { return digest(ShapeAttribute, k) }
func (k Derive) Digest() Digest    { return digest(ShapeDerive, k) }
func (k Inline) Digest() Digest    { return digest(ShapeInline, k) }

// Equal compares all fields, derive names in order.
func (k Derive) Equal(other Derive) bool {
	return k.Context == other.Context &&
		k.Item == other.Item &&
		k.CallSite == other.CallSite &&
		slices.Equal(k.Derives, other.Derives)
}

func (k Attribute) String() string {
	return fmt.Sprintf("attr:%s@%s[%d:%d]", k.Attr, k.Context.Component, k.CallSite.Start, k.CallSite.End)
}

func (k Derive) String() string {
	return fmt.Sprintf("derive:%v@%s[%d:%d]", k.Derives, k.Context.Component, k.CallSite.Start, k.CallSite.End)
}

func (k Inline) String() string {
	return fmt.Sprintf("inline:%s@%s[%d:%d]", k.Name, k.Context.Component, k.CallSite.Start, k.CallSite.End)
}

// digest hashes the shape tag followed by the msgpack encoding of the key.
// Struct fields encode in declaration order, which makes the encoding canonical.
func digest(shape Shape, v any) Digest {
	data, err := msgpack.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("plainkey: encode %s key: %w", shape, err))
	}
	h := sha256.New()
	_, _ = h.Write([]byte{byte(shape)})
	_, _ = h.Write(data)
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}
