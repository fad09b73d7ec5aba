package client

import (
	"context"

	"macrobridge/internal/protocol/v1"
	"macrobridge/internal/protocol/v2"
)

// Handshake announces the client and learns the server fingerprint.
func (c *Client) Handshake(ctx context.Context, p v2.HandshakeParams) (v2.HandshakeResult, error) {
	var out v2.HandshakeResult
	err := c.Call(ctx, v2.MethodHandshake, p, &out)
	return out, err
}

// DefinedMacros fetches the macro catalogue.
func (c *Client) DefinedMacros(ctx context.Context) (v2.DefinedMacros, error) {
	var out v2.DefinedMacros
	err := c.Call(ctx, v2.MethodDefinedMacros, v2.DefinedMacrosParams{}, &out)
	return out, err
}

func (c *Client) ExpandAttribute(ctx context.Context, p v2.ExpandAttributeParams) (v2.Result, error) {
	var out v2.Result
	err := c.Call(ctx, v2.MethodExpandAttribute, p, &out)
	return out, err
}

func (c *Client) ExpandDerive(ctx context.Context, p v2.ExpandDeriveParams) (v2.Result, error) {
	var out v2.Result
	err := c.Call(ctx, v2.MethodExpandDerive, p, &out)
	return out, err
}

func (c *Client) ExpandInline(ctx context.Context, p v2.ExpandInlineParams) (v2.Result, error) {
	var out v2.Result
	err := c.Call(ctx, v2.MethodExpandInline, p, &out)
	return out, err
}

func (c *Client) ExpandAttributeV1(ctx context.Context, p v1.ExpandAttributeParams) (v1.Result, error) {
	var out v1.Result
	err := c.Call(ctx, v1.MethodExpandAttribute, p, &out)
	return out, err
}

func (c *Client) ExpandDeriveV1(ctx context.Context, p v1.ExpandDeriveParams) (v1.Result, error) {
	var out v1.Result
	err := c.Call(ctx, v1.MethodExpandDerive, p, &out)
	return out, err
}

func (c *Client) ExpandInlineV1(ctx context.Context, p v1.ExpandInlineParams) (v1.Result, error) {
	var out v1.Result
	err := c.Call(ctx, v1.MethodExpandInline, p, &out)
	return out, err
}
