package procmacro

import (
	"context"

	"macrobridge/internal/client"
	"macrobridge/internal/convert"
	"macrobridge/internal/protocol"
	"macrobridge/internal/protocol/v2"
)

// Every request is built in v2 shape; v1 packages get it downgraded here
// and their answer lifted back, so nothing above this file branches on the
// protocol generation.

func callAttribute(gen protocol.Generation, p v2.ExpandAttributeParams) callFunc {
	if gen == protocol.V1 {
		down := convert.DowngradeAttribute(p)
		return func(ctx context.Context, c *client.Client) (v2.Result, error) {
			r, err := c.ExpandAttributeV1(ctx, down)
			return convert.UpgradeResult(r), err
		}
	}
	return func(ctx context.Context, c *client.Client) (v2.Result, error) {
		return c.ExpandAttribute(ctx, p)
	}
}

func callDerive(gen protocol.Generation, p v2.ExpandDeriveParams) callFunc {
	if gen == protocol.V1 {
		down := convert.DowngradeDerive(p)
		return func(ctx context.Context, c *client.Client) (v2.Result, error) {
			r, err := c.ExpandDeriveV1(ctx, down)
			return convert.UpgradeResult(r), err
		}
	}
	return func(ctx context.Context, c *client.Client) (v2.Result, error) {
		return c.ExpandDerive(ctx, p)
	}
}

func callInline(gen protocol.Generation, p v2.ExpandInlineParams) callFunc {
	if gen == protocol.V1 {
		down := convert.DowngradeInline(p)
		return func(ctx context.Context, c *client.Client) (v2.Result, error) {
			r, err := c.ExpandInlineV1(ctx, down)
			return convert.UpgradeResult(r), err
		}
	}
	return func(ctx context.Context, c *client.Client) (v2.Result, error) {
		return c.ExpandInline(ctx, p)
	}
}
