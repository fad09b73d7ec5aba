package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"macrobridge/internal/catalogue"
	"macrobridge/internal/config"
	"macrobridge/internal/observ"
	"macrobridge/internal/plugin"
	"macrobridge/internal/procmacro"
	"macrobridge/internal/source"
	"macrobridge/internal/status"
	"macrobridge/internal/supervisor"
	"macrobridge/internal/trace"
	"macrobridge/internal/version"
)

// bridge is everything a command needs to expand macros.
type bridge struct {
	cell      status.Cell
	sup       *supervisor.Supervisor
	session   *procmacro.Session
	catalogue *catalogue.Catalogue
	suites    map[string]*plugin.Suite
	fs        *source.FileSet
}

// dialerFor builds the server dialer, or nil when no command is configured.
func dialerFor(cfg config.Config) supervisor.Dialer {
	if len(cfg.Server.Command) == 0 {
		return nil
	}
	return supervisor.ExecDialer(supervisor.Command{
		Path:   cfg.Server.Command[0],
		Args:   cfg.Server.Command[1:],
		Dir:    cfg.Server.Dir,
		Env:    cfg.Server.Env,
		Stderr: os.Stderr,
	})
}

func openDiskCache(cfg config.Config) (*procmacro.DiskCache, error) {
	if cfg.Cache.Dir != "" {
		return procmacro.OpenDiskCacheAt(cfg.Cache.Dir)
	}
	return procmacro.OpenDiskCache("macrobridge")
}

// openBridge starts the server (when dial is not nil), loads the catalogue
// and builds the suites. Without a server every expansion degrades, which
// is still useful to inspect what would be installed.
func openBridge(ctx context.Context, cfg config.Config, dial supervisor.Dialer, timer *observ.Timer) (*bridge, error) {
	tracer := trace.FromContext(ctx)
	d, err := cfg.Connection.Durations()
	if err != nil {
		return nil, err
	}
	b := &bridge{fs: source.NewFileSet()}

	if dial != nil {
		idx := timer.Begin("connect")
		b.sup = supervisor.Start(ctx, supervisor.Config{
			Dial:             dial,
			MaxRestarts:      cfg.Connection.MaxRestarts,
			Backoff:          d.Backoff,
			MaxBackoff:       d.MaxBackoff,
			HandshakeTimeout: d.HandshakeTimeout,
			ClientVersion:    version.Version,
			Tracer:           tracer,
			CrashDump:        os.Stderr,
		}, &b.cell)
		select {
		case <-b.sup.Ready():
		case <-ctx.Done():
			b.Close()
			return nil, ctx.Err()
		}
		timer.End(idx, b.cell.Load().String())
		if b.cell.Load().IsCrashed() {
			err := b.sup.Err()
			b.Close()
			return nil, err
		}
	}

	var disk *procmacro.DiskCache
	if cfg.Cache.Disk {
		if disk, err = openDiskCache(cfg); err != nil {
			b.Close()
			return nil, err
		}
	}
	memo := cfg.Cache.MemoSize
	if memo == 0 {
		memo = -1
	}
	b.session, err = procmacro.NewSession(procmacro.Options{
		Status:      &b.cell,
		Timeout:     d.RequestTimeout,
		MemoSize:    memo,
		Disk:        disk,
		Fingerprint: b.fingerprint,
		Tracer:      tracer,
	})
	if err != nil {
		b.Close()
		return nil, err
	}

	idx := timer.Begin("catalogue")
	b.catalogue, err = b.loadCatalogue(ctx, cfg)
	if err != nil {
		b.Close()
		return nil, err
	}
	timer.End(idx, fmt.Sprintf("%d packages", b.catalogue.Len()))

	b.suites = b.session.BuildSuites(b.catalogue)
	return b, nil
}

func (b *bridge) loadCatalogue(ctx context.Context, cfg config.Config) (*catalogue.Catalogue, error) {
	if cfg.Server.Catalogue != "" {
		return catalogue.Load(cfg.Server.Catalogue)
	}
	c, ok := b.cell.Load().Connected()
	if !ok {
		return nil, errors.New("no [server] command and no catalogue configured")
	}
	defs, err := c.DefinedMacros(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch catalogue: %w", err)
	}
	return catalogue.FromWire(defs)
}

func (b *bridge) fingerprint() string {
	if b.sup == nil {
		return ""
	}
	hs, _ := b.sup.Handshake()
	return hs.Fingerprint
}

func (b *bridge) Close() {
	if b.sup != nil {
		b.sup.Stop()
	}
}
