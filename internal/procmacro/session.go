package procmacro

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"macrobridge/internal/client"
	"macrobridge/internal/plainkey"
	"macrobridge/internal/protocol"
	"macrobridge/internal/protocol/v2"
	"macrobridge/internal/source"
	"macrobridge/internal/status"
	"macrobridge/internal/trace"
)

const defaultMemoSize = 1024

// ScopeResolver locates a request within the project.
type ScopeResolver func(file source.FileID, pkg string) v2.ProcMacroScope

// PackageScope uses the package name as the component.
func PackageScope(_ source.FileID, pkg string) v2.ProcMacroScope {
	return v2.ProcMacroScope{Component: pkg}
}

// Options configure a Session.
type Options struct {
	// Status is required; the supervisor keeps it current.
	Status *status.Cell
	Scope  ScopeResolver
	// Timeout bounds one expansion request; zero means no limit.
	Timeout time.Duration
	// MemoSize is the in-memory cache capacity; negative disables it.
	MemoSize int
	// Disk persists expansions across runs; nil disables it.
	Disk *DiskCache
	// Fingerprint identifies the loaded macro binaries; it salts every
	// cache key so a rebuilt macro never serves stale output.
	Fingerprint func() string
	Tracer      trace.Tracer
}

// Stats counts what happened to expansion requests.
type Stats struct {
	Calls    uint64 // sent to the server
	MemoHits uint64
	DiskHits uint64
	Degraded uint64 // answered empty because the server was unusable
}

// Session owns everything adapters share.
type Session struct {
	status      *status.Cell
	scope       ScopeResolver
	timeout     time.Duration
	memo        *lru.Cache[plainkey.Digest, v2.Result]
	group       singleflight.Group
	disk        *DiskCache
	fingerprint func() string
	tracer      trace.Tracer

	calls, memoHits, diskHits, degraded atomic.Uint64
}

func NewSession(opts Options) (*Session, error) {
	if opts.Status == nil {
		return nil, fmt.Errorf("procmacro: session needs a status cell")
	}
	s := &Session{
		status:      opts.Status,
		scope:       opts.Scope,
		timeout:     opts.Timeout,
		disk:        opts.Disk,
		fingerprint: opts.Fingerprint,
		tracer:      opts.Tracer,
	}
	if s.scope == nil {
		s.scope = PackageScope
	}
	if s.fingerprint == nil {
		s.fingerprint = func() string { return "" }
	}
	if s.tracer == nil {
		s.tracer = trace.Nop
	}
	if opts.MemoSize >= 0 {
		size := opts.MemoSize
		if size == 0 {
			size = defaultMemoSize
		}
		memo, err := lru.New[plainkey.Digest, v2.Result](size)
		if err != nil {
			return nil, fmt.Errorf("procmacro: memo: %w", err)
		}
		s.memo = memo
	}
	return s, nil
}

func (s *Session) Stats() Stats {
	return Stats{
		Calls:    s.calls.Load(),
		MemoHits: s.memoHits.Load(),
		DiskHits: s.diskHits.Load(),
		Degraded: s.degraded.Load(),
	}
}

// Purge drops the in-memory cache.
func (s *Session) Purge() {
	if s.memo != nil {
		s.memo.Purge()
	}
}

// callFunc performs the request on a live client, already in v2 shape.
type callFunc func(ctx context.Context, c *client.Client) (v2.Result, error)

// expand answers a request from cache or server. ok is false when the
// request degraded to an empty result.
func (s *Session) expand(gen protocol.Generation, key plainkey.Key, call callFunc) (v2.Result, bool) {
	sp := trace.Begin(s.tracer, trace.ScopeRequest, "expand:"+key.Shape().String(), 0).
		WithExtra("protocol", gen.String())

	c, live := s.status.Load().Connected()
	if !live {
		s.degraded.Add(1)
		sp.End("degraded: " + s.status.Load().String())
		return v2.Result{}, false
	}

	digest := key.Digest().Combine(gen.String(), s.fingerprint())
	if s.memo != nil {
		if res, ok := s.memo.Get(digest); ok {
			s.memoHits.Add(1)
			sp.End("memo")
			return res, true
		}
	}

	v, err, _ := s.group.Do(digest.String(), func() (any, error) {
		// a concurrent flight may have finished between the lookup and Do
		if s.memo != nil {
			if res, ok := s.memo.Get(digest); ok {
				return res, nil
			}
		}
		if res, ok := s.diskGet(digest); ok {
			s.diskHits.Add(1)
			s.remember(digest, res)
			return res, nil
		}
		ctx := trace.WithTracer(context.Background(), s.tracer)
		if s.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}
		s.calls.Add(1)
		res, err := call(ctx, c)
		if err != nil {
			return nil, err
		}
		s.remember(digest, res)
		s.diskPut(digest, res)
		return res, nil
	})
	if err != nil {
		s.degraded.Add(1)
		trace.Fail(s.tracer, trace.ScopeRequest, "expand:"+key.Shape().String(), err)
		sp.End("degraded: call failed")
		return v2.Result{}, false
	}
	sp.End("ok")
	return v.(v2.Result), true
}

func (s *Session) remember(d plainkey.Digest, res v2.Result) {
	if s.memo != nil {
		s.memo.Add(d, res)
	}
}

func (s *Session) diskGet(d plainkey.Digest) (v2.Result, bool) {
	res, ok, err := s.disk.Get(d)
	if err != nil {
		trace.Fail(s.tracer, trace.ScopeRequest, "cache:read", err)
		return v2.Result{}, false
	}
	return res, ok
}

func (s *Session) diskPut(d plainkey.Digest, res v2.Result) {
	if err := s.disk.Put(d, res); err != nil {
		trace.Fail(s.tracer, trace.ScopeRequest, "cache:write", err)
	}
}
