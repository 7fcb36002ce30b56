// Package update runs update checks against a manifest source and keeps
// only the newest check's result.
package update

import (
	"context"
	"sync"
	"time"

	"github.com/litescript/ls-release-tui/internal/log"
	"github.com/litescript/ls-release-tui/internal/manifest"
	"github.com/litescript/ls-release-tui/internal/version"
)

// Result is the outcome of one check.
type Result struct {
	Seq      uint64
	Info     version.UpdateInfo
	Manifest manifest.Manifest
	// Err is set when the local version itself could not be parsed.
	Err error
}

// Checker sequences update checks. Starting a check cancels the one
// before it, and Accept rejects results that are no longer the newest.
type Checker struct {
	src manifest.Source

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

// NewChecker creates a checker for src.
func NewChecker(src manifest.Source) *Checker {
	return &Checker{src: src}
}

// Source returns the manifest source being checked.
func (c *Checker) Source() manifest.Source {
	return c.src
}

// Start begins a new check and returns its sequence number and context.
// The previous check's context is cancelled.
func (c *Checker) Start(parent context.Context) (uint64, context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	c.seq++
	c.cancel = cancel
	return c.seq, ctx
}

// Run performs one fetch and reconciles it against local.
func (c *Checker) Run(ctx context.Context, seq uint64, local string) Result {
	start := time.Now()
	m, fetchErr := c.src.Fetch(ctx)

	info, err := version.Reconcile(local, m.Latest(), fetchErr)
	log.Debug(log.CatUpdate, "check finished",
		"seq", seq, "source", c.src.Name(), "status", info.Status.String(), "took", time.Since(start).String())
	if fetchErr != nil {
		log.Warn(log.CatUpdate, "manifest fetch failed", "seq", seq, "error", fetchErr.Error())
	}

	return Result{Seq: seq, Info: info, Manifest: m, Err: err}
}

// Check is Start followed by Run, for callers that wait for the answer.
func (c *Checker) Check(ctx context.Context, local string) Result {
	seq, checkCtx := c.Start(ctx)
	res := c.Run(checkCtx, seq, local)
	c.finish(seq)
	return res
}

// CheckWithRetry checks up to 1+retries times, stopping as soon as the
// result is not worth retrying.
func (c *Checker) CheckWithRetry(ctx context.Context, local string, retries int, backoff time.Duration) Result {
	res := c.Check(ctx, local)
	for i := 0; i < retries && res.Err == nil && res.Info.Retryable(); i++ {
		select {
		case <-ctx.Done():
			return res
		case <-time.After(backoff):
		}
		log.Info(log.CatUpdate, "retrying update check", "attempt", i+2)
		res = c.Check(ctx, local)
	}
	return res
}

// Accept reports whether res belongs to the newest check. Stale results
// must be discarded.
func (c *Checker) Accept(res Result) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return res.Seq == c.seq
}

// Cancel aborts the in-flight check, if any.
func (c *Checker) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Checker) finish(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq == c.seq && c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}
