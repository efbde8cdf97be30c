// Package engine owns the live catalog snapshot and resolves requirements
// against it, one at a time or in bounded concurrent batches.
package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"nextadvisor/internal/catalog"
	"nextadvisor/internal/config"
	"nextadvisor/internal/logging"
	"nextadvisor/internal/matcher"
	"nextadvisor/internal/resolver"
)

// Options configure an Engine.
type Options struct {
	Concurrency    int           // batch worker limit; <= 0 uses GOMAXPROCS
	ResolveTimeout time.Duration // per-batch deadline; 0 disables
	Matching       matcher.Options
}

// OptionsFromConfig maps the config file onto engine options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Concurrency:    cfg.Engine.Concurrency,
		ResolveTimeout: cfg.Engine.GetResolveTimeout(),
		Matching: matcher.Options{
			MinScore:      cfg.Matching.MinScore,
			SynonymWeight: cfg.Matching.SynonymWeight,
			RegexWeight:   cfg.Matching.RegexWeight,
		},
	}
}

// Engine resolves requirements against an atomically published catalog.
// Readers never lock; a reload swaps the pointer and in-flight resolutions
// finish on the snapshot they started with.
type Engine struct {
	snapshot    atomic.Pointer[catalog.Catalog]
	resolver    *resolver.Resolver
	concurrency int
	timeout     time.Duration
	swaps       atomic.Int64
}

// New creates an engine serving cat.
func New(cat *catalog.Catalog, opts Options) (*Engine, error) {
	if cat == nil {
		return nil, fmt.Errorf("engine: catalog is required")
	}
	n := opts.Concurrency
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	e := &Engine{
		resolver:    resolver.New(matcher.New(opts.Matching)),
		concurrency: n,
		timeout:     opts.ResolveTimeout,
	}
	e.snapshot.Store(cat)
	logging.Get(logging.CategoryEngine).Info("serving catalog version=%q entries=%d", cat.Version(), cat.Len())
	return e, nil
}

// Catalog returns the current snapshot.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.snapshot.Load()
}

// Publish replaces the snapshot and returns the previous one. A nil catalog
// is ignored.
func (e *Engine) Publish(c *catalog.Catalog) *catalog.Catalog {
	if c == nil {
		return e.snapshot.Load()
	}
	old := e.snapshot.Swap(c)
	e.swaps.Add(1)
	logging.Get(logging.CategoryEngine).Info("published catalog version=%q (was %q)", c.Version(), old.Version())
	return old
}

// PublishFunc adapts Publish for catalog.Watcher.
func (e *Engine) PublishFunc() catalog.PublishFunc {
	return func(c *catalog.Catalog) { e.Publish(c) }
}

// Swaps returns how many times the snapshot was replaced.
func (e *Engine) Swaps() int64 {
	return e.swaps.Load()
}

// Resolve resolves one requirement against the current snapshot.
// See resolver.Resolve for the error contract.
func (e *Engine) Resolve(ctx context.Context, text string) (*resolver.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.resolver.ResolveText(text, e.snapshot.Load())
}

// Result is one batch entry. Index is the position in the input.
type Result struct {
	Index          int
	Text           string
	Recommendation *resolver.Recommendation
	Err            error // *resolver.IncompleteTemplateError or nil
}

// ResolveAll resolves texts concurrently with at most Concurrency workers,
// all against the snapshot current at the call. Output order equals input
// order. Clarification errors stay in Result.Err; any other error, or the
// context ending, fails the whole batch.
func (e *Engine) ResolveAll(ctx context.Context, texts []string) ([]Result, error) {
	timer := logging.StartTimer(logging.CategoryEngine, "ResolveAll")
	defer timer.Stop()

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	snap := e.snapshot.Load()
	results := make([]Result, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := e.resolver.ResolveText(text, snap)
			var ite *resolver.IncompleteTemplateError
			if err != nil && !errors.As(err, &ite) {
				return fmt.Errorf("requirement %d: %w", i, err)
			}
			results[i] = Result{Index: i, Text: text, Recommendation: rec, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	logging.Get(logging.CategoryEngine).Debug("resolved batch of %d with %d worker(s)", len(texts), e.concurrency)
	return results, nil
}
