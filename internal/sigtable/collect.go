// Package sigtable builds signature tables: it collects the declared
// parameters of named callables and pads them into a rectangular grid.
package sigtable

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/argtable/pkg/core"
)

// DefaultConcurrency bounds parallel resolution when no limit is configured.
const DefaultConcurrency = 4

// Collector resolves callable names and records their parameter lists.
type Collector struct {
	resolver    core.Resolver
	concurrency int
	logger      *slog.Logger
}

// Option configures a Collector.
type Option func(*Collector)

// WithConcurrency sets the maximum number of concurrent resolutions.
// Values below 1 mean sequential collection.
func WithConcurrency(n int) Option {
	return func(c *Collector) {
		c.concurrency = n
	}
}

// WithLogger sets the collector's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Collector) {
		c.logger = logger
	}
}

// NewCollector creates a collector over resolver.
func NewCollector(resolver core.Resolver, opts ...Option) *Collector {
	c := &Collector{
		resolver:    resolver,
		concurrency: DefaultConcurrency,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.concurrency < 1 {
		c.concurrency = 1
	}
	return c
}

// Collect returns the parameter lists of names, keyed in input order.
//
// Every name must resolve; the first unknown name aborts the pass with a
// *core.UnknownCallableError. Duplicate names abort with
// *core.DuplicateCallableError. Callables without parameter metadata
// contribute an empty list. No partial table is ever returned.
func (c *Collector) Collect(ctx context.Context, names []string) (*core.SignatureTable, error) {
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, dup := seen[name]; dup {
			return nil, &core.DuplicateCallableError{Name: name}
		}
		seen[name] = struct{}{}
	}

	// Results and misses are written by index so neither row order nor the
	// reported unknown name depends on completion order.
	params := make([][]string, len(names))
	misses := make([]error, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			callable, ok := c.resolver.Resolve(name)
			if !ok {
				misses[i] = &core.UnknownCallableError{Name: name}
				return nil
			}

			p := callable.ParameterNames()
			if p == nil {
				p = []string{}
			}
			params[i] = p

			c.logger.Debug("collected signature", "callable", name, "arity", len(p))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, err := range misses {
		if err != nil {
			c.logger.Debug("signature collection failed", "error", err)
			return nil, err
		}
	}

	sig := core.NewSignatureTable(len(names))
	for i, name := range names {
		if err := sig.Add(name, params[i]); err != nil {
			return nil, err
		}
	}
	return sig, nil
}
