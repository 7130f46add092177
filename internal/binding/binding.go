// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package binding ties a view's location parameters to the post query
// engine. Every location change starts a new query; only the result of the
// most recent one is ever published (switch-latest).
package binding

import (
	"context"
	"log/slog"
	"net/url"
	"sync"

	"cervejas/internal/feed"
	"cervejas/internal/models"
	"cervejas/internal/store"
)

// QueryFunc runs a filtered post listing. store.PostQuery.Query satisfies it.
type QueryFunc func(ctx context.Context, f store.Filter) ([]models.Post, error)

// Result is one published query outcome. Seq is the generation that
// produced it; the zero Result means nothing has loaded yet.
type Result struct {
	Seq    uint64
	Filter store.Filter
	Posts  []models.Post
	Err    error
}

// Loaded reports whether r carries the outcome of a query.
func (r Result) Loaded() bool {
	return r.Seq > 0
}

// FilterFromParams extracts the filter from location parameters. The free
// text comes from "q", or from "search" when "q" is absent.
func FilterFromParams(v url.Values) store.Filter {
	q := v.Get("q")
	if !v.Has("q") {
		q = v.Get("search")
	}
	return store.Filter{
		Category: v.Get("category"),
		Query:    q,
	}
}

// Params is the inverse of FilterFromParams, used to build links.
func Params(f store.Filter) url.Values {
	v := url.Values{}
	if f.Category != "" {
		v.Set("category", f.Category)
	}
	if f.Query != "" {
		v.Set("q", f.Query)
	}
	return v
}

// Binding runs queries for a single view and publishes their results.
type Binding struct {
	query   QueryFunc
	results *feed.Feed[Result]

	mu     sync.Mutex // guards gen, ctx, cancel, closed; held while publishing
	gen    uint64
	ctx    context.Context
	cancel context.CancelFunc
	closed bool

	wg sync.WaitGroup
}

// New returns an unmounted binding. Until Mount is called, Trigger runs
// queries on a background context.
func New(query QueryFunc) *Binding {
	ctx, cancel := context.WithCancel(context.Background())
	return &Binding{
		query:   query,
		results: feed.New(Result{}),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Results returns the result feed. Subscribers must not call Trigger from
// their callback.
func (b *Binding) Results() feed.Source[Result] {
	return b.results
}

// Mount subscribes to location and triggers a query for its current value
// and for every later one. The returned function tears the binding down:
// it releases the subscription, cancels outstanding queries and waits for
// them to return. Nothing is published after it returns.
func (b *Binding) Mount(ctx context.Context, location feed.Source[url.Values]) (unmount func()) {
	mctx, cancel := context.WithCancel(ctx)

	b.mu.Lock()
	b.cancel()
	b.ctx, b.cancel = mctx, cancel
	b.mu.Unlock()

	unsub := location.Subscribe(func(v url.Values) {
		b.Trigger(FilterFromParams(v))
	})

	var once sync.Once
	return func() {
		once.Do(func() {
			unsub()

			b.mu.Lock()
			b.closed = true
			b.cancel()
			b.mu.Unlock()

			b.wg.Wait()
		})
	}
}

// Trigger starts a query for f. Older queries still in flight keep
// running, but their results are dropped when they arrive.
func (b *Binding) Trigger(f store.Filter) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.gen++
	gen, ctx := b.gen, b.ctx
	b.wg.Add(1)
	b.mu.Unlock()

	go b.run(ctx, gen, f)
}

func (b *Binding) run(ctx context.Context, gen uint64, f store.Filter) {
	defer b.wg.Done()

	posts, err := b.query(ctx, f)

	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.gen || b.closed {
		slog.Debug("discarding stale post query", "seq", gen, "current", b.gen)
		return
	}

	res := Result{Seq: gen, Filter: f, Posts: posts, Err: err}
	if err != nil {
		res.Posts = nil
	}
	b.results.Publish(res)
}
