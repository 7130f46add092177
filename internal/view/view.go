// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package view keeps the live views behind open browser pages. A view owns
// its location, the binding that turns location changes into post listings,
// and a subscription to the shared category list. Closing a view releases
// all of them.
package view

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"cervejas/internal/binding"
	"cervejas/internal/feed"
	"cervejas/internal/metrics"
	"cervejas/internal/models"
	"cervejas/internal/store"
)

// ErrClosed is returned by Await on a closed view.
var ErrClosed = errors.New("view closed")

// View is the server-side state of one open listing page.
type View struct {
	ID string

	location   *feed.Feed[url.Values]
	binding    *binding.Binding
	categories feed.Source[[]models.Category]

	mu   sync.Mutex
	menu []models.Category

	subs     feed.Group
	done     chan struct{}
	once     sync.Once
	watchers atomic.Int32
	lastSeen atomic.Int64 // unix nanos
}

func newView(ctx context.Context, query binding.QueryFunc, categories feed.Source[[]models.Category], params url.Values) *View {
	v := &View{
		ID:         uuid.NewString(),
		location:   feed.New(cloneValues(params)),
		binding:    binding.New(query),
		categories: categories,
		done:       make(chan struct{}),
	}
	v.touch()

	v.subs.Add(categories.Subscribe(func(cats []models.Category) {
		v.mu.Lock()
		v.menu = cats
		v.mu.Unlock()
	}))
	v.subs.Add(v.binding.Mount(ctx, v.location))
	return v
}

// Navigate moves the view to new location parameters, which re-runs the
// post query.
func (v *View) Navigate(params url.Values) {
	v.touch()
	v.location.Publish(cloneValues(params))
}

// Filter returns the filter derived from the current location.
func (v *View) Filter() store.Filter {
	return binding.FilterFromParams(v.location.Value())
}

// Result returns the latest published post listing.
func (v *View) Result() binding.Result {
	return v.binding.Results().Value()
}

// Menu returns the latest category snapshot seen by the view.
func (v *View) Menu() []models.Category {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.menu
}

// Watch delivers listings and category snapshots until ctx is done or the
// view is closed. Both callbacks receive the current value first. They run
// on the publishing goroutine and must not block.
func (v *View) Watch(ctx context.Context, onPosts func(binding.Result), onCategories func([]models.Category)) {
	v.watchers.Add(1)
	defer func() {
		v.watchers.Add(-1)
		v.touch()
	}()

	var g feed.Group
	defer g.Close()
	g.Add(v.binding.Results().Subscribe(onPosts))
	g.Add(v.categories.Subscribe(onCategories))

	select {
	case <-ctx.Done():
	case <-v.done:
	}
}

// Await blocks until the view holds a loaded listing, ctx is done or the
// view is closed.
func (v *View) Await(ctx context.Context) (binding.Result, error) {
	ready := make(chan binding.Result, 1)
	unsub := v.binding.Results().Subscribe(func(res binding.Result) {
		if !res.Loaded() {
			return
		}
		select {
		case ready <- res:
		default:
		}
	})
	defer unsub()

	select {
	case res := <-ready:
		return res, nil
	case <-ctx.Done():
		return binding.Result{}, ctx.Err()
	case <-v.done:
		return binding.Result{}, ErrClosed
	}
}

// Done is closed when the view is closed.
func (v *View) Done() <-chan struct{} {
	return v.done
}

// Close releases every subscription and stops the binding. It is safe to
// call more than once.
func (v *View) Close() {
	v.once.Do(func() {
		close(v.done)
		v.subs.Close()
	})
}

func (v *View) touch() {
	v.lastSeen.Store(time.Now().UnixNano())
}

func (v *View) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, v.lastSeen.Load()))
}

func cloneValues(v url.Values) url.Values {
	if v == nil {
		return url.Values{}
	}
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}

// Registry tracks the open views by id.
type Registry struct {
	query      binding.QueryFunc
	categories feed.Source[[]models.Category]
	ttl        time.Duration

	mu    sync.Mutex
	views map[string]*View
}

// NewRegistry returns a registry whose views query posts with query and
// show the category list from categories. Views nobody is watching are
// dropped after ttl.
func NewRegistry(query binding.QueryFunc, categories feed.Source[[]models.Category], ttl time.Duration) *Registry {
	return &Registry{
		query:      query,
		categories: categories,
		ttl:        ttl,
		views:      make(map[string]*View),
	}
}

// Open creates and registers a view positioned at params. The view
// outlives ctx; only its values are kept.
func (r *Registry) Open(ctx context.Context, params url.Values) *View {
	v := newView(context.WithoutCancel(ctx), r.query, r.categories, params)

	r.mu.Lock()
	r.views[v.ID] = v
	n := len(r.views)
	r.mu.Unlock()

	metrics.SetLiveViews(n)
	return v
}

// Get looks up a view by id.
func (r *Registry) Get(id string) (*View, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.views[id]
	return v, ok
}

// Remove closes and forgets the view with the given id.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	v, ok := r.views[id]
	delete(r.views, id)
	n := len(r.views)
	r.mu.Unlock()

	if ok {
		v.Close()
		metrics.SetLiveViews(n)
	}
}

// Len returns the number of open views.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}

// Sweep closes views that nobody watches and that have been idle longer
// than the registry TTL. It returns how many were closed.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	var stale []*View
	for id, v := range r.views {
		if v.watchers.Load() == 0 && v.idleSince(now) > r.ttl {
			stale = append(stale, v)
			delete(r.views, id)
		}
	}
	n := len(r.views)
	r.mu.Unlock()

	for _, v := range stale {
		v.Close()
	}
	if len(stale) > 0 {
		metrics.SetLiveViews(n)
		slog.Debug("swept idle live views", "closed", len(stale), "open", n)
	}
	return len(stale)
}

// Run sweeps idle views every interval until ctx is done, then closes all
// remaining views.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.Close()
			return
		case now := <-ticker.C:
			r.Sweep(now)
		}
	}
}

// Close closes every view.
func (r *Registry) Close() {
	r.mu.Lock()
	views := r.views
	r.views = make(map[string]*View)
	r.mu.Unlock()

	for _, v := range views {
		v.Close()
	}
	metrics.SetLiveViews(0)
}
