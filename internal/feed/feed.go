// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package feed provides an observable state cell: it holds one current
// value and pushes every newly published value to its subscribers.
//
// A subscriber receives the current value synchronously when it subscribes
// and then every later value, in publish order. Delivery is serialized per
// feed, so callbacks must not publish to or subscribe to the same feed.
package feed

import (
	"sync"
	"sync/atomic"
)

// Source is the read-only side of a Feed.
type Source[T any] interface {
	// Value returns the latest published value.
	Value() T
	// Subscribe registers fn and immediately calls it with the latest
	// value. The returned function releases the subscription; it is safe to
	// call more than once.
	Subscribe(fn func(T)) (unsubscribe func())
}

type subscriber[T any] struct {
	fn     func(T)
	closed atomic.Bool
}

// Feed is a single shared state cell. The zero value is not usable; use New.
type Feed[T any] struct {
	deliver sync.Mutex // serializes Publish and the initial Subscribe delivery

	mu     sync.Mutex // guards value, subs, nextID
	value  T
	subs   map[uint64]*subscriber[T]
	nextID uint64
}

// New creates a feed holding initial.
func New[T any](initial T) *Feed[T] {
	return &Feed[T]{
		value: initial,
		subs:  make(map[uint64]*subscriber[T]),
	}
}

// Value returns the latest published value.
func (f *Feed[T]) Value() T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

// Publish replaces the current value and delivers it to every subscriber.
// It returns after all callbacks have run.
func (f *Feed[T]) Publish(v T) {
	f.deliver.Lock()
	defer f.deliver.Unlock()

	f.mu.Lock()
	f.value = v
	subs := make([]*subscriber[T], 0, len(f.subs))
	for _, s := range f.subs {
		subs = append(subs, s)
	}
	f.mu.Unlock()

	for _, s := range subs {
		if !s.closed.Load() {
			s.fn(v)
		}
	}
}

// Subscribe registers fn. See Source.
func (f *Feed[T]) Subscribe(fn func(T)) func() {
	f.deliver.Lock()
	defer f.deliver.Unlock()

	s := &subscriber[T]{fn: fn}

	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs[id] = s
	current := f.value
	f.mu.Unlock()

	fn(current)

	return func() {
		if s.closed.Swap(true) {
			return
		}
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}
}

// Len returns the number of live subscriptions.
func (f *Feed[T]) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// Group collects unsubscribe functions so that an owner can release all of
// its subscriptions at once.
type Group struct {
	mu    sync.Mutex
	funcs []func()
	done  bool
}

// Add registers an unsubscribe function. If the group was already closed,
// fn is called immediately.
func (g *Group) Add(fn func()) {
	g.mu.Lock()
	if g.done {
		g.mu.Unlock()
		fn()
		return
	}
	g.funcs = append(g.funcs, fn)
	g.mu.Unlock()
}

// Close calls every registered function in reverse order of registration.
func (g *Group) Close() {
	g.mu.Lock()
	funcs := g.funcs
	g.funcs = nil
	g.done = true
	g.mu.Unlock()

	for i := len(funcs) - 1; i >= 0; i-- {
		funcs[i]()
	}
}
