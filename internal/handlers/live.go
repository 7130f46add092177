// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"cervejas/internal/binding"
	"cervejas/internal/models"
	"cervejas/internal/render"
	"cervejas/internal/view"
)

// heartbeatInterval keeps idle streams alive through proxies.
const heartbeatInterval = 25 * time.Second

// Live streams a live view to the browser and accepts navigation for it.
type Live struct {
	renderer  *render.Renderer
	views     *view.Registry
	heartbeat time.Duration
}

// NewLive creates a new Live handler group.
func NewLive(renderer *render.Renderer, views *view.Registry) *Live {
	return &Live{renderer: renderer, views: views, heartbeat: heartbeatInterval}
}

// Events streams "posts" and "categories" events carrying re-rendered
// fragments whenever the view's listing or the category list changes.
// The view is removed when the client disconnects.
func (l *Live) Events(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "view")
	v, ok := l.views.Get(id)
	if !ok {
		// 204 tells EventSource to stop reconnecting.
		w.WriteHeader(http.StatusNoContent)
		return
	}
	defer l.views.Remove(id)

	rc := http.NewResponseController(w)
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		logError(r, "sse flush unsupported", err)
		return
	}

	// Callbacks run on publishing goroutines; they only record the latest
	// state and wake the writer loop below.
	var (
		mu       sync.Mutex
		menu     []models.Category
		postsDue bool
		menuDue  bool
	)
	notify := make(chan struct{}, 1)
	wake := func() {
		select {
		case notify <- struct{}{}:
		default:
		}
	}

	ctx := r.Context()
	go v.Watch(ctx,
		func(binding.Result) {
			mu.Lock()
			postsDue = true
			mu.Unlock()
			wake()
		},
		func(cats []models.Category) {
			mu.Lock()
			menu, menuDue = cats, true
			mu.Unlock()
			wake()
		},
	)

	ticker := time.NewTicker(l.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-v.Done():
			return
		case <-ticker.C:
			if _, err := io.WriteString(w, ": ping\n\n"); err != nil {
				return
			}
		case <-notify:
			mu.Lock()
			sendPosts, sendMenu, cats := postsDue, menuDue, menu
			postsDue, menuDue = false, false
			mu.Unlock()

			// The menu links carry the current filter, so they are
			// refreshed along with every listing.
			if sendPosts {
				if err := l.send(w, "posts", "post-list", render.ListFromResult(v.Result())); err != nil {
					logError(r, "sse write failed", err, "view", id)
					return
				}
				sendMenu = true
			}
			if sendMenu && cats != nil {
				data := render.MenuData{Categories: cats, Filter: v.Filter(), ViewID: id}
				if err := l.send(w, "categories", "category-menu", data); err != nil {
					logError(r, "sse write failed", err, "view", id)
					return
				}
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

// send renders fragment and writes it as one server-sent event.
func (l *Live) send(w io.Writer, event, fragment string, data any) error {
	var buf bytes.Buffer
	if err := l.renderer.Fragment(&buf, fragment, data); err != nil {
		return err
	}
	return writeEvent(w, event, buf.String())
}

// writeEvent frames payload as an SSE event, one data line per line.
func writeEvent(w io.Writer, event, payload string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "event: %s\n", event)
	for _, line := range strings.Split(strings.TrimRight(payload, "\n"), "\n") {
		b.WriteString("data: ")
		b.WriteString(strings.TrimRight(line, "\r"))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	_, err := io.WriteString(w, b.String())
	return err
}

// Navigate moves the view to a new location. Posted fields replace the
// matching parameters of the current location; fields not posted are kept.
// The browser URL follows via HX-Push-Url.
func (l *Live) Navigate(w http.ResponseWriter, r *http.Request) {
	v, ok := l.views.Get(chi.URLParam(r, "view"))
	if !ok {
		// The view expired; reload the page to get a fresh one.
		w.Header().Set("HX-Refresh", "true")
		w.WriteHeader(http.StatusGone)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	params := mergeLocation(binding.Params(v.Filter()), r.PostForm)
	v.Navigate(params)

	f := binding.FilterFromParams(params)
	w.Header().Set("HX-Push-Url", render.FilterURL(f.Category, f.Query))
	w.WriteHeader(http.StatusNoContent)
}

// mergeLocation applies the posted location fields to current. "search"
// is folded into "q" so the result has a single free-text parameter.
func mergeLocation(current, posted url.Values) url.Values {
	out := url.Values{}
	for k, vals := range current {
		out[k] = append([]string(nil), vals...)
	}
	if posted.Has("category") {
		out.Set("category", strings.TrimSpace(posted.Get("category")))
	}
	switch {
	case posted.Has("q"):
		out.Set("q", strings.TrimSpace(posted.Get("q")))
	case posted.Has("search"):
		out.Set("q", strings.TrimSpace(posted.Get("search")))
	}
	for k, vals := range out {
		if len(vals) == 0 || vals[0] == "" {
			out.Del(k)
		}
	}
	return out
}
