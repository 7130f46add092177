// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"cervejas/internal/api"
	"cervejas/internal/binding"
	"cervejas/internal/markdown"
	"cervejas/internal/middleware"
	"cervejas/internal/models"
	"cervejas/internal/render"
	"cervejas/internal/store"
	"cervejas/internal/view"
)

const (
	// firstListingWait bounds how long the home page waits for the live
	// view's first listing before rendering a loading state.
	firstListingWait = 5 * time.Second

	// incrementTimeout bounds the background view counter update.
	incrementTimeout = 10 * time.Second
)

// Public groups handlers for the public site: the filtered listing, its
// HTMX partial and the post details page.
type Public struct {
	renderer   *render.Renderer
	posts      PostGateway
	query      *store.PostQuery
	categories *store.CategoryStore
	views      *view.Registry
	flashes    Flasher

	bg sync.WaitGroup
}

// NewPublic creates a new Public handler group.
func NewPublic(renderer *render.Renderer, posts PostGateway, query *store.PostQuery, categories *store.CategoryStore, views *view.Registry, flashes Flasher) *Public {
	return &Public{
		renderer:   renderer,
		posts:      posts,
		query:      query,
		categories: categories,
		views:      views,
		flashes:    flashes,
	}
}

// Home renders the filtered post list and the category menu, and opens a
// live view that keeps both current over server-sent events.
func (p *Public) Home(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	filter := binding.FilterFromParams(params)
	v := p.views.Open(r.Context(), params)

	cats := p.categories.Categories().Value()
	var res binding.Result

	var g errgroup.Group
	g.Go(func() error {
		ctx, cancel := context.WithTimeout(r.Context(), firstListingWait)
		defer cancel()
		var err error
		if res, err = v.Await(ctx); err != nil {
			slog.Warn("first listing not ready", "view", v.ID, "error", err,
				"request_id", middleware.RequestIDFromCtx(r.Context()))
		}
		return nil
	})
	// An empty menu usually means the startup refresh failed; try again.
	if len(cats) == 0 {
		g.Go(func() error {
			fresh, err := p.categories.Refresh(r.Context())
			if err != nil {
				slog.Warn("category refresh failed", "error", err,
					"request_id", middleware.RequestIDFromCtx(r.Context()))
				return nil
			}
			cats = fresh
			return nil
		})
	}
	_ = g.Wait()

	list := render.ListFromResult(res)
	list.Filter = filter

	title := "Início"
	if filter.Category != "" {
		title = filter.Category
	}

	page(p.renderer, p.flashes, w, r, http.StatusOK, "home", &render.PageData{
		Title: title,
		Data: map[string]any{
			"ViewID": v.ID,
			"List":   list,
			"Menu":   render.MenuData{Categories: cats, Filter: filter, ViewID: v.ID},
		},
	})
}

// Posts renders the filtered post list as an HTML fragment.
func (p *Public) Posts(w http.ResponseWriter, r *http.Request) {
	filter := binding.FilterFromParams(r.URL.Query())

	list := render.ListData{Filter: filter, Loaded: true}
	posts, err := p.query.Query(r.Context(), filter)
	if err != nil {
		logError(r, "post query failed", err)
		list.Error = "Não foi possível carregar as postagens."
	}
	list.Posts = posts

	var buf bytes.Buffer
	if err := p.renderer.Fragment(&buf, "post-list", list); err != nil {
		logError(r, "render post list failed", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// Post renders a single post and counts the view in the background.
func (p *Public) Post(w http.ResponseWriter, r *http.Request) {
	id := models.ID(chi.URLParam(r, "id"))
	if id == "" {
		errorPage(p.renderer, w, r, http.StatusNotFound, "Post não encontrado")
		return
	}

	post, err := p.posts.GetPost(r.Context(), id)
	if err != nil {
		if api.IsNotFound(err) {
			errorPage(p.renderer, w, r, http.StatusNotFound, "Post não encontrado")
			return
		}
		logError(r, "load post failed", err, "post_id", id)
		page(p.renderer, p.flashes, w, r, http.StatusBadGateway, "post", &render.PageData{
			Title: "Erro",
			Data:  map[string]any{"Error": "Erro ao carregar a postagem"},
		})
		return
	}

	body, err := markdown.ToHTML(post.Content)
	if err != nil {
		logError(r, "markdown render failed", err, "post_id", id)
		body = template.HTML(template.HTMLEscapeString(post.Content))
	}

	p.incrementViews(r, *post)

	page(p.renderer, p.flashes, w, r, http.StatusOK, "post", &render.PageData{
		Title: post.Title,
		Data:  map[string]any{"Post": post, "HTML": body},
	})
}

// incrementViews updates the counter without holding up the response.
// Failures are logged and otherwise ignored.
func (p *Public) incrementViews(r *http.Request, post models.Post) {
	ctx := context.WithoutCancel(r.Context())
	requestID := middleware.RequestIDFromCtx(ctx)

	p.bg.Add(1)
	go func() {
		defer p.bg.Done()
		ctx, cancel := context.WithTimeout(ctx, incrementTimeout)
		defer cancel()
		if err := p.posts.IncrementViews(ctx, &post); err != nil {
			slog.Warn("view increment failed", "post_id", post.ID, "error", err, "request_id", requestID)
		}
	}()
}

// Wait blocks until background view increments have finished.
func (p *Public) Wait() {
	p.bg.Wait()
}
