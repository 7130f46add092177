// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the Cervejas & Histórias
// site. Handlers are grouped by concern (public, live, auth, admin) and
// receive their dependencies through the handler struct.
package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"cervejas/internal/middleware"
	"cervejas/internal/models"
	"cervejas/internal/render"
	"cervejas/internal/session"
)

// PostGateway is the part of the remote API the post handlers use.
type PostGateway interface {
	ListPosts(ctx context.Context) ([]models.Post, error)
	GetPost(ctx context.Context, id models.ID) (*models.Post, error)
	CreatePost(ctx context.Context, in models.PostInput) (*models.Post, error)
	UpdatePost(ctx context.Context, id models.ID, patch models.PostPatch) (*models.Post, error)
	IncrementViews(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id models.ID) error
}

// UserGateway is the part of the remote API the auth handlers use.
type UserGateway interface {
	Authenticate(ctx context.Context, username, password string) ([]models.User, error)
	Register(ctx context.Context, username, password string) (*models.User, error)
}

// Sessions creates and destroys login sessions.
type Sessions interface {
	Create(ctx context.Context, w http.ResponseWriter, data *session.Data) (string, error)
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// Flasher stores one-time messages shown on the next rendered page.
type Flasher interface {
	Add(ctx context.Context, w http.ResponseWriter, r *http.Request, fl session.Flash) error
	Pop(ctx context.Context, r *http.Request) []session.Flash
}

// page pops pending flashes into data and renders the named template.
func page(rn *render.Renderer, flashes Flasher, w http.ResponseWriter, r *http.Request, status int, name string, data *render.PageData) {
	data.Flashes = append(data.Flashes, flashes.Pop(r.Context(), r)...)
	rn.PageStatus(w, r, status, name, data)
}

// flash queues a message. Failing to store it never fails the request.
func flash(flashes Flasher, w http.ResponseWriter, r *http.Request, typ, msg string) {
	if err := flashes.Add(r.Context(), w, r, session.Flash{Type: typ, Message: msg}); err != nil {
		slog.Warn("flash store failed", "error", err, "request_id", middleware.RequestIDFromCtx(r.Context()))
	}
}

// redirect sends the browser to target. HTMX requests get HX-Redirect so
// the whole page navigates instead of swapping the response in.
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// errorPage renders the generic error page.
func errorPage(rn *render.Renderer, w http.ResponseWriter, r *http.Request, status int, msg string) {
	rn.PageStatus(w, r, status, "error", &render.PageData{
		Title: http.StatusText(status),
		Data:  map[string]any{"Status": status, "Message": msg},
	})
}

func logError(r *http.Request, msg string, err error, attrs ...any) {
	attrs = append(attrs, "error", err, "request_id", middleware.RequestIDFromCtx(r.Context()))
	slog.Error(msg, attrs...)
}
