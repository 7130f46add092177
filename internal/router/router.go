// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// site. It organizes routes into public, auth and admin groups with the
// appropriate middleware stacks.
package router

import (
	"encoding/json"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cervejas/internal/cache"
	"cervejas/internal/handlers"
	"cervejas/internal/metrics"
	"cervejas/internal/middleware"
)

// Deps holds everything the router wires together.
type Deps struct {
	Sessions      middleware.SessionGetter
	SecureCookies bool
	AuthLimiter   *middleware.RateLimiter // throttles login and register submissions
	Valkey        cache.Pinger
	Static        fs.FS

	Public *handlers.Public
	Live   *handlers.Live
	Auth   *handlers.Auth
	Admin  *handlers.Admin
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(d.Sessions))

	// Operational endpoints and assets: no CSRF.
	r.Get("/health", healthHandler(d.Valkey))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(d.Static))))

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewCSRF(d.SecureCookies))

		// Public site.
		r.Get("/", d.Public.Home)
		r.Get("/posts", d.Public.Posts)
		r.Get("/post/{id}", d.Public.Post)
		r.Get("/post/{id}/{slug}", d.Public.Post)

		// Live listing stream.
		r.Get("/live/{view}/events", d.Live.Events)
		r.Post("/live/{view}/navigate", d.Live.Navigate)

		// Auth pages. Submissions are rate limited per client IP.
		r.Get("/login", d.Auth.LoginPage)
		r.Get("/register", d.Auth.RegisterPage)
		r.Post("/logout", d.Auth.Logout)
		r.Group(func(r chi.Router) {
			r.Use(d.AuthLimiter.Middleware)
			r.Post("/login", d.Auth.LoginSubmit)
			r.Post("/register", d.Auth.RegisterSubmit)
		})

		// Authenticated management area.
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				http.Redirect(w, r, "/admin/posts", http.StatusSeeOther)
			})

			// Posts
			r.Route("/posts", func(r chi.Router) {
				r.Get("/", d.Admin.PostsList)
				r.Get("/new", d.Admin.PostNew)
				r.Post("/", d.Admin.PostCreate)
				r.Get("/{id}", d.Admin.PostEdit)
				r.Post("/{id}", d.Admin.PostUpdate)
				r.Delete("/{id}", d.Admin.PostDelete)
				r.Post("/{id}/delete", d.Admin.PostDelete)
			})

			// Categories
			r.Route("/categories", func(r chi.Router) {
				r.Get("/", d.Admin.CategoriesList)
				r.Get("/new", d.Admin.CategoryNew)
				r.Post("/", d.Admin.CategoryCreate)
				r.Get("/{id}", d.Admin.CategoryEdit)
				r.Post("/{id}", d.Admin.CategoryUpdate)
				r.Delete("/{id}", d.Admin.CategoryDelete)
				r.Post("/{id}/delete", d.Admin.CategoryDelete)
			})

			r.Get("/stats", d.Admin.Stats)
		})
	})

	return r
}

// healthHandler reports whether the service and its Valkey connection are
// usable. The remote API is not probed; it is outside our control and the
// site degrades to empty listings without it.
func healthHandler(p cache.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, body := http.StatusOK, map[string]string{"status": "ok"}
		if err := cache.Healthy(r.Context(), p); err != nil {
			status = http.StatusServiceUnavailable
			body = map[string]string{"status": "unavailable", "valkey": err.Error()}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}
