// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests.
// The remote API is the in-memory apitest server; sessions and flashes are
// kept in memory so no Valkey is needed.
package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"cervejas/internal/api"
	"cervejas/internal/api/apitest"
	"cervejas/internal/middleware"
	"cervejas/internal/models"
	"cervejas/internal/render"
	"cervejas/internal/session"
	"cervejas/internal/store"
	"cervejas/internal/view"
)

var (
	seedPosts = []models.Post{
		{ID: "1", Title: "Guia da IPA", Author: "Ana", Category: "Estilos", Content: "Uma cerveja **lupulada**.", Date: "2024-05-01T12:00:00Z", Views: 10},
		{ID: "2", Title: "Café e stout", Author: "Bruno", Category: "Harmonização", Content: "Notas torradas.", Date: "2024-06-01T12:00:00Z", Views: 25},
		{ID: "3", Title: "Festival de inverno", Author: "Carla", Category: "Eventos", Content: "Agenda.", Date: "2024-04-01T12:00:00Z", Views: 3},
	}
	seedCategories = []models.Category{{ID: "1", Name: "Estilos"}, {ID: "2", Name: "Harmonização"}, {ID: "3", Name: "Eventos"}}
	seedUsers      = []models.User{{ID: "1", Username: "joana", Password: "segredo"}}
)

// memFlashes is a single-visitor flash store.
type memFlashes struct {
	mu      sync.Mutex
	pending []session.Flash
}

func (m *memFlashes) Add(_ context.Context, _ http.ResponseWriter, _ *http.Request, fl session.Flash) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, fl)
	return nil
}

func (m *memFlashes) Pop(_ context.Context, _ *http.Request) []session.Flash {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.pending
	m.pending = nil
	return out
}

// memSessions records created and destroyed sessions.
type memSessions struct {
	mu        sync.Mutex
	created   []*session.Data
	destroyed int
}

func (m *memSessions) Create(_ context.Context, w http.ResponseWriter, data *session.Data) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, data)
	http.SetCookie(w, &http.Cookie{Name: session.CookieName, Value: "test", Path: "/"})
	return "test", nil
}

func (m *memSessions) Destroy(_ context.Context, w http.ResponseWriter, _ *http.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.destroyed++
	return nil
}

// testUserHeader marks a request as logged in.
const testUserHeader = "X-Test-User"

func withTestSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if name := r.Header.Get(testUserHeader); name != "" {
			r = r.WithContext(middleware.WithSession(r.Context(), &session.Data{UserID: "1", Username: name}))
		}
		next.ServeHTTP(w, r)
	})
}

// testEnv holds all dependencies for handler tests.
type testEnv struct {
	API        *apitest.Server
	Categories *store.CategoryStore
	Views      *view.Registry
	Flashes    *memFlashes
	Sessions   *memSessions
	Public     *Public
	Live       *Live
	Auth       *Auth
	Admin      *Admin
	Router     chi.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	srv := apitest.New(t, seedPosts, seedCategories, seedUsers)
	client := api.New(srv.URL)

	cats := store.NewCategoryStore(client)
	_, err := cats.Refresh(context.Background())
	require.NoError(t, err)
	t.Cleanup(cats.Wait)

	query := store.NewPostQuery(client)
	views := view.NewRegistry(query.Query, cats.Categories(), time.Minute)
	t.Cleanup(views.Close)

	rn, err := render.New(false)
	require.NoError(t, err)

	env := &testEnv{
		API:        srv,
		Categories: cats,
		Views:      views,
		Flashes:    &memFlashes{},
		Sessions:   &memSessions{},
	}
	env.Public = NewPublic(rn, client, query, cats, views, env.Flashes)
	t.Cleanup(env.Public.Wait)
	env.Live = NewLive(rn, views)
	env.Auth = NewAuth(rn, client, env.Sessions, env.Flashes)
	env.Admin = NewAdmin(rn, client, cats, env.Flashes)
	env.Admin.now = func() time.Time { return time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC) }

	r := chi.NewRouter()
	r.Use(withTestSession)
	r.Get("/", env.Public.Home)
	r.Get("/posts", env.Public.Posts)
	r.Get("/post/{id}", env.Public.Post)
	r.Get("/post/{id}/{slug}", env.Public.Post)
	r.Get("/live/{view}/events", env.Live.Events)
	r.Post("/live/{view}/navigate", env.Live.Navigate)
	r.Get("/login", env.Auth.LoginPage)
	r.Post("/login", env.Auth.LoginSubmit)
	r.Get("/register", env.Auth.RegisterPage)
	r.Post("/register", env.Auth.RegisterSubmit)
	r.Post("/logout", env.Auth.Logout)
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/posts", env.Admin.PostsList)
		r.Get("/posts/new", env.Admin.PostNew)
		r.Post("/posts", env.Admin.PostCreate)
		r.Get("/posts/{id}", env.Admin.PostEdit)
		r.Post("/posts/{id}", env.Admin.PostUpdate)
		r.Delete("/posts/{id}", env.Admin.PostDelete)
		r.Post("/posts/{id}/delete", env.Admin.PostDelete)
		r.Get("/categories", env.Admin.CategoriesList)
		r.Get("/categories/new", env.Admin.CategoryNew)
		r.Post("/categories", env.Admin.CategoryCreate)
		r.Get("/categories/{id}", env.Admin.CategoryEdit)
		r.Post("/categories/{id}", env.Admin.CategoryUpdate)
		r.Delete("/categories/{id}", env.Admin.CategoryDelete)
		r.Get("/stats", env.Admin.Stats)
	})
	env.Router = r
	return env
}

// do sends a request through the router. A non-nil form is sent
// url-encoded. Extra headers come in name/value pairs.
func (e *testEnv) do(t *testing.T, method, target string, form url.Values, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

// admin sends a request as a logged-in user.
func (e *testEnv) admin(t *testing.T, method, target string, form url.Values, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	return e.do(t, method, target, form, append([]string{testUserHeader, "joana"}, headers...)...)
}

func findPost(posts []models.Post, id models.ID) (models.Post, bool) {
	for _, p := range posts {
		if p.ID == id {
			return p, true
		}
	}
	return models.Post{}, false
}
