// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package render

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cervejas/internal/binding"
	"cervejas/internal/forms"
	"cervejas/internal/middleware"
	"cervejas/internal/models"
	"cervejas/internal/session"
	"cervejas/internal/store"
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	rn, err := New(false)
	require.NoError(t, err)
	return rn
}

var samplePosts = []models.Post{
	{ID: "1", Title: "A história da IPA", Author: "Ana", Category: "Estilos", Content: "Lúpulo e viagens longas.", Date: "2024-03-01T10:00:00Z", Views: 12},
	{ID: "2", Title: "Harmonização", Author: "Bruno", Category: "Gastronomia", Content: "Queijos e stouts.", Date: "2024-04-02", Views: 3, ImageURL: "https://exemplo.com/stout.jpg"},
}

func TestNew(t *testing.T) {
	for _, devMode := range []bool{true, false} {
		rn, err := New(devMode)
		require.NoError(t, err)

		for _, name := range []string{"home", "post", "login", "register", "admin_posts", "admin_post_form",
			"admin_categories", "admin_category_form", "admin_stats", "error"} {
			assert.Contains(t, rn.pages, name)
		}
		assert.NotContains(t, rn.pages, "base")
		assert.NotContains(t, rn.pages, "partials")
	}
}

func TestPage_FullAndHTMX(t *testing.T) {
	rn := newRenderer(t)
	data := func() *PageData {
		return &PageData{
			Title: "Início",
			Data: map[string]any{
				"ViewID": "view-1",
				"List":   ListData{Posts: samplePosts, Loaded: true},
				"Menu":   MenuData{Categories: []models.Category{{ID: "1", Name: "Estilos"}}, ViewID: "view-1"},
			},
		}
	}

	w := httptest.NewRecorder()
	rn.Page(w, httptest.NewRequest(http.MethodGet, "/", nil), "home", data())
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "<!DOCTYPE html>")
	assert.Contains(t, body, "<title>Início · Cervejas &amp; Histórias</title>")
	assert.Contains(t, body, "A história da IPA")
	assert.Contains(t, body, `sse-connect="/live/view-1/events"`)
	assert.Contains(t, body, DefaultImage, "post without image falls back")
	assert.Contains(t, body, "https://exemplo.com/stout.jpg")
	assert.Contains(t, body, "01/03/2024")
	assert.Contains(t, body, `href="/?category=Estilos"`)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("HX-Request", "true")
	w = httptest.NewRecorder()
	rn.Page(w, r, "home", data())
	assert.NotContains(t, w.Body.String(), "<!DOCTYPE html>")
	assert.Contains(t, w.Body.String(), "A história da IPA")
}

func TestPage_InjectsSessionAndCSRF(t *testing.T) {
	rn := newRenderer(t)

	var captured string
	handler := middleware.NewCSRF(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = middleware.CSRFTokenFromCtx(r.Context())
		r = r.WithContext(middleware.WithSession(r.Context(), &session.Data{UserID: "7", Username: "joana"}))
		rn.Page(w, r, "admin_categories", &PageData{
			Title:   "Categorias",
			Section: "categories",
			Data:    map[string]any{"Categories": []models.Category{{ID: "3", Name: "Estilos"}}},
		})
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/categories", nil))

	body := w.Body.String()
	require.NotEmpty(t, captured)
	assert.Contains(t, body, captured)
	assert.Contains(t, body, "joana")
	assert.Contains(t, body, "Sair")
	assert.Contains(t, body, `class="active"`)
	assert.Contains(t, body, "Tem certeza que deseja excluir esta categoria?")
}

func TestPage_Standalone(t *testing.T) {
	rn := newRenderer(t)

	r := httptest.NewRequest(http.MethodGet, "/register", nil)
	r.Header.Set("HX-Request", "true")
	w := httptest.NewRecorder()
	rn.Page(w, r, "register", &PageData{
		Title:   "Cadastro",
		Flashes: []session.Flash{{Type: "error", Message: "Erro ao cadastrar usuário. Tente outro username."}},
		Data: map[string]any{
			"Form":   forms.Register{Username: "jo"},
			"Errors": map[string]string{"Username": "O username deve ter no mínimo 3 caracteres."},
		},
	})

	body := w.Body.String()
	assert.Contains(t, body, "<!DOCTYPE html>", "standalone pages always render whole")
	assert.NotContains(t, body, "admin-tabs")
	assert.Contains(t, body, `value="jo"`)
	assert.Contains(t, body, "O username deve ter no mínimo 3 caracteres.")
	assert.Contains(t, body, "flash-error")
}

func TestPageStatus(t *testing.T) {
	rn := newRenderer(t)
	w := httptest.NewRecorder()
	rn.PageStatus(w, httptest.NewRequest(http.MethodGet, "/post/x", nil), http.StatusNotFound, "error", &PageData{
		Data: map[string]any{"Status": 404, "Message": "Post não encontrado"},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Post não encontrado")
}

func TestPage_UnknownTemplate(t *testing.T) {
	rn := newRenderer(t)
	w := httptest.NewRecorder()
	rn.Page(w, httptest.NewRequest(http.MethodGet, "/", nil), "nope", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestPage_EscapesContent(t *testing.T) {
	rn := newRenderer(t)
	w := httptest.NewRecorder()
	rn.Page(w, httptest.NewRequest(http.MethodGet, "/", nil), "home", &PageData{
		Data: map[string]any{
			"List": ListData{Loaded: true, Posts: []models.Post{
				{ID: "9", Title: "<script>alert(1)</script>", ImageURL: "javascript:alert(1)"},
			}},
			"Menu": MenuData{},
		},
	})
	body := w.Body.String()
	assert.NotContains(t, body, "<script>alert(1)</script>")
	assert.NotContains(t, body, `src="javascript:`)
}

func TestFragment_PostList(t *testing.T) {
	rn := newRenderer(t)

	var buf bytes.Buffer
	require.NoError(t, rn.Fragment(&buf, "post-list", ListData{Loaded: true}))
	assert.Contains(t, buf.String(), "Nenhuma postagem encontrada.")

	buf.Reset()
	require.NoError(t, rn.Fragment(&buf, "post-list", ListData{}))
	assert.Contains(t, buf.String(), "Carregando")

	buf.Reset()
	res := binding.Result{Seq: 1, Err: errors.New("boom")}
	require.NoError(t, rn.Fragment(&buf, "post-list", ListFromResult(res)))
	assert.Contains(t, buf.String(), "Não foi possível carregar as postagens.")
	assert.NotContains(t, buf.String(), "Nenhuma postagem encontrada.")
}

func TestFragment_CategoryMenu(t *testing.T) {
	rn := newRenderer(t)

	var buf bytes.Buffer
	err := rn.Fragment(&buf, "category-menu", MenuData{
		Categories: []models.Category{{ID: "1", Name: "Estilos"}, {ID: "2", Name: "Harmonização"}},
		Filter:     store.Filter{Category: "Estilos", Query: "ipa"},
		ViewID:     "v1",
	})
	require.NoError(t, err)

	out := buf.String()
	// Choosing a category drops the current text filter.
	assert.Contains(t, out, `href="/?category=Estilos"`)
	assert.NotContains(t, out, "q=ipa")
	assert.Contains(t, out, `href="/"`)
	assert.Contains(t, out, `&#34;q&#34;:&#34;&#34;`)
	assert.Contains(t, out, `hx-post="/live/v1/navigate"`)
	assert.Equal(t, 1, strings.Count(out, `class="active"`))
}

func TestFragment_Unknown(t *testing.T) {
	rn := newRenderer(t)
	assert.Error(t, rn.Fragment(&bytes.Buffer{}, "missing", nil))
}

func TestPostURL(t *testing.T) {
	assert.Equal(t, "/post/7/cafe-e-stout", PostURL(models.Post{ID: "7", Title: "Café e stout"}))
	assert.Equal(t, "/post/7", PostURL(models.Post{ID: "7", Title: "!!!"}))
	assert.Equal(t, "/post/a%2Fb", PostURL(models.Post{ID: "a/b"}))
}

func TestFilterURL(t *testing.T) {
	assert.Equal(t, "/", FilterURL("", ""))
	assert.Equal(t, "/?category=Estilos", FilterURL("Estilos", ""))
	assert.Equal(t, "/?category=Estilos&q=p%C3%A3o", FilterURL("Estilos", "pão"))
}
