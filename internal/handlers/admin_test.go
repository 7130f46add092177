// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cervejas/internal/models"
)

func validPostForm() url.Values {
	return url.Values{
		"title":    {"Lager de verão"},
		"author":   {"Dani"},
		"category": {"Estilos"},
		"content":  {"Leve e refrescante."},
		"imageUrl": {"https://exemplo.com/lager.jpg"},
	}
}

func TestAdmin_RequiresSession(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/admin/posts", nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = env.do(t, http.MethodDelete, "/admin/posts/1", nil, "HX-Request", "true")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Len(t, env.API.Posts(), len(seedPosts))
}

func TestPostsList(t *testing.T) {
	env := newTestEnv(t)

	w := env.admin(t, http.MethodGet, "/admin/posts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	for _, col := range []string{"Título", "Autor", "Categoria", "Visualizações", "Ações"} {
		assert.Contains(t, body, "<th>"+col+"</th>")
	}
	for _, p := range seedPosts {
		assert.Contains(t, body, p.Title)
	}
}

func TestPostCreate_StampsDateAndViews(t *testing.T) {
	env := newTestEnv(t)

	w := env.admin(t, http.MethodPost, "/admin/posts", validPostForm())
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/posts", w.Header().Get("Location"))

	posts := env.API.Posts()
	require.Len(t, posts, len(seedPosts)+1)
	created := posts[len(posts)-1]
	assert.Equal(t, "Lager de verão", created.Title)
	assert.Equal(t, "2026-10-19T09:30:00Z", created.Date)
	assert.Zero(t, created.Views)
	assert.Equal(t, "https://exemplo.com/lager.jpg", created.ImageURL)

	w = env.admin(t, http.MethodGet, "/admin/posts", nil)
	assert.Contains(t, w.Body.String(), "Postagem salva com sucesso!")
}

func TestPostCreate_Validation(t *testing.T) {
	env := newTestEnv(t)

	form := validPostForm()
	form.Set("title", "")
	form.Set("imageUrl", "ftp://exemplo.com/x.jpg")
	w := env.admin(t, http.MethodPost, "/admin/posts", form)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "O título é obrigatório.")
	assert.Contains(t, body, "A URL da imagem deve ser um endereço http(s) válido.")
	assert.Contains(t, body, "Leve e refrescante.", "entered content is kept")
	assert.Len(t, env.API.Posts(), len(seedPosts))
}

func TestPostForm_OffersStoreCategories(t *testing.T) {
	env := newTestEnv(t)

	w := env.admin(t, http.MethodGet, "/admin/posts/new", nil)
	require.Equal(t, http.StatusOK, w.Code)
	for _, c := range seedCategories {
		assert.Contains(t, w.Body.String(), `<option value="`+c.Name+`"`)
	}
}

func TestPostEditAndUpdate_KeepViews(t *testing.T) {
	env := newTestEnv(t)

	w := env.admin(t, http.MethodGet, "/admin/posts/2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `value="Café e stout"`)

	form := validPostForm()
	form.Set("title", "Café, stout e chocolate")
	w = env.admin(t, http.MethodPost, "/admin/posts/2", form)
	require.Equal(t, http.StatusSeeOther, w.Code)

	p, ok := findPost(env.API.Posts(), "2")
	require.True(t, ok)
	assert.Equal(t, "Café, stout e chocolate", p.Title)
	assert.Equal(t, 25, p.Views)
	assert.Equal(t, "2024-06-01T12:00:00Z", p.Date)
}

func TestPostEdit_NotFound(t *testing.T) {
	env := newTestEnv(t)
	w := env.admin(t, http.MethodGet, "/admin/posts/404", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPostDelete(t *testing.T) {
	env := newTestEnv(t)

	w := env.admin(t, http.MethodDelete, "/admin/posts/3", nil, "HX-Request", "true")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/admin/posts", w.Header().Get("HX-Redirect"))
	_, ok := findPost(env.API.Posts(), "3")
	assert.False(t, ok)

	// Plain form fallback.
	w = env.admin(t, http.MethodPost, "/admin/posts/1/delete", url.Values{})
	assert.Equal(t, http.StatusSeeOther, w.Code)

	w = env.admin(t, http.MethodGet, "/admin/posts", nil)
	assert.Equal(t, 2, strings.Count(w.Body.String(), "Postagem excluída!"))
}

func TestPostDelete_GatewayError(t *testing.T) {
	env := newTestEnv(t)
	env.API.Fail(http.MethodDelete, "/posts", http.StatusInternalServerError)

	env.admin(t, http.MethodPost, "/admin/posts/1/delete", url.Values{})
	w := env.admin(t, http.MethodGet, "/admin/posts", nil)
	assert.Contains(t, w.Body.String(), "Erro ao excluir a postagem")
}

func TestCategoriesCRUD_RefreshesStore(t *testing.T) {
	env := newTestEnv(t)
	names := func() []string { return models.CategoryNames(env.Categories.Categories().Value()) }

	w := env.admin(t, http.MethodPost, "/admin/categories", url.Values{"name": {"Lançamentos"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	env.Categories.Wait()
	assert.Contains(t, names(), "Lançamentos")

	w = env.admin(t, http.MethodGet, "/admin/categories/3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `value="Eventos"`)

	w = env.admin(t, http.MethodPost, "/admin/categories/3", url.Values{"name": {"Festivais"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	env.Categories.Wait()
	assert.Contains(t, names(), "Festivais")
	assert.NotContains(t, names(), "Eventos")

	w = env.admin(t, http.MethodDelete, "/admin/categories/1", nil, "HX-Request", "true")
	require.Equal(t, "/admin/categories", w.Header().Get("HX-Redirect"))
	env.Categories.Wait()
	assert.NotContains(t, names(), "Estilos")

	// Renaming does not cascade to posts.
	p, _ := findPost(env.API.Posts(), "3")
	assert.Equal(t, "Eventos", p.Category)

	w = env.admin(t, http.MethodGet, "/admin/categories", nil)
	body := w.Body.String()
	assert.Contains(t, body, "Categoria salva com sucesso!")
	assert.Contains(t, body, "Categoria excluída!")
}

func TestCategoryCreate_Validation(t *testing.T) {
	env := newTestEnv(t)

	w := env.admin(t, http.MethodPost, "/admin/categories", url.Values{"name": {"   "}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "O nome é obrigatório.")
	assert.Len(t, env.API.Categories(), len(seedCategories))
}

func TestCategoryEdit_Unknown(t *testing.T) {
	env := newTestEnv(t)

	for _, target := range []string{"/admin/categories/999", "/admin/categories/abc"} {
		w := env.admin(t, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, target)
	}
}

func TestCategoryEdit_StringID(t *testing.T) {
	env := newTestEnv(t)
	env.API.SetCategories(append(env.API.Categories(), models.Category{ID: "c9x", Name: "Sours"}))

	w := env.admin(t, http.MethodGet, "/admin/categories/c9x", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `value="Sours"`)

	w = env.admin(t, http.MethodPost, "/admin/categories/c9x", url.Values{"name": {"Sour ales"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	env.Categories.Wait()
	assert.Contains(t, models.CategoryNames(env.Categories.Categories().Value()), "Sour ales")
}

func TestCategoriesList_FailureResetsStore(t *testing.T) {
	env := newTestEnv(t)
	env.API.Fail(http.MethodGet, "/categories", http.StatusInternalServerError)

	w := env.admin(t, http.MethodGet, "/admin/categories", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Não foi possível carregar as categorias.")
	assert.Empty(t, env.Categories.Categories().Value())
}

func TestStats(t *testing.T) {
	env := newTestEnv(t)

	w := env.admin(t, http.MethodGet, "/admin/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()

	first := strings.Index(body, "Café e stout")
	second := strings.Index(body, "Guia da IPA")
	third := strings.Index(body, "Festival de inverno")
	require.True(t, first >= 0 && second >= 0 && third >= 0)
	assert.Less(t, first, second)
	assert.Less(t, second, third)
	assert.Contains(t, body, "echarts.min.js")
	assert.Contains(t, body, "echarts.init")
}
