// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"cervejas/internal/api"
	"cervejas/internal/charts"
	"cervejas/internal/forms"
	"cervejas/internal/models"
	"cervejas/internal/render"
	"cervejas/internal/store"
)

// statsTopPosts is how many posts the views bar chart shows.
const statsTopPosts = 10

// Admin groups the authenticated management handlers.
type Admin struct {
	renderer   *render.Renderer
	posts      PostGateway
	categories *store.CategoryStore
	flashes    Flasher
	now        func() time.Time
}

// NewAdmin creates a new Admin handler group.
func NewAdmin(renderer *render.Renderer, posts PostGateway, categories *store.CategoryStore, flashes Flasher) *Admin {
	return &Admin{
		renderer:   renderer,
		posts:      posts,
		categories: categories,
		flashes:    flashes,
		now:        time.Now,
	}
}

// --- Posts CRUD ---

// PostsList renders the posts table.
func (a *Admin) PostsList(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{}
	posts, err := a.posts.ListPosts(r.Context())
	if err != nil {
		logError(r, "list posts failed", err)
		data["Error"] = "Não foi possível carregar as postagens."
	}
	data["Posts"] = posts

	page(a.renderer, a.flashes, w, r, http.StatusOK, "admin_posts", &render.PageData{
		Title:   "Postagens",
		Section: "posts",
		Data:    data,
	})
}

// PostNew renders the new post form.
func (a *Admin) PostNew(w http.ResponseWriter, r *http.Request) {
	a.postForm(w, r, http.StatusOK, "", forms.Post{}, nil, "")
}

// PostCreate stores a new post stamped with the current date and zero views.
func (a *Admin) PostCreate(w http.ResponseWriter, r *http.Request) {
	form := forms.PostFromRequest(r)
	if errs := forms.Errors(form); errs != nil {
		a.postForm(w, r, http.StatusUnprocessableEntity, "", form, errs, "")
		return
	}

	in := form.Input()
	in.Date = a.now().UTC().Format(time.RFC3339)
	in.Views = 0
	if _, err := a.posts.CreatePost(r.Context(), in); err != nil {
		logError(r, "create post failed", err)
		a.postForm(w, r, http.StatusBadGateway, "", form, nil, "Erro ao salvar a postagem: "+err.Error())
		return
	}

	flash(a.flashes, w, r, "success", "Postagem salva com sucesso!")
	redirect(w, r, "/admin/posts")
}

// PostEdit renders the edit form for an existing post.
func (a *Admin) PostEdit(w http.ResponseWriter, r *http.Request) {
	id := models.ID(chi.URLParam(r, "id"))
	post, err := a.posts.GetPost(r.Context(), id)
	if err != nil {
		if api.IsNotFound(err) {
			errorPage(a.renderer, w, r, http.StatusNotFound, "Post não encontrado")
			return
		}
		logError(r, "load post failed", err, "post_id", id)
		errorPage(a.renderer, w, r, http.StatusBadGateway, "Erro ao carregar a postagem")
		return
	}
	a.postForm(w, r, http.StatusOK, id, forms.PostFromModel(post), nil, "")
}

// PostUpdate applies the edited fields. The view counter and date are
// left untouched.
func (a *Admin) PostUpdate(w http.ResponseWriter, r *http.Request) {
	id := models.ID(chi.URLParam(r, "id"))
	form := forms.PostFromRequest(r)
	if errs := forms.Errors(form); errs != nil {
		a.postForm(w, r, http.StatusUnprocessableEntity, id, form, errs, "")
		return
	}

	if _, err := a.posts.UpdatePost(r.Context(), id, form.Patch()); err != nil {
		logError(r, "update post failed", err, "post_id", id)
		a.postForm(w, r, http.StatusBadGateway, id, form, nil, "Erro ao salvar a postagem: "+err.Error())
		return
	}

	flash(a.flashes, w, r, "success", "Postagem salva com sucesso!")
	redirect(w, r, "/admin/posts")
}

// PostDelete removes a post.
func (a *Admin) PostDelete(w http.ResponseWriter, r *http.Request) {
	id := models.ID(chi.URLParam(r, "id"))
	if err := a.posts.DeletePost(r.Context(), id); err != nil {
		logError(r, "delete post failed", err, "post_id", id)
		flash(a.flashes, w, r, "error", "Erro ao excluir a postagem: "+err.Error())
	} else {
		flash(a.flashes, w, r, "success", "Postagem excluída!")
	}
	redirect(w, r, "/admin/posts")
}

func (a *Admin) postForm(w http.ResponseWriter, r *http.Request, status int, id models.ID, form forms.Post, errs map[string]string, errMsg string) {
	title := "Nova postagem"
	if id != "" {
		title = "Editar postagem"
	}
	page(a.renderer, a.flashes, w, r, status, "admin_post_form", &render.PageData{
		Title:   title,
		Section: "posts",
		Data: map[string]any{
			"ID":         id,
			"Form":       form,
			"Errors":     errs,
			"Error":      errMsg,
			"Categories": a.categories.Categories().Value(),
		},
	})
}

// --- Categories CRUD ---

// CategoriesList refreshes the category store and renders the table.
func (a *Admin) CategoriesList(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{}
	cats, err := a.categories.Refresh(r.Context())
	if err != nil {
		logError(r, "refresh categories failed", err)
		data["Error"] = "Não foi possível carregar as categorias."
	}
	data["Categories"] = cats

	page(a.renderer, a.flashes, w, r, http.StatusOK, "admin_categories", &render.PageData{
		Title:   "Categorias",
		Section: "categories",
		Data:    data,
	})
}

// CategoryNew renders the new category form.
func (a *Admin) CategoryNew(w http.ResponseWriter, r *http.Request) {
	a.categoryForm(w, r, http.StatusOK, "", forms.Category{}, nil, "")
}

// CategoryCreate stores a new category. The store refreshes its list in
// the background.
func (a *Admin) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	form := forms.CategoryFromRequest(r)
	if errs := forms.Errors(form); errs != nil {
		a.categoryForm(w, r, http.StatusUnprocessableEntity, "", form, errs, "")
		return
	}

	if _, err := a.categories.Create(r.Context(), form.Name); err != nil {
		logError(r, "create category failed", err)
		a.categoryForm(w, r, http.StatusBadGateway, "", form, nil, "Erro ao salvar a categoria: "+err.Error())
		return
	}

	flash(a.flashes, w, r, "success", "Categoria salva com sucesso!")
	redirect(w, r, "/admin/categories")
}

// CategoryEdit renders the rename form for a category.
func (a *Admin) CategoryEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := categoryID(r)
	if !ok {
		errorPage(a.renderer, w, r, http.StatusNotFound, "Categoria não encontrada")
		return
	}
	cat, found := findCategory(a.categories.Categories().Value(), id)
	if !found {
		// The snapshot may predate the category; look again once.
		if cats, err := a.categories.Refresh(r.Context()); err == nil {
			cat, found = findCategory(cats, id)
		}
	}
	if !found {
		errorPage(a.renderer, w, r, http.StatusNotFound, "Categoria não encontrada")
		return
	}
	a.categoryForm(w, r, http.StatusOK, id, forms.Category{Name: cat.Name}, nil, "")
}

// CategoryUpdate renames a category. Posts keep the old name.
func (a *Admin) CategoryUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := categoryID(r)
	if !ok {
		errorPage(a.renderer, w, r, http.StatusNotFound, "Categoria não encontrada")
		return
	}
	form := forms.CategoryFromRequest(r)
	if errs := forms.Errors(form); errs != nil {
		a.categoryForm(w, r, http.StatusUnprocessableEntity, id, form, errs, "")
		return
	}

	if _, err := a.categories.Update(r.Context(), id, form.Name); err != nil {
		logError(r, "update category failed", err, "category_id", id)
		a.categoryForm(w, r, http.StatusBadGateway, id, form, nil, "Erro ao salvar a categoria: "+err.Error())
		return
	}

	flash(a.flashes, w, r, "success", "Categoria salva com sucesso!")
	redirect(w, r, "/admin/categories")
}

// CategoryDelete removes a category.
func (a *Admin) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := categoryID(r)
	if !ok {
		errorPage(a.renderer, w, r, http.StatusNotFound, "Categoria não encontrada")
		return
	}
	if err := a.categories.Delete(r.Context(), id); err != nil {
		logError(r, "delete category failed", err, "category_id", id)
		flash(a.flashes, w, r, "error", "Erro ao excluir a categoria: "+err.Error())
	} else {
		flash(a.flashes, w, r, "success", "Categoria excluída!")
	}
	redirect(w, r, "/admin/categories")
}

func (a *Admin) categoryForm(w http.ResponseWriter, r *http.Request, status int, id models.ID, form forms.Category, errs map[string]string, errMsg string) {
	title := "Nova categoria"
	if id != "" {
		title = "Editar categoria"
	}
	page(a.renderer, a.flashes, w, r, status, "admin_category_form", &render.PageData{
		Title:   title,
		Section: "categories",
		Data: map[string]any{
			"ID":     id,
			"Form":   form,
			"Errors": errs,
			"Error":  errMsg,
		},
	})
}

func categoryID(r *http.Request) (models.ID, bool) {
	id := models.ID(strings.TrimSpace(chi.URLParam(r, "id")))
	return id, id != ""
}

func findCategory(cats []models.Category, id models.ID) (models.Category, bool) {
	for _, c := range cats {
		if c.ID == id {
			return c, true
		}
	}
	return models.Category{}, false
}

// --- Stats ---

// Stats ranks posts by views and charts them.
func (a *Admin) Stats(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{"ChartScript": charts.ScriptURL}
	posts, err := a.posts.ListPosts(r.Context())
	if err != nil {
		logError(r, "list posts failed", err)
		data["Error"] = "Não foi possível carregar as postagens."
	}
	data["Ranked"] = store.RankByViews(posts)
	if len(posts) > 0 {
		data["ByPost"] = charts.ViewsByPost(posts, statsTopPosts)
		data["ByCategory"] = charts.ViewsByCategory(posts)
	}

	page(a.renderer, a.flashes, w, r, http.StatusOK, "admin_stats", &render.PageData{
		Title:   "Estatísticas",
		Section: "stats",
		Data:    data,
	})
}
