// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the site. It
// supports full-page and HTMX partial rendering, detecting the request type
// via the HX-Request header, and renders named fragments for the live
// listing stream.
package render

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"

	"cervejas/internal/binding"
	"cervejas/internal/markdown"
	"cervejas/internal/middleware"
	"cervejas/internal/models"
	"cervejas/internal/session"
	"cervejas/internal/slug"
	"cervejas/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

// DefaultImage is shown for posts without an image URL.
const DefaultImage = "/static/default-post.svg"

// PageData holds all data passed to page templates.
type PageData struct {
	Title     string          // Page title for <title> tag
	Section   string          // Active admin section ("posts", "categories", "stats"); empty on public pages
	Session   *session.Data   // Current user session (nil if anonymous)
	CSRFToken string          // CSRF token for forms and HTMX headers
	Flashes   []session.Flash // One-time notifications
	Data      map[string]any  // Page-specific data
}

// ListData feeds the "post-list" fragment.
type ListData struct {
	Posts  []models.Post
	Filter store.Filter
	Error  string
	Loaded bool
}

// ListFromResult converts a binding result into fragment data.
func ListFromResult(res binding.Result) ListData {
	d := ListData{Posts: res.Posts, Filter: res.Filter, Loaded: res.Loaded()}
	if res.Err != nil {
		d.Error = "Não foi possível carregar as postagens."
	}
	return d
}

// MenuData feeds the "category-menu" fragment.
type MenuData struct {
	Categories []models.Category
	Filter     store.Filter
	ViewID     string // live view to navigate; empty renders plain links
}

// Renderer handles template parsing and execution.
type Renderer struct {
	pages     map[string]*template.Template
	fragments *template.Template
	funcMap   template.FuncMap
}

// standaloneTemplates render as full HTML pages without the base layout.
var standaloneTemplates = map[string]bool{
	"login":    true,
	"register": true,
}

// New parses every page template paired with the base layout and the
// shared partials. When devMode is true the unminified HTMX build is used.
func New(devMode bool) (*Renderer, error) {
	rn := &Renderer{
		pages:   make(map[string]*template.Template),
		funcMap: funcMap(devMode),
	}

	fragments, err := template.New("partials.html").Funcs(rn.funcMap).ParseFS(templateFS, "templates/partials.html")
	if err != nil {
		return nil, fmt.Errorf("parse partials: %w", err)
	}
	rn.fragments = fragments

	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("glob templates: %w", err)
	}

	for _, file := range files {
		name := path.Base(file)
		if name == "base.html" || name == "partials.html" {
			continue
		}
		pageName := strings.TrimSuffix(name, ".html")

		var tmpl *template.Template
		if standaloneTemplates[pageName] {
			tmpl, err = template.New(name).Funcs(rn.funcMap).ParseFS(templateFS,
				"templates/partials.html", file)
		} else {
			tmpl, err = template.New("base.html").Funcs(rn.funcMap).ParseFS(templateFS,
				"templates/base.html", "templates/partials.html", file)
		}
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		rn.pages[pageName] = tmpl
	}

	return rn, nil
}

func funcMap(devMode bool) template.FuncMap {
	return template.FuncMap{
		"isDev": func() bool { return devMode },
		"activeClass": func(current, target string) string {
			if current == target {
				return "active"
			}
			return ""
		},
		// date formats the post date as dd/mm/yyyy, falling back to the raw
		// value when it does not parse.
		"date": func(p models.Post) string {
			if t, ok := p.PublishedAt(); ok {
				return t.Format("02/01/2006")
			}
			return p.Date
		},
		"excerpt": markdown.Excerpt,
		"image": func(url string) string {
			if url == "" {
				return DefaultImage
			}
			return url
		},
		"filterURL": FilterURL,
		"postURL":   PostURL,
		// vals encodes key/value pairs as JSON for hx-vals.
		"vals": func(kv ...string) (string, error) {
			if len(kv)%2 != 0 {
				return "", fmt.Errorf("vals: odd number of arguments")
			}
			m := make(map[string]string, len(kv)/2)
			for i := 0; i < len(kv); i += 2 {
				m[kv[i]] = kv[i+1]
			}
			b, err := json.Marshal(m)
			return string(b), err
		},
		"inc": func(i int) int { return i + 1 },
		"fieldError": func(errs map[string]string, field string) string {
			return errs[field]
		},
	}
}

// FilterURL returns the home page URL for the given filter.
func FilterURL(category, query string) string {
	params := binding.Params(store.Filter{Category: category, Query: query})
	if len(params) == 0 {
		return "/"
	}
	return "/?" + params.Encode()
}

// PostURL returns the details URL of p, with a readable title slug after
// the id. The slug is decorative; only the id is used to load the post.
func PostURL(p models.Post) string {
	u := "/post/" + url.PathEscape(p.ID.String())
	if s := slug.Generate(p.Title); s != "" {
		u += "/" + s
	}
	return u
}

// Page renders a page with status 200. See PageStatus.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	rn.PageStatus(w, r, http.StatusOK, name, data)
}

// PageStatus renders a full page or, for HTMX requests, only its "content"
// block. Output is buffered so a template error still yields a clean 500.
func (rn *Renderer) PageStatus(w http.ResponseWriter, r *http.Request, status int, name string, data *PageData) {
	tmpl, ok := rn.pages[name]
	if !ok {
		http.Error(w, fmt.Sprintf("template %q not found", name), http.StatusInternalServerError)
		return
	}

	if data == nil {
		data = &PageData{}
	}
	data.CSRFToken = middleware.CSRFTokenFromCtx(r.Context())
	if data.Session == nil {
		data.Session = middleware.SessionFromCtx(r.Context())
	}
	if data.Data == nil {
		data.Data = map[string]any{}
	}

	execName := "base.html"
	switch {
	case isHTMX(r) && !standaloneTemplates[name]:
		execName = "content"
	case standaloneTemplates[name]:
		execName = name + ".html"
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, execName, data); err != nil {
		slog.Error("template render failed", "template", name, "error", err,
			"request_id", middleware.RequestIDFromCtx(r.Context()))
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// Fragment renders one of the shared partials ("post-list",
// "category-menu", "flashes") into w.
func (rn *Renderer) Fragment(w io.Writer, name string, data any) error {
	if err := rn.fragments.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("render fragment %s: %w", name, err)
	}
	return nil
}

// isHTMX returns true if the request was made by HTMX.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
