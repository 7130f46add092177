// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package apitest provides an in-memory stand-in for the remote blog API,
// served over httptest, for use in tests across packages.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"cervejas/internal/models"
)

// Server is a json-server lookalike holding posts, categories and users.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	posts      []models.Post
	categories []models.Category
	users      []models.User
	nextID     int
	failures   map[string]int // "METHOD /collection" -> status to reply with
	requests   []string
}

// New starts a server seeded with the given records and registers Close
// with t.Cleanup.
func New(t *testing.T, posts []models.Post, categories []models.Category, users []models.User) *Server {
	t.Helper()

	s := &Server{
		posts:      append([]models.Post(nil), posts...),
		categories: append([]models.Category(nil), categories...),
		users:      append([]models.User(nil), users...),
		nextID:     1000,
		failures:   make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Fail makes every request matching method and collection ("/posts",
// "/categories", "/users") answer with status until Recover is called.
func (s *Server) Fail(method, collection string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+collection] = status
}

// Recover clears all injected failures.
func (s *Server) Recover() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]int)
}

// Requests returns "METHOD path?query" for every request received so far.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// Posts returns a copy of the stored posts.
func (s *Server) Posts() []models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Post(nil), s.posts...)
}

// Categories returns a copy of the stored categories.
func (s *Server) Categories() []models.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Category(nil), s.categories...)
}

// SetCategories replaces the stored categories.
func (s *Server) SetCategories(cats []models.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = append([]models.Category(nil), cats...)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, r.Method+" "+r.URL.RequestURI())

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	collection := "/" + parts[0]
	if status, ok := s.failures[r.Method+" "+collection]; ok {
		w.WriteHeader(status)
		return
	}

	var id string
	if len(parts) > 1 {
		id = parts[1]
	}

	switch collection {
	case "/posts":
		s.handlePosts(w, r, id)
	case "/categories":
		s.handleCategories(w, r, id)
	case "/users":
		s.handleUsers(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handlePosts(w http.ResponseWriter, r *http.Request, id string) {
	idx := -1
	if id != "" {
		for i, p := range s.posts {
			if p.ID.String() == id {
				idx = i
			}
		}
		if idx < 0 {
			writeJSON(w, http.StatusNotFound, map[string]any{})
			return
		}
	}

	switch {
	case r.Method == http.MethodGet && id == "":
		out := append([]models.Post(nil), s.posts...)
		if r.URL.Query().Get("_sort") == "date" {
			desc := r.URL.Query().Get("_order") == "desc"
			sort.SliceStable(out, func(i, j int) bool {
				if desc {
					return out[i].Date > out[j].Date
				}
				return out[i].Date < out[j].Date
			})
		}
		writeJSON(w, http.StatusOK, out)
	case r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, s.posts[idx])
	case r.Method == http.MethodPost:
		var p models.Post
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		s.nextID++
		p.ID = models.ID(strconv.Itoa(s.nextID))
		s.posts = append(s.posts, p)
		writeJSON(w, http.StatusCreated, p)
	case r.Method == http.MethodPatch:
		var patch models.PostPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		p := &s.posts[idx]
		if patch.Title != nil {
			p.Title = *patch.Title
		}
		if patch.Author != nil {
			p.Author = *patch.Author
		}
		if patch.Category != nil {
			p.Category = *patch.Category
		}
		if patch.Content != nil {
			p.Content = *patch.Content
		}
		if patch.ImageURL != nil {
			p.ImageURL = *patch.ImageURL
		}
		if patch.Views != nil {
			p.Views = *patch.Views
		}
		writeJSON(w, http.StatusOK, *p)
	case r.Method == http.MethodDelete:
		s.posts = append(s.posts[:idx], s.posts[idx+1:]...)
		writeJSON(w, http.StatusOK, map[string]any{})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request, id string) {
	idx := -1
	if id != "" {
		for i, c := range s.categories {
			if c.ID.String() == id {
				idx = i
			}
		}
		if idx < 0 {
			writeJSON(w, http.StatusNotFound, map[string]any{})
			return
		}
	}

	switch {
	case r.Method == http.MethodGet && id == "":
		writeJSON(w, http.StatusOK, s.categories)
	case r.Method == http.MethodPost:
		var c models.Category
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		s.nextID++
		c.ID = models.ID(strconv.Itoa(s.nextID))
		s.categories = append(s.categories, c)
		writeJSON(w, http.StatusCreated, c)
	case r.Method == http.MethodPatch:
		var c models.Category
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		s.categories[idx].Name = c.Name
		writeJSON(w, http.StatusOK, s.categories[idx])
	case r.Method == http.MethodDelete:
		s.categories = append(s.categories[:idx], s.categories[idx+1:]...)
		writeJSON(w, http.StatusOK, map[string]any{})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		matched := []models.User{}
		for _, u := range s.users {
			if u.Username == q.Get("username") && u.Password == q.Get("password") {
				matched = append(matched, u)
			}
		}
		writeJSON(w, http.StatusOK, matched)
	case http.MethodPost:
		var u models.User
		if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		s.nextID++
		u.ID = models.ID(strconv.Itoa(s.nextID))
		s.users = append(s.users, u)
		writeJSON(w, http.StatusCreated, u)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
