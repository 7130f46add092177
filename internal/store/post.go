// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"cervejas/internal/models"
	"cervejas/internal/slug"
)

// Filter narrows a post list. Empty fields impose no constraint.
type Filter struct {
	Category string
	Query    string
}

// IsZero reports whether the filter has no constraints.
func (f Filter) IsZero() bool {
	return f.Category == "" && f.Query == ""
}

// PostAPI is the subset of the gateway the post query engine needs.
type PostAPI interface {
	ListPosts(ctx context.Context) ([]models.Post, error)
}

// PostQuery answers filtered post listings. The API has no filtering of
// its own, so every query fetches the full list and narrows it locally.
type PostQuery struct {
	api PostAPI
}

// NewPostQuery returns a PostQuery backed by api.
func NewPostQuery(api PostAPI) *PostQuery {
	return &PostQuery{api: api}
}

// Query fetches all posts (newest first) and applies f. Gateway errors are
// returned unchanged.
func (q *PostQuery) Query(ctx context.Context, f Filter) ([]models.Post, error) {
	posts, err := q.api.ListPosts(ctx)
	if err != nil {
		return nil, err
	}
	return FilterPosts(posts, f), nil
}

// FilterPosts returns the posts matching f in their original order. The
// category must match exactly; the query matches titles ignoring case and
// accents. The input slice is never modified.
func FilterPosts(posts []models.Post, f Filter) []models.Post {
	needle := slug.Fold(f.Query)

	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if needle != "" && !strings.Contains(slug.Fold(p.Title), needle) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// RankByViews returns a copy of posts ordered by view count, most viewed
// first. Posts with equal views keep their relative order.
func RankByViews(posts []models.Post) []models.Post {
	ranked := slices.Clone(posts)
	slices.SortStableFunc(ranked, func(a, b models.Post) int {
		return cmp.Compare(b.Views, a.Views)
	})
	return ranked
}
