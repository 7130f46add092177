// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package api

import (
	"context"
	"net/http"
	"net/url"

	"cervejas/internal/models"
)

// postPath returns the item path for a post ID.
func postPath(id models.ID) string {
	return "/posts/" + url.PathEscape(id.String())
}

// ListPosts returns every post, asking the API to sort by date descending.
// The order is taken as given; it is not re-checked locally.
func (c *Client) ListPosts(ctx context.Context) ([]models.Post, error) {
	query := url.Values{}
	query.Set("_sort", "date")
	query.Set("_order", "desc")

	var posts []models.Post
	if err := c.do(ctx, "list_posts", http.MethodGet, "/posts", query, nil, &posts); err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return posts, nil
}

// GetPost fetches a single post.
func (c *Client) GetPost(ctx context.Context, id models.ID) (*models.Post, error) {
	var post models.Post
	if err := c.do(ctx, "get_post", http.MethodGet, postPath(id), nil, nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// CreatePost stores a new post and returns the record the API created.
func (c *Client) CreatePost(ctx context.Context, in models.PostInput) (*models.Post, error) {
	var post models.Post
	if err := c.do(ctx, "create_post", http.MethodPost, "/posts", nil, in, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// UpdatePost applies a partial update and returns the updated record.
func (c *Client) UpdatePost(ctx context.Context, id models.ID, patch models.PostPatch) (*models.Post, error) {
	var post models.Post
	if err := c.do(ctx, "update_post", http.MethodPatch, postPath(id), nil, patch, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// IncrementViews records one more view of post, based on the count the
// caller last saw. Two concurrent readers may both write n+1.
func (c *Client) IncrementViews(ctx context.Context, post *models.Post) error {
	views := post.Views + 1
	return c.do(ctx, "increment_views", http.MethodPatch, postPath(post.ID), nil, models.PostPatch{Views: &views}, nil)
}

// DeletePost removes a post.
func (c *Client) DeletePost(ctx context.Context, id models.ID) error {
	return c.do(ctx, "delete_post", http.MethodDelete, postPath(id), nil, nil, nil)
}
