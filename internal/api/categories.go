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

type categoryPayload struct {
	Name string `json:"name"`
}

func categoryPath(id models.ID) string {
	return "/categories/" + url.PathEscape(id.String())
}

// ListCategories returns every category.
func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	if err := c.do(ctx, "list_categories", http.MethodGet, "/categories", nil, nil, &cats); err != nil {
		return nil, err
	}
	if cats == nil {
		cats = []models.Category{}
	}
	return cats, nil
}

// CreateCategory creates a category with the given name.
func (c *Client) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	var cat models.Category
	if err := c.do(ctx, "create_category", http.MethodPost, "/categories", nil, categoryPayload{Name: name}, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

// UpdateCategory renames a category. Posts keep the old name; categories
// are referenced by name and nothing cascades.
func (c *Client) UpdateCategory(ctx context.Context, id models.ID, name string) (*models.Category, error) {
	var cat models.Category
	if err := c.do(ctx, "update_category", http.MethodPatch, categoryPath(id), nil, categoryPayload{Name: name}, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

// DeleteCategory removes a category.
func (c *Client) DeleteCategory(ctx context.Context, id models.ID) error {
	return c.do(ctx, "delete_category", http.MethodDelete, categoryPath(id), nil, nil, nil)
}
