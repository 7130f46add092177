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

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Authenticate asks the API for users matching both username and password.
// An empty result means the credentials were rejected; it is not an error.
func (c *Client) Authenticate(ctx context.Context, username, password string) ([]models.User, error) {
	query := url.Values{}
	query.Set("username", username)
	query.Set("password", password)

	var users []models.User
	if err := c.do(ctx, "authenticate", http.MethodGet, "/users", query, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Register creates a user account.
func (c *Client) Register(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, "register", http.MethodPost, "/users", nil, credentials{Username: username, Password: password}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
