// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the records exchanged with the remote blog API
// and the core types used throughout the application.
package models

// User is a registered account as served by the remote API. The API filters
// users by username and password, so a non-empty match means the
// credentials were accepted.
type User struct {
	ID       ID     `json:"id"`
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
}

// Public returns a copy of the user without the password, suitable for
// storing in the session record.
func (u User) Public() User {
	u.Password = ""
	return u
}
