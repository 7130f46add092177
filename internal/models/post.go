// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Post is a blog post as served by the remote API.
type Post struct {
	ID       ID     `json:"id"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	Category string `json:"category"`
	Content  string `json:"content"`
	Date     string `json:"date"`
	Views    int    `json:"views"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// PublishedAt parses the ISO-8601 date. ok is false when the API stored
// something unparseable.
func (p *Post) PublishedAt() (t time.Time, ok bool) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, p.Date); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// PostInput is the payload for creating a post. Date and Views are stamped
// by the caller before the request is sent.
type PostInput struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	Category string `json:"category"`
	Content  string `json:"content"`
	ImageURL string `json:"imageUrl,omitempty"`
	Date     string `json:"date"`
	Views    int    `json:"views"`
}

// PostPatch is a partial update. Only non-nil fields are sent.
type PostPatch struct {
	Title    *string `json:"title,omitempty"`
	Author   *string `json:"author,omitempty"`
	Category *string `json:"category,omitempty"`
	Content  *string `json:"content,omitempty"`
	ImageURL *string `json:"imageUrl,omitempty"`
	Views    *int    `json:"views,omitempty"`
}
