// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// Category is a post category as served by the remote API. Posts refer to
// categories by name, not by ID, so renaming a category does not cascade.
// IDs decode like post IDs: seeded categories are numeric, created ones may
// be strings.
type Category struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// CategoryNames returns the names of the given categories in order.
func CategoryNames(cats []Category) []string {
	names := make([]string, 0, len(cats))
	for _, c := range cats {
		names = append(names, c.Name)
	}
	return names
}
