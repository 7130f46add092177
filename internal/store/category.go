// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"cervejas/internal/feed"
	"cervejas/internal/metrics"
	"cervejas/internal/models"
)

// CategoryAPI is the subset of the gateway the category store needs.
type CategoryAPI interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, name string) (*models.Category, error)
	UpdateCategory(ctx context.Context, id models.ID, name string) (*models.Category, error)
	DeleteCategory(ctx context.Context, id models.ID) error
}

// CategoryStore keeps the shared category list and pushes every change to
// its subscribers. A single instance is created at startup and handed to
// everything that shows categories.
type CategoryStore struct {
	api  CategoryAPI
	feed *feed.Feed[[]models.Category]
	wg   sync.WaitGroup
}

// NewCategoryStore returns a store whose list starts empty.
func NewCategoryStore(api CategoryAPI) *CategoryStore {
	return &CategoryStore{
		api:  api,
		feed: feed.New([]models.Category{}),
	}
}

// Categories returns the read-only category feed. Each delivered slice is
// a private copy.
func (s *CategoryStore) Categories() feed.Source[[]models.Category] {
	return snapshotSource{s.feed}
}

// Refresh reloads the list from the API and publishes it. On failure the
// list is reset to empty and the API error is returned.
func (s *CategoryStore) Refresh(ctx context.Context) ([]models.Category, error) {
	cats, err := s.api.ListCategories(ctx)
	metrics.ObserveCategoryRefresh(err == nil)
	if err != nil {
		s.feed.Publish([]models.Category{})
		return nil, err
	}

	s.feed.Publish(slices.Clone(cats))
	return cats, nil
}

// Create adds a category and schedules a background refresh.
func (s *CategoryStore) Create(ctx context.Context, name string) (*models.Category, error) {
	c, err := s.api.CreateCategory(ctx, name)
	if err != nil {
		return nil, err
	}
	s.refreshAsync(ctx)
	return c, nil
}

// Update renames a category and schedules a background refresh.
func (s *CategoryStore) Update(ctx context.Context, id models.ID, name string) (*models.Category, error) {
	c, err := s.api.UpdateCategory(ctx, id, name)
	if err != nil {
		return nil, err
	}
	s.refreshAsync(ctx)
	return c, nil
}

// Delete removes a category and schedules a background refresh.
func (s *CategoryStore) Delete(ctx context.Context, id models.ID) error {
	if err := s.api.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.refreshAsync(ctx)
	return nil
}

// Wait blocks until every background refresh has finished.
func (s *CategoryStore) Wait() {
	s.wg.Wait()
}

// refreshAsync reloads the list without holding up the caller. The refresh
// outlives the request that triggered it; its failure is only logged.
func (s *CategoryStore) refreshAsync(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if _, err := s.Refresh(ctx); err != nil {
			slog.Warn("background category refresh failed", "error", err)
		}
	}()
}

// snapshotSource hands every reader its own copy of the list so that no
// consumer can mutate the shared snapshot.
type snapshotSource struct {
	f *feed.Feed[[]models.Category]
}

func (s snapshotSource) Value() []models.Category {
	return slices.Clone(s.f.Value())
}

func (s snapshotSource) Subscribe(fn func([]models.Category)) func() {
	return s.f.Subscribe(func(cats []models.Category) {
		fn(slices.Clone(cats))
	})
}
