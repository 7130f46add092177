// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// FlashCookieName identifies the browser's pending flash messages.
	FlashCookieName = "ch_flash"

	// FlashTTL bounds how long an unread flash survives.
	FlashTTL = 5 * time.Minute

	flashKeyPrefix = "flash:"
)

// Flash is a one-time notification shown on the next rendered page.
type Flash struct {
	Type    string `json:"type"` // "success", "error", "info"
	Message string `json:"message"`
}

// Flashes keeps one-time messages in a Valkey list per browser. It works
// for anonymous visitors too, so it does not piggyback on the login
// session.
type Flashes struct {
	client *redis.Client
	secure bool
}

// NewFlashes creates a flash store backed by the given Valkey client.
func NewFlashes(client *redis.Client, secure bool) *Flashes {
	return &Flashes{client: client, secure: secure}
}

// Add queues a message for the browser behind r, setting the flash cookie
// when the browser has none yet.
func (f *Flashes) Add(ctx context.Context, w http.ResponseWriter, r *http.Request, fl Flash) error {
	id := ""
	if c, err := r.Cookie(FlashCookieName); err == nil && c.Value != "" {
		id = c.Value
	} else {
		var err error
		if id, err = generateID(); err != nil {
			return fmt.Errorf("flash id: %w", err)
		}
		http.SetCookie(w, &http.Cookie{
			Name:     FlashCookieName,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			Secure:   f.secure,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   int(FlashTTL.Seconds()),
		})
	}

	payload, err := json.Marshal(fl)
	if err != nil {
		return fmt.Errorf("flash marshal: %w", err)
	}

	key := flashKeyPrefix + id
	pipe := f.client.TxPipeline()
	pipe.RPush(ctx, key, payload)
	pipe.Expire(ctx, key, FlashTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("flash add: %w", err)
	}
	return nil
}

// Pop returns and removes every pending message for the browser behind r.
func (f *Flashes) Pop(ctx context.Context, r *http.Request) []Flash {
	c, err := r.Cookie(FlashCookieName)
	if err != nil || c.Value == "" {
		return nil
	}

	key := flashKeyPrefix + c.Value
	pipe := f.client.TxPipeline()
	items := pipe.LRange(ctx, key, 0, -1)
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		slog.Warn("flash pop failed", "error", err)
		return nil
	}

	var out []Flash
	for _, raw := range items.Val() {
		var fl Flash
		if err := json.Unmarshal([]byte(raw), &fl); err != nil {
			continue
		}
		out = append(out, fl)
	}
	return out
}
