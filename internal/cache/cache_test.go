// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestConnectValkey(t *testing.T) {
	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")

	client, err := ConnectValkey(host, port, os.Getenv("VALKEY_PASSWORD"))
	if err != nil {
		t.Skipf("skipping: Valkey not available: %v", err)
	}
	defer client.Close()

	if err := Healthy(context.Background(), client); err != nil {
		t.Errorf("Healthy: %v", err)
	}
}

func TestConnectValkeyUnreachable(t *testing.T) {
	// Port 1 is reserved and never runs Valkey.
	client, err := ConnectValkey("127.0.0.1", "1", "")
	if err == nil {
		client.Close()
		t.Fatal("expected an error for an unreachable address")
	}
}

// pinger answers Ping with a fixed error and records the deadline it saw.
type pinger struct {
	err      error
	deadline time.Time
}

func (p *pinger) Ping(ctx context.Context) *redis.StatusCmd {
	p.deadline, _ = ctx.Deadline()
	return redis.NewStatusResult("PONG", p.err)
}

func TestHealthyWrapsPingError(t *testing.T) {
	p := &pinger{err: errors.New("connection refused")}

	err := Healthy(context.Background(), p)
	if err == nil || !strings.Contains(err.Error(), "valkey health: connection refused") {
		t.Fatalf("Healthy: got %v", err)
	}
}

func TestHealthyBoundsThePing(t *testing.T) {
	p := &pinger{}

	if err := Healthy(context.Background(), p); err != nil {
		t.Fatalf("Healthy: %v", err)
	}
	if p.deadline.IsZero() || time.Until(p.deadline) > 2*time.Second {
		t.Errorf("ping deadline: got %v", p.deadline)
	}
}
