// Package toolutil provides shared helper functions for go_harvest MCP tools.
package toolutil

import (
	"context"
	"errors"
	"strings"

	"github.com/anatolykoptev/go_harvest/internal/engine"
)

// ErrQueryRequired is returned for a blank query argument.
var ErrQueryRequired = errors.New("query is required")

// RequireQuery trims q and rejects it when empty.
func RequireQuery(q string) (string, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return "", ErrQueryRequired
	}
	return q, nil
}

// Cached returns the cached value for key, or computes it with fn and stores
// the result. Errors are never cached. A nil cache always computes.
func Cached[T any](ctx context.Context, c *engine.Cache, key string, fn func(context.Context) (T, error)) (T, error) {
	if out, ok := engine.CacheLoadJSON[T](ctx, c, key); ok {
		return out, nil
	}
	out, err := fn(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	engine.CacheStoreJSON(ctx, c, key, out)
	return out, nil
}
