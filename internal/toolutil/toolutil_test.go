package toolutil

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_harvest/internal/engine"
)

func TestRequireQuery(t *testing.T) {
	q, err := RequireQuery("  rust async  ")
	require.NoError(t, err)
	assert.Equal(t, "rust async", q)

	_, err = RequireQuery(" \t")
	assert.ErrorIs(t, err, ErrQueryRequired)
}

func TestCached(t *testing.T) {
	ctx := context.Background()
	c := engine.NewCache("", time.Minute, 10)
	calls := 0
	fn := func(context.Context) (int, error) {
		calls++
		return 42, nil
	}

	v, err := Cached(ctx, c, "k", fn)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	v, err = Cached(ctx, c, "k", fn)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, calls)
}

func TestCachedSkipsErrors(t *testing.T) {
	ctx := context.Background()
	c := engine.NewCache("", time.Minute, 10)
	calls := 0
	fail := func(context.Context) (string, error) {
		calls++
		return "", errors.New("boom")
	}
	_, err := Cached(ctx, c, "k", fail)
	require.Error(t, err)
	_, err = Cached(ctx, c, "k", fail)
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestCachedNilCache(t *testing.T) {
	calls := 0
	for range 2 {
		_, err := Cached(context.Background(), nil, "k", func(context.Context) (int, error) {
			calls++
			return 1, nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, calls)
}
