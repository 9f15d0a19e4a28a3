package engine

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCacheKey(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		k1 := CacheKey("search", "golang context")
		k2 := CacheKey("search", "golang context")
		if k1 != k2 {
			t.Errorf("CacheKey not deterministic: %q != %q", k1, k2)
		}
	})

	t.Run("different inputs differ", func(t *testing.T) {
		k1 := CacheKey("search", "golang")
		k2 := CacheKey("search", "python")
		if k1 == k2 {
			t.Errorf("different inputs produced same key: %q", k1)
		}
	})

	t.Run("has prefix", func(t *testing.T) {
		k := CacheKey("test")
		if k[:3] != "gh:" {
			t.Errorf("expected gh: prefix, got %q", k[:3])
		}
	})
}

func TestCacheGetSet(t *testing.T) {
	c := NewCache("", time.Minute, 100)
	ctx := context.Background()
	key := CacheKey("test", "round-trip")

	if _, ok := c.Get(ctx, key); ok {
		t.Error("expected cache miss on empty cache")
	}

	CacheStoreJSON(ctx, c, key, SearchResponse{DirectAnswer: "hello"})

	got, ok := CacheLoadJSON[SearchResponse](ctx, c, key)
	if !ok {
		t.Fatal("expected cache hit after set")
	}
	if got.DirectAnswer != "hello" {
		t.Errorf("got answer %q, want %q", got.DirectAnswer, "hello")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestCacheNilSafe(t *testing.T) {
	var c *Cache
	ctx := context.Background()
	c.Set(ctx, "k", []byte("v"))
	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("nil cache should always miss")
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}

func TestCacheDecodeMismatch(t *testing.T) {
	c := NewCache("", time.Minute, 10)
	ctx := context.Background()
	c.Set(ctx, "k", []byte("not json"))
	if _, ok := CacheLoadJSON[SearchResponse](ctx, c, "k"); ok {
		t.Error("expected miss on undecodable value")
	}
}

type countingProvider struct {
	calls int
	err   error
}

func (p *countingProvider) Search(context.Context, string, SearchParams) (SearchResponse, error) {
	p.calls++
	if p.err != nil {
		return SearchResponse{}, p.err
	}
	return SearchResponse{Items: []CandidateItem{{SourceID: "u"}}}, nil
}

func TestCachedProvider(t *testing.T) {
	ctx := context.Background()
	params := SearchParams{Topic: "general", MaxResults: 8}

	t.Run("caches success", func(t *testing.T) {
		inner := &countingProvider{}
		p := CachedProvider{Name: "t", Provider: inner, Cache: NewCache("", time.Minute, 10)}
		for range 3 {
			resp, err := p.Search(ctx, "q", params)
			if err != nil || len(resp.Items) != 1 {
				t.Fatalf("Search() = %+v, %v", resp, err)
			}
		}
		if inner.calls != 1 {
			t.Errorf("inner calls = %d, want 1", inner.calls)
		}
	})

	t.Run("params are part of the key", func(t *testing.T) {
		inner := &countingProvider{}
		p := CachedProvider{Name: "t", Provider: inner, Cache: NewCache("", time.Minute, 10)}
		_, _ = p.Search(ctx, "q", params)
		_, _ = p.Search(ctx, "q", SearchParams{Topic: "news", MaxResults: 8})
		if inner.calls != 2 {
			t.Errorf("inner calls = %d, want 2", inner.calls)
		}
	})

	t.Run("never caches failure", func(t *testing.T) {
		inner := &countingProvider{err: errors.New("down")}
		p := CachedProvider{Name: "t", Provider: inner, Cache: NewCache("", time.Minute, 10)}
		for range 2 {
			if _, err := p.Search(ctx, "q", params); err == nil {
				t.Fatal("expected error")
			}
		}
		if inner.calls != 2 {
			t.Errorf("inner calls = %d, want 2", inner.calls)
		}
	})
}
