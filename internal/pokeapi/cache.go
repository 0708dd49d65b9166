package pokeapi

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DetailCache guarda fichas de pokemon ya resueltas. Los datos del catálogo
// son inmutables, así que las entradas no caducan.
type DetailCache interface {
	Get(ctx context.Context, key string) (Pokemon, bool)
	Set(ctx context.Context, key string, p Pokemon)
}

type memoryDetailCache struct {
	mu    sync.RWMutex
	items map[string]Pokemon
}

func NewMemoryDetailCache() DetailCache {
	return &memoryDetailCache{items: make(map[string]Pokemon)}
}

func (c *memoryDetailCache) Get(_ context.Context, key string) (Pokemon, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.items[key]
	return p, ok
}

func (c *memoryDetailCache) Set(_ context.Context, key string, p Pokemon) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = p
}

type redisDetailCache struct {
	client *redis.Client
	prefix string
}

func NewRedisDetailCache(client *redis.Client) DetailCache {
	if client == nil {
		return nil
	}
	return &redisDetailCache{client: client, prefix: "pokeapi:detail:"}
}

func (c *redisDetailCache) Get(ctx context.Context, key string) (Pokemon, bool) {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		return Pokemon{}, false
	}
	var p Pokemon
	if err := json.Unmarshal(raw, &p); err != nil {
		return Pokemon{}, false
	}
	return p, true
}

func (c *redisDetailCache) Set(ctx context.Context, key string, p Pokemon) {
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	_ = c.client.Set(ctx, c.prefix+key, raw, 0).Err()
}

// CachingClient envuelve un Client y sirve las fichas desde el cache cuando puede.
type CachingClient struct {
	inner Client
	cache DetailCache
}

func NewCachingClient(inner Client, cache DetailCache) *CachingClient {
	return &CachingClient{inner: inner, cache: cache}
}

func (c *CachingClient) ListPokemon(ctx context.Context, limit, offset int) (Page, error) {
	return c.inner.ListPokemon(ctx, limit, offset)
}

func (c *CachingClient) GetPokemon(ctx context.Context, idOrName string) (Pokemon, error) {
	key := normalizeKey(idOrName)
	if c.cache != nil {
		if p, ok := c.cache.Get(ctx, key); ok {
			return p, nil
		}
	}
	p, err := c.inner.GetPokemon(ctx, idOrName)
	if err != nil {
		return Pokemon{}, err
	}
	if c.cache != nil {
		c.cache.Set(ctx, key, p)
	}
	return p, nil
}

func normalizeKey(idOrName string) string {
	return strings.ToLower(strings.TrimSpace(idOrName))
}
