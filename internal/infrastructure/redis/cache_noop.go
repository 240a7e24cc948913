package redisstore

import "context"

// NoopCache always misses; used when CACHE_BACKEND=none.
type NoopCache struct{}

func (NoopCache) Get(ctx context.Context, key string, out any) (bool, error) { return false, nil }
func (NoopCache) Set(ctx context.Context, key string, v any) error           { return nil }
