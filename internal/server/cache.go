package server

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/louisbranch/geometrydash/internal/storage"
)

// cached returns the value stored under key, or loads, stores and returns
// it. Cache failures are logged and never fail the request.
func cached[T any](ctx context.Context, s *Server, key string, load func(context.Context) (T, error)) (T, error) {
	if s.cache == nil || s.cfg.CacheTTL <= 0 {
		return load(ctx)
	}

	raw, err := s.cache.GetCached(ctx, key, s.now())
	switch {
	case err == nil:
		var value T
		if err := json.Unmarshal(raw, &value); err == nil {
			return value, nil
		}
		s.logf("cache entry unreadable key=%s", key)
	case !errors.Is(err, storage.ErrNotFound):
		s.logf("cache read failed key=%s err=%v", key, err)
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}
	raw, err = json.Marshal(value)
	if err != nil {
		s.logf("cache encode failed key=%s err=%v", key, err)
		return value, nil
	}
	if err := s.cache.PutCached(ctx, key, raw, s.now().Add(s.cfg.CacheTTL)); err != nil {
		s.logf("cache write failed key=%s err=%v", key, err)
	}
	return value, nil
}
