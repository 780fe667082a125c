package service

import (
	"context"

	"leadfinder/cmd/internal/contract"
	"leadfinder/cmd/internal/infrastructure/cache"
	"leadfinder/cmd/internal/utils/apierror"
)

type CacheService struct {
	Cache *cache.Cache
}

func NewCacheService(c *cache.Cache) *CacheService {
	return &CacheService{Cache: c}
}

// ClearCache drops key, or the whole cache when key is empty.
func (s *CacheService) ClearCache(ctx context.Context, key string) (*contract.CacheClearResponse, apierror.ErrorResponse) {
	if !s.Cache.Enabled() {
		return nil, apierror.CacheDisabledError
	}

	if !s.Cache.Clear(ctx, key) {
		return nil, apierror.InternalServerError
	}
	return &contract.CacheClearResponse{Key: key, Cleared: true}, nil
}
