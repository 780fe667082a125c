package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"leadfinder/cmd/internal/contract"
	"leadfinder/cmd/internal/utils/apierror"
)

type CacheService interface {
	ClearCache(ctx context.Context, key string) (*contract.CacheClearResponse, apierror.ErrorResponse)
}

type DefaultCacheRoute struct {
	CacheService CacheService
}

func NewCacheRoute(cacheService CacheService) *DefaultCacheRoute {
	return &DefaultCacheRoute{CacheService: cacheService}
}

// ClearCache serves DELETE /api/cache[?key=KEY] and DELETE /api/cache/KEY.
// Keys may contain slashes since they are built from business names.
func (r *DefaultCacheRoute) ClearCache(c echo.Context) error {
	key := strings.TrimSpace(c.Param("*"))
	if key == "" {
		key = strings.TrimSpace(c.QueryParam("key"))
	}

	resp, apierr := r.CacheService.ClearCache(c.Request().Context(), key)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, resp)
}
