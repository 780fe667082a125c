package cache

import (
	"context"
	"time"

	"leadfinder/cmd/internal/domain/entity"
)

type CacheRepository interface {
	Put(entry *entity.CacheEntry) error
	FindFresh(key string, after int64) (*entity.CacheEntry, error)
	Delete(key string) (bool, error)
	DeleteAll() (int64, error)
	DeleteExpired(before int64) (int64, error)
}

// SQLStore keeps entries in the cache table of the lead database.
type SQLStore struct {
	repo CacheRepository
}

func NewSQLStore(repo CacheRepository) *SQLStore {
	return &SQLStore{repo: repo}
}

func (s *SQLStore) Put(_ context.Context, key, value string, createdAt time.Time) error {
	return s.repo.Put(&entity.CacheEntry{
		Key:       key,
		Value:     value,
		CreatedAt: createdAt.UTC().UnixMilli(),
	})
}

func (s *SQLStore) Fetch(_ context.Context, key string, notBefore time.Time) (string, bool, error) {
	entry, err := s.repo.FindFresh(key, notBefore.UTC().UnixMilli())
	if err != nil || entry == nil {
		return "", false, err
	}
	return entry.Value, true, nil
}

func (s *SQLStore) Delete(_ context.Context, key string) (bool, error) {
	return s.repo.Delete(key)
}

func (s *SQLStore) DeleteAll(_ context.Context) (int64, error) {
	return s.repo.DeleteAll()
}

func (s *SQLStore) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	return s.repo.DeleteExpired(before.UTC().UnixMilli())
}
