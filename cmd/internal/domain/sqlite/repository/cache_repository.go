package repository

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"leadfinder/cmd/internal/domain/entity"
)

type DefaultCacheRepository struct {
	db *gorm.DB
}

func NewCacheRepository(db *gorm.DB) *DefaultCacheRepository {
	return &DefaultCacheRepository{db: db}
}

// Put inserts or replaces the entry stored under entry.Key.
func (r *DefaultCacheRepository) Put(entry *entity.CacheEntry) error {
	return r.db.
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(entry).Error
}

// FindFresh returns the entry under key if it was created after the
// given cutoff (epoch millis), nil otherwise.
func (r *DefaultCacheRepository) FindFresh(key string, after int64) (*entity.CacheEntry, error) {
	var entry entity.CacheEntry
	err := r.db.
		Where("key = ? AND created_at > ?", key, after).
		First(&entry).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *DefaultCacheRepository) Delete(key string) (bool, error) {
	res := r.db.
		Where("key = ?", key).
		Delete(&entity.CacheEntry{})
	return res.RowsAffected > 0, res.Error
}

func (r *DefaultCacheRepository) DeleteAll() (int64, error) {
	res := r.db.
		Where("1 = 1").
		Delete(&entity.CacheEntry{})
	return res.RowsAffected, res.Error
}

func (r *DefaultCacheRepository) DeleteExpired(before int64) (int64, error) {
	res := r.db.
		Where("created_at <= ?", before).
		Delete(&entity.CacheEntry{})
	return res.RowsAffected, res.Error
}
