package repository

import (
	"gorm.io/gorm"
	"leadfinder/cmd/internal/domain/entity"
)

type DefaultHistoryRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) *DefaultHistoryRepository {
	return &DefaultHistoryRepository{db: db}
}

func (r *DefaultHistoryRepository) RecordSearch(search *entity.SearchHistory) error {
	return r.db.Create(search).Error
}

func (r *DefaultHistoryRepository) RecordExport(export *entity.ExportRecord) error {
	return r.db.Create(export).Error
}

func (r *DefaultHistoryRepository) CountSearches() (int64, error) {
	var count int64
	err := r.db.Model(&entity.SearchHistory{}).Count(&count).Error
	return count, err
}

func (r *DefaultHistoryRepository) CountExports() (int64, error) {
	var count int64
	err := r.db.Model(&entity.ExportRecord{}).Count(&count).Error
	return count, err
}

// RecentSearches returns the latest searches, newest first.
func (r *DefaultHistoryRepository) RecentSearches(limit int) ([]*entity.SearchHistory, error) {
	var searches []*entity.SearchHistory
	err := r.db.
		Order("searched_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&searches).Error
	if err != nil {
		return nil, err
	}
	return searches, nil
}
