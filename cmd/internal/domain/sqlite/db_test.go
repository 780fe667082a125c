package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadfinder/cmd/internal/domain/entity"
)

func TestInitMigratesAndLimitsPool(t *testing.T) {
	db, err := Init(filepath.Join(t.TempDir(), "nested", "leads.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)

	for _, table := range []any{&entity.Company{}, &entity.CacheEntry{}, &entity.SearchHistory{}, &entity.ExportRecord{}} {
		assert.True(t, db.Migrator().HasTable(table))
	}
}
