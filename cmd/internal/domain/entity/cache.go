package entity

// CacheEntry is a serialized value kept in the cache table.
//
// An entry is only valid while now < CreatedAt + TTL, the TTL being
// configured process-wide rather than per entry.
type CacheEntry struct {
	Key       string `gorm:"primaryKey;autoIncrement:false"`
	Value     string `gorm:"not null"`
	CreatedAt int64  `gorm:"not null;index;autoCreateTime:false"`
}

func (CacheEntry) TableName() string {
	return "cache"
}
