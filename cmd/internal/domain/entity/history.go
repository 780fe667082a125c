package entity

// SearchHistory is an append-only log of every search performed.
type SearchHistory struct {
	ID           int64  `gorm:"primaryKey"`
	SearchType   string `gorm:"not null"`
	SearchTerm   string `gorm:"not null"`
	City         string `gorm:"not null;default:''"`
	State        string `gorm:"not null;default:''"`
	ResultsCount int    `gorm:"not null;default:0"`
	SearchedAt   int64  `gorm:"not null"`
}

func (SearchHistory) TableName() string {
	return "search_history"
}

type ExportRecord struct {
	ID          int64  `gorm:"primaryKey"`
	ExportType  string `gorm:"not null"`
	FilePath    string `gorm:"not null"`
	RecordCount int    `gorm:"not null;default:0"`
	ExportedAt  int64  `gorm:"not null"`
}

func (ExportRecord) TableName() string {
	return "exports"
}
