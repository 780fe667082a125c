package entity

const (
	MinLeadScore     = 0
	MaxLeadScore     = 100
	DefaultLeadScore = 50
)

// Company is a business lead scraped from a directory or proposed by the AI.
//
// Every optional attribute is stored as an empty string rather than NULL,
// so the rest of the code never needs to care about absent values.
type Company struct {
	ID            int64  `gorm:"primaryKey"`
	Name          string `gorm:"not null;index:idx_companies_name_city" validate:"required,max=255"`
	Address       string `gorm:"not null;default:''"`
	City          string `gorm:"not null;default:'';index:idx_companies_name_city"`
	State         string `gorm:"not null" validate:"required,max=64"`
	Zipcode       string `gorm:"not null;default:''"`
	Phone         string `gorm:"not null;default:''"`
	Email         string `gorm:"not null;default:''"`
	Website       string `gorm:"not null;default:''"`
	Category      string `gorm:"not null;default:''"`
	BuildingSize  string `gorm:"not null;default:''"`
	YearBuilt     string `gorm:"not null;default:''"`
	Description   string `gorm:"not null;default:''"`
	Source        string `gorm:"not null;default:''"`
	LeadScore     int    `gorm:"not null;default:0;index" validate:"gte=0,lte=100"`
	AIAnalysis    string `gorm:"column:ai_analysis;not null;default:''"`
	ContactPerson string `gorm:"not null;default:''"`
	ContactTitle  string `gorm:"not null;default:''"`
	ContactEmail  string `gorm:"not null;default:''"`
	ContactPhone  string `gorm:"not null;default:''"`
	Notes         string `gorm:"not null;default:''"`
	ScrapedAt     int64  `gorm:"not null"`
}

func (Company) TableName() string {
	return "companies"
}

// ClampScore forces a score into the [MinLeadScore, MaxLeadScore] range.
func ClampScore(score int) int {
	if score < MinLeadScore {
		return MinLeadScore
	}
	if score > MaxLeadScore {
		return MaxLeadScore
	}
	return score
}
