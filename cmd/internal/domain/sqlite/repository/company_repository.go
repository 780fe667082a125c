package repository

import (
	"errors"

	"gorm.io/gorm"
	"leadfinder/cmd/internal/domain/entity"
)

// patchableColumns are the only columns Update is allowed to touch.
var patchableColumns = map[string]bool{
	"name":           true,
	"address":        true,
	"city":           true,
	"state":          true,
	"zipcode":        true,
	"phone":          true,
	"email":          true,
	"website":        true,
	"category":       true,
	"building_size":  true,
	"year_built":     true,
	"description":    true,
	"source":         true,
	"lead_score":     true,
	"ai_analysis":    true,
	"contact_person": true,
	"contact_title":  true,
	"contact_email":  true,
	"contact_phone":  true,
	"notes":          true,
	"scraped_at":     true,
}

// CompanyFilter narrows down List and Count queries.
// Zero values disable the matching condition.
type CompanyFilter struct {
	ID       int64
	Name     string
	City     string
	State    string
	Category string
	MinScore int
	Limit    int
	Offset   int
}

type CompanyStats struct {
	CompanyCount    int64
	AvgLeadScore    float64
	CityCount       int64
	CategoryCount   int64
	AIAnalyzedCount int64
}

type DefaultCompanyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) *DefaultCompanyRepository {
	return &DefaultCompanyRepository{db: db}
}

// Insert stores the company unless another one with the exact same
// (name, city) pair already exists. It returns the ID of the stored row
// and whether a new row was created.
func (r *DefaultCompanyRepository) Insert(company *entity.Company) (int64, bool, error) {
	var id int64
	var created bool

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing entity.Company
		err := tx.Select("id").
			Where("name = ? AND city = ?", company.Name, company.City).
			First(&existing).Error

		if err == nil {
			id = existing.ID
			return nil
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err = tx.Create(company).Error; err != nil {
			return err
		}
		id = company.ID
		created = true
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	return id, created, nil
}

// Update applies patch to the company with the given ID. Unknown columns
// are ignored. It reports whether a row was changed.
func (r *DefaultCompanyRepository) Update(id int64, patch map[string]any) (bool, error) {
	clean := make(map[string]any, len(patch))
	for col, val := range patch {
		if patchableColumns[col] {
			clean[col] = val
		}
	}

	if len(clean) == 0 {
		return false, nil
	}

	res := r.db.Model(&entity.Company{}).
		Where("id = ?", id).
		Updates(clean)

	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *DefaultCompanyRepository) FindByID(id int64) (*entity.Company, error) {
	var company entity.Company
	err := r.db.First(&company, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *DefaultCompanyRepository) FindByNameCity(name, city string) (*entity.Company, error) {
	var company entity.Company
	err := r.db.
		Where("name = ? AND city = ?", name, city).
		First(&company).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}
	return &company, nil
}

// Find returns the companies matching filter, best leads first.
func (r *DefaultCompanyRepository) Find(filter CompanyFilter) ([]*entity.Company, error) {
	var companies []*entity.Company
	query := applyFilter(r.db.Model(&entity.Company{}), filter).
		Order("lead_score DESC").
		Order("scraped_at DESC")

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	if err := query.Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}

func (r *DefaultCompanyRepository) Count(filter CompanyFilter) (int64, error) {
	var count int64
	err := applyFilter(r.db.Model(&entity.Company{}), filter).
		Count(&count).Error
	return count, err
}

func (r *DefaultCompanyRepository) Stats() (*CompanyStats, error) {
	var stats CompanyStats
	model := func() *gorm.DB { return r.db.Model(&entity.Company{}) }

	if err := model().Count(&stats.CompanyCount).Error; err != nil {
		return nil, err
	}

	if err := model().Select("COALESCE(AVG(lead_score), 0)").Scan(&stats.AvgLeadScore).Error; err != nil {
		return nil, err
	}

	if err := model().Where("city <> ''").Distinct("city").Count(&stats.CityCount).Error; err != nil {
		return nil, err
	}

	if err := model().Where("category <> ''").Distinct("category").Count(&stats.CategoryCount).Error; err != nil {
		return nil, err
	}

	if err := model().Where("ai_analysis <> ''").Count(&stats.AIAnalyzedCount).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

func applyFilter(query *gorm.DB, f CompanyFilter) *gorm.DB {
	if f.ID > 0 {
		query = query.Where("id = ?", f.ID)
	}
	if f.Name != "" {
		query = query.Where("name LIKE ?", "%"+f.Name+"%")
	}
	if f.City != "" {
		query = query.Where("city LIKE ?", "%"+f.City+"%")
	}
	if f.State != "" {
		query = query.Where("state = ?", f.State)
	}
	if f.Category != "" {
		query = query.Where("category LIKE ?", "%"+f.Category+"%")
	}
	if f.MinScore > 0 {
		query = query.Where("lead_score >= ?", f.MinScore)
	}
	return query
}
