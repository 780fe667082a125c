package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"leadfinder/cmd/internal/contract"
	"leadfinder/cmd/internal/domain/entity"
	"leadfinder/cmd/internal/domain/leads"
	"leadfinder/cmd/internal/domain/scoring"
	"leadfinder/cmd/internal/domain/sqlite/repository"
	"leadfinder/cmd/internal/logging"
	"leadfinder/cmd/internal/utils"
	"leadfinder/cmd/internal/utils/apierror"
)

const recentSearchesLimit = 5

var ErrLeadNotFound = errors.New("lead not found")

type CompanyRepository interface {
	Insert(company *entity.Company) (int64, bool, error)
	Update(id int64, patch map[string]any) (bool, error)
	FindByID(id int64) (*entity.Company, error)
	Find(filter repository.CompanyFilter) ([]*entity.Company, error)
	Count(filter repository.CompanyFilter) (int64, error)
	Stats() (*repository.CompanyStats, error)
}

type HistoryRepository interface {
	RecordSearch(search *entity.SearchHistory) error
	RecordExport(export *entity.ExportRecord) error
	CountSearches() (int64, error)
	CountExports() (int64, error)
	RecentSearches(limit int) ([]*entity.SearchHistory, error)
}

type DefaultLeadService struct {
	Companies CompanyRepository
	History   HistoryRepository
	Validate  *validator.Validate
	Logger    logging.Logger
	Now       func() time.Time
}

func NewLeadService(
	companies CompanyRepository,
	history HistoryRepository,
	validate *validator.Validate,
	logger logging.Logger,
) *DefaultLeadService {
	return &DefaultLeadService{
		Companies: companies,
		History:   history,
		Validate:  validate,
		Logger:    logger,
		Now:       time.Now,
	}
}

// Save normalizes raw and stores it unless a lead with the same name and
// city already exists, in which case the existing ID is returned.
// Failures are logged and reported as ok == false.
func (s *DefaultLeadService) Save(raw leads.Raw, loc leads.Location) (int64, bool) {
	company := leads.Normalize(raw, loc, s.Now())
	return s.SaveCompany(&company)
}

// SaveCompany validates and stores an already normalized company.
// On success company.ID holds the stored (or pre-existing) ID.
func (s *DefaultLeadService) SaveCompany(company *entity.Company) (int64, bool) {
	id, _, ok := s.insert(company)
	return id, ok
}

// Store saves company and returns the lead as it is stored. When a lead
// with the same name and city already exists that row is returned and the
// fields of company are discarded. A company that cannot be saved is
// returned as given, without an ID.
func (s *DefaultLeadService) Store(company *entity.Company) *entity.Company {
	id, created, ok := s.insert(company)
	if !ok || created {
		return company
	}

	stored, err := s.Companies.FindByID(id)
	if err != nil || stored == nil {
		s.Logger.Errorf("failed to reload lead %d: %v", id, err)
		return company
	}
	return stored
}

func (s *DefaultLeadService) insert(company *entity.Company) (int64, bool, bool) {
	utils.Sanitize(company)
	company.LeadScore = entity.ClampScore(company.LeadScore)

	if err := s.Validate.Struct(company); err != nil {
		s.Logger.Errorf("refusing to store lead %q: %v", company.Name, err)
		return 0, false, false
	}

	id, created, err := s.Companies.Insert(company)
	if err != nil {
		s.Logger.Errorf("failed to store lead %q: %v", company.Name, err)
		return 0, false, false
	}

	if !created {
		s.Logger.Debugf("lead %q in %q already stored as %d", company.Name, company.City, id)
	}
	company.ID = id
	return id, created, true
}

// Update applies patch to the stored lead. It reports whether a row changed.
func (s *DefaultLeadService) Update(id int64, patch map[string]any) bool {
	changed, err := s.Companies.Update(id, patch)
	if err != nil {
		s.Logger.Errorf("failed to update lead %d: %v", id, err)
		return false
	}
	return changed
}

// Enrich patches the lead and refreshes its score. When external carries a
// score from the enrichment source it is blended with the recomputed
// heuristic score, otherwise the heuristic score replaces the stored one.
func (s *DefaultLeadService) Enrich(id int64, patch map[string]any, external *int, profile scoring.Profile) (*entity.Company, error) {
	if len(patch) > 0 {
		if _, err := s.Companies.Update(id, patch); err != nil {
			return nil, fmt.Errorf("patch lead %d: %w", id, err)
		}
	}

	company, err := s.Companies.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("load lead %d: %w", id, err)
	}
	if company == nil {
		return nil, ErrLeadNotFound
	}

	score := scoring.Score(company, profile, s.Now())
	if external != nil {
		score = scoring.Blend(score, *external)
	}

	if score != company.LeadScore {
		if _, err := s.Companies.Update(id, map[string]any{"lead_score": score}); err != nil {
			return nil, fmt.Errorf("rescore lead %d: %w", id, err)
		}
		company.LeadScore = score
	}
	return company, nil
}

// Rescore recomputes the score of every stored lead (or only id when
// non-zero) with profile and returns how many scores changed.
func (s *DefaultLeadService) Rescore(profile scoring.Profile, id int64) (int, error) {
	companies, err := s.Companies.Find(repository.CompanyFilter{ID: id})
	if err != nil {
		return 0, err
	}

	if id > 0 && len(companies) == 0 {
		return 0, ErrLeadNotFound
	}

	now := s.Now()
	changed := 0
	for _, c := range companies {
		score := scoring.Score(c, profile, now)
		if score == c.LeadScore {
			continue
		}

		if _, err := s.Companies.Update(c.ID, map[string]any{"lead_score": score}); err != nil {
			return changed, fmt.Errorf("rescore lead %d: %w", c.ID, err)
		}
		changed++
	}
	return changed, nil
}

func (s *DefaultLeadService) Lead(id int64) (*entity.Company, error) {
	company, err := s.Companies.FindByID(id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, ErrLeadNotFound
	}
	return company, nil
}

func (s *DefaultLeadService) List(filter repository.CompanyFilter) ([]*entity.Company, error) {
	return s.Companies.Find(filter)
}

// RecordSearch appends to the search history, logging failures.
func (s *DefaultLeadService) RecordSearch(searchType, term string, loc leads.Location, results int) {
	err := s.History.RecordSearch(&entity.SearchHistory{
		SearchType:   searchType,
		SearchTerm:   term,
		City:         loc.City,
		State:        loc.State,
		ResultsCount: results,
		SearchedAt:   s.Now().UnixMilli(),
	})
	if err != nil {
		s.Logger.Errorf("failed to record %s search: %v", searchType, err)
	}
}

type Stats struct {
	repository.CompanyStats
	SearchCount    int64
	ExportCount    int64
	RecentSearches []*entity.SearchHistory
}

func (s *DefaultLeadService) Stats() (*Stats, error) {
	companies, err := s.Companies.Stats()
	if err != nil {
		return nil, err
	}

	searches, err := s.History.CountSearches()
	if err != nil {
		return nil, err
	}

	exports, err := s.History.CountExports()
	if err != nil {
		return nil, err
	}

	recent, err := s.History.RecentSearches(recentSearchesLimit)
	if err != nil {
		return nil, err
	}

	return &Stats{
		CompanyStats:   *companies,
		SearchCount:    searches,
		ExportCount:    exports,
		RecentSearches: recent,
	}, nil
}

func (s *DefaultLeadService) GetLeads(query *contract.LeadQuery) ([]*contract.LeadResponse, apierror.ErrorResponse) {
	utils.Sanitize(query)
	if err := s.Validate.Struct(query); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	companies, err := s.List(repository.CompanyFilter{
		City:     query.City,
		State:    query.State,
		Category: query.Category,
		MinScore: query.MinScore,
		Limit:    query.Limit,
		Offset:   query.Offset,
	})
	if err != nil {
		s.Logger.Errorf("failed to list leads: %v", err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*contract.LeadResponse, len(companies))
	for i, c := range companies {
		resp[i] = toLeadResponse(c)
	}
	return resp, nil
}

func (s *DefaultLeadService) GetLead(id int64) (*contract.LeadResponse, apierror.ErrorResponse) {
	company, err := s.Lead(id)
	if errors.Is(err, ErrLeadNotFound) {
		return nil, apierror.LeadNotFoundError
	}

	if err != nil {
		s.Logger.Errorf("failed to fetch lead %d: %v", id, err)
		return nil, apierror.InternalServerError
	}
	return toLeadResponse(company), nil
}

// PatchLead updates the contact and notes fields and rescores the lead
// with the generic profile.
func (s *DefaultLeadService) PatchLead(id int64, req *contract.UpdateLeadRequest) (*contract.LeadResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := s.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	patch := toPatch(req)
	if len(patch) == 0 {
		return nil, apierror.NothingToPatchError
	}

	existing, err := s.Companies.FindByID(id)
	if err != nil {
		s.Logger.Errorf("failed to fetch lead %d: %v", id, err)
		return nil, apierror.InternalServerError
	}

	if existing == nil {
		return nil, apierror.LeadNotFoundError
	}

	company, err := s.Enrich(id, patch, nil, scoring.Generic)
	if err != nil {
		s.Logger.Errorf("failed to patch lead %d: %v", id, err)
		return nil, apierror.InternalServerError
	}
	return toLeadResponse(company), nil
}

func (s *DefaultLeadService) GetStats() (*contract.StatsResponse, apierror.ErrorResponse) {
	stats, err := s.Stats()
	if err != nil {
		s.Logger.Errorf("failed to compute stats: %v", err)
		return nil, apierror.InternalServerError
	}

	recent := make([]*contract.SearchResponse, len(stats.RecentSearches))
	for i, h := range stats.RecentSearches {
		recent[i] = &contract.SearchResponse{
			SearchType:   h.SearchType,
			SearchTerm:   h.SearchTerm,
			City:         h.City,
			State:        h.State,
			ResultsCount: h.ResultsCount,
			SearchedAt:   utils.FormatEpoch(h.SearchedAt),
		}
	}

	return &contract.StatsResponse{
		Companies:      stats.CompanyCount,
		AvgLeadScore:   stats.AvgLeadScore,
		Cities:         stats.CityCount,
		Categories:     stats.CategoryCount,
		AIAnalyzed:     stats.AIAnalyzedCount,
		Searches:       stats.SearchCount,
		Exports:        stats.ExportCount,
		RecentSearches: recent,
	}, nil
}

// RescoreLead recomputes one lead's score with the named profile.
func (s *DefaultLeadService) RescoreLead(id int64, profileName string) (*contract.LeadResponse, apierror.ErrorResponse) {
	if profileName == "" {
		profileName = scoring.Generic.Name
	}

	profile, ok := scoring.Lookup(profileName)
	if !ok {
		return nil, apierror.InvalidProfileError
	}

	company, err := s.Enrich(id, nil, nil, profile)
	if errors.Is(err, ErrLeadNotFound) {
		return nil, apierror.LeadNotFoundError
	}

	if err != nil {
		s.Logger.Errorf("failed to rescore lead %d: %v", id, err)
		return nil, apierror.InternalServerError
	}
	return toLeadResponse(company), nil
}
