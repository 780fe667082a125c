package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"leadfinder/cmd/internal/domain/entity"
	"leadfinder/cmd/internal/domain/leads"
	"leadfinder/cmd/internal/domain/scoring"
	"leadfinder/cmd/internal/infrastructure/cache"
	"leadfinder/cmd/internal/infrastructure/scraper"
	"leadfinder/cmd/internal/logging"
)

const (
	SourceAll         = "all"
	SourceYellowPages = "yellowpages"
	SourceGoogleMaps  = "googlemaps"
)

// Sources lists the scraper names accepted by Find, in the order they run.
var Sources = []string{SourceYellowPages, SourceGoogleMaps}

type Scraper interface {
	Name() string
	Profile() scoring.Profile
	Search(ctx context.Context, q scraper.Query) ([]leads.Raw, error)
	Details(ctx context.Context, lead leads.Raw) (leads.Raw, error)
	Close() error
}

// ScraperFactory opens the scraper registered under source.
type ScraperFactory func(ctx context.Context, source string) (Scraper, error)

type FindRequest struct {
	Location leads.Location
	Category string
	Source   string
	Count    int
	Details  bool
}

// SourceNames expands a --source value into scraper names.
func SourceNames(source string) ([]string, error) {
	switch s := strings.ToLower(strings.TrimSpace(source)); s {
	case "", SourceAll:
		return Sources, nil
	case SourceYellowPages, SourceGoogleMaps:
		return []string{s}, nil
	default:
		return nil, fmt.Errorf("unknown source %q, expected one of all, %s", source, strings.Join(Sources, ", "))
	}
}

type FinderService struct {
	Leads     *DefaultLeadService
	AI        *AIService
	Cache     *cache.Cache
	Pacer     Waiter
	Open      ScraperFactory
	BatchSize int
	Logger    logging.Logger
}

func NewFinderService(
	leadService *DefaultLeadService,
	ai *AIService,
	c *cache.Cache,
	pacer Waiter,
	open ScraperFactory,
	batchSize int,
	logger logging.Logger,
) *FinderService {
	return &FinderService{
		Leads:     leadService,
		AI:        ai,
		Cache:     c,
		Pacer:     pacer,
		Open:      open,
		BatchSize: batchSize,
		Logger:    logger,
	}
}

// Find runs every requested scraper and returns the stored leads sorted by
// score, best first. A scraper that fails to start is skipped and its error
// is joined into the returned one.
func (f *FinderService) Find(ctx context.Context, req FindRequest) ([]*entity.Company, error) {
	names, err := SourceNames(req.Source)
	if err != nil {
		return nil, err
	}

	var (
		all  []*entity.Company
		errs []error
	)
	for _, name := range names {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}

		s, err := f.Open(ctx, name)
		if err != nil {
			f.Logger.Errorf("failed to start %s scraper: %v", name, err)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}

		companies, err := f.FindWith(ctx, s, req)
		if cerr := s.Close(); cerr != nil {
			f.Logger.Warnf("failed to close %s scraper: %v", name, cerr)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
		all = append(all, companies...)
	}

	SortByScore(all)
	return all, errors.Join(errs...)
}

// FindWith runs the pipeline for one scraper: search, optional details,
// normalize, score, store, record the search and optionally analyze.
func (f *FinderService) FindWith(ctx context.Context, s Scraper, req FindRequest) ([]*entity.Company, error) {
	raws, searchErr := s.Search(ctx, scraper.Query{
		Location:   req.Location,
		Category:   req.Category,
		MaxResults: req.Count,
	})
	if searchErr != nil {
		f.Logger.Errorf("Error scraping %s: %v", s.Name(), searchErr)
	}

	if req.Details && len(raws) > 0 {
		raws = f.details(ctx, s, raws)
	}

	now := f.Leads.Now()
	profile := s.Profile()
	companies := make([]*entity.Company, 0, len(raws))
	for _, raw := range raws {
		company := leads.Normalize(raw, req.Location, now)
		company.LeadScore = scoring.Score(&company, profile, now)
		companies = append(companies, f.Leads.Store(&company))
	}

	f.Leads.RecordSearch(s.Name(), searchTerm(req.Category, req.Location), req.Location, len(companies))

	if req.Details && f.AI != nil && f.AI.Enabled() && len(companies) > 0 {
		analyzed, err := f.AI.AnalyzeBatch(ctx, companies, profile)
		if err != nil {
			f.Logger.Errorf("AI analysis stopped early: %v", err)
		}
		companies = analyzed
	}
	return companies, searchErr
}

// details fetches the detail page of every lead, consulting the cache
// first. A lead whose details cannot be fetched is kept as found.
func (f *FinderService) details(ctx context.Context, s Scraper, raws []leads.Raw) []leads.Raw {
	out := make([]leads.Raw, 0, len(raws))
	for i, raw := range raws {
		if i > 0 {
			if err := f.Pacer.Wait(ctx); err != nil {
				return append(out, raws[i:]...)
			}
		}

		key := cache.Key(cache.PrefixCompanyDetails, s.Name(), raw.String("name"), raw.String("city"), raw.String("state"))

		var cached leads.Raw
		if f.Cache.GetInto(ctx, key, &cached) && len(cached) > 0 {
			f.Logger.Infof("Using cached details for %s", raw.String("name"))
			out = append(out, merge(raw, cached))
			continue
		}

		detailed, err := s.Details(ctx, raw)
		if err != nil || detailed == nil {
			f.Logger.Errorf("Error getting details for %s: %v", raw.String("name"), err)
			out = append(out, raw)
			continue
		}

		f.Cache.Set(ctx, key, detailed)
		out = append(out, detailed)

		if f.BatchSize > 0 && i > 0 && i%f.BatchSize == 0 {
			f.Logger.Infof("Processed %d/%d businesses", i, len(raws))
		}
	}
	return out
}

func merge(base, overlay leads.Raw) leads.Raw {
	out := make(leads.Raw, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}

// SortByScore orders companies by lead score, best first. Ties keep their order.
func SortByScore(companies []*entity.Company) {
	sort.SliceStable(companies, func(i, j int) bool {
		return companies[i].LeadScore > companies[j].LeadScore
	})
}
