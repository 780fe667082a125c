package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"leadfinder/cmd/internal/domain/leads"
	"leadfinder/cmd/internal/domain/scoring"
	"leadfinder/cmd/internal/domain/sqlite"
	"leadfinder/cmd/internal/domain/sqlite/repository"
	"leadfinder/cmd/internal/infrastructure/cache"
	"leadfinder/cmd/internal/infrastructure/openai"
	"leadfinder/cmd/internal/infrastructure/scraper"
	"leadfinder/cmd/internal/logging"
	"leadfinder/cmd/internal/utils/validators"
)

var refTime = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

var dayton = leads.Location{City: "Dayton", State: "OH"}

type fixture struct {
	leads   *DefaultLeadService
	history *repository.DefaultHistoryRepository
	cache   *cache.Cache
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := sqlite.Init(filepath.Join(t.TempDir(), "leads.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close(db) })

	validate := validator.New()
	validators.Register(validate)

	history := repository.NewHistoryRepository(db)
	svc := NewLeadService(repository.NewCompanyRepository(db), history, validate, logging.Discard())
	svc.Now = func() time.Time { return refTime }

	c := cache.New(
		cache.NewSQLStore(repository.NewCacheRepository(db)),
		cache.Options{Enabled: true, TTL: time.Hour, Now: func() time.Time { return refTime }},
		logging.Discard(),
	)

	return &fixture{leads: svc, history: history, cache: c}
}

type noWait struct{}

func (noWait) Wait(context.Context) error { return nil }

type fakeLLM struct {
	mu        sync.Mutex
	responses []string
	err       error
	requests  []openai.ChatRequest
}

func (f *fakeLLM) Complete(_ context.Context, chat openai.ChatRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, chat)
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "", errors.New("no scripted response")
	}

	resp := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return resp, nil
}

func (f *fakeLLM) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type fakeScraper struct {
	name        string
	profile     scoring.Profile
	results     []leads.Raw
	searchErr   error
	details     map[string]leads.Raw
	detailCalls map[string]int
	closed      bool
}

func newFakeScraper(name string, profile scoring.Profile, results ...leads.Raw) *fakeScraper {
	return &fakeScraper{
		name:        name,
		profile:     profile,
		results:     results,
		details:     map[string]leads.Raw{},
		detailCalls: map[string]int{},
	}
}

func (f *fakeScraper) Name() string             { return f.name }
func (f *fakeScraper) Profile() scoring.Profile { return f.profile }
func (f *fakeScraper) Close() error             { f.closed = true; return nil }

func (f *fakeScraper) Search(_ context.Context, q scraper.Query) ([]leads.Raw, error) {
	out := make([]leads.Raw, 0, len(f.results))
	for i, r := range f.results {
		if q.MaxResults > 0 && i >= q.MaxResults {
			break
		}
		out = append(out, copyRaw(r))
	}
	return out, f.searchErr
}

func (f *fakeScraper) Details(_ context.Context, lead leads.Raw) (leads.Raw, error) {
	name := lead.String("name")
	f.detailCalls[name]++

	extra, ok := f.details[name]
	if !ok {
		return nil, errors.New("detail page did not load")
	}
	return merge(lead, extra), nil
}

func copyRaw(r leads.Raw) leads.Raw {
	out := make(leads.Raw, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

var (
	_ Scraper = (*scraper.YellowPages)(nil)
	_ Scraper = (*scraper.GoogleMaps)(nil)
)
