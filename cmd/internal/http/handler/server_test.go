package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadfinder/cmd/internal/contract"
	"leadfinder/cmd/internal/domain/leads"
	"leadfinder/cmd/internal/domain/sqlite"
	"leadfinder/cmd/internal/domain/sqlite/repository"
	"leadfinder/cmd/internal/infrastructure/cache"
	"leadfinder/cmd/internal/logging"
	"leadfinder/cmd/internal/service"
	"leadfinder/cmd/internal/utils/validators"
)

var dayton = leads.Location{City: "Dayton", State: "OH"}

type testServer struct {
	e     *echo.Echo
	leads *service.DefaultLeadService
	cache *cache.Cache
}

func newTestServer(t *testing.T, cacheEnabled bool) *testServer {
	t.Helper()

	db, err := sqlite.Init(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close(db) })

	validate := validator.New()
	validators.Register(validate)

	leadService := service.NewLeadService(
		repository.NewCompanyRepository(db),
		repository.NewHistoryRepository(db),
		validate,
		logging.Discard(),
	)
	leadService.Now = func() time.Time { return time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC) }

	c := cache.New(cache.NewSQLStore(repository.NewCacheRepository(db)), cache.Options{Enabled: cacheEnabled}, logging.Discard())

	return &testServer{
		e:     NewServer(leadService, service.NewCacheService(c), logging.Discard()),
		leads: leadService,
		cache: c,
	}
}

func (s *testServer) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, true)

	rec := s.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestGetLeads(t *testing.T) {
	s := newTestServer(t, true)
	_, ok := s.leads.Save(leads.Raw{"name": "Acme", "category": "Hotel", "lead_score": 80}, dayton)
	require.True(t, ok)
	_, ok = s.leads.Save(leads.Raw{"name": "Globex", "lead_score": 40}, dayton)
	require.True(t, ok)
	_, ok = s.leads.Save(leads.Raw{"name": "Initech", "lead_score": 90}, leads.Location{City: "Austin", State: "TX"})
	require.True(t, ok)

	rec := s.do(t, http.MethodGet, "/api/leads?city=dayton&min_score=50", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody[struct {
		Leads []contract.LeadResponse `json:"leads"`
		Count int                     `json:"count"`
	}](t, rec)
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "Acme", body.Leads[0].Name)
	assert.Equal(t, 80, body.Leads[0].LeadScore)

	rec = s.do(t, http.MethodGet, "/api/leads?state=Ohio", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "two letter state code")

	rec = s.do(t, http.MethodGet, "/api/leads?min_score=lots", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetLead(t *testing.T) {
	s := newTestServer(t, true)
	id, ok := s.leads.Save(leads.Raw{"name": "Acme", "website": "acme.test"}, dayton)
	require.True(t, ok)

	rec := s.do(t, http.MethodGet, "/api/leads/"+itoa(id), "")
	require.Equal(t, http.StatusOK, rec.Code)
	lead := decodeBody[contract.LeadResponse](t, rec)
	assert.Equal(t, "acme.test", lead.Website)
	assert.Equal(t, "2024-06-01T00:00:00Z", lead.ScrapedAt)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/leads/999", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/leads/abc", "").Code)
}

func TestPatchLead(t *testing.T) {
	s := newTestServer(t, true)
	id, ok := s.leads.Save(leads.Raw{"name": "Acme", "website": "acme.test"}, dayton)
	require.True(t, ok)

	rec := s.do(t, http.MethodPatch, "/api/leads/"+itoa(id), `{"contact_person": "Jane Doe", "notes": "call back"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	lead := decodeBody[contract.LeadResponse](t, rec)
	assert.Equal(t, "Jane Doe", lead.ContactPerson)
	assert.Equal(t, "call back", lead.Notes)
	assert.Equal(t, 70, lead.LeadScore)

	rec = s.do(t, http.MethodPatch, "/api/leads/"+itoa(id), `{"contact_email": "not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "contactemail")

	rec = s.do(t, http.MethodPatch, "/api/leads/"+itoa(id), `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPatch, "/api/leads/999", `{"notes": "x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRescoreLead(t *testing.T) {
	s := newTestServer(t, true)
	id, ok := s.leads.Save(leads.Raw{"name": "Acme", "address": "1 Main St", "website": "acme.test"}, dayton)
	require.True(t, ok)

	rec := s.do(t, http.MethodPost, "/api/leads/"+itoa(id)+"/rescore?profile=maps", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 70, decodeBody[contract.LeadResponse](t, rec).LeadScore)

	rec = s.do(t, http.MethodPost, "/api/leads/"+itoa(id)+"/rescore?profile=astrology", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/leads/999/rescore", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetStats(t *testing.T) {
	s := newTestServer(t, true)
	_, _ = s.leads.Save(leads.Raw{"name": "Acme", "category": "Hotel", "lead_score": 80}, dayton)
	_, _ = s.leads.Save(leads.Raw{"name": "Globex", "category": "Retail", "lead_score": 60}, dayton)
	s.leads.RecordSearch("yellowpages", "all in Dayton, OH", dayton, 2)

	rec := s.do(t, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)

	stats := decodeBody[contract.StatsResponse](t, rec)
	assert.EqualValues(t, 2, stats.Companies)
	assert.InDelta(t, 70.0, stats.AvgLeadScore, 0.001)
	assert.EqualValues(t, 1, stats.Cities)
	assert.EqualValues(t, 2, stats.Categories)
	assert.EqualValues(t, 1, stats.Searches)
	require.Len(t, stats.RecentSearches, 1)
	assert.Equal(t, "yellowpages", stats.RecentSearches[0].SearchType)
}

func TestClearCache(t *testing.T) {
	s := newTestServer(t, true)
	ctx := t.Context()
	require.True(t, s.cache.Set(ctx, "lead_sources_Dayton_OH", "Chamber"))
	require.True(t, s.cache.Set(ctx, "market_analysis_Dayton_OH", "Growing"))

	rec := s.do(t, http.MethodDelete, "/api/cache/lead_sources_Dayton_OH", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[contract.CacheClearResponse](t, rec)
	assert.True(t, resp.Cleared)
	assert.Equal(t, "lead_sources_Dayton_OH", resp.Key)

	_, ok := s.cache.Get(ctx, "lead_sources_Dayton_OH")
	assert.False(t, ok)
	_, ok = s.cache.Get(ctx, "market_analysis_Dayton_OH")
	assert.True(t, ok)

	rec = s.do(t, http.MethodDelete, "/api/cache", "")
	require.Equal(t, http.StatusOK, rec.Code)
	_, ok = s.cache.Get(ctx, "market_analysis_Dayton_OH")
	assert.False(t, ok)
}

func TestClearCacheKeyWithSlash(t *testing.T) {
	s := newTestServer(t, true)
	ctx := t.Context()
	const first = "ai_analysis_7_A/B Corp_Dayton"
	const second = "company_research_A/B Corp_Dayton_OH"
	require.True(t, s.cache.Set(ctx, first, "Score: 80"))
	require.True(t, s.cache.Set(ctx, second, "{}"))

	rec := s.do(t, http.MethodDelete, "/api/cache/ai_analysis_7_A/B%20Corp_Dayton", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, first, decodeBody[contract.CacheClearResponse](t, rec).Key)

	_, ok := s.cache.Get(ctx, first)
	assert.False(t, ok)
	_, ok = s.cache.Get(ctx, second)
	assert.True(t, ok)

	rec = s.do(t, http.MethodDelete, "/api/cache?key="+url.QueryEscape(second), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, second, decodeBody[contract.CacheClearResponse](t, rec).Key)

	_, ok = s.cache.Get(ctx, second)
	assert.False(t, ok)
}

func TestClearCacheDisabled(t *testing.T) {
	s := newTestServer(t, false)

	rec := s.do(t, http.MethodDelete, "/api/cache", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
