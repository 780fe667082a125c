package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadfinder/cmd/internal/contract"
	"leadfinder/cmd/internal/domain/entity"
	"leadfinder/cmd/internal/domain/leads"
	"leadfinder/cmd/internal/domain/scoring"
	"leadfinder/cmd/internal/utils/apierror"
)

func ptr(s string) *string { return &s }

func TestLeadService_SaveDedups(t *testing.T) {
	f := newFixture(t)

	id1, ok := f.leads.Save(leads.Raw{"name": "Acme", "phone": "555-0100"}, dayton)
	require.True(t, ok)
	require.NotZero(t, id1)

	id2, ok := f.leads.Save(leads.Raw{"name": "Acme", "phone": "555-0199", "city": "Dayton"}, dayton)
	require.True(t, ok)
	assert.Equal(t, id1, id2)

	stored, err := f.leads.Lead(id1)
	require.NoError(t, err)
	assert.Equal(t, "555-0100", stored.Phone)
	assert.Equal(t, "OH", stored.State)
	assert.Equal(t, refTime.UnixMilli(), stored.ScrapedAt)
}

func TestLeadService_SaveRejectsInvalidRecords(t *testing.T) {
	f := newFixture(t)

	_, ok := f.leads.Save(leads.Raw{"city": "Dayton"}, leads.Location{})
	assert.False(t, ok, "missing name and state")

	_, ok = f.leads.Save(leads.Raw{"name": "   "}, dayton)
	assert.False(t, ok, "blank name after trimming")

	company := &entity.Company{Name: "Acme", City: "Dayton", State: "OH", LeadScore: 250}
	id, ok := f.leads.SaveCompany(company)
	require.True(t, ok)
	assert.Equal(t, id, company.ID)
	assert.Equal(t, 100, company.LeadScore, "score is clamped before storing")
}

func TestLeadService_Enrich(t *testing.T) {
	f := newFixture(t)

	id, ok := f.leads.Save(leads.Raw{"name": "Acme", "website": "acme.test", "lead_score": 60}, dayton)
	require.True(t, ok)

	ext := 80
	company, err := f.leads.Enrich(id, map[string]any{"ai_analysis": "Great fit"}, &ext, scoring.Generic)
	require.NoError(t, err)
	assert.Equal(t, 70, company.LeadScore)
	assert.Equal(t, "Great fit", company.AIAnalysis)

	stored, err := f.leads.Lead(id)
	require.NoError(t, err)
	assert.Equal(t, 70, stored.LeadScore)

	company, err = f.leads.Enrich(id, nil, nil, scoring.Generic)
	require.NoError(t, err)
	assert.Equal(t, 60, company.LeadScore, "without an external score the heuristic wins")

	_, err = f.leads.Enrich(9999, nil, nil, scoring.Generic)
	assert.ErrorIs(t, err, ErrLeadNotFound)
}

func TestLeadService_Rescore(t *testing.T) {
	f := newFixture(t)

	acme := &entity.Company{
		Name:         "Acme Factory",
		City:         "Dayton",
		State:        "OH",
		BuildingSize: "large",
		YearBuilt:    "1985",
		Category:     "manufacturing",
		Website:      "acme.test",
		LeadScore:    10,
	}
	_, ok := f.leads.SaveCompany(acme)
	require.True(t, ok)

	plain := &entity.Company{Name: "Plain", City: "Dayton", State: "OH", LeadScore: 50}
	_, ok = f.leads.SaveCompany(plain)
	require.True(t, ok)

	changed, err := f.leads.Rescore(scoring.Maps, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	stored, err := f.leads.Lead(acme.ID)
	require.NoError(t, err)
	assert.Equal(t, 70, stored.LeadScore)

	changed, err = f.leads.Rescore(scoring.Generic, acme.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	_, err = f.leads.Rescore(scoring.Generic, 9999)
	assert.ErrorIs(t, err, ErrLeadNotFound)
}

func TestLeadService_PatchLead(t *testing.T) {
	f := newFixture(t)

	id, ok := f.leads.Save(leads.Raw{"name": "Acme"}, dayton)
	require.True(t, ok)

	resp, apierr := f.leads.PatchLead(id, &contract.UpdateLeadRequest{
		ContactPerson: ptr(" Jane Doe "),
		Phone:         ptr("555-0100"),
	})
	require.Nil(t, apierr)
	assert.Equal(t, "Jane Doe", resp.ContactPerson)
	assert.Equal(t, 65, resp.LeadScore)

	_, apierr = f.leads.PatchLead(id, &contract.UpdateLeadRequest{})
	assert.Equal(t, apierror.NothingToPatchError, apierr)

	_, apierr = f.leads.PatchLead(9999, &contract.UpdateLeadRequest{Notes: ptr("call back")})
	assert.Equal(t, apierror.LeadNotFoundError, apierr)

	_, apierr = f.leads.PatchLead(id, &contract.UpdateLeadRequest{ContactEmail: ptr("not-an-email")})
	require.NotNil(t, apierr)
	assert.Equal(t, 400, apierr.Code())
}

func TestLeadService_GetLeads(t *testing.T) {
	f := newFixture(t)

	_, ok := f.leads.Save(leads.Raw{"name": "Low", "lead_score": 40}, dayton)
	require.True(t, ok)
	_, ok = f.leads.Save(leads.Raw{"name": "High", "lead_score": 90}, dayton)
	require.True(t, ok)
	_, ok = f.leads.Save(leads.Raw{"name": "Elsewhere", "lead_score": 95}, leads.Location{City: "Austin", State: "TX"})
	require.True(t, ok)

	resp, apierr := f.leads.GetLeads(&contract.LeadQuery{State: "OH"})
	require.Nil(t, apierr)
	require.Len(t, resp, 2)
	assert.Equal(t, "High", resp[0].Name)

	resp, apierr = f.leads.GetLeads(&contract.LeadQuery{MinScore: 50, Limit: 1})
	require.Nil(t, apierr)
	require.Len(t, resp, 1)
	assert.Equal(t, "Elsewhere", resp[0].Name)

	_, apierr = f.leads.GetLeads(&contract.LeadQuery{State: "Ohio"})
	require.NotNil(t, apierr)
	assert.Equal(t, 400, apierr.Code())
}

func TestLeadService_Stats(t *testing.T) {
	f := newFixture(t)

	_, ok := f.leads.Save(leads.Raw{"name": "Acme", "category": "Hotel", "lead_score": 60}, dayton)
	require.True(t, ok)
	_, ok = f.leads.Save(leads.Raw{"name": "Globex", "lead_score": 80, "ai_analysis": "retrofit"}, dayton)
	require.True(t, ok)
	f.leads.RecordSearch("YellowPages", "hotels in Dayton, OH", dayton, 2)

	stats, apierr := f.leads.GetStats()
	require.Nil(t, apierr)
	assert.EqualValues(t, 2, stats.Companies)
	assert.InDelta(t, 70.0, stats.AvgLeadScore, 0.001)
	assert.EqualValues(t, 1, stats.Cities)
	assert.EqualValues(t, 1, stats.Categories)
	assert.EqualValues(t, 1, stats.AIAnalyzed)
	assert.EqualValues(t, 1, stats.Searches)
	assert.EqualValues(t, 0, stats.Exports)
	require.Len(t, stats.RecentSearches, 1)
	assert.Equal(t, "hotels in Dayton, OH", stats.RecentSearches[0].SearchTerm)
}
