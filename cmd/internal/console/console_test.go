package console

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadfinder/cmd/internal/domain/entity"
	"leadfinder/cmd/internal/domain/sqlite/repository"
	"leadfinder/cmd/internal/service"
)

var refTime = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

func newTestConsole() (*Console, *bytes.Buffer) {
	var buf bytes.Buffer
	c := New(&buf)
	c.Now = func() time.Time { return refTime }
	return c, &buf
}

func TestLeads_Table(t *testing.T) {
	c, buf := newTestConsole()
	companies := []*entity.Company{
		{ID: 1, Name: "Acme", City: "Dayton", State: "OH", Category: "Commercial Real Estate Development & Management", LeadScore: 80, AIAnalysis: "good"},
		{ID: 12, Name: "Globex Corporation", City: "Dayton", State: "OH", Phone: "555-0100", LeadScore: 55},
	}

	c.Leads("Companies (Total: 2)", companies, ListColumns)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Companies (Total: 2)", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "ID  Name"))
	assert.Contains(t, lines[1], "Lead Score")
	assert.Contains(t, lines[1], "AI Analysis")
	assert.Contains(t, lines[2], "Commercial Real Estate Deve...")
	assert.Contains(t, lines[2], "✓")
	assert.Contains(t, lines[3], "Globex Corporation")

	// columns are aligned
	assert.Equal(t, strings.Index(lines[1], "Name"), strings.Index(lines[2], "Acme"))
	assert.Equal(t, strings.Index(lines[1], "Name"), strings.Index(lines[3], "Globex"))
}

func TestLeads_Empty(t *testing.T) {
	c, buf := newTestConsole()
	c.Leads("Nothing", nil, TopColumns)
	assert.Equal(t, "No data available.\n", buf.String())
}

func TestColumnTitle(t *testing.T) {
	assert.Equal(t, "ID", columnTitle(ColID))
	assert.Equal(t, "Contact Person", columnTitle(ColContactPerson))
	assert.Equal(t, "AI Analysis", columnTitle(ColAIAnalysis))
}

func TestDashboard(t *testing.T) {
	c, buf := newTestConsole()
	stats := &service.Stats{
		CompanyStats: repository.CompanyStats{
			CompanyCount:    1234,
			AvgLeadScore:    67.25,
			CityCount:       3,
			AIAnalyzedCount: 10,
		},
		SearchCount: 7,
		ExportCount: 2,
		RecentSearches: []*entity.SearchHistory{
			{SearchType: "AI", SearchTerm: "all in Dayton, OH", ResultsCount: 8, SearchedAt: refTime.Add(-2 * time.Hour).UnixMilli()},
		},
	}

	c.Dashboard(stats, false)

	out := buf.String()
	assert.Contains(t, out, "LeadFinder Dashboard")
	assert.Contains(t, out, "1,234 companies")
	assert.Contains(t, out, "67.2/100")
	assert.Contains(t, out, "AI Assistant:       Disabled")
	assert.Contains(t, out, "2 hours ago")
}

func TestLead_Detail(t *testing.T) {
	c, buf := newTestConsole()
	c.Lead(&entity.Company{
		ID:           4,
		Name:         "Acme",
		City:         "Dayton",
		State:        "OH",
		ContactTitle: "Owner",
		LeadScore:    72,
		AIAnalysis:   "Old lighting",
		ScrapedAt:    refTime.Add(-48 * time.Hour).UnixMilli(),
	})

	out := buf.String()
	assert.Contains(t, out, "Company #4")
	assert.Contains(t, out, "Address: Unknown, Dayton, OH")
	assert.Contains(t, out, "Contact: Unknown, Owner")
	assert.Contains(t, out, "Lead Score: 72/100")
	assert.Contains(t, out, "No description available.")
	assert.Contains(t, out, "AI Analysis:\nOld lighting")
	assert.Contains(t, out, "2 days ago")
}

func TestMessages(t *testing.T) {
	c, buf := newTestConsole()
	c.Success("Found %d leads", 3)
	c.Failure("Failed to export companies")
	c.Warn("careful")
	c.Error(errors.New("boom"))

	assert.Equal(t, "✓ Found 3 leads\n✗ Failed to export companies\ncareful\nError: boom\n", buf.String())
}

func TestEmails(t *testing.T) {
	c, buf := newTestConsole()
	c.Emails([]*entity.Company{{Name: "Acme"}, {Name: "Globex"}}, []string{"Subject: A", "Subject: B"})

	out := buf.String()
	assert.Contains(t, out, "Outreach Email for Acme")
	assert.Contains(t, out, "Outreach Email for Globex")
	assert.Less(t, strings.Index(out, "Subject: A"), strings.Index(out, "Subject: B"))
}
