package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadfinder/cmd/internal/domain/entity"
)

func sample() []*entity.Company {
	return []*entity.Company{
		{
			Name:          "Acme Factory",
			Address:       "1 Main St",
			City:          "Dayton",
			State:         "OH",
			Zipcode:       "45402",
			Phone:         "555-0100",
			Website:       "https://acme.example",
			Category:      "Manufacturing, Industrial",
			LeadScore:     92,
			Description:   "Makes widgets, \"lots\" of them",
			ContactPerson: "Jane Q Doe",
			ContactTitle:  "Facility Manager",
			Source:        "YellowPages",
		},
		{Name: "Solo", City: "Kettering", State: "OH", LeadScore: 50, ContactPerson: "Prince"},
	}
}

func TestFileName(t *testing.T) {
	now := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	assert.Equal(t, "leads_export_20240309_140507.csv", FileName(KindCSV, now))
	assert.Equal(t, "hubspot_export_20240309_140507.csv", FileName(KindHubSpot, now))
	assert.Equal(t, "outreach_emails_20240309_140507.txt", FileName(KindOutreach, now))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sample()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, CSVColumns, rows[0])
	assert.Equal(t, "Acme Factory", rows[1][0])
	assert.Equal(t, "Jane Q Doe", rows[1][8])
	assert.Equal(t, "92", rows[1][13])
	assert.Equal(t, "Makes widgets, \"lots\" of them", rows[1][14])
	assert.Equal(t, "", rows[2][1])
}

func TestWriteHubSpot(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHubSpot(&buf, sample()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, HubSpotColumns, rows[0])
	assert.Equal(t, []string{
		"Acme Factory", "Jane", "Q Doe", "", "555-0100",
		"1 Main St", "Dayton", "OH", "45402",
		"https://acme.example", "Manufacturing, Industrial", "92", "Makes widgets, \"lots\" of them", "",
	}, rows[1])
	assert.Equal(t, "Prince", rows[2][1])
	assert.Equal(t, "", rows[2][2])
}

func TestWriteOutreach(t *testing.T) {
	var buf bytes.Buffer
	companies := sample()
	companies[1].Name = ""

	require.NoError(t, WriteOutreach(&buf, companies, []string{"Subject: Hi\n\nHello", "Subject: Yo"}))

	out := buf.String()
	sep := strings.Repeat("=", 70)
	assert.True(t, strings.HasPrefix(out, "EMAIL #1: Acme Factory\n"+sep+"\n\nSubject: Hi\n\nHello\n\n"+sep+"\n\n"))
	assert.Contains(t, out, "EMAIL #2: Unknown Company\n")
	assert.Equal(t, 4, strings.Count(out, sep))

	assert.Error(t, WriteOutreach(&buf, companies, []string{"only one"}))
}
