package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"leadfinder/cmd/internal/domain/entity"
	"leadfinder/cmd/internal/utils"
)

const (
	KindCSV      = "csv"
	KindHubSpot  = "hubspot_csv"
	KindOutreach = "outreach_emails"

	separatorWidth = 70
)

var CSVColumns = []string{
	"name", "address", "city", "state", "zipcode", "phone", "email", "website",
	"contact_person", "contact_title", "category", "building_size", "year_built",
	"lead_score", "description", "source", "notes",
}

var HubSpotColumns = []string{
	"Company", "First Name", "Last Name", "Email", "Phone",
	"Address", "City", "State/Region", "Postal Code",
	"Website", "Industry", "Lead Score", "Description", "Notes",
}

// FileName returns the timestamped file name used for an export of kind.
func FileName(kind string, now time.Time) string {
	ts := now.Format("20060102_150405")
	switch kind {
	case KindHubSpot:
		return "hubspot_export_" + ts + ".csv"
	case KindOutreach:
		return "outreach_emails_" + ts + ".txt"
	default:
		return "leads_export_" + ts + ".csv"
	}
}

func WriteCSV(w io.Writer, companies []*entity.Company) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVColumns); err != nil {
		return err
	}

	for _, c := range companies {
		row := []string{
			c.Name, c.Address, c.City, c.State, c.Zipcode, c.Phone, c.Email, c.Website,
			c.ContactPerson, c.ContactTitle, c.Category, c.BuildingSize, c.YearBuilt,
			strconv.Itoa(c.LeadScore), c.Description, c.Source, c.Notes,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteHubSpot writes the CRM import layout. The contact person is split
// into first and last name on the first space.
func WriteHubSpot(w io.Writer, companies []*entity.Company) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(HubSpotColumns); err != nil {
		return err
	}

	for _, c := range companies {
		first, last := utils.SplitContactName(c.ContactPerson)
		row := []string{
			c.Name, first, last, c.Email, c.Phone,
			c.Address, c.City, c.State, c.Zipcode,
			c.Website, c.Category, strconv.Itoa(c.LeadScore), c.Description, c.Notes,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteOutreach writes one block per email, numbered from 1.
func WriteOutreach(w io.Writer, companies []*entity.Company, emails []string) error {
	if len(companies) != len(emails) {
		return fmt.Errorf("got %d emails for %d companies", len(emails), len(companies))
	}

	separator := strings.Repeat("=", separatorWidth)
	for i, c := range companies {
		name := c.Name
		if name == "" {
			name = "Unknown Company"
		}

		_, err := fmt.Fprintf(w, "EMAIL #%d: %s\n%s\n\n%s\n\n%s\n\n", i+1, name, separator, emails[i], separator)
		if err != nil {
			return err
		}
	}
	return nil
}
