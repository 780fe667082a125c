package console

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/labstack/gommon/color"

	"leadfinder/cmd/internal/domain/entity"
	"leadfinder/cmd/internal/service"
	"leadfinder/cmd/internal/utils"
)

const (
	panelRule        = 70
	categoryMaxWidth = 30
)

// Column names a field of a lead table.
type Column string

const (
	ColID            Column = "id"
	ColName          Column = "name"
	ColCity          Column = "city"
	ColState         Column = "state"
	ColPhone         Column = "phone"
	ColCategory      Column = "category"
	ColBuildingSize  Column = "building_size"
	ColContactPerson Column = "contact_person"
	ColContactTitle  Column = "contact_title"
	ColLeadScore     Column = "lead_score"
	ColAIAnalysis    Column = "ai_analysis"
)

var (
	ListColumns = []Column{ColID, ColName, ColCity, ColState, ColCategory, ColContactPerson, ColPhone, ColLeadScore, ColAIAnalysis}
	TopColumns  = []Column{ColID, ColName, ColCity, ColState, ColPhone, ColCategory, ColLeadScore}
	AIColumns   = []Column{ColID, ColName, ColCategory, ColBuildingSize, ColContactTitle, ColLeadScore}
)

// Console renders command output. Colors are dropped automatically when
// the writer is not a terminal.
type Console struct {
	out   io.Writer
	color *color.Color
	Now   func() time.Time
}

func New(w io.Writer) *Console {
	c := color.New()
	c.SetOutput(w)
	return &Console{out: w, color: c, Now: time.Now}
}

func (c *Console) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}

func (c *Console) Info(format string, args ...any) {
	c.printf(format+"\n", args...)
}

// Step announces a long running operation.
func (c *Console) Step(format string, args ...any) {
	c.printf("%s\n", c.color.Bold(fmt.Sprintf(format, args...)))
}

func (c *Console) Success(format string, args ...any) {
	c.printf("%s %s\n", c.color.Green("✓"), fmt.Sprintf(format, args...))
}

func (c *Console) Warn(format string, args ...any) {
	c.printf("%s\n", c.color.Yellow(fmt.Sprintf(format, args...)))
}

func (c *Console) Failure(format string, args ...any) {
	c.printf("%s %s\n", c.color.Red("✗"), fmt.Sprintf(format, args...))
}

func (c *Console) Error(err error) {
	c.printf("%s %v\n", c.color.Red("Error:", color.B), err)
}

// Panel prints body under a titled rule.
func (c *Console) Panel(title, body string) {
	rule := strings.Repeat("=", panelRule)
	c.printf("%s\n%s\n%s\n%s\n%s\n", c.color.Cyan(rule), c.color.Bold(title), c.color.Cyan(rule), strings.TrimRight(body, "\n"), c.color.Cyan(rule))
}

func (c *Console) Welcome(version string, aiEnabled bool) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", c.color.Green("LeadFinder v"+version, color.B))
	b.WriteString("Lead generation for energy efficiency sales\n\n")
	fmt.Fprintf(&b, "AI Features: %s\n\n", c.enabled(aiEnabled))
	fmt.Fprintf(&b, "Type %s for available commands.", c.color.Cyan("leadfinder help"))
	c.Panel("Welcome to LeadFinder", b.String())
}

func (c *Console) Dashboard(stats *service.Stats, aiEnabled bool) {
	var b strings.Builder
	fmt.Fprintf(&b, "Lead Database:      %s companies\n", humanize.Comma(stats.CompanyCount))
	fmt.Fprintf(&b, "Cities Covered:     %s cities\n", humanize.Comma(stats.CityCount))
	fmt.Fprintf(&b, "Average Lead Score: %.1f/100\n", stats.AvgLeadScore)
	fmt.Fprintf(&b, "AI-Analyzed Leads:  %s\n\n", humanize.Comma(stats.AIAnalyzedCount))
	fmt.Fprintf(&b, "Searches Performed: %s\n", humanize.Comma(stats.SearchCount))
	fmt.Fprintf(&b, "Exports Created:    %s\n\n", humanize.Comma(stats.ExportCount))
	fmt.Fprintf(&b, "AI Assistant:       %s", c.enabled(aiEnabled))

	if len(stats.RecentSearches) > 0 {
		b.WriteString("\n\nRecent Searches:")
		now := c.Now()
		for _, s := range stats.RecentSearches {
			fmt.Fprintf(&b, "\n  %-12s %-36s %4d results  %s",
				s.SearchType, utils.Truncate(s.SearchTerm, 36), s.ResultsCount,
				humanize.RelTime(time.UnixMilli(s.SearchedAt), now, "ago", "from now"))
		}
	}
	c.Panel("LeadFinder Dashboard", b.String())
}

func (c *Console) enabled(on bool) string {
	if on {
		return c.color.Green("Enabled")
	}
	return c.color.Red("Disabled")
}

// Leads prints companies as an aligned table.
func (c *Console) Leads(title string, companies []*entity.Company, columns []Column) {
	if len(companies) == 0 {
		c.Warn("No data available.")
		return
	}

	c.printf("\n%s\n", c.color.Bold(title))

	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = columnTitle(col)
	}
	_, _ = fmt.Fprintln(tw, strings.Join(headers, "\t"))

	for _, company := range companies {
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = cell(company, col)
		}
		_, _ = fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	_ = tw.Flush()
}

func columnTitle(col Column) string {
	words := strings.Split(string(col), "_")
	for i, w := range words {
		if w == "id" || w == "ai" {
			words[i] = strings.ToUpper(w)
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func cell(company *entity.Company, col Column) string {
	switch col {
	case ColID:
		return strconv.FormatInt(company.ID, 10)
	case ColName:
		return company.Name
	case ColCity:
		return company.City
	case ColState:
		return company.State
	case ColPhone:
		return company.Phone
	case ColCategory:
		if len([]rune(company.Category)) > categoryMaxWidth {
			return utils.Truncate(company.Category, categoryMaxWidth-3) + "..."
		}
		return company.Category
	case ColBuildingSize:
		return company.BuildingSize
	case ColContactPerson:
		return company.ContactPerson
	case ColContactTitle:
		return company.ContactTitle
	case ColLeadScore:
		return strconv.Itoa(company.LeadScore)
	case ColAIAnalysis:
		if company.AIAnalysis != "" {
			return "✓"
		}
		return ""
	default:
		return ""
	}
}

// Lead prints every field of one company.
func (c *Console) Lead(company *entity.Company) {
	or := func(s, fallback string) string {
		if s == "" {
			return fallback
		}
		return s
	}

	contact := or(company.ContactPerson, "Unknown")
	if company.ContactTitle != "" {
		contact += ", " + company.ContactTitle
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", c.color.Bold(or(company.Name, "Unknown")))
	fmt.Fprintf(&b, "Address: %s, %s, %s %s\n", or(company.Address, "Unknown"), company.City, company.State, company.Zipcode)
	fmt.Fprintf(&b, "Contact: %s\n", contact)
	fmt.Fprintf(&b, "Phone:   %s\n", or(company.Phone, "Unknown"))
	fmt.Fprintf(&b, "Email:   %s\n", or(company.Email, "Unknown"))
	fmt.Fprintf(&b, "Website: %s\n\n", or(company.Website, "Unknown"))
	fmt.Fprintf(&b, "Category:               %s\n", or(company.Category, "Unknown"))
	fmt.Fprintf(&b, "Building Size:          %s\n", or(company.BuildingSize, "Unknown"))
	fmt.Fprintf(&b, "Year Built/Established: %s\n\n", or(company.YearBuilt, "Unknown"))
	fmt.Fprintf(&b, "Description: %s\n\n", or(company.Description, "No description available."))
	fmt.Fprintf(&b, "Lead Score: %s\n", c.color.Cyan(fmt.Sprintf("%d/100", company.LeadScore)))
	fmt.Fprintf(&b, "Source:     %s\n", or(company.Source, "Unknown"))
	fmt.Fprintf(&b, "Scraped At: %s (%s)", utils.FormatEpoch(company.ScrapedAt),
		humanize.RelTime(time.UnixMilli(company.ScrapedAt), c.Now(), "ago", "from now"))

	if company.Notes != "" {
		fmt.Fprintf(&b, "\n\nNotes: %s", company.Notes)
	}
	if company.AIAnalysis != "" {
		fmt.Fprintf(&b, "\n\nAI Analysis:\n%s", company.AIAnalysis)
	}
	c.Panel(fmt.Sprintf("Company #%d", company.ID), b.String())
}

// Emails prints one panel per drafted email.
func (c *Console) Emails(companies []*entity.Company, emails []string) {
	for i, email := range emails {
		if i > 0 {
			c.printf("\n")
		}
		name := "Unknown"
		if i < len(companies) {
			name = companies[i].Name
		}
		c.Panel("Outreach Email for "+name, email)
	}
}
