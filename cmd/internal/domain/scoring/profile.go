package scoring

import (
	"slices"
	"strings"

	"leadfinder/cmd/internal/domain/entity"
)

// Field names a company attribute a rule can read.
type Field int

const (
	FieldAddress Field = iota
	FieldWebsite
	FieldPhone
	FieldEmail
	FieldDescription
	FieldCategory
	FieldContactPerson
	FieldContactTitle
	FieldAIAnalysis
)

func (f Field) value(c *entity.Company) string {
	switch f {
	case FieldAddress:
		return c.Address
	case FieldWebsite:
		return c.Website
	case FieldPhone:
		return c.Phone
	case FieldEmail:
		return c.Email
	case FieldDescription:
		return c.Description
	case FieldCategory:
		return c.Category
	case FieldContactPerson:
		return c.ContactPerson
	case FieldContactTitle:
		return c.ContactTitle
	case FieldAIAnalysis:
		return c.AIAnalysis
	default:
		return ""
	}
}

// AgeBand awards Points when the building is strictly older than MinAge years.
type AgeBand struct {
	MinAge int
	Points int
}

// Tier awards Points when the lowercased text contains Keyword.
type Tier struct {
	Keyword string
	Points  int
}

// PresenceRule awards Points once when any of Fields is non-empty.
type PresenceRule struct {
	Fields []Field
	Points int
}

// KeywordRule looks for Keywords in the lowercased, space-joined Fields.
//
// With PerMatch unset only the first match counts and awards Points.
// With PerMatch set every distinct keyword found awards Points, up to Cap.
type KeywordRule struct {
	Fields   []Field
	Keywords []string
	Points   int
	PerMatch bool
	Cap      int
}

// Profile is one weight table of the scoring engine.
type Profile struct {
	Name string
	Base int

	// AgeBands are tried in order against a numeric year_built, first match wins.
	AgeBands []AgeBand

	// AgeWords apply only when year_built is not a number.
	AgeWords      []string
	AgeWordPoints int

	// Sizes are tried in order against building_size, first match wins.
	Sizes []Tier

	Presence []PresenceRule
	Keywords []KeywordRule
}

var (
	EnergyKeywords = []string{
		"energy", "utilities", "building", "property", "office", "commercial",
		"industrial", "manufacturing", "factory", "school", "hospital",
		"hotel", "retail", "restaurant", "mall", "warehouse",
	}

	HighEnergySectors = []string{
		"manufacturing", "industrial", "factory", "warehouse", "hospital",
		"healthcare", "hotel", "lodging", "data center", "office building",
		"school", "university", "retail",
	}

	OpportunityKeywords = []string{
		"high energy", "inefficient", "outdated", "saving", "cost reduction",
		"upgrade", "retrofit", "improvement", "consumption", "bill", "expense",
	}

	DecisionMakerRoles = []string{"owner", "ceo", "president", "director", "manager", "facility"}
)

var standardAgeBands = []AgeBand{{MinAge: 30, Points: 20}, {MinAge: 20, Points: 15}, {MinAge: 10, Points: 10}}

// Generic is the default weight table used for records of unknown origin.
var Generic = Profile{
	Name:     "generic",
	Base:     entity.DefaultLeadScore,
	AgeBands: standardAgeBands,
	Sizes:    []Tier{{"large", 15}, {"medium", 10}, {"small", 5}},
	Presence: []PresenceRule{
		{Fields: []Field{FieldWebsite}, Points: 10},
		{Fields: []Field{FieldContactPerson, FieldContactTitle}, Points: 10},
		{Fields: []Field{FieldEmail, FieldPhone}, Points: 5},
		{Fields: []Field{FieldDescription}, Points: 5},
	},
	Keywords: []KeywordRule{
		{Fields: []Field{FieldCategory}, Keywords: EnergyKeywords, Points: 5},
	},
}

// WebScrape scores directory listings, rewarding every energy keyword found.
var WebScrape = Profile{
	Name:     "webscrape",
	Base:     entity.DefaultLeadScore,
	AgeBands: standardAgeBands,
	Sizes:    []Tier{{"large", 15}, {"medium", 10}, {"small", 5}},
	Presence: []PresenceRule{
		{Fields: []Field{FieldWebsite}, Points: 10},
		{Fields: []Field{FieldContactPerson, FieldContactTitle}, Points: 10},
		{Fields: []Field{FieldEmail, FieldPhone}, Points: 5},
		{Fields: []Field{FieldDescription}, Points: 5},
	},
	Keywords: []KeywordRule{
		{
			Fields:   []Field{FieldDescription, FieldCategory},
			Keywords: EnergyKeywords,
			Points:   3,
			PerMatch: true,
			Cap:      15,
		},
	},
}

// Maps scores map listings, which rarely carry building details.
var Maps = Profile{
	Name: "maps",
	Base: entity.DefaultLeadScore,
	Presence: []PresenceRule{
		{Fields: []Field{FieldWebsite}, Points: 10},
		{Fields: []Field{FieldAddress}, Points: 10},
		{Fields: []Field{FieldPhone}, Points: 5},
		{Fields: []Field{FieldDescription}, Points: 5},
	},
	Keywords: []KeywordRule{
		{Fields: []Field{FieldCategory}, Keywords: EnergyKeywords, Points: 10},
	},
}

// AILead scores leads proposed by the language model.
var AILead = Profile{
	Name:          "ailead",
	Base:          entity.DefaultLeadScore,
	AgeBands:      standardAgeBands,
	AgeWords:      []string{"old", "aging"},
	AgeWordPoints: 15,
	Sizes:         []Tier{{"large", 20}, {"medium", 10}, {"small", 5}},
	Keywords: []KeywordRule{
		{Fields: []Field{FieldCategory}, Keywords: HighEnergySectors, Points: 15},
		{
			Fields:   []Field{FieldAIAnalysis},
			Keywords: OpportunityKeywords,
			Points:   3,
			PerMatch: true,
			Cap:      15,
		},
		{Fields: []Field{FieldContactTitle}, Keywords: DecisionMakerRoles, Points: 10},
	},
}

var profiles = []Profile{Generic, WebScrape, Maps, AILead}

// Lookup finds a profile by name, ignoring case.
func Lookup(name string) (Profile, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	idx := slices.IndexFunc(profiles, func(p Profile) bool { return p.Name == name })
	if idx < 0 {
		return Profile{}, false
	}
	return profiles[idx], true
}

// Names lists the registered profile names.
func Names() []string {
	names := make([]string, len(profiles))
	for i, p := range profiles {
		names[i] = p.Name
	}
	return names
}
