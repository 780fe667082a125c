package scraper

import (
	"html"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

const (
	YellowPagesBaseURL = "https://www.yellowpages.com"
	GoogleMapsBaseURL  = "https://www.google.com/maps/search/"

	defaultYellowPagesCategory = "office-buildings"
	defaultMapsQuery           = "commercial buildings"
)

var (
	localityRe   = regexp.MustCompile(`(.*?),\s*(\w{2})\s*(\d{5})?`)
	mapAddressRe = regexp.MustCompile(`(.*?),\s*(.*?),\s*(\w{2})\s*(\d{5})?`)
	spacesRe     = regexp.MustCompile(`\s+`)

	textPolicy = bluemonday.StrictPolicy()
)

// Locality is the city, state and zip parsed from a listing.
type Locality struct {
	Street  string
	City    string
	State   string
	Zipcode string
}

func slug(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "-")
}

// YellowPagesSearchURL builds e.g. https://www.yellowpages.com/office-buildings/dayton-oh.
func YellowPagesSearchURL(category, city, state string) string {
	cat := defaultYellowPagesCategory
	if strings.TrimSpace(category) != "" {
		cat = slug(category)
	}
	return YellowPagesBaseURL + "/" + url.PathEscape(cat) + "/" + url.PathEscape(slug(city)+"-"+strings.ToLower(state))
}

// YellowPagesLookupURL searches for one business by name.
func YellowPagesLookupURL(name, city, state string) string {
	q := url.Values{}
	q.Set("search_terms", slug(name))
	q.Set("geo_location_terms", slug(city)+"-"+strings.ToLower(state))
	return YellowPagesBaseURL + "/search?" + q.Encode()
}

// GoogleMapsSearchURL builds a maps search for "<category> in <city>, <state>".
func GoogleMapsSearchURL(category, city, state string) string {
	what := defaultMapsQuery
	if strings.TrimSpace(category) != "" {
		what = strings.TrimSpace(category)
	}
	return GoogleMapsBaseURL + url.QueryEscape(what+" in "+city+", "+state)
}

// ParseLocality reads "Dayton, OH 45402" style text.
func ParseLocality(text string) (Locality, bool) {
	m := localityRe.FindStringSubmatch(text)
	if m == nil {
		return Locality{}, false
	}
	return Locality{
		City:    strings.TrimSpace(m[1]),
		State:   strings.TrimSpace(m[2]),
		Zipcode: m[3],
	}, true
}

// ParseMapsAddress reads "123 Main St, Dayton, OH 45402" style text.
func ParseMapsAddress(text string) (Locality, bool) {
	m := mapAddressRe.FindStringSubmatch(text)
	if m == nil {
		return Locality{Street: strings.TrimSpace(text)}, false
	}
	return Locality{
		Street:  strings.TrimSpace(m[1]),
		City:    strings.TrimSpace(m[2]),
		State:   strings.TrimSpace(m[3]),
		Zipcode: m[4],
	}, true
}

// YearFromYearsInBusiness turns "35" years in business into a founding year.
func YearFromYearsInBusiness(years string, currentYear int) (string, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(years))
	if err != nil || n < 0 {
		return "", false
	}
	return strconv.Itoa(currentYear - n), true
}

// CleanText strips markup from scraped HTML and collapses whitespace.
func CleanText(raw string) string {
	text := html.UnescapeString(textPolicy.Sanitize(raw))
	return strings.TrimSpace(spacesRe.ReplaceAllString(text, " "))
}
