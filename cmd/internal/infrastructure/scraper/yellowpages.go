package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"

	"leadfinder/cmd/internal/domain/leads"
	"leadfinder/cmd/internal/domain/scoring"
	"leadfinder/cmd/internal/logging"
)

const resultsTimeout = 15 * time.Second

var contactTitles = map[string]bool{
	"owner":     true,
	"manager":   true,
	"president": true,
	"ceo":       true,
}

type YellowPages struct {
	browser *Browser
	pacer   Waiter
	logger  logging.Logger
}

func NewYellowPages(browser *Browser, pacer Waiter, logger logging.Logger) *YellowPages {
	return &YellowPages{
		browser: browser,
		pacer:   pacer,
		logger:  logger,
	}
}

func (y *YellowPages) Name() string {
	return SourceYellowPages
}

func (y *YellowPages) Profile() scoring.Profile {
	return scoring.WebScrape
}

func (y *YellowPages) Close() error {
	return y.browser.Close()
}

func (y *YellowPages) Search(ctx context.Context, q Query) ([]leads.Raw, error) {
	url := YellowPagesSearchURL(q.Category, q.Location.City, q.Location.State)
	y.logger.Infof("Searching YellowPages: %s", url)

	page, err := y.browser.Navigate(ctx, url)
	if err != nil {
		return nil, err
	}

	if err := waitFor(page, ".search-results", resultsTimeout); err != nil {
		return nil, fmt.Errorf("no search results at %s: %w", url, err)
	}

	var found []leads.Raw
	for len(found) < q.MaxResults {
		results, err := page.Elements(".result")
		if err != nil || len(results) == 0 {
			y.logger.Infof("No more business results found")
			break
		}

		for _, el := range results {
			if len(found) >= q.MaxResults {
				break
			}

			lead, ok := y.listing(el, q)
			if !ok {
				continue
			}
			found = append(found, withSource(lead, SourceYellowPages, q.Location))

			if err := y.pacer.Wait(ctx); err != nil {
				return found, err
			}
		}

		if len(found) >= q.MaxResults {
			break
		}

		if !y.nextPage(ctx, page) {
			break
		}
	}

	return found, nil
}

func (y *YellowPages) listing(el *rod.Element, q Query) (leads.Raw, bool) {
	name, ok := textOf(el, ".business-name")
	if !ok || name == "" {
		return nil, false
	}

	lead := leads.Raw{"name": name}

	if v, ok := textOf(el, ".street-address"); ok {
		lead["address"] = v
	}

	if v, ok := textOf(el, ".locality"); ok {
		if loc, ok := ParseLocality(v); ok {
			lead["city"] = loc.City
			lead["state"] = loc.State
			lead["zipcode"] = loc.Zipcode
		}
	}

	if v, ok := textOf(el, ".phones"); ok {
		lead["phone"] = v
	}

	if v, ok := attrOf(el, "a.track-visit-website", "href"); ok {
		lead["website"] = v
	}

	if v, ok := textOf(el, ".categories"); ok {
		lead["category"] = v
	} else if q.Category != "" {
		lead["category"] = q.Category
	}

	if v, ok := textOf(el, ".years-in-business .number"); ok {
		if year, ok := YearFromYearsInBusiness(v, time.Now().Year()); ok {
			lead["year_built"] = year
		}
	}

	return lead, true
}

func (y *YellowPages) nextPage(ctx context.Context, page *rod.Page) bool {
	next, err := page.Elements("a.next")
	if err != nil || len(next) == 0 {
		y.logger.Infof("No more pages available")
		return false
	}

	if class, err := next[0].Attribute("class"); err == nil && class != nil && strings.Contains(*class, "disabled") {
		y.logger.Infof("No more pages available")
		return false
	}

	if err := click(ctx, next[0]); err != nil {
		y.logger.Errorf("Error navigating to next page: %v", err)
		return false
	}

	if err := waitFor(page, ".search-results", resultsTimeout); err != nil {
		y.logger.Errorf("Error navigating to next page: %v", err)
		return false
	}
	return y.pacer.Wait(ctx) == nil
}

// Details opens the listing page of lead and merges what it finds.
// On any failure the lead is returned unchanged alongside the error.
func (y *YellowPages) Details(ctx context.Context, lead leads.Raw) (leads.Raw, error) {
	name, city, state := lead.String("name"), lead.String("city"), lead.String("state")
	if name == "" || city == "" {
		return lead, nil
	}

	url := YellowPagesLookupURL(name, city, state)
	y.logger.Infof("Getting details for %s: %s", name, url)

	page, err := y.browser.Navigate(ctx, url)
	if err != nil {
		return lead, err
	}

	if err := waitFor(page, ".search-results", resultsTimeout); err != nil {
		y.logger.Warnf("No results found for %s", name)
		return lead, nil
	}

	results, err := page.Elements(".result")
	if err != nil {
		return lead, err
	}

	for _, el := range results {
		titles, err := el.Elements(".business-name")
		if err != nil || len(titles) == 0 {
			continue
		}

		if !leads.SimilarNames(elementText(titles[0]), name) {
			continue
		}

		if err := click(ctx, titles[0]); err != nil {
			return lead, err
		}

		if err := waitFor(page, ".business-card", resultsTimeout); err != nil {
			return lead, err
		}

		detailed := make(leads.Raw, len(lead))
		for k, v := range lead {
			detailed[k] = v
		}
		y.extractDetails(page, detailed)
		return detailed, nil
	}

	return lead, nil
}

func (y *YellowPages) extractDetails(page *rod.Page, lead leads.Raw) {
	if els, err := page.Elements(".business-description"); err == nil && len(els) > 0 {
		lead["description"] = elementText(els[0])
	}

	if els, err := page.Elements(".services ul li"); err == nil && len(els) > 0 {
		services := make([]string, 0, len(els))
		for _, el := range els {
			if s := elementText(el); s != "" {
				services = append(services, s)
			}
		}

		if len(services) > 0 {
			joined := strings.Join(services, ", ")
			if category := lead.String("category"); category != "" {
				joined = category + ", " + joined
			}
			lead["category"] = joined
		}
	}

	if els, err := page.Elements(".contact h2"); err == nil {
		for _, el := range els {
			title := elementText(el)
			if !contactTitles[strings.ToLower(title)] {
				continue
			}

			lead["contact_title"] = title
			if next, err := el.Next(); err == nil && next != nil {
				lead["contact_person"] = elementText(next)
			}
		}
	}

	if els, err := page.Elements(".about dt"); err == nil {
		for _, el := range els {
			label := strings.ToLower(elementText(el))
			next, err := el.Next()
			if err != nil || next == nil {
				continue
			}

			value := elementText(next)
			if value == "" {
				continue
			}

			switch {
			case strings.Contains(label, "year established"):
				lead["year_built"] = value
			case strings.Contains(label, "building size"):
				lead["building_size"] = value
			case strings.Contains(label, "email"):
				lead["email"] = value
			}
		}
	}
}
