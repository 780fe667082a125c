package scraper

import (
	"context"
	"strings"
	"time"

	"github.com/go-rod/rod"

	"leadfinder/cmd/internal/domain/leads"
	"leadfinder/cmd/internal/domain/scoring"
	"leadfinder/cmd/internal/logging"
)

const (
	resultsPane  = ".section-layout.section-scrollbox"
	settleDelay  = 2 * time.Second
	initialDelay = 3 * time.Second
)

const (
	scrollHeightJS = `(sel) => { const el = document.querySelector(sel); return el ? el.scrollHeight : 0 }`
	scrollBottomJS = `(sel) => { const el = document.querySelector(sel); if (el) el.scrollTo(0, el.scrollHeight) }`
)

type GoogleMaps struct {
	browser *Browser
	pacer   Waiter
	logger  logging.Logger
}

func NewGoogleMaps(browser *Browser, pacer Waiter, logger logging.Logger) *GoogleMaps {
	return &GoogleMaps{
		browser: browser,
		pacer:   pacer,
		logger:  logger,
	}
}

func (g *GoogleMaps) Name() string {
	return SourceGoogleMaps
}

func (g *GoogleMaps) Profile() scoring.Profile {
	return scoring.Maps
}

func (g *GoogleMaps) Close() error {
	return g.browser.Close()
}

func (g *GoogleMaps) Search(ctx context.Context, q Query) ([]leads.Raw, error) {
	url := GoogleMapsSearchURL(q.Category, q.Location.City, q.Location.State)
	g.logger.Infof("Searching Google Maps: %s", url)

	page, err := g.browser.Navigate(ctx, url)
	if err != nil {
		return nil, err
	}

	if err := sleep(ctx, initialDelay); err != nil {
		return nil, err
	}

	var found []leads.Raw
	seen := 0
	lastHeight := scrollHeight(page)

	for len(found) < q.MaxResults {
		results, err := page.Elements(".section-result")
		if err != nil {
			break
		}

		for ; seen < len(results) && len(found) < q.MaxResults; seen++ {
			lead, err := g.openResult(ctx, page, results[seen])
			if err != nil {
				g.logger.Errorf("Error processing business element: %v", err)
			} else if lead.String("name") != "" {
				found = append(found, withSource(lead, SourceGoogleMaps, q.Location))
			}

			g.backToList(ctx, page)

			if err := g.pacer.Wait(ctx); err != nil {
				return found, err
			}
		}

		if len(found) >= q.MaxResults {
			break
		}

		if _, err := page.Eval(scrollBottomJS, resultsPane); err != nil {
			break
		}
		if err := sleep(ctx, settleDelay); err != nil {
			return found, err
		}

		height := scrollHeight(page)
		if height == lastHeight {
			break
		}
		lastHeight = height
	}

	return found, nil
}

func (g *GoogleMaps) openResult(ctx context.Context, page *rod.Page, el *rod.Element) (leads.Raw, error) {
	if err := click(ctx, el); err != nil {
		return nil, err
	}

	if err := sleep(ctx, settleDelay); err != nil {
		return nil, err
	}

	return g.extractPanel(page), nil
}

func (g *GoogleMaps) backToList(ctx context.Context, page *rod.Page) {
	buttons, err := page.Elements("button.section-back-to-list-button")
	if err != nil || len(buttons) == 0 {
		return
	}

	if err := click(ctx, buttons[0]); err == nil {
		_ = sleep(ctx, time.Second)
	}
}

func (g *GoogleMaps) extractPanel(page *rod.Page) leads.Raw {
	lead := leads.Raw{}

	first := func(selector string) (*rod.Element, bool) {
		els, err := page.Elements(selector)
		if err != nil || len(els) == 0 {
			return nil, false
		}
		return els[0], true
	}

	if el, ok := first("h1.section-hero-header-title-title"); ok {
		lead["name"] = elementText(el)
	}

	if el, ok := first("button[data-item-id='address']"); ok {
		loc, parsed := ParseMapsAddress(elementText(el))
		lead["address"] = loc.Street
		if parsed {
			lead["city"] = loc.City
			lead["state"] = loc.State
			lead["zipcode"] = loc.Zipcode
		}
	}

	if el, ok := first("button[data-item-id='phone:tel']"); ok {
		lead["phone"] = elementText(el)
	}

	if el, ok := first("a[data-item-id='authority']"); ok {
		if href, err := el.Attribute("href"); err == nil && href != nil {
			lead["website"] = *href
		}
	}

	if el, ok := first("button[jsaction='pane.rating.category']"); ok {
		lead["category"] = elementText(el)
	}

	if el, ok := first(".section-editorial-quote"); ok {
		lead["description"] = elementText(el)
	}

	if lead.String("description") == "" {
		if els, err := page.Elements(".section-rating-term-list"); err == nil {
			var points []string
			for _, el := range els {
				if text := elementText(el); text != "" {
					points = append(points, text)
				}
			}
			if len(points) > 0 {
				lead["description"] = "Customer reviews highlight: " + strings.Join(points, "; ")
			}
		}
	}

	return lead
}

// Details is a no-op: the maps panel already carries everything the
// listing exposes.
func (g *GoogleMaps) Details(_ context.Context, lead leads.Raw) (leads.Raw, error) {
	return lead, nil
}

func scrollHeight(page *rod.Page) int {
	res, err := page.Eval(scrollHeightJS, resultsPane)
	if err != nil {
		return 0
	}
	return res.Value.Int()
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
