package scraper

import (
	"context"

	"leadfinder/cmd/internal/domain/leads"
)

const (
	SourceYellowPages = "YellowPages"
	SourceGoogleMaps  = "Google Maps"
)

type Query struct {
	Location   leads.Location
	Category   string
	MaxResults int
}

// Waiter spaces out page interactions.
type Waiter interface {
	Wait(ctx context.Context) error
}

// withSource fills in the source and the location fallback.
func withSource(lead leads.Raw, source string, loc leads.Location) leads.Raw {
	if !lead.Has("source") {
		lead["source"] = source
	}
	if lead.String("city") == "" {
		lead["city"] = loc.City
		lead["state"] = loc.State
	}
	return lead
}
