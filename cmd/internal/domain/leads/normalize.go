package leads

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"leadfinder/cmd/internal/domain/entity"
)

// Raw is a loosely typed record as produced by scrapers and the AI.
type Raw map[string]any

// Location is the search context a raw record was found in.
type Location struct {
	City  string
	State string
}

func (l Location) String() string {
	return l.City + ", " + l.State
}

// maxEpochMillis is roughly the year 9999.
const maxEpochMillis = 253402300799999

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Normalize turns a raw record into a Company. It never fails: unknown keys
// are dropped, missing values become empty strings, a missing city or state
// is taken from loc, an unreadable score falls back to the default and an
// unreadable timestamp falls back to now.
func Normalize(raw Raw, loc Location, now time.Time) entity.Company {
	c := entity.Company{
		Name:          raw.String("name"),
		Address:       raw.String("address"),
		City:          raw.String("city"),
		State:         raw.String("state"),
		Zipcode:       raw.String("zipcode"),
		Phone:         raw.String("phone"),
		Email:         raw.String("email"),
		Website:       raw.String("website"),
		Category:      raw.String("category"),
		BuildingSize:  raw.String("building_size"),
		YearBuilt:     raw.String("year_built"),
		Description:   raw.String("description"),
		Source:        raw.String("source"),
		AIAnalysis:    raw.String("ai_analysis"),
		ContactPerson: raw.String("contact_person"),
		ContactTitle:  raw.String("contact_title"),
		ContactEmail:  raw.String("contact_email"),
		ContactPhone:  raw.String("contact_phone"),
		Notes:         raw.String("notes"),
		LeadScore:     coerceScore(raw["lead_score"]),
		ScrapedAt:     coerceTimestamp(raw["scraped_at"], now),
	}

	if c.City == "" {
		c.City = strings.TrimSpace(loc.City)
	}
	if c.State == "" {
		c.State = strings.TrimSpace(loc.State)
	}
	return c
}

// String reads key as trimmed text, whatever its dynamic type.
func (r Raw) String(key string) string {
	return strings.TrimSpace(stringify(r[key]))
}

// Has reports whether key holds a non-blank value.
func (r Raw) Has(key string) bool {
	return r.String(key) != ""
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(val)
	case fmt.Stringer:
		return val.String()
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := strings.TrimSpace(stringify(item)); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(val)
	}
}

func coerceScore(v any) int {
	score := entity.DefaultLeadScore
	switch val := v.(type) {
	case int:
		score = val
	case int64:
		score = int(val)
	case float64:
		score = floatScore(val, score)
	case json.Number:
		if f, err := val.Float64(); err == nil {
			score = floatScore(f, score)
		}
	case string:
		s := strings.TrimSpace(val)
		if n, err := strconv.Atoi(s); err == nil {
			score = n
		} else if f, err := strconv.ParseFloat(s, 64); err == nil {
			score = floatScore(f, score)
		}
	}
	return entity.ClampScore(score)
}

func floatScore(f float64, fallback int) int {
	switch {
	case math.IsNaN(f):
		return fallback
	case f > entity.MaxLeadScore:
		return entity.MaxLeadScore
	case f < entity.MinLeadScore:
		return entity.MinLeadScore
	default:
		return int(f)
	}
}

// coerceTimestamp returns epoch millis. Numbers below 1e12 are read as
// epoch seconds, anything larger as epoch millis.
func coerceTimestamp(v any, now time.Time) int64 {
	fallback := now.UTC().UnixMilli()

	switch val := v.(type) {
	case time.Time:
		if val.IsZero() {
			return fallback
		}
		return val.UTC().UnixMilli()
	case int64:
		return epochMillis(float64(val), fallback)
	case int:
		return epochMillis(float64(val), fallback)
	case float64:
		return epochMillis(val, fallback)
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return epochMillis(f, fallback)
		}
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return fallback
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return epochMillis(f, fallback)
		}
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC().UnixMilli()
			}
		}
	}
	return fallback
}

func epochMillis(f float64, fallback int64) int64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 || f > maxEpochMillis {
		return fallback
	}
	if f < 1e12 {
		return int64(f * 1000)
	}
	return int64(f)
}
