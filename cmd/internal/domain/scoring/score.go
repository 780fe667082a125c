package scoring

import (
	"strconv"
	"strings"
	"time"

	"leadfinder/cmd/internal/domain/entity"
)

// Score computes the heuristic lead score of c under profile p.
// The result is always within [0, 100].
func Score(c *entity.Company, p Profile, now time.Time) int {
	score := p.Base
	score += ageScore(c.YearBuilt, p, now)
	score += sizeScore(c.BuildingSize, p.Sizes)

	for _, rule := range p.Presence {
		if anyPresent(c, rule.Fields) {
			score += rule.Points
		}
	}

	for _, rule := range p.Keywords {
		score += keywordScore(c, rule)
	}
	return entity.ClampScore(score)
}

// Blend averages a heuristic score with an externally supplied one,
// rounding down.
func Blend(heuristic, external int) int {
	return entity.ClampScore((entity.ClampScore(heuristic) + entity.ClampScore(external)) / 2)
}

func ageScore(yearBuilt string, p Profile, now time.Time) int {
	yearBuilt = strings.TrimSpace(yearBuilt)
	if yearBuilt == "" {
		return 0
	}

	year, err := strconv.Atoi(yearBuilt)
	if err != nil {
		text := strings.ToLower(yearBuilt)
		for _, word := range p.AgeWords {
			if strings.Contains(text, word) {
				return p.AgeWordPoints
			}
		}
		return 0
	}

	age := now.Year() - year
	for _, band := range p.AgeBands {
		if age > band.MinAge {
			return band.Points
		}
	}
	return 0
}

func sizeScore(size string, tiers []Tier) int {
	if size == "" {
		return 0
	}

	text := strings.ToLower(size)
	for _, tier := range tiers {
		if strings.Contains(text, tier.Keyword) {
			return tier.Points
		}
	}
	return 0
}

func anyPresent(c *entity.Company, fields []Field) bool {
	for _, f := range fields {
		if strings.TrimSpace(f.value(c)) != "" {
			return true
		}
	}
	return false
}

func keywordScore(c *entity.Company, rule KeywordRule) int {
	parts := make([]string, 0, len(rule.Fields))
	for _, f := range rule.Fields {
		parts = append(parts, f.value(c))
	}

	text := strings.ToLower(strings.Join(parts, " "))
	if strings.TrimSpace(text) == "" {
		return 0
	}

	if !rule.PerMatch {
		for _, kw := range rule.Keywords {
			if strings.Contains(text, kw) {
				return rule.Points
			}
		}
		return 0
	}

	matches := 0
	for _, kw := range rule.Keywords {
		if strings.Contains(text, kw) {
			matches++
		}
	}

	points := matches * rule.Points
	if rule.Cap > 0 && points > rule.Cap {
		points = rule.Cap
	}
	return points
}
