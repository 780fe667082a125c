package leads

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

const SourceAIGenerated = "AI Generated"

var ErrNoJSON = errors.New("no json found in text")

var (
	jsonArrayRe  = regexp.MustCompile(`(?s)\[\s*\{.*\}\s*\]`)
	jsonObjectRe = regexp.MustCompile(`(?s)\{\s*".*"\s*:.*\}`)

	sectionSplitRe = regexp.MustCompile(`\d+\.\s+|\n\n+`)
	sectionNameRe  = regexp.MustCompile(`(?m)^([^:\n]+)(?::|$)`)

	categoryLabelRe = regexp.MustCompile(`(?i)(?:Type|Category|Industry):\s*([^\n]+)`)
	sizeLabelRe     = regexp.MustCompile(`(?i)(?:Size|Building Size):\s*([^\n]+)`)
	reasonLabelRe   = regexp.MustCompile(`(?im)(?:Reason|Why|Benefits|Opportunity):\s*([^\n]+(?:\n[^\n:]+$)*)`)
	contactLabelRe  = regexp.MustCompile(`(?i)(?:Contact|Decision[- ]maker|Key Person):\s*([^\n]+)`)
	approachLabelRe = regexp.MustCompile(`(?im)(?:Approach|Strategy|How to contact):\s*([^\n]+(?:\n[^\n:]+$)*)`)
)

// placeholderNames are headings the model uses that are not business names.
var placeholderNames = map[string]bool{
	"business name": true,
	"company":       true,
}

// ExtractJSONArray decodes the first JSON array of objects embedded in
// text, falling back to decoding the whole text.
func ExtractJSONArray(text string) ([]Raw, error) {
	payload := text
	if m := jsonArrayRe.FindString(text); m != "" {
		payload = m
	}

	var items []Raw
	if err := decode(payload, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ExtractJSONObject decodes the first JSON object embedded in text,
// falling back to decoding the whole text.
func ExtractJSONObject(text string) (Raw, error) {
	payload := text
	if m := jsonObjectRe.FindString(text); m != "" {
		payload = m
	}

	var obj Raw
	if err := decode(payload, &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, ErrNoJSON
	}
	return obj, nil
}

func decode(payload string, dest any) error {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return ErrNoJSON
	}

	dec := json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()
	return dec.Decode(dest)
}

// ExtractFromText pulls leads out of a free-form numbered list. Each item's
// heading becomes the business name and labelled lines fill the other fields.
func ExtractFromText(text string, loc Location) []Raw {
	var out []Raw

	for _, section := range sectionSplitRe.Split(text, -1) {
		section = strings.TrimSpace(section)
		if section == "" {
			continue
		}

		m := sectionNameRe.FindStringSubmatch(section)
		if m == nil {
			continue
		}

		name := strings.Trim(strings.TrimSpace(m[1]), "*#- ")
		if len(name) < 3 || placeholderNames[strings.ToLower(name)] {
			continue
		}

		lead := Raw{
			"name":        name,
			"city":        loc.City,
			"state":       loc.State,
			"source":      SourceAIGenerated,
			"description": section,
		}

		setLabel(lead, "category", categoryLabelRe, section)
		setLabel(lead, "building_size", sizeLabelRe, section)
		setLabel(lead, "ai_analysis", reasonLabelRe, section)
		setLabel(lead, "contact_title", contactLabelRe, section)
		setLabel(lead, "notes", approachLabelRe, section)

		out = append(out, lead)
	}
	return out
}

func setLabel(lead Raw, key string, re *regexp.Regexp, section string) {
	if m := re.FindStringSubmatch(section); m != nil {
		lead[key] = strings.TrimSpace(m[1])
	}
}
