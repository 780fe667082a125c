package leads

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONArray(t *testing.T) {
	text := "Sure! Here are the leads:\n```json\n[\n  {\"name\": \"Acme\", \"size\": \"large\"},\n  {\"name\": \"Globex\", \"score\": 80}\n]\n```\nGood luck."

	items, err := ExtractJSONArray(text)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Acme", items[0].String("name"))
	assert.Equal(t, "large", items[0].String("size"))
	assert.Equal(t, "80", items[1].String("score"))
}

func TestExtractJSONArray_WholeTextFallback(t *testing.T) {
	items, err := ExtractJSONArray(`[]`)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = ExtractJSONArray("1. Acme Corp: a factory")
	assert.Error(t, err)

	_, err = ExtractJSONArray("   ")
	assert.ErrorIs(t, err, ErrNoJSON)
}

func TestExtractJSONObject(t *testing.T) {
	obj, err := ExtractJSONObject("Here you go: {\"industry\": \"Hotel\", \"building_size\": \"medium\"} thanks")
	require.NoError(t, err)
	assert.Equal(t, "Hotel", obj.String("industry"))

	_, err = ExtractJSONObject("no structure at all")
	assert.Error(t, err)

	_, err = ExtractJSONObject("null")
	assert.ErrorIs(t, err, ErrNoJSON)
}

func TestExtractFromText(t *testing.T) {
	text := `1. Riverside Hospital
Type: Healthcare
Size: Large
Reason: Old HVAC system with high energy consumption
Contact: Facility Manager
Approach: Offer a free energy audit

2. **Company**: placeholder

3. Dayton Cold Storage: refrigerated warehouse
Industry: Warehouse
Building Size: medium`

	leads := ExtractFromText(text, Location{City: "Dayton", State: "OH"})
	require.Len(t, leads, 2)

	first := leads[0]
	assert.Equal(t, "Riverside Hospital", first.String("name"))
	assert.Equal(t, "Dayton", first.String("city"))
	assert.Equal(t, "OH", first.String("state"))
	assert.Equal(t, SourceAIGenerated, first.String("source"))
	assert.Equal(t, "Healthcare", first.String("category"))
	assert.Equal(t, "Large", first.String("building_size"))
	assert.Equal(t, "Old HVAC system with high energy consumption", first.String("ai_analysis"))
	assert.Equal(t, "Facility Manager", first.String("contact_title"))
	assert.Equal(t, "Offer a free energy audit", first.String("notes"))
	assert.Contains(t, first.String("description"), "Riverside Hospital")

	second := leads[1]
	assert.Equal(t, "Dayton Cold Storage", second.String("name"))
	assert.Equal(t, "Warehouse", second.String("category"))
	assert.Equal(t, "medium", second.String("building_size"))
	assert.False(t, second.Has("notes"))
}

func TestExtractFromText_SkipsShortAndEmpty(t *testing.T) {
	assert.Empty(t, ExtractFromText("", Location{}))
	assert.Empty(t, ExtractFromText("1. AB\n\n2. Business Name: tbd", Location{}))
}

func TestSimilarNames(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"Acme Inc", "acme", true},
		{"Acme, LLC", "ACME", true},
		{"Acme Widgets Co", "Acme Widgets", true},
		{"Acme Widgets", "Acme", true},
		{"Globex", "Initech", false},
		{"", "Acme", false},
	}

	for _, tt := range tests {
		t.Run(tt.a+"|"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, SimilarNames(tt.a, tt.b))
		})
	}
}
