package analysis

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectSpans(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"bare object", `{"a":1}`, []string{`{"a":1}`}},
		{"leading and trailing prose", "Here you go:\n{\"a\":{\"b\":2}}\nHope this helps!", []string{`{"a":{"b":2}}`}},
		{"code fence", "```json\n{\"a\":1}\n```", []string{`{"a":1}`}},
		{"braces inside strings", `note {"a":"}{","b":"\"{"} end`, []string{`{"a":"}{","b":"\"{"}`}},
		{"several fragments in order", `{"first":true} and {"second":true}`, []string{`{"first":true}`, `{"second":true}`}},
		{"prose braces before object", `in {JSON} form: {"a":1}`, []string{`{JSON}`, `{"a":1}`}},
		{"unclosed outer falls through to inner", `{ "broken": {"x":1}`, []string{`{"x":1}`}},
		{"no json", "I cannot analyze this product.", nil},
		{"only closing brace", "} nothing {", nil},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, objectSpans(tt.in))
		})
	}
}

func TestParseModelOutput_RatingRepair(t *testing.T) {
	tests := []struct {
		name        string
		suitability string
		rating      string
		want        int
	}{
		{"missing good", "Good", "", 85},
		{"missing moderate", "Moderate", "", 60},
		{"missing poor", "Poor", "", 30},
		{"string rating", "Good", `,"suitabilityRating":"90"`, 85},
		{"above range", "Moderate", `,"suitabilityRating":140`, 60},
		{"below range", "Poor", `,"suitabilityRating":-1`, 30},
		{"null", "Good", `,"suitabilityRating":null`, 85},
		{"valid kept", "Good", `,"suitabilityRating":72`, 72},
		{"bounds kept", "Poor", `,"suitabilityRating":0`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := `{"productName":"Puffs","suitability":"` + tt.suitability + `","ingredients":[]` + tt.rating + `}`
			res, err := ParseModelOutput(text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.SuitabilityRating)
		})
	}
}

func TestParseModelOutput_DefaultsLists(t *testing.T) {
	res, err := ParseModelOutput(`Sure! {"productName":"Oat Bites","suitability":"good","ingredients":[{"name":"Oats","safety":"SAFE"}],"recommendations":[]}`)
	require.NoError(t, err)

	assert.Equal(t, SuitabilityGood, res.Suitability)
	assert.Equal(t, SafetySafe, res.Ingredients[0].Safety)
	assert.Equal(t, DefaultRecommendations(), res.Recommendations)
	assert.NotNil(t, res.SpecialWarnings)
	assert.NotNil(t, res.Alternatives)
	assert.NotNil(t, res.ComparisonTable)
	assert.Empty(t, res.SpecialWarnings)
}

func TestParseModelOutput_KeepsModelContent(t *testing.T) {
	text := `{
  "productName": "Veggie Straws",
  "productCategory": "Snack",
  "suitability": "Poor",
  "suitabilityRating": 20,
  "ingredients": [{"name": "Salt", "description": "Seasoning", "safety": "Caution", "concerns": "High sodium"}],
  "specialWarnings": [{"title": "Sodium", "description": "High salt content"}],
  "alternatives": [{"name": "Plain Rice Cakes", "description": "Low sodium", "rating": "very good", "benefits": ["Unsalted"]}],
  "comparisonTable": [{"product": "Veggie Straws", "suitability": "Poor", "keyBenefits": "Crunchy", "freeFrom": "Nothing"}],
  "recommendations": ["Offer as an occasional treat only"]
}`
	res, err := ParseModelOutput(text)
	require.NoError(t, err)

	assert.Equal(t, "Veggie Straws", res.ProductName)
	assert.Equal(t, 20, res.SuitabilityRating)
	assert.Equal(t, "High sodium", res.Ingredients[0].Concerns)
	assert.Equal(t, RatingVeryGood, res.Alternatives[0].Rating)
	assert.Equal(t, GradePoor, res.ComparisonTable[0].Suitability)
	assert.Equal(t, []string{"Offer as an occasional treat only"}, res.Recommendations)
}

func TestParseModelOutput_Malformed(t *testing.T) {
	cases := map[string]string{
		"no json":             "The label is unreadable.",
		"invalid json":        `{"productName": "x", }`,
		"missing name":        `{"suitability":"Good","ingredients":[]}`,
		"missing suitability": `{"productName":"x","ingredients":[]}`,
		"unknown suitability": `{"productName":"x","suitability":"Great","ingredients":[]}`,
		"missing ingredients": `{"productName":"x","suitability":"Good"}`,
		"null ingredients":    `{"productName":"x","suitability":"Good","ingredients":null}`,
		"ingredients string":  `{"productName":"x","suitability":"Good","ingredients":"sugar, salt"}`,
		"ingredients object":  `{"productName":"x","suitability":"Good","ingredients":{"name":"sugar"}}`,
		"only prose braces":   `The {label} says {nothing useful}.`,
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseModelOutput(text)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedOutput))
			assert.Equal(t, FailureMalformedOutput, Classify(err))
		})
	}
}

func TestParseModelOutput_ToleratesWrongTypedOptionalFields(t *testing.T) {
	const base = `"productName":"Puffs","suitability":"Good","ingredients":[{"name":"Corn"}]`
	tests := []struct {
		name  string
		extra string
		check func(t *testing.T, res Result)
	}{
		{"recommendations as string", `"recommendations":"Offer sparingly"`, func(t *testing.T, res Result) {
			assert.Equal(t, []string{"Offer sparingly"}, res.Recommendations)
		}},
		{"recommendations as object", `"recommendations":{"tip":"x"}`, func(t *testing.T, res Result) {
			assert.Equal(t, DefaultRecommendations(), res.Recommendations)
		}},
		{"benefits as string", `"alternatives":[{"name":"Rice Cakes","rating":"Excellent","benefits":"cheap"}]`, func(t *testing.T, res Result) {
			require.Len(t, res.Alternatives, 1)
			assert.Equal(t, []string{"cheap"}, res.Alternatives[0].Benefits)
		}},
		{"benefits as number", `"alternatives":[{"name":"Rice Cakes","benefits":3}]`, func(t *testing.T, res Result) {
			require.Len(t, res.Alternatives, 1)
			assert.Equal(t, []string{"3"}, res.Alternatives[0].Benefits)
			assert.Equal(t, RatingGood, res.Alternatives[0].Rating)
		}},
		{"special warnings as single object", `"specialWarnings":{"title":"Sodium","description":"Salty"}`, func(t *testing.T, res Result) {
			assert.Equal(t, []SpecialWarning{{Title: "Sodium", Description: "Salty"}}, res.SpecialWarnings)
		}},
		{"special warnings as string", `"specialWarnings":"none"`, func(t *testing.T, res Result) {
			assert.NotNil(t, res.SpecialWarnings)
			assert.Empty(t, res.SpecialWarnings)
		}},
		{"alternatives with non-object entries", `"alternatives":["Rice Cakes",{"name":"Oat Bars"}]`, func(t *testing.T, res Result) {
			require.Len(t, res.Alternatives, 1)
			assert.Equal(t, "Oat Bars", res.Alternatives[0].Name)
			assert.NotNil(t, res.Alternatives[0].Benefits)
		}},
		{"comparison table as number", `"comparisonTable":42`, func(t *testing.T, res Result) {
			assert.NotNil(t, res.ComparisonTable)
			assert.Empty(t, res.ComparisonTable)
		}},
		{"comparison field as array", `"comparisonTable":[{"product":"Puffs","freeFrom":["nuts","dairy"]}]`, func(t *testing.T, res Result) {
			require.Len(t, res.ComparisonTable, 1)
			assert.Equal(t, "nuts, dairy", res.ComparisonTable[0].FreeFrom)
			assert.Equal(t, GradeModerate, res.ComparisonTable[0].Suitability)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ParseModelOutput(`{` + base + `,` + tt.extra + `}`)
			require.NoError(t, err)
			assert.Equal(t, "Puffs", res.ProductName)
			tt.check(t, res)
		})
	}
}

func TestParseModelOutput_LenientIngredients(t *testing.T) {
	res, err := ParseModelOutput(`{"productName":"Crackers","suitability":"Moderate","ingredients":[
		{"name":"Salt","safety":"Caution","concerns":["sodium","blood pressure"]},
		{"name":"Wheat","description":7},
		"Sugar",
		null
	]}`)
	require.NoError(t, err)

	require.Len(t, res.Ingredients, 3)
	assert.Equal(t, "sodium, blood pressure", res.Ingredients[0].Concerns)
	assert.Equal(t, "7", res.Ingredients[1].Description)
	assert.Equal(t, Ingredient{Name: "Sugar", Safety: SafetyModerate}, res.Ingredients[2])
}

func TestParseModelOutput_SkipsFragmentsBeforeTheResult(t *testing.T) {
	cases := map[string]string{
		"prose braces":     `Here is the analysis in {JSON} form: {"productName":"Puffs","suitability":"Good","ingredients":[]}`,
		"unrelated object": `Input was {"ageGroup":"0-2"}. Result: {"productName":"Puffs","suitability":"Good","ingredients":[]}`,
		"broken then good": `{"productName": "Puffs", } sorry, corrected: {"productName":"Puffs","suitability":"Good","ingredients":[]}`,
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			res, err := ParseModelOutput(text)
			require.NoError(t, err)
			assert.Equal(t, "Puffs", res.ProductName)
			assert.Equal(t, 85, res.SuitabilityRating)
		})
	}
}
