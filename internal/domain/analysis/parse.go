package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

var defaultRecommendations = []string{
	"Consult with a healthcare professional before making significant changes to your routine.",
	"Always perform a patch test before using new products, especially if you have sensitive skin or allergies.",
	"Read ingredient labels carefully and avoid known triggers for your condition.",
}

// DefaultRecommendations returns the generic advice substituted when the model gives none.
func DefaultRecommendations() []string {
	return append([]string(nil), defaultRecommendations...)
}

// RatingFor maps a suitability onto its default 0-100 rating.
func RatingFor(s Suitability) int {
	switch s {
	case SuitabilityGood:
		return 85
	case SuitabilityModerate:
		return 60
	default:
		return 30
	}
}

// objectSpans lists every balanced {...} span of text in order. Braces inside JSON
// strings are ignored. Scanning resumes after a balanced span, or at the next '{'
// when a brace never closes.
func objectSpans(text string) []string {
	var spans []string
	for i := 0; i < len(text); {
		start := strings.IndexByte(text[i:], '{')
		if start < 0 {
			break
		}
		start += i
		if end := matchBrace(text, start); end > 0 {
			spans = append(spans, text[start:end+1])
			i = end + 1
			continue
		}
		i = start + 1
	}
	return spans
}

// matchBrace returns the index of the brace closing text[start], or -1.
func matchBrace(text string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

type rawIngredient struct {
	Name        text `json:"name"`
	Description text `json:"description"`
	Safety      text `json:"safety"`
	Concerns    text `json:"concerns"`
}

type rawWarning struct {
	Title       text `json:"title"`
	Description text `json:"description"`
}

type rawAlternative struct {
	Name        text     `json:"name"`
	Description text     `json:"description"`
	Rating      text     `json:"rating"`
	Benefits    textList `json:"benefits"`
}

type rawComparison struct {
	Product     text `json:"product"`
	Suitability text `json:"suitability"`
	KeyBenefits text `json:"keyBenefits"`
	FreeFrom    text `json:"freeFrom"`
}

// Only ingredients is kept raw: it is required and must be a list.
type rawResult struct {
	ProductName       text                       `json:"productName"`
	ProductCategory   text                       `json:"productCategory"`
	Suitability       text                       `json:"suitability"`
	SuitabilityRating json.RawMessage            `json:"suitabilityRating"`
	Ingredients       json.RawMessage            `json:"ingredients"`
	SpecialWarnings   objectList[rawWarning]     `json:"specialWarnings"`
	Alternatives      objectList[rawAlternative] `json:"alternatives"`
	ComparisonTable   objectList[rawComparison]  `json:"comparisonTable"`
	Recommendations   textList                   `json:"recommendations"`
}

// ParseModelOutput decodes the first JSON object in a model response that satisfies
// the required fields, then applies the repair rules. Errors wrap ErrMalformedOutput
// and describe the first candidate that was rejected.
func ParseModelOutput(text string) (Result, error) {
	var firstErr error
	for _, span := range objectSpans(text) {
		res, err := parseObject(span)
		if err == nil {
			return res, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		return Result{}, fmt.Errorf("%w: no JSON object in response", ErrMalformedOutput)
	}
	return Result{}, firstErr
}

func parseObject(span string) (Result, error) {
	var raw rawResult
	if err := json.Unmarshal([]byte(span), &raw); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	name := strings.TrimSpace(string(raw.ProductName))
	if name == "" {
		return Result{}, fmt.Errorf("%w: missing productName", ErrMalformedOutput)
	}
	suit, ok := parseSuitability(string(raw.Suitability))
	if !ok {
		return Result{}, fmt.Errorf("%w: missing or invalid suitability %q", ErrMalformedOutput, string(raw.Suitability))
	}
	ingredients, err := parseIngredients(raw.Ingredients)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		ProductName:     name,
		ProductCategory: strings.TrimSpace(string(raw.ProductCategory)),
		Suitability:     suit,
		Ingredients:     ingredients,
		SpecialWarnings: make([]SpecialWarning, 0, len(raw.SpecialWarnings)),
		Alternatives:    make([]Alternative, 0, len(raw.Alternatives)),
		ComparisonTable: make([]ComparisonRow, 0, len(raw.ComparisonTable)),
	}

	// rule 1: rating
	if r, ok := parseRating(raw.SuitabilityRating); ok {
		res.SuitabilityRating = r
	} else {
		res.SuitabilityRating = RatingFor(suit)
	}

	// rule 2: recommendations
	res.Recommendations = []string(raw.Recommendations)
	if len(res.Recommendations) == 0 {
		res.Recommendations = DefaultRecommendations()
	}

	// rule 3: optional lists, already non-nil above
	for _, w := range raw.SpecialWarnings {
		res.SpecialWarnings = append(res.SpecialWarnings, SpecialWarning{
			Title:       string(w.Title),
			Description: string(w.Description),
		})
	}
	for _, a := range raw.Alternatives {
		benefits := []string(a.Benefits)
		if benefits == nil {
			benefits = []string{}
		}
		res.Alternatives = append(res.Alternatives, Alternative{
			Name:        string(a.Name),
			Description: string(a.Description),
			Rating:      parseAlternativeRating(string(a.Rating)),
			Benefits:    benefits,
		})
	}
	for _, c := range raw.ComparisonTable {
		res.ComparisonTable = append(res.ComparisonTable, ComparisonRow{
			Product:     string(c.Product),
			Suitability: parseGrade(string(c.Suitability)),
			KeyBenefits: string(c.KeyBenefits),
			FreeFrom:    string(c.FreeFrom),
		})
	}
	return res, nil
}

// parseIngredients requires a JSON array. A scalar element is taken as the name;
// null and other empty elements are dropped.
func parseIngredients(msg json.RawMessage) ([]Ingredient, error) {
	msg = bytes.TrimSpace(msg)
	if len(msg) == 0 || bytes.Equal(msg, []byte("null")) {
		return nil, fmt.Errorf("%w: missing ingredients", ErrMalformedOutput)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(msg, &items); err != nil {
		return nil, fmt.Errorf("%w: ingredients is not a list", ErrMalformedOutput)
	}

	out := make([]Ingredient, 0, len(items))
	for _, item := range items {
		var in rawIngredient
		if item = bytes.TrimSpace(item); len(item) > 0 && item[0] == '{' {
			if json.Unmarshal(item, &in) != nil {
				continue
			}
		} else if name := looseText(item); name != "" {
			in.Name = text(name)
		} else {
			continue
		}
		out = append(out, Ingredient{
			Name:        string(in.Name),
			Description: string(in.Description),
			Safety:      parseSafety(string(in.Safety)),
			Concerns:    string(in.Concerns),
		})
	}
	return out, nil
}

// parseRating accepts only JSON numbers inside [0,100].
func parseRating(msg json.RawMessage) (int, bool) {
	msg = bytes.TrimSpace(msg)
	if len(msg) == 0 || msg[0] == '"' || bytes.Equal(msg, []byte("null")) {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(msg, &f); err != nil {
		return 0, false
	}
	if math.IsNaN(f) || f < 0 || f > 100 {
		return 0, false
	}
	return int(math.Round(f)), true
}

func parseSuitability(s string) (Suitability, bool) {
	for _, v := range []Suitability{SuitabilityGood, SuitabilityModerate, SuitabilityPoor} {
		if strings.EqualFold(strings.TrimSpace(s), string(v)) {
			return v, true
		}
	}
	return "", false
}

// parseSafety folds case; anything unrecognised is treated as Moderate.
func parseSafety(s string) Safety {
	for _, v := range []Safety{SafetySafe, SafetyModerate, SafetyCaution} {
		if strings.EqualFold(strings.TrimSpace(s), string(v)) {
			return v
		}
	}
	return SafetyModerate
}

func parseAlternativeRating(s string) Rating {
	for _, v := range []Rating{RatingExcellent, RatingVeryGood, RatingGood} {
		if strings.EqualFold(strings.TrimSpace(s), string(v)) {
			return v
		}
	}
	return RatingGood
}

func parseGrade(s string) Grade {
	for _, v := range []Grade{GradeExcellent, GradeVeryGood, GradeGood, GradeModerate, GradePoor} {
		if strings.EqualFold(strings.TrimSpace(s), string(v)) {
			return v
		}
	}
	return GradeModerate
}
