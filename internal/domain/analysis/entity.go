package analysis

import "strings"

// AgeGroup is one of the three developmental brackets used to tailor prompts and fallbacks.
type AgeGroup string

const (
	AgeInfant    AgeGroup = "0-2"
	AgePreschool AgeGroup = "3-6"
	AgeSchool    AgeGroup = "7-10"
)

// AgeGroups lists the accepted values in display order.
var AgeGroups = []AgeGroup{AgeInfant, AgePreschool, AgeSchool}

func (a AgeGroup) Valid() bool {
	switch a {
	case AgeInfant, AgePreschool, AgeSchool:
		return true
	}
	return false
}

type Suitability string

const (
	SuitabilityGood     Suitability = "Good"
	SuitabilityModerate Suitability = "Moderate"
	SuitabilityPoor     Suitability = "Poor"
)

type Safety string

const (
	SafetySafe     Safety = "Safe"
	SafetyModerate Safety = "Moderate"
	SafetyCaution  Safety = "Caution"
)

// Rating grades an alternative product.
type Rating string

const (
	RatingExcellent Rating = "Excellent"
	RatingVeryGood  Rating = "Very Good"
	RatingGood      Rating = "Good"
)

// Grade is the five-step scale used by the comparison table.
type Grade string

const (
	GradeExcellent Grade = "Excellent"
	GradeVeryGood  Grade = "Very Good"
	GradeGood      Grade = "Good"
	GradeModerate  Grade = "Moderate"
	GradePoor      Grade = "Poor"
)

// Request is a validated analysis request.
type Request struct {
	AgeGroup             AgeGroup `json:"ageGroup"`
	HealthConditions     []string `json:"healthConditions"`
	AdditionalConditions string   `json:"additionalConditions,omitempty"`
	HealthNotes          string   `json:"healthNotes,omitempty"`
	ExtractedText        string   `json:"extractedText"`
}

// Conditions returns the health conditions with blanks dropped, duplicates removed
// case-insensitively (first spelling wins) and additional conditions appended.
func (r Request) Conditions() []string {
	out := UniqueConditions(r.HealthConditions)
	extra := strings.TrimSpace(r.AdditionalConditions)
	if extra == "" {
		return out
	}
	for _, c := range out {
		if strings.EqualFold(c, extra) {
			return out
		}
	}
	return append(out, extra)
}

// UniqueConditions trims names and drops blanks and case-insensitive duplicates.
func UniqueConditions(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, c := range in {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		k := strings.ToLower(c)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, c)
	}
	return out
}

// Validate checks the typed request. Only the age group can be wrong once decoded.
func (r Request) Validate() error {
	verr := &ValidationError{}
	if !r.AgeGroup.Valid() {
		verr.Add("ageGroup", `must be one of "0-2", "3-6", "7-10"`)
	}
	return verr.OrNil()
}

type Ingredient struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Safety      Safety `json:"safety"`
	Concerns    string `json:"concerns,omitempty"`
}

type SpecialWarning struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type Alternative struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Rating      Rating   `json:"rating"`
	Benefits    []string `json:"benefits"`
}

type ComparisonRow struct {
	Product     string `json:"product"`
	Suitability Grade  `json:"suitability"`
	KeyBenefits string `json:"keyBenefits"`
	FreeFrom    string `json:"freeFrom"`
}

// Result is the canonical analysis report. Lists are never nil.
type Result struct {
	ProductName       string           `json:"productName"`
	ProductCategory   string           `json:"productCategory"`
	Suitability       Suitability      `json:"suitability"`
	SuitabilityRating int              `json:"suitabilityRating"`
	Ingredients       []Ingredient     `json:"ingredients"`
	SpecialWarnings   []SpecialWarning `json:"specialWarnings"`
	Alternatives      []Alternative    `json:"alternatives"`
	ComparisonTable   []ComparisonRow  `json:"comparisonTable"`
	Recommendations   []string         `json:"recommendations"`
}

// Source tells whether a result came from the model or from the fallback synthesizer.
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

// Outcome is the status flag returned next to every result.
type Outcome struct {
	Source  Source
	Failure error
}

// Reason names the failure class behind a fallback, empty for model results.
func (o Outcome) Reason() string {
	if o.Failure == nil {
		return ""
	}
	return string(Classify(o.Failure))
}
