package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bryanwahyu/nutriguard/internal/domain/analysis"
)

func TestBuild_EmbedsRequest(t *testing.T) {
	p := Builder{}.Build(analysis.Request{
		AgeGroup:             analysis.AgePreschool,
		HealthConditions:     []string{"Peanut allergy", "Eczema"},
		AdditionalConditions: "Lactose intolerance",
		HealthNotes:          "Refuses vegetables",
		ExtractedText:        "Ingredients: wheat flour, sugar, peanuts",
	})

	assert.Contains(t, p.User, "Age Group: 3-6")
	assert.Contains(t, p.User, "Peanut allergy, Eczema, Lactose intolerance")
	assert.Contains(t, p.User, "Refuses vegetables")
	assert.Contains(t, p.User, "wheat flour, sugar, peanuts")
	assert.Contains(t, p.System, "productName")
}

func TestBuild_RepeatsEnumerations(t *testing.T) {
	p := Builder{}.Build(analysis.Request{AgeGroup: analysis.AgeInfant})
	for _, s := range []string{
		`"Good", "Moderate" or "Poor"`,
		`"Safe", "Moderate" or "Caution"`,
		`"Excellent", "Very Good" or "Good"`,
		`"Excellent", "Very Good", "Good", "Moderate" or "Poor"`,
	} {
		assert.Contains(t, p.System, s)
		assert.Contains(t, p.User, s)
	}
	assert.Contains(t, p.User, "None reported")
}

func TestBuild_Deterministic(t *testing.T) {
	req := analysis.Request{AgeGroup: analysis.AgeSchool, HealthConditions: []string{"Celiac"}, ExtractedText: "rice"}
	assert.Equal(t, Builder{}.Build(req), Builder{}.Build(req))
}
