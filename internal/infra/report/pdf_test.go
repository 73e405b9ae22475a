package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/nutriguard/internal/domain/analysis"
)

func sampleResult() analysis.Result {
	return analysis.GeneralFallback(analysis.Request{
		AgeGroup:         analysis.AgePreschool,
		HealthConditions: []string{"Peanut allergy"},
		ExtractedText:    "Sugar, milk, natural flavors, salt",
	})
}

func TestRender_ProducesPDF(t *testing.T) {
	out, err := Render(sampleResult(), Context{
		ChildName:        "Ayu",
		AgeGroup:         analysis.AgePreschool,
		HealthConditions: []string{"Peanut allergy"},
		GeneratedAt:      time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Contains(t, string(out[len(out)-16:]), "%%EOF")
}

func TestRender_LongContentAndSparseResult(t *testing.T) {
	res := sampleResult()
	for i := 0; i < 60; i++ {
		res.Ingredients = append(res.Ingredients, analysis.Ingredient{
			Name:        "Ingredient",
			Description: strings.Repeat("long description ", 8),
			Safety:      analysis.SafetyCaution,
			Concerns:    "café-grade crème",
		})
	}
	out, err := Render(res, Context{AgeGroup: analysis.AgeSchool})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))

	empty := analysis.Result{ProductName: "x", Suitability: analysis.SuitabilityPoor, Recommendations: analysis.DefaultRecommendations()}
	_, err = Render(empty, Context{AgeGroup: analysis.AgeInfant})
	require.NoError(t, err)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "Banana_Oat_Pouch_Analysis.pdf", FileName(analysis.Result{ProductName: "Banana Oat Pouch"}))
	assert.Equal(t, "Product_Analysis.pdf", FileName(analysis.Result{}))
}
