package prompt

import (
	"fmt"
	"strings"

	"github.com/bryanwahyu/nutriguard/internal/domain/analysis"
)

// GetSystemPrompt provides the role, the rules and the strict JSON contract.
func GetSystemPrompt() string {
	return `You are an expert pediatric nutritionist. You analyze packaged food products for a specific child using the ingredient list read from the label and the health information supplied by the parent. You must produce one valid JSON object only (no markdown, no commentary, no code fences).

Rules:
- Base every judgement on the child's exact age group and health conditions.
- Assess each ingredient for nutritional impact and safety, using current pediatric nutrition research.
- Highlight potential allergens prominently and suggest allergen-free alternatives when relevant.
- Alternatives must be real, recognizable branded products available in major stores, not generic descriptions.
- Recommendations must be specific to this product and this child. Vary alternatives and recommendations from product to product and never fall back to generic boilerplate.
- "concerns" is only given for ingredients whose safety is Moderate or Caution.

Allowed values (use exactly these spellings):
- suitability: "Good", "Moderate" or "Poor"
- suitabilityRating: an integer from 0 to 100 consistent with suitability
- ingredients[].safety: "Safe", "Moderate" or "Caution"
- alternatives[].rating: "Excellent", "Very Good" or "Good"
- comparisonTable[].suitability: "Excellent", "Very Good", "Good", "Moderate" or "Poor"

Schema:
{
  "productName": "<string>",
  "productCategory": "<string>",
  "suitability": "<Good|Moderate|Poor>",
  "suitabilityRating": <integer 0-100>,
  "ingredients": [
    {"name": "<string>", "description": "<string>", "safety": "<Safe|Moderate|Caution>", "concerns": "<string, omit when Safe>"}
  ],
  "specialWarnings": [
    {"title": "<string>", "description": "<string>"}
  ],
  "alternatives": [
    {"name": "<string>", "description": "<string>", "rating": "<Excellent|Very Good|Good>", "benefits": ["<string>"]}
  ],
  "comparisonTable": [
    {"product": "<string>", "suitability": "<Excellent|Very Good|Good|Moderate|Poor>", "keyBenefits": "<string>", "freeFrom": "<string>"}
  ],
  "recommendations": ["<string>"]
}`
}

// GetUserPrompt embeds the child profile and label text. Output is fully determined by req.
func GetUserPrompt(req analysis.Request) string {
	conditions := strings.Join(req.Conditions(), ", ")
	if conditions == "" {
		conditions = "None reported"
	}
	notes := strings.TrimSpace(req.HealthNotes)
	if notes == "" {
		notes = "None"
	}
	text := strings.TrimSpace(req.ExtractedText)
	if text == "" {
		text = "(no text could be read from the label)"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Analyze this product for a child in the %s age group.\n\n", req.AgeGroup)
	fmt.Fprintf(&b, "Age Group: %s\n", req.AgeGroup)
	fmt.Fprintf(&b, "Known Health Conditions / Allergies / Restrictions: %s\n", conditions)
	fmt.Fprintf(&b, "Additional Parent Notes: %s\n", notes)
	fmt.Fprintf(&b, "Ingredients (extracted via OCR):\n%s\n\n", text)
	b.WriteString("Respond with the JSON object only. ")
	b.WriteString(`suitability must be "Good", "Moderate" or "Poor"; ingredient safety must be "Safe", "Moderate" or "Caution"; `)
	b.WriteString(`alternative rating must be "Excellent", "Very Good" or "Good"; comparison suitability must be "Excellent", "Very Good", "Good", "Moderate" or "Poor".`)
	return b.String()
}

// Builder implements analysis.PromptBuilder.
type Builder struct{}

func (Builder) Build(req analysis.Request) analysis.Prompt {
	return analysis.Prompt{System: GetSystemPrompt(), User: GetUserPrompt(req)}
}
