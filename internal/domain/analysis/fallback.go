package analysis

import (
	"fmt"
	"strings"
)

const (
	credentialsFallbackRating = 50
	generalFallbackRating     = 65
)

// CredentialsFallback is the constant result returned when no model credential is configured.
// It explains the setup steps in-band and never depends on the request.
func CredentialsFallback() Result {
	return Result{
		ProductName:       "API Key Required",
		ProductCategory:   "Setup Required",
		Suitability:       SuitabilityModerate,
		SuitabilityRating: credentialsFallbackRating,
		Ingredients: []Ingredient{{
			Name:        "AI API Key Required",
			Description: "Missing API credentials for AI analysis",
			Safety:      SafetyModerate,
			Concerns:    "To analyze product ingredients, you need to add an AI provider API key to the application.",
		}},
		SpecialWarnings: []SpecialWarning{{
			Title:       "Missing API Key",
			Description: "This application requires an AI provider API key to analyze your product. Please add your API key to enable advanced analysis.",
		}},
		Alternatives: []Alternative{{
			Name:        "Setup Instructions",
			Description: "Get an API key from your AI provider",
			Rating:      RatingGood,
			Benefits:    []string{"Free tier available", "Powerful AI analysis", "Detailed ingredient assessments"},
		}},
		ComparisonTable: []ComparisonRow{{
			Product:     "Current Setup",
			Suitability: GradePoor,
			KeyBenefits: "None - Missing API key",
			FreeFrom:    "N/A",
		}},
		Recommendations: []string{
			"Get an API key from an OpenAI-compatible provider (for example https://ai.google.dev/ or https://platform.openai.com/)",
			"Add the API key to your environment variables as AI_API_KEY or set ai.apiKey in config.yaml",
			"Restart the application to enable ingredient analysis",
			"You can still use the application to extract text from images",
			"Contact support if you need assistance setting up the API key",
		},
	}
}

type categoryRule struct {
	keywords    []string
	productType string
	category    string
}

// evaluated in order, first hit wins
var categoryRules = []categoryRule{
	{[]string{"fruit", "apple", "banana"}, "Fruit Puree", "Baby Food"},
	{[]string{"veget", "carrot", "pea"}, "Vegetable Mix", "Baby Food"},
	{[]string{"cereal", "grain", "oat"}, "Infant Cereal", "Baby Breakfast"},
	{[]string{"milk", "formula"}, "Dairy Product", "Baby Formula"},
	{[]string{"yogurt", "cheese"}, "Dairy Snack", "Toddler Snack"},
	{[]string{"biscuit", "cracker"}, "Whole Grain Biscuits", "Toddler Snack"},
}

type catalogueEntry struct {
	name        string
	keywords    []string
	safety      Safety
	description string
	concern     string
}

var ingredientCatalogue = []catalogueEntry{
	{"Water", []string{"water"}, SafetySafe, "Base ingredient used for consistency", ""},
	{"Apple", []string{"apple"}, SafetySafe, "Natural source of fiber and vitamins", ""},
	{"Banana", []string{"banana"}, SafetySafe, "Rich in potassium and easily digestible carbohydrates", ""},
	{"Pear", []string{"pear"}, SafetySafe, "Gentle fruit that's easily digestible for babies", ""},
	{"Carrot", []string{"carrot"}, SafetySafe, "Excellent source of beta-carotene and vitamin A", ""},
	{"Sweet Potato", []string{"sweet potato", "sweetpotato"}, SafetySafe, "Nutritious root vegetable with vitamin A and fiber", ""},
	{"Rice", []string{"rice"}, SafetySafe, "Easily digestible grain, common in first solid foods", ""},
	{"Oats", []string{"oat"}, SafetySafe, "Whole grain providing fiber and nutrients", ""},
	{"Wheat", []string{"wheat"}, SafetyModerate, "Whole grain with protein and fiber, potential allergen",
		"Potential allergen, introduce gradually with pediatrician guidance"},
	{"Milk", []string{"milk"}, SafetyModerate, "Source of calcium and protein, potential allergen",
		"Common allergen, only appropriate after 12 months unless in formula"},
	{"Sugar", []string{"sugar"}, SafetyCaution, "Added sweetener with no nutritional benefits",
		"Not recommended for children under 2 years; can develop sweet preferences and contribute to tooth decay"},
	{"Salt", []string{"salt"}, SafetyCaution, "Added sodium not recommended for young children",
		"Not recommended for children under 1 year; kidney function still developing"},
	{"Corn Syrup", []string{"corn syrup"}, SafetyCaution, "Added sweetener with no nutritional benefits",
		"Added sugar with no nutritional value, may contribute to sweet preferences"},
	{"Natural Flavors", []string{"natural flavor"}, SafetyModerate, "Undefined flavor enhancers",
		"Undefined ingredients that may mask additives"},
	{"Ascorbic Acid", []string{"ascorbic acid"}, SafetySafe, "Vitamin C, acts as a natural preservative", ""},
	{"Citric Acid", []string{"citric acid"}, SafetySafe, "Natural preservative from citrus fruits", ""},
	{"Lemon Juice", []string{"lemon juice"}, SafetySafe, "Natural flavoring and preservative", ""},
}

type ageProfile struct {
	note            string
	alternatives    []Alternative
	recommendations []string
}

var ageProfiles = map[AgeGroup]ageProfile{
	AgeInfant: {
		note: "Their digestive and immune systems are still developing.",
		alternatives: []Alternative{
			{"Plum Organics Stage 2 Baby Food", "Simple organic ingredients perfect for infants and young toddlers", RatingExcellent,
				[]string{"No added sugar or salt", "USDA Organic certified", "Transparent ingredients"}},
			{"Beech-Nut Naturals Baby Food", "Made with whole ingredients, minimal processing", RatingVeryGood,
				[]string{"No artificial preservatives", "Honeypot jars for easy serving", "Naturally sweet from fruits"}},
			{"Happy Baby Clearly Crafted", "Transparent pouches with organic ingredients", RatingGood,
				[]string{"See-through packaging", "USDA Organic", "Baby-friendly textures"}},
		},
		recommendations: []string{
			"For infants and young toddlers, focus on simple, single-ingredient foods before introducing more complex combinations",
			"Avoid added salt, sugar, and artificial preservatives in foods for children under 2 years",
			"Serve appropriate textures - pureed for 4-6 months, mashed for 6-9 months, soft pieces for 9+ months",
			"Monitor for allergic reactions; wait 3-5 days between introducing new foods",
			"Consult your pediatrician before introducing potential allergens like dairy, eggs, or nuts",
		},
	},
	AgePreschool: {
		note: "They need nutrient-dense foods to support rapid growth and development.",
		alternatives: []Alternative{
			{"Annie's Organic Bunny Snacks", "Wholesome snacks made with organic wheat and minimal ingredients", RatingExcellent,
				[]string{"No artificial flavors or preservatives", "Portion-controlled packages", "Kid-friendly shapes"}},
			{"GoGo squeeZ Organic Applesauce", "Portable fruit snacks with no added sugar", RatingVeryGood,
				[]string{"100% fruit", "Convenient pouches", "USDA Organic"}},
			{"Made Good Granola Bars", "Allergen-free snack bars with hidden vegetable nutrients", RatingGood,
				[]string{"Free from top allergens", "Contains vegetable nutrients", "Appropriate portion size"}},
		},
		recommendations: []string{
			"For preschoolers (3-6 years), focus on balanced nutrition with growing independence in food choices",
			"Limit added sugars to less than 25g per day and prioritize whole food snacks",
			"Serve appropriate portions - generally 1 tablespoon of each food group per year of age",
			"Encourage self-feeding and exploration of different food textures and flavors",
			"Consider calcium-rich foods and vitamin D for developing bones and teeth",
		},
	},
	AgeSchool: {
		note: "They require balanced nutrition to support growth, activity, and cognitive development.",
		alternatives: []Alternative{
			{"Kind Kids Bars", "Whole grain bars with lower sugar content", RatingExcellent,
				[]string{"5g or less of sugar", "Good source of fiber", "No artificial flavors"}},
			{"Pirate's Booty Aged White Cheddar", "Baked corn puffs with real cheese and no artificial ingredients", RatingVeryGood,
				[]string{"Gluten-free", "No artificial flavors", "Lower fat than fried alternatives"}},
			{"RX Kids Protein Snack Bars", "Protein-rich snack with simple ingredients", RatingGood,
				[]string{"No added sugar", "5g protein per bar", "Clean ingredient list"}},
		},
		recommendations: []string{
			"For school-age children (7-10 years), focus on nutrient-dense foods to support growth and activity",
			"Aim for a variety of whole foods including fruits, vegetables, whole grains, lean proteins, and dairy",
			"Watch portion sizes and encourage mindful eating habits as independence grows",
			"Include sources of iron, calcium, and vitamin D to support rapid growth phases",
			"Help build healthy habits by involving children in meal planning and preparation",
		},
	},
}

// used when the age group matches no profile
var genericProfile = ageProfile{
	note: "They require balanced nutrition to support growth, activity, and cognitive development.",
	alternatives: []Alternative{
		{"Gerber Organic Baby Food", "Simple ingredients with organic certification", RatingExcellent,
			[]string{"No artificial additives", "USDA Organic certified", "Available in various stages for different ages"}},
		{"Happy Baby Organic", "Transparent ingredient sourcing with minimal processing", RatingVeryGood,
			[]string{"Organic ingredients", "No added sugars", "Stage-based options for developmental needs"}},
		{"Earth's Best Organic", "Wholesome organic options for growing children", RatingGood,
			[]string{"No artificial flavors or colors", "Non-GMO ingredients", "Age-appropriate nutritional content"}},
	},
	recommendations: []string{
		"Always read full ingredient labels when purchasing foods for young children",
		"For children under 2, choose foods with no added salt or sugar",
		"Introduce potential allergenic foods one at a time with pediatrician guidance",
		"Consider making simple homemade foods to control ingredients when possible",
		"Keep a food diary to track any reactions when introducing new foods to children with sensitivities",
	},
}

// GeneralFallback derives a best-effort result from the request alone using keyword heuristics.
// The output depends only on the request, so equal inputs give equal results.
func GeneralFallback(req Request) Result {
	text := strings.ToLower(req.ExtractedText)
	conditions := req.Conditions()

	productType, category := "Nutritious Food", "Children's Food"
	for _, rule := range categoryRules {
		if containsAny(text, rule.keywords) {
			productType, category = rule.productType, rule.category
			break
		}
	}

	ingredients := make([]Ingredient, 0, len(ingredientCatalogue))
	hasCaution := false
	addIngredient := func(e catalogueEntry) {
		in := Ingredient{Name: e.name, Description: e.description, Safety: e.safety}
		if e.safety != SafetySafe {
			in.Concerns = e.concern
			if in.Concerns == "" {
				in.Concerns = "Consult your pediatrician"
			}
		}
		if e.safety == SafetyCaution {
			hasCaution = true
		}
		ingredients = append(ingredients, in)
	}
	for _, e := range ingredientCatalogue {
		if containsAny(text, e.keywords) {
			addIngredient(e)
		}
	}
	if len(ingredients) == 0 {
		ingredients = append(ingredients, Ingredient{
			Name:        "Food Components",
			Description: "Nutritional elements suitable for young children",
			Safety:      SafetyModerate,
			// conditions is the merged list, additionalConditions included
			Concerns: fmt.Sprintf("For %ss with %s, consult with your pediatrician before introducing new foods.",
				req.AgeGroup, strings.Join(conditions, ", ")),
		})
	}

	profile, ok := ageProfiles[req.AgeGroup]
	if !ok {
		profile = genericProfile
	}

	freeFrom := "May contain common additives"
	if hasCaution {
		freeFrom = "Not fully assessed"
	}

	return Result{
		ProductName:       productType,
		ProductCategory:   category,
		Suitability:       SuitabilityModerate,
		SuitabilityRating: generalFallbackRating,
		Ingredients:       ingredients,
		SpecialWarnings: []SpecialWarning{{
			Title: fmt.Sprintf("Food Safety Notice for %s Year Olds", req.AgeGroup),
			Description: fmt.Sprintf("Children in the %s age range have specific nutritional needs. %s Always introduce new foods gradually and monitor for reactions.",
				req.AgeGroup, profile.note),
		}},
		Alternatives: cloneAlternatives(profile.alternatives),
		ComparisonTable: []ComparisonRow{
			{Product: productType, Suitability: GradeModerate, KeyBenefits: "Commercial convenience, professionally formulated", FreeFrom: freeFrom},
			{Product: "Gerber Organic", Suitability: GradeExcellent, KeyBenefits: "Simple, transparent ingredients", FreeFrom: "Artificial preservatives, colors, and flavors"},
			{Product: "Homemade Baby Food", Suitability: GradeVeryGood, KeyBenefits: "Complete control over ingredients", FreeFrom: "All unnecessary additives and processing"},
		},
		Recommendations: append([]string(nil), profile.recommendations...),
	}
}

// Fallback picks the synthesis mode for a failure.
func Fallback(req Request, failure error) Result {
	if Classify(failure) == FailureMissingCredentials {
		return CredentialsFallback()
	}
	return GeneralFallback(req)
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// the tables are shared, callers get their own copies
func cloneAlternatives(in []Alternative) []Alternative {
	out := make([]Alternative, len(in))
	for i, a := range in {
		a.Benefits = append([]string(nil), a.Benefits...)
		out[i] = a
	}
	return out
}
