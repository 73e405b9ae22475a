package postgres

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bryanwahyu/nutriguard/internal/domain/analysis"
)

// stringOrDash returns "-" when the input is empty/whitespace
func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func decodeResult(raw []byte) (analysis.Result, error) {
	var res analysis.Result
	if err := json.Unmarshal(raw, &res); err != nil {
		return res, fmt.Errorf("decode result_json: %w", err)
	}
	if res.Ingredients == nil {
		res.Ingredients = []analysis.Ingredient{}
	}
	if res.SpecialWarnings == nil {
		res.SpecialWarnings = []analysis.SpecialWarning{}
	}
	if res.Alternatives == nil {
		res.Alternatives = []analysis.Alternative{}
	}
	if res.ComparisonTable == nil {
		res.ComparisonTable = []analysis.ComparisonRow{}
	}
	if res.Recommendations == nil {
		res.Recommendations = []string{}
	}
	return res, nil
}
