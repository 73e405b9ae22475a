package analysis

import (
	"encoding/json"
	"sort"

	"github.com/xeipuuv/gojsonschema"

	domain "github.com/bryanwahyu/nutriguard/internal/domain/analysis"
)

const requestSchemaJSON = `{
  "type": "object",
  "required": ["ageGroup", "extractedText"],
  "properties": {
    "ageGroup": {"type": "string", "enum": ["0-2", "3-6", "7-10"]},
    "healthConditions": {"type": "array", "items": {"type": "string"}},
    "additionalConditions": {"type": "string"},
    "healthNotes": {"type": "string"},
    "extractedText": {"type": "string"}
  }
}`

var requestSchema = mustSchema(requestSchemaJSON)

func mustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic("analysis: invalid request schema: " + err.Error())
	}
	return s
}

// DecodeRequest validates an arbitrary JSON payload and returns the typed request.
// Every offending field is reported in a single *domain.ValidationError.
func DecodeRequest(payload []byte) (domain.Request, error) {
	verr := &domain.ValidationError{}

	var doc any
	if err := json.Unmarshal(payload, &doc); err != nil {
		verr.Add("body", "must be a JSON object")
		return domain.Request{}, verr
	}

	res, err := requestSchema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		verr.Add("body", err.Error())
		return domain.Request{}, verr
	}
	if !res.Valid() {
		for _, e := range res.Errors() {
			verr.Add(fieldOf(e), e.Description())
		}
		sort.SliceStable(verr.Fields, func(i, j int) bool { return verr.Fields[i].Field < verr.Fields[j].Field })
		return domain.Request{}, verr
	}

	var req domain.Request
	if err := json.Unmarshal(payload, &req); err != nil {
		verr.Add("body", err.Error())
		return domain.Request{}, verr
	}
	req.HealthConditions = domain.UniqueConditions(req.HealthConditions)
	return req, nil
}

// required errors are reported on the parent object, the property name lives in the details
func fieldOf(e gojsonschema.ResultError) string {
	if e.Type() == "required" {
		if p, ok := e.Details()["property"].(string); ok {
			return p
		}
	}
	return e.Field()
}
