package profiles

import (
	"time"

	"github.com/bryanwahyu/nutriguard/internal/domain/analysis"
)

type HealthCondition struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ChildProfile struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	AgeGroup         analysis.AgeGroup `json:"ageGroup"`
	HealthConditions []HealthCondition `json:"healthConditions"`
	DateOfBirth      string            `json:"dateOfBirth,omitempty"`
}

// ConditionNames returns the condition names in stored order.
func (c ChildProfile) ConditionNames() []string {
	out := make([]string, 0, len(c.HealthConditions))
	for _, hc := range c.HealthConditions {
		out = append(out, hc.Name)
	}
	return out
}

// UserProfile is the account document holding every child.
type UserProfile struct {
	Name     string         `json:"name"`
	Email    string         `json:"email"`
	Children []ChildProfile `json:"children"`
}

type NutritionalInfo struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

type Meal struct {
	Time            string          `json:"time"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Ingredients     []string        `json:"ingredients,omitempty"`
	NutritionalInfo NutritionalInfo `json:"nutritionalInfo"`
}

type MealPlan struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Description      string            `json:"description"`
	Meals            []Meal            `json:"meals"`
	TargetAgeGroup   analysis.AgeGroup `json:"targetAgeGroup"`
	HealthConditions []string          `json:"healthConditions"`
	CreatedAt        time.Time         `json:"createdAt"`
}
