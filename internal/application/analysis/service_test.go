package analysis

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domain "github.com/bryanwahyu/nutriguard/internal/domain/analysis"
)

type stubPrompts struct{}

func (stubPrompts) Build(req domain.Request) domain.Prompt {
	return domain.Prompt{System: "system", User: string(req.AgeGroup) + ":" + req.ExtractedText}
}

type fakeModel struct {
	text  string
	err   error
	block bool
	calls atomic.Int32
}

func (m *fakeModel) Complete(ctx context.Context, p domain.Prompt) (string, error) {
	m.calls.Add(1)
	if m.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return m.text, m.err
}

const goodResponse = `Here is the analysis:
{"productName":"Banana Oat Pouch","productCategory":"Baby Food","suitability":"Good","suitabilityRating":"high",
 "ingredients":[{"name":"Banana","description":"Fruit","safety":"Safe"}],"recommendations":["Serve chilled"]}`

func newTestService(m domain.Model, timeout time.Duration) *Service {
	return NewService(m, stubPrompts{}, timeout, zap.NewNop())
}

func TestAnalyze_ModelSuccess(t *testing.T) {
	m := &fakeModel{text: goodResponse}
	res, outcome, err := newTestService(m, 0).Analyze(context.Background(), domain.Request{AgeGroup: domain.AgeInfant, ExtractedText: "banana, oats"})
	require.NoError(t, err)

	assert.Equal(t, domain.SourceModel, outcome.Source)
	assert.Empty(t, outcome.Reason())
	assert.Equal(t, "Banana Oat Pouch", res.ProductName)
	assert.Equal(t, 85, res.SuitabilityRating)
	assert.Equal(t, []string{"Serve chilled"}, res.Recommendations)
	assert.Equal(t, int32(1), m.calls.Load())
}

func TestAnalyze_ValidationErrorSkipsModel(t *testing.T) {
	m := &fakeModel{text: goodResponse}
	_, _, err := newTestService(m, 0).Analyze(context.Background(), domain.Request{AgeGroup: "teen"})

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Zero(t, m.calls.Load())
}

func TestAnalyze_MissingCredentials(t *testing.T) {
	withKeyless := &fakeModel{err: domain.ErrMissingCredentials}
	reqA := domain.Request{AgeGroup: domain.AgeInfant, ExtractedText: "banana"}
	reqB := domain.Request{AgeGroup: domain.AgeSchool, HealthConditions: []string{"Celiac"}, ExtractedText: "wheat"}

	a, outA, err := newTestService(withKeyless, 0).Analyze(context.Background(), reqA)
	require.NoError(t, err)
	b, outB, err := newTestService(nil, 0).Analyze(context.Background(), reqB)
	require.NoError(t, err)

	assert.Equal(t, a.ProductName, b.ProductName)
	assert.Equal(t, domain.SuitabilityModerate, b.Suitability)
	assert.Equal(t, 50, a.SuitabilityRating)
	assert.Equal(t, 50, b.SuitabilityRating)
	assert.Equal(t, "missing_credentials", outA.Reason())
	assert.Equal(t, "missing_credentials", outB.Reason())
}

func TestAnalyze_TransportFailureFallsBack(t *testing.T) {
	m := &fakeModel{err: errors.New("status code: 503")}
	res, outcome, err := newTestService(m, 0).Analyze(context.Background(), domain.Request{AgeGroup: domain.AgePreschool, ExtractedText: "Sugar, salt"})
	require.NoError(t, err)

	assert.Equal(t, domain.SourceFallback, outcome.Source)
	assert.True(t, errors.Is(outcome.Failure, domain.ErrTransportFailure))
	assert.Equal(t, 65, res.SuitabilityRating)
	assert.Contains(t, res.Alternatives[0].Name, "Annie's")
	assert.Len(t, res.ComparisonTable, 3)
}

func TestAnalyze_MalformedOutputFallsBack(t *testing.T) {
	m := &fakeModel{text: "Sorry, I can't read that label."}
	res, outcome, err := newTestService(m, 0).Analyze(context.Background(), domain.Request{AgeGroup: domain.AgeSchool, ExtractedText: "cheese crackers"})
	require.NoError(t, err)

	assert.Equal(t, "malformed_output", outcome.Reason())
	assert.Equal(t, "Dairy Snack", res.ProductName)
	assert.Contains(t, res.Alternatives[0].Name, "Kind Kids")
}

func TestAnalyze_TimeoutIsTransportFailure(t *testing.T) {
	m := &fakeModel{block: true}
	_, outcome, err := newTestService(m, 20*time.Millisecond).Analyze(context.Background(), domain.Request{AgeGroup: domain.AgeInfant})
	require.NoError(t, err)

	assert.Equal(t, "transport_failure", outcome.Reason())
	assert.True(t, errors.Is(outcome.Failure, context.DeadlineExceeded))
}

func TestAnalyze_CallerCancellation(t *testing.T) {
	m := &fakeModel{block: true}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, outcome, err := newTestService(m, time.Minute).Analyze(ctx, domain.Request{AgeGroup: domain.AgeInfant})
	require.NoError(t, err)
	assert.Equal(t, domain.SourceFallback, outcome.Source)
	assert.NotEmpty(t, res.Recommendations)
}

func TestAnalyze_AlwaysStructurallyValid(t *testing.T) {
	models := []domain.Model{
		nil,
		&fakeModel{text: goodResponse},
		&fakeModel{text: `{"productName":"x","suitability":"Poor","ingredients":[]}`},
		&fakeModel{text: "{}"},
		&fakeModel{err: errors.New("boom")},
	}
	texts := []string{"", "water, pear", "MILK, sugar, natural flavors", "sweetpotato"}

	for _, m := range models {
		svc := newTestService(m, 0)
		for _, age := range domain.AgeGroups {
			for _, text := range texts {
				res, _, err := svc.Analyze(context.Background(), domain.Request{AgeGroup: age, ExtractedText: text})
				require.NoError(t, err)
				assert.NotEmpty(t, res.ProductName)
				assert.NotEmpty(t, res.Recommendations)
				assert.NotNil(t, res.Ingredients)
				assert.NotNil(t, res.SpecialWarnings)
				assert.NotNil(t, res.Alternatives)
				assert.NotNil(t, res.ComparisonTable)
				assert.GreaterOrEqual(t, res.SuitabilityRating, 0)
				assert.LessOrEqual(t, res.SuitabilityRating, 100)
			}
		}
	}
}

func TestNewService_RequiresPromptBuilder(t *testing.T) {
	assert.PanicsWithValue(t, "analysis: nil prompt builder", func() {
		NewService(&fakeModel{text: goodResponse}, nil, 0, nil)
	})
	assert.NotPanics(t, func() { NewService(nil, stubPrompts{}, 0, nil) })
}

func TestAnalyze_WrongTypedOptionalFieldsKeepModelResult(t *testing.T) {
	m := &fakeModel{text: `Here is the result in {JSON} form: {"productName":"Rice Puffs","suitability":"Good",
		"ingredients":[{"name":"Rice","concerns":["none"]}],"recommendations":"Offer sparingly",
		"alternatives":[{"name":"Oat Rings","benefits":"cheap"}]}`}
	res, outcome, err := newTestService(m, 0).Analyze(context.Background(), domain.Request{AgeGroup: domain.AgePreschool, ExtractedText: "rice"})
	require.NoError(t, err)

	assert.Equal(t, domain.SourceModel, outcome.Source)
	assert.Equal(t, "Rice Puffs", res.ProductName)
	assert.Equal(t, []string{"Offer sparingly"}, res.Recommendations)
	assert.Equal(t, []string{"cheap"}, res.Alternatives[0].Benefits)
}
