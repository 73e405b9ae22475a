package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bryanwahyu/nutriguard/internal/application"
	"github.com/bryanwahyu/nutriguard/internal/domain/analysis"
	domain "github.com/bryanwahyu/nutriguard/internal/domain/history"
)

type fakeRepo struct {
	saved   []*domain.Record
	saveErr error
	listErr error
	limit   int
}

func (f *fakeRepo) Save(_ context.Context, r *domain.Record) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, r)
	return nil
}

func (f *fakeRepo) ListByChild(_ context.Context, childID string, limit int) ([]*domain.Record, error) {
	f.limit = limit
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*domain.Record
	for i := len(f.saved) - 1; i >= 0; i-- {
		if f.saved[i].ChildID == childID {
			out = append(out, f.saved[i])
		}
	}
	return out, nil
}

var now = time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

func TestSave(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, application.FixedClock{T: now}, zap.NewNop())
	res := analysis.GeneralFallback(analysis.Request{AgeGroup: analysis.AgeInfant, ExtractedText: "pear"})

	rec := svc.Save(context.Background(), "child-1", "Ana", res)
	require.NotNil(t, rec)

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, now, rec.CreatedAt)
	assert.Equal(t, res, rec.Result)
	assert.Len(t, repo.saved, 1)
}

func TestSave_FailureReturnsNil(t *testing.T) {
	svc := NewService(&fakeRepo{saveErr: errors.New("db down")}, nil, nil)
	assert.Nil(t, svc.Save(context.Background(), "child-1", "Ana", analysis.CredentialsFallback()))
}

func TestList(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, application.FixedClock{T: now}, zap.NewNop())
	svc.Save(context.Background(), "child-1", "Ana", analysis.Result{ProductName: "first"})
	svc.Save(context.Background(), "child-2", "Ben", analysis.Result{ProductName: "other"})
	svc.Save(context.Background(), "child-1", "Ana", analysis.Result{ProductName: "second"})

	recs := svc.List(context.Background(), "child-1", 0)
	require.Len(t, recs, 2)
	assert.Equal(t, "second", recs[0].Result.ProductName)
	assert.Equal(t, defaultListLimit, repo.limit)
}

func TestList_FailureReturnsEmpty(t *testing.T) {
	svc := NewService(&fakeRepo{listErr: errors.New("timeout")}, nil, nil)
	recs := svc.List(context.Background(), "child-1", 10)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}
