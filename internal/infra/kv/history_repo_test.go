package kv

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/nutriguard/internal/domain/analysis"
	"github.com/bryanwahyu/nutriguard/internal/domain/history"
	"github.com/bryanwahyu/nutriguard/internal/infra/kv/memory"
)

func record(id, child string, at time.Time) *history.Record {
	return &history.Record{
		ID:        history.RecordID(id),
		ChildID:   child,
		ChildName: "Ayu",
		CreatedAt: at,
		Result:    analysis.GeneralFallback(analysis.Request{AgeGroup: analysis.AgeInfant, ExtractedText: "apple"}),
	}
}

func TestHistoryRepository_NewestFirstWithLimit(t *testing.T) {
	repo := NewHistoryRepository(memory.New())
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		require.NoError(t, repo.Save(ctx, record(fmt.Sprintf("r%d", i), "c1", base.Add(time.Duration(i)*time.Minute))))
	}
	require.NoError(t, repo.Save(ctx, record("other", "c2", base)))

	recs, err := repo.ListByChild(ctx, "c1", 3)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, history.RecordID("r3"), recs[0].ID)
	assert.Equal(t, history.RecordID("r1"), recs[2].ID)
	assert.Equal(t, "Ayu", recs[0].ChildName)
	assert.Equal(t, base.Add(3*time.Minute), recs[0].CreatedAt)
	assert.Equal(t, analysis.SuitabilityModerate, recs[0].Result.Suitability)
}

func TestHistoryRepository_UnknownChild(t *testing.T) {
	repo := NewHistoryRepository(memory.New())
	recs, err := repo.ListByChild(context.Background(), "nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestHistoryRepository_SaveSameIDReplaces(t *testing.T) {
	repo := NewHistoryRepository(memory.New())
	ctx := context.Background()
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Save(ctx, record("r1", "c1", at)))
	require.NoError(t, repo.Save(ctx, record("r1", "c1", at)))

	recs, err := repo.ListByChild(ctx, "c1", 0)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestHistoryRepository_CorruptDocument(t *testing.T) {
	store := memory.New()
	require.NoError(t, store.Set(context.Background(), "history:c1", []byte("not json")))

	_, err := NewHistoryRepository(store).ListByChild(context.Background(), "c1", 5)
	assert.Error(t, err)
}
