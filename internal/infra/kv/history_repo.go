package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/bryanwahyu/nutriguard/internal/domain/history"
	domainkv "github.com/bryanwahyu/nutriguard/internal/domain/kv"
)

// MaxRecordsPerChild bounds the document stored under one history key.
const MaxRecordsPerChild = 500

func historyKey(childID string) string { return "history:" + childID }

// HistoryRepository keeps each child's history as one JSON array, newest first.
// Used when no SQL database is configured.
type HistoryRepository struct {
	Store domainkv.Store

	mu sync.Mutex
}

func NewHistoryRepository(store domainkv.Store) *HistoryRepository {
	return &HistoryRepository{Store: store}
}

func (r *HistoryRepository) Save(ctx context.Context, rec *history.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	recs, err := r.load(ctx, rec.ChildID)
	if err != nil {
		return err
	}
	kept := make([]*history.Record, 0, len(recs)+1)
	kept = append(kept, rec)
	for _, existing := range recs {
		if existing.ID != rec.ID {
			kept = append(kept, existing)
		}
	}
	sortNewestFirst(kept)
	if len(kept) > MaxRecordsPerChild {
		kept = kept[:MaxRecordsPerChild]
	}

	data, err := json.Marshal(kept)
	if err != nil {
		return err
	}
	return r.Store.Set(ctx, historyKey(rec.ChildID), data)
}

func (r *HistoryRepository) ListByChild(ctx context.Context, childID string, limit int) ([]*history.Record, error) {
	recs, err := r.load(ctx, childID)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(recs)
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

func (r *HistoryRepository) load(ctx context.Context, childID string) ([]*history.Record, error) {
	data, err := r.Store.Get(ctx, historyKey(childID))
	if errors.Is(err, domainkv.ErrNotFound) {
		return []*history.Record{}, nil
	}
	if err != nil {
		return nil, err
	}
	var recs []*history.Record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("decode history for %s: %w", childID, err)
	}
	return recs, nil
}

func sortNewestFirst(recs []*history.Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].CreatedAt.After(recs[j].CreatedAt)
	})
}
