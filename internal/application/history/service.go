package history

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bryanwahyu/nutriguard/internal/application"
	"github.com/bryanwahyu/nutriguard/internal/domain/analysis"
	domain "github.com/bryanwahyu/nutriguard/internal/domain/history"
)

const defaultListLimit = 50

// Service persists finished analyses. Both operations are at-most-once and never
// surface errors; failures are logged and reported as nil / empty.
type Service struct {
	Repo  domain.Repository
	Clock application.Clock
	Log   *zap.Logger
}

func NewService(repo domain.Repository, clock application.Clock, log *zap.Logger) *Service {
	if clock == nil {
		clock = application.SystemClock{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{Repo: repo, Clock: clock, Log: log}
}

// Save stores a copy of res for the child and returns the persisted record, or nil on failure.
func (s *Service) Save(ctx context.Context, childID, childName string, res analysis.Result) *domain.Record {
	rec := &domain.Record{
		ID:        domain.RecordID(uuid.NewString()),
		ChildID:   childID,
		ChildName: childName,
		CreatedAt: s.Clock.Now(),
		Result:    res,
	}
	if err := s.Repo.Save(ctx, rec); err != nil {
		s.Log.Error("save analysis failed",
			zap.String("child_id", childID),
			zap.String("product", res.ProductName),
			zap.Error(err),
		)
		return nil
	}
	return rec
}

// List returns the child's records newest first. Errors yield an empty list.
func (s *Service) List(ctx context.Context, childID string, limit int) []*domain.Record {
	if limit <= 0 {
		limit = defaultListLimit
	}
	recs, err := s.Repo.ListByChild(ctx, childID, limit)
	if err != nil {
		s.Log.Error("list analysis history failed", zap.String("child_id", childID), zap.Error(err))
		return []*domain.Record{}
	}
	if recs == nil {
		recs = []*domain.Record{}
	}
	return recs
}
