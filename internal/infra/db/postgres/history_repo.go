package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	domain "github.com/bryanwahyu/nutriguard/internal/domain/history"
)

type HistoryRepository struct {
	db *sql.DB
}

func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) EnsureSchema(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS analysis_history (
  id TEXT PRIMARY KEY,
  child_id TEXT NOT NULL,
  child_name TEXT NOT NULL,
  product_name TEXT NOT NULL,
  suitability TEXT NOT NULL,
  suitability_rating INTEGER NOT NULL,
  result_json JSONB NOT NULL,
  created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_analysis_history_child ON analysis_history (child_id, created_at DESC);
`
	_, err := r.db.ExecContext(ctx, q)
	return err
}

// Save inserts or updates an analysis record
func (r *HistoryRepository) Save(ctx context.Context, rec *domain.Record) error {
	const q = `
INSERT INTO analysis_history
  (id, child_id, child_name, product_name, suitability, suitability_rating, result_json, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO UPDATE SET
  child_name=EXCLUDED.child_name,
  product_name=EXCLUDED.product_name,
  suitability=EXCLUDED.suitability,
  suitability_rating=EXCLUDED.suitability_rating,
  result_json=EXCLUDED.result_json;
`
	result, err := json.Marshal(rec.Result)
	if err != nil {
		return err
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err = r.db.ExecContext(ctx, q,
		string(rec.ID), rec.ChildID, stringOrDash(rec.ChildName),
		stringOrDash(rec.Result.ProductName), string(rec.Result.Suitability), rec.Result.SuitabilityRating,
		string(result), createdAt,
	)
	return err
}

// ListByChild returns records ordered by created_at desc
func (r *HistoryRepository) ListByChild(ctx context.Context, childID string, limit int) ([]*domain.Record, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
SELECT id, child_id, child_name, result_json, created_at
FROM analysis_history
WHERE child_id=$1
ORDER BY created_at DESC, id DESC
LIMIT $2;
`
	rows, err := r.db.QueryContext(ctx, q, childID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Record{}
	for rows.Next() {
		var (
			rec     domain.Record
			id      string
			raw     []byte
			created time.Time
		)
		if err := rows.Scan(&id, &rec.ChildID, &rec.ChildName, &raw, &created); err != nil {
			return nil, err
		}
		if rec.Result, err = decodeResult(raw); err != nil {
			return nil, err
		}
		rec.ID = domain.RecordID(id)
		rec.CreatedAt = created.UTC()
		out = append(out, &rec)
	}
	return out, rows.Err()
}
