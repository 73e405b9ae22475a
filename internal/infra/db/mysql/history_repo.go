package mysql

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

// EnsureSchema creates the history table when missing
func (r *HistoryRepository) EnsureSchema(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS analysis_history (
  id VARCHAR(36) NOT NULL PRIMARY KEY,
  child_id VARCHAR(64) NOT NULL,
  child_name VARCHAR(255) NOT NULL,
  product_name VARCHAR(255) NOT NULL,
  suitability VARCHAR(16) NOT NULL,
  suitability_rating INT NOT NULL,
  result_json JSON NOT NULL,
  created_at DATETIME(3) NOT NULL,
  INDEX idx_analysis_history_child (child_id, created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
`
	_, err := r.db.ExecContext(ctx, q)
	return err
}

// Save inserts an analysis record
func (r *HistoryRepository) Save(ctx context.Context, rec *domain.Record) error {
	const q = `
INSERT INTO analysis_history
  (id, child_id, child_name, product_name, suitability, suitability_rating, result_json, created_at)
VALUES (?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
  child_name=VALUES(child_name), product_name=VALUES(product_name), suitability=VALUES(suitability),
  suitability_rating=VALUES(suitability_rating), result_json=VALUES(result_json);
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
WHERE child_id=?
ORDER BY created_at DESC, id DESC
LIMIT ?;
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
