package history

import "context"

// Repository port for persisting and querying saved analyses
type Repository interface {
	Save(ctx context.Context, r *Record) error
	// ListByChild returns at most limit records, newest first.
	ListByChild(ctx context.Context, childID string, limit int) ([]*Record, error)
}
