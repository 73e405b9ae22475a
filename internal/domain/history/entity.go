package history

import (
	"encoding/json"
	"time"

	"github.com/bryanwahyu/nutriguard/internal/domain/analysis"
)

// RecordID identifier type
type RecordID string

// Record is an analysis result saved for a child.
type Record struct {
	ID        RecordID
	ChildID   string
	ChildName string
	CreatedAt time.Time
	Result    analysis.Result
}

// MarshalJSON flattens the result next to the record fields, timestamp in unix millis.
func (r Record) MarshalJSON() ([]byte, error) {
	type flat struct {
		ID        RecordID `json:"id"`
		ChildID   string   `json:"childId"`
		ChildName string   `json:"childName"`
		Timestamp int64    `json:"timestamp"`
		analysis.Result
	}
	return json.Marshal(flat{
		ID:        r.ID,
		ChildID:   r.ChildID,
		ChildName: r.ChildName,
		Timestamp: r.CreatedAt.UnixMilli(),
		Result:    r.Result,
	})
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var flat struct {
		ID        RecordID `json:"id"`
		ChildID   string   `json:"childId"`
		ChildName string   `json:"childName"`
		Timestamp int64    `json:"timestamp"`
		analysis.Result
	}
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	*r = Record{
		ID:        flat.ID,
		ChildID:   flat.ChildID,
		ChildName: flat.ChildName,
		CreatedAt: time.UnixMilli(flat.Timestamp).UTC(),
		Result:    flat.Result,
	}
	return nil
}
