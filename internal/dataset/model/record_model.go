package model

import (
	"time"

	"github.com/go-sod/knn/internal/knn"
	"github.com/google/uuid"
)

func NewEntry(dataset string, record knn.Record, createdAt time.Time) Entry {
	return Entry{
		ID:         uuid.New(),
		Dataset:    dataset,
		Label:      record.Label,
		Attributes: record.Attributes,
		CreatedAt:  createdAt,
	}
}

// Entry is a stored training record.
type Entry struct {
	ID         uuid.UUID              `json:"id"`
	Dataset    string                 `json:"dataset"`
	Label      string                 `json:"label"`
	Attributes map[string]interface{} `json:"attributes"`
	CreatedAt  time.Time              `json:"createdAt"`
}

func (e Entry) Record() knn.Record {
	return knn.Record{Label: e.Label, Attributes: e.Attributes}
}

// Records converts entries back into training records, keeping their order.
func Records(entries []Entry) []knn.Record {
	records := make([]knn.Record, len(entries))
	for i := range entries {
		records[i] = entries[i].Record()
	}
	return records
}
