package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-sod/knn/internal/database"
	"github.com/go-sod/knn/internal/dataset/model"
)

var ErrDatasetNotFound = errors.New("dataset not found")

// Store keeps training entries grouped by dataset name. Entries of a dataset
// are returned in the order they were appended.
type Store interface {
	Append(ctx context.Context, entries ...model.Entry) error
	Entries(ctx context.Context, dataset string) ([]model.Entry, error)
	Datasets(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, dataset string) error
}

// New picks the store matching the open connection.
func New(db *database.DB) (Store, error) {
	switch {
	case db == nil:
		return nil, fmt.Errorf("database is not created")
	case db.DB != nil:
		return NewBolt(db.DB), nil
	case db.Redis != nil:
		return NewRedis(db.Redis), nil
	default:
		return nil, fmt.Errorf("database has no open connection")
	}
}
