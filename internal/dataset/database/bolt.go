package database

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/go-sod/knn/internal/dataset/model"
	bolt "go.etcd.io/bbolt"
)

// datasetsBucket holds one nested bucket per dataset.
const datasetsBucket = "datasets"

var _ Store = (*BoltDB)(nil)

func NewBolt(db *bolt.DB) *BoltDB {
	return &BoltDB{db: db}
}

// BoltDB stores each dataset in its own nested bucket keyed by a monotonic
// sequence.
type BoltDB struct {
	db *bolt.DB
}

func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}

func (db *BoltDB) Append(_ context.Context, entries ...model.Entry) error {
	if err := db.db.Update(func(tx *bolt.Tx) error {
		root, err := tx.CreateBucketIfNotExists([]byte(datasetsBucket))
		if err != nil {
			return fmt.Errorf("unable create datasets bucket: %w", err)
		}
		for _, entry := range entries {
			b, err := root.CreateBucketIfNotExists([]byte(entry.Dataset))
			if err != nil {
				return fmt.Errorf("create bucket %q: %w", entry.Dataset, err)
			}
			seq, err := b.NextSequence()
			if err != nil {
				return fmt.Errorf("next sequence: %w", err)
			}
			bytes, err := json.Marshal(entry)
			if err != nil {
				return err
			}
			if err := b.Put(seqKey(seq), bytes); err != nil {
				return fmt.Errorf("put to bucket error: %w", err)
			}
		}
		return nil
	}); err != nil {
		return fmt.Errorf("update transaction error: %w", err)
	}

	return nil
}

func dataset(tx *bolt.Tx, name string) *bolt.Bucket {
	root := tx.Bucket([]byte(datasetsBucket))
	if root == nil {
		return nil
	}
	return root.Bucket([]byte(name))
}

func (db *BoltDB) Entries(_ context.Context, name string) ([]model.Entry, error) {
	var list []model.Entry
	if err := db.db.View(func(tx *bolt.Tx) error {
		b := dataset(tx, name)
		if b == nil {
			return ErrDatasetNotFound
		}
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var entry model.Entry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("json unmarshal error, %w", err)
			}
			list = append(list, entry)
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("view transaction error: %w", err)
	}

	return list, nil
}

func (db *BoltDB) Datasets(_ context.Context) ([]string, error) {
	var names []string
	err := db.db.View(func(tx *bolt.Tx) error {
		root := tx.Bucket([]byte(datasetsBucket))
		if root == nil {
			return nil
		}
		return root.ForEach(func(k, v []byte) error {
			if v == nil {
				names = append(names, string(k))
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("view transaction error: %w", err)
	}
	sort.Strings(names)

	return names, nil
}

func (db *BoltDB) Delete(_ context.Context, name string) error {
	if err := db.db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket([]byte(datasetsBucket))
		if root == nil {
			return ErrDatasetNotFound
		}
		if err := root.DeleteBucket([]byte(name)); err != nil {
			if errors.Is(err, bolt.ErrBucketNotFound) {
				return ErrDatasetNotFound
			}
			return fmt.Errorf("unable delete: %w", err)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("update transaction error: %w", err)
	}

	return nil
}
