package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/go-sod/knn/internal/logging"
	bolt "go.etcd.io/bbolt"
)

// DB holds the connection of the configured storage backend. Exactly one of
// the fields is set.
type DB struct {
	DB    *bolt.DB
	Redis *redis.Client
}

func NewFromEnv(ctx context.Context, config *Config) (*DB, error) {
	logger := logging.FromContext(ctx)
	logger.Infof("creating %s db connection", config.Type)

	switch config.Type {
	case StorageTypeBolt, "":
		db, err := bolt.Open(config.FileName, 0600, &bolt.Options{Timeout: 5 * time.Second})
		if err != nil {
			return nil, fmt.Errorf("creating connection Db: %w", err)
		}
		return &DB{DB: db}, nil
	case StorageTypeRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     config.RedisAddr,
			Password: config.RedisPassword,
			DB:       config.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("creating connection Redis: %w", err)
		}
		return &DB{Redis: client}, nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", config.Type)
	}
}

func (db *DB) Close(ctx context.Context) error {
	logger := logging.FromContext(ctx)
	logger.Infof("closing DB connection")

	if db.DB != nil {
		if err := db.DB.Close(); err != nil {
			return fmt.Errorf("error close Db connection: %w", err)
		}
	}
	if db.Redis != nil {
		if err := db.Redis.Close(); err != nil {
			return fmt.Errorf("error close Redis connection: %w", err)
		}
	}

	return nil
}
