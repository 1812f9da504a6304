package database

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/go-redis/redis/v8"
	"github.com/go-sod/knn/internal/dataset/model"
)

const (
	redisDatasetKeys = "knn:datasets"
	redisPrefix      = "knn:dataset:"
)

var _ Store = (*RedisDB)(nil)

func NewRedis(client *redis.Client) *RedisDB {
	return &RedisDB{client: client}
}

// RedisDB stores each dataset as a list of JSON entries.
type RedisDB struct {
	client *redis.Client
}

func (db *RedisDB) Append(ctx context.Context, entries ...model.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	_, err := db.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, entry := range entries {
			bytes, err := json.Marshal(entry)
			if err != nil {
				return err
			}
			pipe.RPush(ctx, redisPrefix+entry.Dataset, bytes)
			pipe.SAdd(ctx, redisDatasetKeys, entry.Dataset)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis append error: %w", err)
	}
	return nil
}

func (db *RedisDB) Entries(ctx context.Context, dataset string) ([]model.Entry, error) {
	values, err := db.client.LRange(ctx, redisPrefix+dataset, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lrange error: %w", err)
	}
	if len(values) == 0 {
		return nil, ErrDatasetNotFound
	}
	list := make([]model.Entry, 0, len(values))
	for _, v := range values {
		var entry model.Entry
		if err := json.Unmarshal([]byte(v), &entry); err != nil {
			return nil, fmt.Errorf("json unmarshal error, %w", err)
		}
		list = append(list, entry)
	}
	return list, nil
}

func (db *RedisDB) Datasets(ctx context.Context) ([]string, error) {
	names, err := db.client.SMembers(ctx, redisDatasetKeys).Result()
	if err != nil {
		return nil, fmt.Errorf("redis smembers error: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

func (db *RedisDB) Delete(ctx context.Context, dataset string) error {
	n, err := db.client.Del(ctx, redisPrefix+dataset).Result()
	if err != nil {
		return fmt.Errorf("redis del error: %w", err)
	}
	if err := db.client.SRem(ctx, redisDatasetKeys, dataset).Err(); err != nil {
		return fmt.Errorf("redis srem error: %w", err)
	}
	if n == 0 {
		return ErrDatasetNotFound
	}
	return nil
}
