package database

type StorageType string

const (
	StorageTypeBolt  StorageType = "BOLT"
	StorageTypeRedis StorageType = "REDIS"
)

type Config struct {
	Type          StorageType `envconfig:"KNN_STORAGE_TYPE" default:"BOLT"`
	FileName      string      `envconfig:"KNN_DB_FILE" default:"knn.db"`
	RedisAddr     string      `envconfig:"KNN_REDIS_ADDR" default:"localhost:6379"`
	RedisDB       int         `envconfig:"KNN_REDIS_DB" default:"0"`
	RedisPassword string      `envconfig:"KNN_REDIS_PASSWORD"`
}
