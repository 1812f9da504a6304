package collect

import "time"

type Config struct {
	RequestTimeout time.Duration `envconfig:"KNN_COLLECT_REQUEST_TIMEOUT" default:"30s"`
	MaxRecords     int           `envconfig:"KNN_COLLECT_MAX_RECORDS" default:"10000"`
}
