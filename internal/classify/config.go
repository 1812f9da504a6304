package classify

import "time"

type Config struct {
	RequestTimeout time.Duration `envconfig:"KNN_CLASSIFY_REQUEST_TIMEOUT" default:"30s"`
	MaxQueries     int           `envconfig:"KNN_CLASSIFY_MAX_QUERIES" default:"100"`
}
