package config

import (
	"github.com/go-sod/knn/internal/classify"
	"github.com/go-sod/knn/internal/collect"
	"github.com/go-sod/knn/internal/database"
	"github.com/go-sod/knn/internal/dispatcher"
	"github.com/go-sod/knn/internal/setup"
)

var (
	_ setup.LoggingConfigProvider    = (*Config)(nil)
	_ setup.DatabaseConfigProvider   = (*Config)(nil)
	_ setup.DispatcherConfigProvider = (*Config)(nil)
	_ setup.MetricsConfigProvider    = (*Config)(nil)
)

type Config struct {
	SrvAddr        string `envconfig:"KNN_ADDR" default:":8787"`
	PprofAddr      string `envconfig:"KNN_PPROF_ADDR"`
	LogLevel       string `envconfig:"KNN_LOG_LEVEL" default:"info"`
	LogDevelopment bool   `envconfig:"KNN_LOG_DEVELOPMENT"`
	Namespace      string `envconfig:"KNN_METRICS_NAMESPACE" default:"knn"`
	Dispatcher     dispatcher.Config
	Classify       classify.Config
	Collect        collect.Config
	Database       database.Config
}

func (c *Config) LoggingConfig() (string, bool) {
	return c.LogLevel, c.LogDevelopment
}

func (c *Config) DatabaseConfig() *database.Config {
	return &c.Database
}

func (c *Config) DispatcherConfig() *dispatcher.Config {
	return &c.Dispatcher
}

func (c *Config) MetricsNamespace() string {
	return c.Namespace
}
