package setup

import (
	"context"
	"fmt"

	"github.com/go-sod/knn/internal/database"
	dsdb "github.com/go-sod/knn/internal/dataset/database"
	dsio "github.com/go-sod/knn/internal/dataset/io"
	"github.com/go-sod/knn/internal/dispatcher"
	"github.com/go-sod/knn/internal/knn"
	"github.com/go-sod/knn/internal/logging"
	"github.com/go-sod/knn/internal/metrics"
	"github.com/go-sod/knn/internal/srvenv"
	"github.com/kelseyhightower/envconfig"
)

type LoggingConfigProvider interface {
	LoggingConfig() (level string, development bool)
}

type DatabaseConfigProvider interface {
	DatabaseConfig() *database.Config
}

type DispatcherConfigProvider interface {
	DispatcherConfig() *dispatcher.Config
}

type MetricsConfigProvider interface {
	MetricsNamespace() string
}

// Setup reads the environment into config and wires every component the
// config asks for.
func Setup(ctx context.Context, config interface{}) (*srvenv.SrvEnv, error) {
	var serverEnvOpts []srvenv.Option
	if err := envconfig.Process("", config); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	if loggingConfigProvider, ok := config.(LoggingConfigProvider); ok {
		logger := logging.NewLogger(loggingConfigProvider.LoggingConfig())
		ctx = logging.WithLogger(ctx, logger)
		serverEnvOpts = append(serverEnvOpts, srvenv.WithLogger(logger))
	}
	logger := logging.FromContext(ctx)

	var db *database.DB
	if dbConfigProvider, ok := config.(DatabaseConfigProvider); ok {
		logger.Info("Configuring db")
		dbFromEnv, err := database.NewFromEnv(ctx, dbConfigProvider.DatabaseConfig())
		if err != nil {
			return nil, fmt.Errorf("unable to connect to database: %w", err)
		}
		db = dbFromEnv
		serverEnvOpts = append(serverEnvOpts, srvenv.WithDatabase(db))
	}

	if metricsConfigProvider, ok := config.(MetricsConfigProvider); ok {
		logger.Info("Configuring metrics")
		handler, err := metrics.Register(metricsConfigProvider.MetricsNamespace())
		if err != nil {
			return nil, fmt.Errorf("unable to register metrics: %w", err)
		}
		serverEnvOpts = append(serverEnvOpts, srvenv.WithMetricsHandler(handler))
	}

	if dispatcherConfigProvider, ok := config.(DispatcherConfigProvider); ok {
		logger.Info("Configuring dispatcher")
		provideFn, err := ProvideDispatcherFor(dispatcherConfigProvider.DispatcherConfig(), db)
		if err != nil {
			return nil, fmt.Errorf("unable create dispatcher provide function: %w", err)
		}
		serverEnvOpts = append(serverEnvOpts, srvenv.WithDispatcher(provideFn))
	}

	return srvenv.New(serverEnvOpts...), nil
}

func ProvideDispatcherFor(cfg *dispatcher.Config, db *database.DB) (dispatcher.ProvideFn, error) {
	modelOpts, err := ModelOptionsFor(cfg)
	if err != nil {
		return nil, err
	}
	return func() (dispatcher.Manager, error) {
		store, err := dsdb.New(db)
		if err != nil {
			return nil, fmt.Errorf("unable create dataset store: %w", err)
		}
		return dispatcher.New(
			store,
			dispatcher.WithK(cfg.K),
			dispatcher.WithModelOptions(modelOpts...),
		)
	}, nil
}

// ModelOptionsFor translates the dispatcher config into model options.
func ModelOptionsFor(cfg *dispatcher.Config) ([]knn.Option, error) {
	if _, err := knn.MetricFor(knn.MetricType(cfg.Metric)); err != nil {
		return nil, err
	}
	opts := []knn.Option{
		knn.WithTieBreak(knn.TieBreak(cfg.TieBreak)),
		knn.WithMetric(knn.MetricType(cfg.Metric)),
		knn.WithMissingPolicy(knn.MissingPolicy(cfg.MissingPolicy)),
	}
	if cfg.Seed != 0 {
		opts = append(opts, knn.WithSeed(cfg.Seed))
	}
	if cfg.WeightsFile != "" {
		weights, err := dsio.LoadWeights(cfg.WeightsFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, knn.WithWeights(weights))
	}
	return opts, nil
}
