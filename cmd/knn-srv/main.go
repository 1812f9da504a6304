package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-sod/knn/internal/buildinfo"
	"github.com/go-sod/knn/internal/classify"
	"github.com/go-sod/knn/internal/collect"
	knn "github.com/go-sod/knn/internal/config"
	"github.com/go-sod/knn/internal/datasets"
	"github.com/go-sod/knn/internal/logging"
	"github.com/go-sod/knn/internal/server"
	"github.com/go-sod/knn/internal/setup"
	"github.com/go-sod/knn/internal/shutdown"
)

func main() {
	_, _ = fmt.Fprint(os.Stdout, buildinfo.Graffiti)
	_, _ = fmt.Fprintf(
		os.Stdout,
		"%s: %s, %s\n",
		buildinfo.Info.Name(),
		buildinfo.Info.Time(),
		buildinfo.Info.Tag(),
	)

	ctx, done := shutdown.New()
	defer done()

	logger := logging.FromContext(ctx)
	if err := run(ctx, done); err != nil {
		logger.Fatal(err)
	}
}

func run(ctx context.Context, cancel func()) error {
	config := knn.Config{}
	env, err := setup.Setup(ctx, &config)
	if err != nil {
		return fmt.Errorf("setup.Setup: %w", err)
	}
	defer func() {
		_ = env.Close(context.Background())
	}()

	ctx = logging.WithLogger(ctx, env.Logger())
	logger := env.Logger()

	dispatcher, err := env.ProvideDispatcher()()
	if err != nil {
		return fmt.Errorf("dispatcher provider function error: %w", err)
	}
	defer dispatcher.Stop()

	if err := dispatcher.Run(ctx); err != nil {
		return fmt.Errorf("dispatcher.Run: %w", err)
	}

	srv, err := server.New(config.SrvAddr)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	mux := http.NewServeMux()

	classifyHandler, err := classify.NewHandler(&config.Classify, dispatcher)
	if err != nil {
		return fmt.Errorf("classify.NewHandler: %w", err)
	}
	collectHandler, err := collect.NewHandler(&config.Collect, dispatcher)
	if err != nil {
		return fmt.Errorf("collect.NewHandler: %w", err)
	}

	datasetsHandler, err := datasets.NewHandler(dispatcher)
	if err != nil {
		return fmt.Errorf("datasets.NewHandler: %w", err)
	}

	mux.Handle("/classify", classifyHandler)
	mux.Handle("/collect", collectHandler)
	mux.Handle("/datasets", datasetsHandler)
	mux.Handle("/health", server.HandleHealth(ctx))
	if h := env.MetricsHandler(); h != nil {
		mux.Handle("/metrics", h)
	}

	if config.PprofAddr != "" {
		go func() {
			logger.Infof("pprof listening on %s", config.PprofAddr)
			if err := http.ListenAndServe(config.PprofAddr, nil); err != nil {
				logger.Errorf("pprof listener: %v", err)
			}
		}()
	}

	logger.Infof("listening on %s", srv.Addr())
	if err := srv.ServeHTTPHandler(ctx, mux); err != nil {
		cancel()
		return fmt.Errorf("server.ServeHTTPHandler: %w", err)
	}
	return nil
}
