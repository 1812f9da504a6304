package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"contrib.go.opencensus.io/exporter/prometheus"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var (
	ClassifyLatency = stats.Float64("knn/classify/latency", "Latency of a classify call", stats.UnitMilliseconds)
	ClassifyCount   = stats.Int64("knn/classify/count", "Number of classified queries", stats.UnitDimensionless)
	ModelRebuilds   = stats.Int64("knn/model/rebuilds", "Number of model rebuilds", stats.UnitDimensionless)
	ModelPoints     = stats.Int64("knn/model/points", "Training points of the current model", stats.UnitDimensionless)

	KeyDataset = tag.MustNewKey("dataset")
	KeyStatus  = tag.MustNewKey("status")
)

const (
	StatusOK    = "ok"
	StatusError = "error"
)

var Views = []*view.View{
	{
		Name:        "knn/classify/latency",
		Measure:     ClassifyLatency,
		Description: "Distribution of classify latency",
		TagKeys:     []tag.Key{KeyDataset, KeyStatus},
		Aggregation: view.Distribution(0.1, 0.5, 1, 5, 10, 50, 100, 500, 1000),
	},
	{
		Name:        "knn/classify/count",
		Measure:     ClassifyCount,
		Description: "Count of classified queries",
		TagKeys:     []tag.Key{KeyDataset, KeyStatus},
		Aggregation: view.Sum(),
	},
	{
		Name:        "knn/model/rebuilds",
		Measure:     ModelRebuilds,
		Description: "Count of model rebuilds",
		TagKeys:     []tag.Key{KeyDataset, KeyStatus},
		Aggregation: view.Count(),
	},
	{
		Name:        "knn/model/points",
		Measure:     ModelPoints,
		Description: "Training points of the current model",
		TagKeys:     []tag.Key{KeyDataset},
		Aggregation: view.LastValue(),
	},
}

// Register registers all views and returns the prometheus scrape handler.
func Register(namespace string) (http.Handler, error) {
	if err := view.Register(Views...); err != nil {
		return nil, fmt.Errorf("unable to register views: %w", err)
	}
	exporter, err := prometheus.NewExporter(prometheus.Options{Namespace: namespace})
	if err != nil {
		return nil, fmt.Errorf("unable to create prometheus exporter: %w", err)
	}
	return exporter, nil
}

func status(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusOK
}

func RecordClassify(ctx context.Context, dataset string, queries int, started time.Time, err error) {
	_ = stats.RecordWithTags(ctx,
		[]tag.Mutator{tag.Upsert(KeyDataset, dataset), tag.Upsert(KeyStatus, status(err))},
		ClassifyLatency.M(float64(time.Since(started))/float64(time.Millisecond)),
		ClassifyCount.M(int64(queries)),
	)
}

func RecordRebuild(ctx context.Context, dataset string, points int, err error) {
	_ = stats.RecordWithTags(ctx,
		[]tag.Mutator{tag.Upsert(KeyDataset, dataset), tag.Upsert(KeyStatus, status(err))},
		ModelRebuilds.M(1),
	)
	if err == nil {
		_ = stats.RecordWithTags(ctx,
			[]tag.Mutator{tag.Upsert(KeyDataset, dataset)},
			ModelPoints.M(int64(points)),
		)
	}
}
