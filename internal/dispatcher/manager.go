package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-sod/knn/internal/dataset/database"
	"github.com/go-sod/knn/internal/dataset/model"
	"github.com/go-sod/knn/internal/knn"
	"github.com/go-sod/knn/internal/logging"
	"github.com/go-sod/knn/internal/metrics"
	"golang.org/x/sync/errgroup"
)

var (
	ErrUnknownDataset = errors.New("unknown dataset")
	ErrClosed         = errors.New("dispatcher is shutting down")
)

// Contract for returning the Manager instance
type ProvideFn func() (Manager, error)

// Manager keeps one trained model per dataset and rebuilds it whenever the
// dataset changes.
type Manager interface {
	CollectClassifier
	Registry
	// Loads every stored dataset and trains its model
	Run(context.Context) error
	// Stops accepting requests
	Stop()
}

// Collector accepts new training records
type Collector interface {
	// Appends records to the dataset and retrains its model
	Collect(ctx context.Context, dataset string, records ...knn.Record) error
}

// Classifier predicts labels with the current model of a dataset
type Classifier interface {
	// Classify predicts the label of a single query
	Classify(ctx context.Context, dataset string, query map[string]interface{}, k int) (string, error)
	// ClassifyMany predicts labels for a batch of queries, keeping their order
	ClassifyMany(ctx context.Context, dataset string, queries []map[string]interface{}, k int) ([]string, error)
}

// Registry lists and drops datasets
type Registry interface {
	// Datasets returns the names of the datasets with a trained model, sorted
	Datasets() []string
	// Delete drops the stored records and the model of a dataset
	Delete(ctx context.Context, dataset string) error
}

// Aggregation interface for Collector and Classifier interfaces
type CollectClassifier interface {
	Collector
	Classifier
}

type Options struct {
	k         int
	modelOpts []knn.Option
}

type Option func(*manager)

// WithK sets the k used when a request does not specify one.
func WithK(k int) Option {
	return func(m *manager) {
		m.opts.k = k
	}
}

// WithModelOptions are passed to every model the manager trains.
func WithModelOptions(opts ...knn.Option) Option {
	return func(m *manager) {
		m.opts.modelOpts = append(m.opts.modelOpts, opts...)
	}
}

const defaultK = 5

// New return manager
func New(store database.Store, opts ...Option) (*manager, error) {
	if store == nil {
		return nil, fmt.Errorf("dataset store is not created")
	}
	m := &manager{
		store:  store,
		models: map[string]*knn.Model{},
		opts:   Options{k: defaultK},
	}
	for _, f := range opts {
		f(m)
	}
	if m.opts.k < 1 {
		return nil, fmt.Errorf("default k must be positive, got %d", m.opts.k)
	}
	return m, nil
}

type manager struct {
	mtx sync.RWMutex
	// serializes dataset writes so a model is never rebuilt from stale data
	writeMtx sync.Mutex

	opts   Options
	store  database.Store
	models map[string]*knn.Model
	closed bool
}

// The Run method loads every stored dataset and trains its model
func (m *manager) Run(ctx context.Context) error {
	logger := logging.FromContext(ctx)
	names, err := m.store.Datasets(ctx)
	if err != nil {
		return fmt.Errorf("can not list datasets: %w", err)
	}
	for _, name := range names {
		entries, err := m.store.Entries(ctx, name)
		if err != nil {
			return fmt.Errorf("can not load dataset %s: %w", name, err)
		}
		if err := m.rebuild(ctx, name, model.Records(entries)); err != nil {
			return fmt.Errorf("can not train dataset %s: %w", name, err)
		}
		logger.Infof("loaded dataset %s with %d records", name, len(entries))
	}
	return nil
}

// Stop the manager
func (m *manager) Stop() {
	m.mtx.Lock()
	m.closed = true
	m.mtx.Unlock()
}

// Datasets returns the names of the datasets with a trained model
func (m *manager) Datasets() []string {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	names := make([]string, 0, len(m.models))
	for name := range m.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Collect trains a new model on the stored records plus the new ones. The
// records are persisted only if the model could be built.
func (m *manager) Collect(ctx context.Context, dataset string, records ...knn.Record) error {
	if len(records) == 0 {
		return nil
	}
	if m.isClosed() {
		return ErrClosed
	}
	m.writeMtx.Lock()
	defer m.writeMtx.Unlock()

	var current []knn.Record
	entries, err := m.store.Entries(ctx, dataset)
	switch {
	case errors.Is(err, database.ErrDatasetNotFound):
	case err != nil:
		return fmt.Errorf("can not load dataset %s: %w", dataset, err)
	default:
		current = model.Records(entries)
	}

	trained, err := m.train(ctx, dataset, append(current, records...))
	if err != nil {
		return err
	}

	now := time.Now()
	newEntries := make([]model.Entry, len(records))
	for i := range records {
		newEntries[i] = model.NewEntry(dataset, records[i], now)
	}
	if err := m.store.Append(ctx, newEntries...); err != nil {
		return fmt.Errorf("can not store records: %w", err)
	}

	m.mtx.Lock()
	m.models[dataset] = trained
	m.mtx.Unlock()
	logging.FromContext(ctx).Infof("collected %d records for dataset %s", len(records), dataset)
	return nil
}

// Delete drops the dataset and its model
func (m *manager) Delete(ctx context.Context, dataset string) error {
	if m.isClosed() {
		return ErrClosed
	}
	m.writeMtx.Lock()
	defer m.writeMtx.Unlock()
	err := m.store.Delete(ctx, dataset)
	if err != nil && !errors.Is(err, database.ErrDatasetNotFound) {
		return fmt.Errorf("can not delete dataset %s: %w", dataset, err)
	}
	m.mtx.Lock()
	_, trained := m.models[dataset]
	delete(m.models, dataset)
	m.mtx.Unlock()
	if err != nil && !trained {
		return fmt.Errorf("%w: %s", ErrUnknownDataset, dataset)
	}
	logging.FromContext(ctx).Infof("deleted dataset %s", dataset)
	return nil
}

func (m *manager) Classify(ctx context.Context, dataset string, query map[string]interface{}, k int) (string, error) {
	labels, err := m.ClassifyMany(ctx, dataset, []map[string]interface{}{query}, k)
	if err != nil {
		return "", err
	}
	return labels[0], nil
}

func (m *manager) ClassifyMany(ctx context.Context, dataset string, queries []map[string]interface{}, k int) (labels []string, err error) {
	started := time.Now()
	defer func() {
		metrics.RecordClassify(ctx, dataset, len(queries), started, err)
	}()

	trained, err := m.model(dataset)
	if err != nil {
		return nil, err
	}
	if k == 0 {
		k = m.opts.k
		if k > trained.Len() {
			k = trained.Len()
		}
	}

	labels = make([]string, len(queries))
	errGrp, ctx := errgroup.WithContext(ctx)
	for i := range queries {
		i := i
		errGrp.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			label, err := trained.Classify(knn.NewQuery(queries[i]), k)
			if err != nil {
				return fmt.Errorf("query %d: %w", i, err)
			}
			labels[i] = label
			return nil
		})
	}
	if err := errGrp.Wait(); err != nil {
		return nil, err
	}
	return labels, nil
}

func (m *manager) model(dataset string) (*knn.Model, error) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	trained, ok := m.models[dataset]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDataset, dataset)
	}
	return trained, nil
}

func (m *manager) isClosed() bool {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return m.closed
}

func (m *manager) train(ctx context.Context, dataset string, records []knn.Record) (*knn.Model, error) {
	trained, err := knn.New(records, m.opts.modelOpts...)
	metrics.RecordRebuild(ctx, dataset, len(records), err)
	if err != nil {
		return nil, fmt.Errorf("can not train dataset %s: %w", dataset, err)
	}
	return trained, nil
}

func (m *manager) rebuild(ctx context.Context, dataset string, records []knn.Record) error {
	trained, err := m.train(ctx, dataset, records)
	if err != nil {
		return err
	}
	m.mtx.Lock()
	m.models[dataset] = trained
	m.mtx.Unlock()
	return nil
}
