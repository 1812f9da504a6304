package evaluate

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sort"
	"strconv"
	"sync"

	"github.com/go-sod/knn/internal/knn"
	"github.com/go-sod/knn/pkg/rworker"
	"github.com/olekukonko/tablewriter"
)

// Report is the outcome of a leave-one-out run.
type Report struct {
	K       int
	Total   int
	Correct int
	// Confusion counts predictions per actual label.
	Confusion map[string]map[string]int
	// Predictions holds the predicted label of every record, in input order.
	Predictions []string
}

func (r *Report) Accuracy() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Total)
}

// Labels returns every actual or predicted label, sorted.
func (r *Report) Labels() []string {
	seen := map[string]struct{}{}
	for actual, row := range r.Confusion {
		seen[actual] = struct{}{}
		for predicted := range row {
			seen[predicted] = struct{}{}
		}
	}
	labels := make([]string, 0, len(seen))
	for l := range seen {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

type options struct {
	workers   int
	modelOpts []knn.Option
}

type Option func(*options)

// WithWorkers bounds the number of models trained at the same time.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

func WithModelOptions(opts ...knn.Option) Option {
	return func(o *options) {
		o.modelOpts = append(o.modelOpts, opts...)
	}
}

// LeaveOneOut trains a model on all records but one and classifies the one
// left out, for every record.
func LeaveOneOut(ctx context.Context, records []knn.Record, k int, opts ...Option) (*Report, error) {
	o := options{workers: runtime.NumCPU()}
	for _, f := range opts {
		f(&o)
	}
	if o.workers < 1 {
		o.workers = 1
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("leave-one-out needs at least 2 records: %w", knn.ErrEmptyTrainingSet)
	}

	predictions := make([]string, len(records))
	var (
		wg    sync.WaitGroup
		rate  = make(chan struct{}, o.workers)
		errCh = make(chan error, 1)
	)
	for i := range records {
		i := i
		rworker.Job(ctx, &wg, func() error {
			label, err := holdOut(records, i, k, o.modelOpts)
			if err != nil {
				return fmt.Errorf("record %d: %w", i, err)
			}
			predictions[i] = label
			return nil
		}, rate, errCh)
	}
	wg.Wait()
	select {
	case err := <-errCh:
		return nil, err
	default:
	}

	report := &Report{
		K:           k,
		Total:       len(records),
		Confusion:   map[string]map[string]int{},
		Predictions: predictions,
	}
	for i, r := range records {
		row, ok := report.Confusion[r.Label]
		if !ok {
			row = map[string]int{}
			report.Confusion[r.Label] = row
		}
		row[predictions[i]]++
		if predictions[i] == r.Label {
			report.Correct++
		}
	}
	return report, nil
}

func holdOut(records []knn.Record, idx, k int, opts []knn.Option) (string, error) {
	training := make([]knn.Record, 0, len(records)-1)
	training = append(training, records[:idx]...)
	training = append(training, records[idx+1:]...)
	m, err := knn.New(training, opts...)
	if err != nil {
		return "", err
	}
	return m.Classify(knn.NewQuery(records[idx].Attributes), k)
}

// Render writes the confusion table, actual labels as rows.
func (r *Report) Render(w io.Writer) {
	labels := r.Labels()
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(append([]string{"actual \\ predicted"}, labels...))
	for _, actual := range labels {
		row := []string{actual}
		for _, predicted := range labels {
			row = append(row, strconv.Itoa(r.Confusion[actual][predicted]))
		}
		tw.Append(row)
	}
	tw.SetFooter(append([]string{fmt.Sprintf("k=%d", r.K)}, footer(len(labels), r)...))
	tw.Render()
}

func footer(n int, r *Report) []string {
	cells := make([]string, n)
	if n > 0 {
		cells[n-1] = fmt.Sprintf("accuracy %d/%d (%.2f%%)", r.Correct, r.Total, r.Accuracy()*100)
	}
	return cells
}
