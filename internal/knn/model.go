package knn

import (
	"fmt"
	"sort"

	"github.com/go-sod/knn/pkg/pqueue"
)

// Neighbor is a training point ranked by its distance to a query.
type Neighbor struct {
	Point    *Point
	Distance float64
	// Index is the position of the point in the training data.
	Index int
}

// Model is a trained kNN classifier. It is read-only after New and safe for
// concurrent use.
type Model struct {
	points   []*Point
	features FeatureSet
	keys     []string
	metric   MetricFn
	opts     options
}

// New builds the points in input order and extracts the feature set once.
func New(records []Record, opts ...Option) (*Model, error) {
	if len(records) == 0 {
		return nil, ErrEmptyTrainingSet
	}
	o := defaultOptions()
	for _, f := range opts {
		f(&o)
	}
	if err := o.validate(); err != nil {
		return nil, fmt.Errorf("invalid model options: %w", err)
	}
	metric, err := MetricFor(o.metric)
	if err != nil {
		return nil, fmt.Errorf("invalid model options: %w", err)
	}

	points := make([]*Point, len(records))
	for i := range records {
		points[i] = NewPoint(records[i].Label, records[i].Attributes)
	}
	features, err := extractFeatures(points, o)
	if err != nil {
		return nil, fmt.Errorf("unable to extract features: %w", err)
	}

	return &Model{
		points:   points,
		features: features,
		keys:     features.Keys(),
		metric:   metric,
		opts:     o,
	}, nil
}

// Len is the number of training points.
func (m *Model) Len() int {
	return len(m.points)
}

// Features returns the extracted features. Callers must not mutate them.
func (m *Model) Features() FeatureSet {
	return m.features
}

// Labels returns the distinct training labels, sorted.
func (m *Model) Labels() []string {
	seen := map[string]struct{}{}
	var labels []string
	for _, p := range m.points {
		if _, ok := seen[p.label]; !ok {
			seen[p.label] = struct{}{}
			labels = append(labels, p.label)
		}
	}
	sort.Strings(labels)
	return labels
}

// Distance combines the contributions of every feature between a and b.
func (m *Model) Distance(a, b *Point) float64 {
	contributions := make([]float64, len(m.keys))
	m.contribute(a, b, contributions)
	return m.metric(contributions)
}

func (m *Model) contribute(a, b *Point, dst []float64) {
	for i, key := range m.keys {
		dst[i] = m.features[key].Distance(a, b)
	}
}

// Neighbors returns the k training points closest to query, nearest first.
// Points at equal distance keep their training order. The returned points are
// copies.
func (m *Model) Neighbors(query *Point, k int) ([]Neighbor, error) {
	nn, err := m.neighbors(query, k)
	if err != nil {
		return nil, err
	}
	for i := range nn {
		nn[i].Point = nn[i].Point.clone()
	}
	return nn, nil
}

func (m *Model) neighbors(query *Point, k int) ([]Neighbor, error) {
	if k < 1 || k > len(m.points) {
		return nil, fmt.Errorf("%w: k=%d, training points=%d", ErrInvalidK, k, len(m.points))
	}
	pq := pqueue.New(pqueue.WithCap(uint(k)))
	contributions := make([]float64, len(m.keys))
	for i, p := range m.points {
		m.contribute(query, p, contributions)
		d := m.metric(contributions)
		pq.Push(Neighbor{Point: p, Distance: d, Index: i}, d)
	}
	nn := make([]Neighbor, pq.Len())
	for i := range nn {
		v, _ := pq.Seek(i)
		nn[i] = v.(Neighbor)
	}
	return nn, nil
}

// Votes tallies the labels of the k nearest neighbors.
func (m *Model) Votes(query *Point, k int) (map[string]int, error) {
	nn, err := m.neighbors(query, k)
	if err != nil {
		return nil, err
	}
	votes := make(map[string]int, k)
	for _, n := range nn {
		votes[n.Point.label]++
	}
	return votes, nil
}

// Classify predicts the label of query by majority vote among its k nearest
// neighbors.
func (m *Model) Classify(query *Point, k int) (string, error) {
	votes, err := m.Votes(query, k)
	if err != nil {
		return "", err
	}
	return m.elect(votes), nil
}

func (m *Model) elect(votes map[string]int) string {
	var (
		best int
		tied []string
	)
	for label, n := range votes {
		switch {
		case n > best:
			best = n
			tied = append(tied[:0], label)
		case n == best:
			tied = append(tied, label)
		}
	}
	if len(tied) == 1 {
		return tied[0]
	}
	sort.Strings(tied)
	if m.opts.tieBreak == TieBreakLowestLabel {
		return tied[0]
	}
	return tied[m.opts.source.Uint32n(uint32(len(tied)))]
}
