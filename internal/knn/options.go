package knn

import (
	"fmt"
	"sync"

	"github.com/valyala/fastrand"
)

// TieBreak selects the winner when several labels share the top vote count.
type TieBreak string

const (
	// TieBreakRandom picks uniformly among the tied labels.
	TieBreakRandom TieBreak = "RANDOM"
	// TieBreakLowestLabel picks the lexicographically lowest tied label.
	TieBreakLowestLabel TieBreak = "LOWEST_LABEL"
)

// Source yields uniform integers in [0, n). Implementations must be safe for
// concurrent use.
type Source interface {
	Uint32n(n uint32) uint32
}

type globalSource struct{}

func (globalSource) Uint32n(n uint32) uint32 {
	return fastrand.Uint32n(n)
}

type seededSource struct {
	mtx sync.Mutex
	rng fastrand.RNG
}

func (s *seededSource) Uint32n(n uint32) uint32 {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.rng.Uint32n(n)
}

// NewSeededSource returns a reproducible Source. A zero seed draws a random
// initial state.
func NewSeededSource(seed uint32) Source {
	s := &seededSource{}
	s.rng.Seed(seed)
	return s
}

type Option func(*options)

type options struct {
	tieBreak TieBreak
	source   Source
	metric   MetricType
	missing  MissingPolicy
	weights  map[string]float64
}

func defaultOptions() options {
	return options{
		tieBreak: TieBreakRandom,
		source:   globalSource{},
		metric:   MetricEuclidean,
		missing:  MissingMaximal,
	}
}

func WithTieBreak(t TieBreak) Option {
	return func(o *options) {
		o.tieBreak = t
	}
}

// WithSeed makes random tie-breaks reproducible.
func WithSeed(seed uint32) Option {
	return func(o *options) {
		o.source = NewSeededSource(seed)
	}
}

func WithSource(s Source) Option {
	return func(o *options) {
		o.source = s
	}
}

func WithMetric(m MetricType) Option {
	return func(o *options) {
		o.metric = m
	}
}

func WithMissingPolicy(p MissingPolicy) Option {
	return func(o *options) {
		o.missing = p
	}
}

// WithWeights sets per-key weights for categorical features.
func WithWeights(w map[string]float64) Option {
	return func(o *options) {
		o.weights = make(map[string]float64, len(w))
		for k, v := range w {
			o.weights[k] = v
		}
	}
}

func (o options) validate() error {
	switch o.tieBreak {
	case TieBreakRandom, TieBreakLowestLabel:
	default:
		return fmt.Errorf("unknown tie-break policy: %s", o.tieBreak)
	}
	switch o.missing {
	case MissingMaximal, MissingIgnore:
	default:
		return fmt.Errorf("unknown missing value policy: %s", o.missing)
	}
	if o.source == nil {
		return fmt.Errorf("random source is not set")
	}
	for k, w := range o.weights {
		if !(w > 0) {
			return fmt.Errorf("%w: %s=%v", ErrInvalidWeight, k, w)
		}
	}
	return nil
}
