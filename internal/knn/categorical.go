package knn

var _ Feature = (*Categorical)(nil)

const DefaultWeight = 1.0

// Categorical is a string-valued dimension. A mismatch costs weight divided
// by the number of distinct values seen during training.
type Categorical struct {
	BaseFeature
	Weight float64
	seen   map[string]struct{}
	values []string
}

func NewCategorical(key string, weight float64, missing MissingPolicy) *Categorical {
	if weight <= 0 {
		weight = DefaultWeight
	}
	return &Categorical{
		BaseFeature: NewBaseFeature(key, missing),
		Weight:      weight,
		seen:        map[string]struct{}{},
	}
}

func (f *Categorical) Kind() Kind {
	return KindCategorical
}

func (f *Categorical) Observe(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return &InconsistentValueTypeError{Key: f.key, Want: KindCategorical, Got: value}
	}
	if _, ok := f.seen[s]; !ok {
		f.seen[s] = struct{}{}
		f.values = append(f.values, s)
	}
	return nil
}

// Count is the number of distinct observed values.
func (f *Categorical) Count() int {
	return len(f.values)
}

// Values returns the distinct values in first-seen order.
func (f *Categorical) Values() []string {
	values := make([]string, len(f.values))
	copy(values, f.values)
	return values
}

func (f *Categorical) Distance(a, b *Point) float64 {
	if len(f.values) == 0 {
		return 0
	}
	mismatch := f.Weight / float64(len(f.values))
	x, okA := a.Text(f.key)
	y, okB := b.Text(f.key)
	if !okA || !okB {
		return f.missingDistance(okA, okB, mismatch)
	}
	if x == y {
		return 0
	}
	return mismatch
}
