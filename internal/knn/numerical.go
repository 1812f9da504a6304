package knn

import "math"

var _ Feature = (*Numerical)(nil)

// Numerical is a min-max normalized numeric dimension.
type Numerical struct {
	BaseFeature
	Min float64
	Max float64
}

func NewNumerical(key string, missing MissingPolicy) *Numerical {
	return &Numerical{
		BaseFeature: NewBaseFeature(key, missing),
		Min:         math.Inf(1),
		Max:         math.Inf(-1),
	}
}

func (f *Numerical) Kind() Kind {
	return KindNumerical
}

func (f *Numerical) Observe(value interface{}) error {
	v, ok := toFloat(value)
	if !ok {
		return &InconsistentValueTypeError{Key: f.key, Want: KindNumerical, Got: value}
	}
	if math.IsNaN(v) {
		return nil
	}
	if v < f.Min {
		f.Min = v
	}
	if v > f.Max {
		f.Max = v
	}
	return nil
}

// Range is zero until at least one value has been observed.
func (f *Numerical) Range() float64 {
	if f.Max < f.Min {
		return 0
	}
	return f.Max - f.Min
}

// Distance is the signed difference scaled by the observed range. A constant
// or unobserved feature contributes 0.
func (f *Numerical) Distance(a, b *Point) float64 {
	r := f.Range()
	if r == 0 || math.IsInf(r, 0) || math.IsNaN(r) {
		return 0
	}
	x, okA := a.Float(f.key)
	y, okB := b.Float(f.key)
	if !okA || !okB {
		return f.missingDistance(okA, okB, 1)
	}
	return (x - y) / r
}
