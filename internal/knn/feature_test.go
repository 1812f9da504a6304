package knn

import (
	"errors"
	"math"
	"testing"
)

func numericalOf(key string, values ...float64) *Numerical {
	f := NewNumerical(key, MissingMaximal)
	for _, v := range values {
		_ = f.Observe(v)
	}
	return f
}

func TestNumerical_Distance(t *testing.T) {
	t.Parallel()
	f := numericalOf("w", 4, 50, 5)
	tests := []struct {
		name     string
		a        float64
		b        float64
		expected float64
	}{
		{name: "positive", a: 50, b: 4, expected: 1},
		{name: "negative", a: 4, b: 50, expected: -1},
		{name: "self", a: 5, b: 5, expected: 0},
		{name: "half", a: 27, b: 4, expected: 0.5},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			a := NewQuery(map[string]interface{}{"w": test.a})
			b := NewQuery(map[string]interface{}{"w": test.b})
			if got := f.Distance(a, b); got != test.expected {
				t.Errorf("distance got: %f, expected: %f", got, test.expected)
			}
			if got, rev := f.Distance(a, b), f.Distance(b, a); got != -rev {
				t.Errorf("distance must be antisymmetric, got: %f and %f", got, rev)
			}
		})
	}
}

func TestNumerical_DegenerateRange(t *testing.T) {
	t.Parallel()
	a := NewQuery(map[string]interface{}{"w": 10})
	b := NewQuery(map[string]interface{}{"w": 3})
	tests := []struct {
		name string
		f    *Numerical
	}{
		{name: "constant", f: numericalOf("w", 10, 10, 10)},
		{name: "unobserved", f: numericalOf("w")},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			got := test.f.Distance(a, b)
			if got != 0 || math.IsNaN(got) {
				t.Errorf("degenerate range must contribute 0, got: %f", got)
			}
		})
	}
}

func TestNumerical_ObserveWrongType(t *testing.T) {
	t.Parallel()
	f := NewNumerical("w", MissingMaximal)
	err := f.Observe("heavy")
	var typeErr *InconsistentValueTypeError
	if !errors.As(err, &typeErr) || typeErr.Key != "w" || typeErr.Want != KindNumerical {
		t.Errorf("observe string on numerical feature got: %v, expected %v", err, ErrInconsistentValueType)
	}
	if !errors.Is(err, ErrInconsistentValueType) {
		t.Errorf("error must unwrap to %v", ErrInconsistentValueType)
	}
}

func TestCategorical_Distance(t *testing.T) {
	t.Parallel()
	f := NewCategorical("color", 2, MissingMaximal)
	for _, v := range []string{"red", "green", "red", "blue", "green"} {
		if err := f.Observe(v); err != nil {
			t.Fatalf("observe: %v", err)
		}
	}
	if f.Count() != 3 {
		t.Fatalf("distinct values got: %d, expected: 3", f.Count())
	}
	tests := []struct {
		name     string
		a        string
		b        string
		expected float64
	}{
		{name: "equal", a: "red", b: "red", expected: 0},
		{name: "mismatch", a: "red", b: "blue", expected: 2.0 / 3},
		{name: "unseen", a: "red", b: "violet", expected: 2.0 / 3},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			a := NewQuery(map[string]interface{}{"color": test.a})
			b := NewQuery(map[string]interface{}{"color": test.b})
			got := f.Distance(a, b)
			if got != test.expected {
				t.Errorf("distance got: %f, expected: %f", got, test.expected)
			}
			if got < 0 {
				t.Errorf("categorical distance must not be negative, got: %f", got)
			}
			if (got == 0) != (test.a == test.b) {
				t.Errorf("distance must be zero only for equal values, got: %f", got)
			}
		})
	}
}

func TestCategorical_Degenerate(t *testing.T) {
	t.Parallel()
	f := NewCategorical("color", 0, MissingMaximal)
	if f.Weight != DefaultWeight {
		t.Errorf("non-positive weight must fall back to default, got: %f", f.Weight)
	}
	a := NewQuery(map[string]interface{}{"color": "red"})
	b := NewQuery(map[string]interface{}{"color": "blue"})
	if got := f.Distance(a, b); got != 0 {
		t.Errorf("feature without observations must contribute 0, got: %f", got)
	}
	if err := f.Observe(1.5); !errors.Is(err, ErrInconsistentValueType) {
		t.Errorf("observe number on categorical feature got: %v, expected %v", err, ErrInconsistentValueType)
	}
}

func TestFeature_MissingPolicy(t *testing.T) {
	t.Parallel()
	present := NewQuery(map[string]interface{}{"w": 1.0, "c": "x"})
	absent := NewQuery(map[string]interface{}{})
	wrongType := NewQuery(map[string]interface{}{"w": "one", "c": 2})
	tests := []struct {
		name     string
		policy   MissingPolicy
		a        *Point
		b        *Point
		expected [2]float64
	}{
		{name: "maximal_one_side", policy: MissingMaximal, a: present, b: absent, expected: [2]float64{1, 0.5}},
		{name: "maximal_other_side", policy: MissingMaximal, a: absent, b: present, expected: [2]float64{1, 0.5}},
		{name: "maximal_both", policy: MissingMaximal, a: absent, b: absent, expected: [2]float64{0, 0}},
		{name: "maximal_wrong_type", policy: MissingMaximal, a: present, b: wrongType, expected: [2]float64{1, 0.5}},
		{name: "ignore", policy: MissingIgnore, a: present, b: absent, expected: [2]float64{0, 0}},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			num := NewNumerical("w", test.policy)
			_ = num.Observe(0)
			_ = num.Observe(2)
			cat := NewCategorical("c", 1, test.policy)
			_ = cat.Observe("x")
			_ = cat.Observe("y")
			if got := num.Distance(test.a, test.b); got != test.expected[0] {
				t.Errorf("numerical missing distance got: %f, expected: %f", got, test.expected[0])
			}
			if got := cat.Distance(test.a, test.b); got != test.expected[1] {
				t.Errorf("categorical missing distance got: %f, expected: %f", got, test.expected[1])
			}
		})
	}
}

func TestBaseFeature_Unimplemented(t *testing.T) {
	t.Parallel()
	var f Feature = NewBaseFeature("k", "")
	if err := f.Observe(1); !errors.Is(err, ErrUnimplementedFeature) {
		t.Errorf("observe got: %v, expected: %v", err, ErrUnimplementedFeature)
	}
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrUnimplementedFeature) {
			t.Errorf("distance must panic with %v, got: %v", ErrUnimplementedFeature, r)
		}
	}()
	f.Distance(NewQuery(nil), NewQuery(nil))
}

func TestKindOf(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		value    interface{}
		expected Kind
	}{
		{name: "float", value: 1.0, expected: KindNumerical},
		{name: "int64", value: int64(1), expected: KindNumerical},
		{name: "string", value: "a", expected: KindCategorical},
		{name: "bool", value: false, expected: KindUnsupported},
		{name: "nil", value: nil, expected: KindUnsupported},
		{name: "map", value: map[string]interface{}{}, expected: KindUnsupported},
	}
	for _, test := range tests {
		if got := KindOf(test.value); got != test.expected {
			t.Errorf("%s: kind got: %s, expected: %s", test.name, got, test.expected)
		}
	}
}
