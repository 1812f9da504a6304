package knn

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/davecgh/go-spew/spew"
)

var petRecords = []Record{
	{Label: "cat", Attributes: map[string]interface{}{"weight": 4}},
	{Label: "dog", Attributes: map[string]interface{}{"weight": 50}},
	{Label: "cat", Attributes: map[string]interface{}{"weight": 5}},
}

type fixedSource uint32

func (s fixedSource) Uint32n(n uint32) uint32 {
	return uint32(s) % n
}

func TestNew_EmptyTrainingSet(t *testing.T) {
	t.Parallel()
	for _, records := range [][]Record{nil, {}} {
		if _, err := New(records); !errors.Is(err, ErrEmptyTrainingSet) {
			t.Errorf("new got: %v, expected: %v", err, ErrEmptyTrainingSet)
		}
	}
}

func TestNew_InvalidOptions(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		opt  Option
	}{
		{name: "tie_break", opt: WithTieBreak("COIN")},
		{name: "missing", opt: WithMissingPolicy("GUESS")},
		{name: "metric", opt: WithMetric("COSINE")},
		{name: "source", opt: WithSource(nil)},
		{name: "weight", opt: WithWeights(map[string]float64{"color": 0})},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			if _, err := New(petRecords, test.opt); err == nil {
				t.Errorf("invalid option must return an error")
			}
		})
	}
}

func TestModel_Classify(t *testing.T) {
	t.Parallel()
	m, err := New(petRecords)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	tests := []struct {
		name     string
		query    map[string]interface{}
		k        int
		expected string
	}{
		{name: "k1", query: map[string]interface{}{"weight": 4.5}, k: 1, expected: "cat"},
		{name: "k3", query: map[string]interface{}{"weight": 4.5}, k: 3, expected: "cat"},
		{name: "k1_dog", query: map[string]interface{}{"weight": 48}, k: 1, expected: "dog"},
		{name: "k3_majority", query: map[string]interface{}{"weight": 48}, k: 3, expected: "cat"},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			got, err := m.Classify(NewQuery(test.query), test.k)
			if err != nil {
				t.Fatalf("the error should not be returned: %v", err)
			}
			if got != test.expected {
				t.Errorf("classify got: %q, expected: %q", got, test.expected)
			}
		})
	}
}

func TestModel_InvalidK(t *testing.T) {
	t.Parallel()
	m, err := New(petRecords)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	for _, k := range []int{-1, 0, 4, 100} {
		if _, err := m.Classify(NewQuery(map[string]interface{}{"weight": 1}), k); !errors.Is(err, ErrInvalidK) {
			t.Errorf("classify with k=%d got: %v, expected: %v", k, err, ErrInvalidK)
		}
	}
}

func TestModel_ConstantFeature(t *testing.T) {
	t.Parallel()
	m, err := New([]Record{
		{Label: "a", Attributes: map[string]interface{}{"weight": 10, "color": "red"}},
		{Label: "b", Attributes: map[string]interface{}{"weight": 10, "color": "blue"}},
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	q := NewQuery(map[string]interface{}{"weight": 99, "color": "blue"})
	nn, err := m.Neighbors(q, 2)
	if err != nil {
		t.Fatalf("neighbors: %v", err)
	}
	if nn[0].Point.Label() != "b" || nn[0].Distance != 0 {
		t.Errorf("constant feature must contribute 0, got neighbors: %s", spew.Sdump(nn))
	}
	if nn[1].Distance != 0.5 {
		t.Errorf("second neighbor distance got: %f, expected: 0.5", nn[1].Distance)
	}
}

func TestModel_SelfIsNearest(t *testing.T) {
	t.Parallel()
	records := []Record{
		{Label: "setosa", Attributes: map[string]interface{}{"petal": 1.4, "sepal": 5.1, "site": "north"}},
		{Label: "versicolor", Attributes: map[string]interface{}{"petal": 4.7, "sepal": 7.0, "site": "south"}},
		{Label: "virginica", Attributes: map[string]interface{}{"petal": 6.0, "sepal": 6.3, "site": "south"}},
		{Label: "setosa", Attributes: map[string]interface{}{"petal": 1.3, "sepal": 4.9, "site": "east"}},
	}
	m, err := New(records)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	for i, r := range records {
		q := NewQuery(r.Attributes)
		nn, err := m.Neighbors(q, 1)
		if err != nil {
			t.Fatalf("neighbors: %v", err)
		}
		if nn[0].Distance != 0 || nn[0].Index != i {
			t.Errorf("record %d: nearest neighbor must be itself at distance 0, got: %s", i, spew.Sdump(nn[0]))
		}
		got, err := m.Classify(q, 1)
		if err != nil {
			t.Fatalf("classify: %v", err)
		}
		if got != r.Label {
			t.Errorf("record %d: classify got: %q, expected: %q", i, got, r.Label)
		}
	}
}

func TestModel_StableNeighborOrder(t *testing.T) {
	t.Parallel()
	m, err := New([]Record{
		{Label: "a", Attributes: map[string]interface{}{"x": 0}},
		{Label: "b", Attributes: map[string]interface{}{"x": 2}},
		{Label: "c", Attributes: map[string]interface{}{"x": 0}},
		{Label: "d", Attributes: map[string]interface{}{"x": 2}},
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	nn, err := m.Neighbors(NewQuery(map[string]interface{}{"x": 1}), 4)
	if err != nil {
		t.Fatalf("neighbors: %v", err)
	}
	for i, expected := range []int{0, 1, 2, 3} {
		if nn[i].Index != expected {
			t.Fatalf("equal distances must keep training order, got: %s", spew.Sdump(nn))
		}
	}
}

func TestModel_WholeSetIsMajority(t *testing.T) {
	t.Parallel()
	records := []Record{
		{Label: "spam", Attributes: map[string]interface{}{"len": 1}},
		{Label: "ham", Attributes: map[string]interface{}{"len": 100}},
		{Label: "ham", Attributes: map[string]interface{}{"len": 90}},
		{Label: "spam", Attributes: map[string]interface{}{"len": 2}},
		{Label: "ham", Attributes: map[string]interface{}{"len": 95}},
	}
	m, err := New(records)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	for _, v := range []float64{0, 1, 50, 1000} {
		got, err := m.Classify(NewQuery(map[string]interface{}{"len": v}), len(records))
		if err != nil {
			t.Fatalf("classify: %v", err)
		}
		if got != "ham" {
			t.Errorf("query len=%v with k=n got: %q, expected majority label ham", v, got)
		}
	}
}

func TestModel_LabelAlwaysFromTraining(t *testing.T) {
	t.Parallel()
	var records []Record
	for i := 0; i < 30; i++ {
		records = append(records, Record{
			Label: fmt.Sprintf("l%d", i%4),
			Attributes: map[string]interface{}{
				"x":    float64(i * i % 17),
				"kind": fmt.Sprintf("k%d", i%3),
			},
		})
	}
	m, err := New(records, WithSeed(7))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	labels := map[string]struct{}{}
	for _, l := range m.Labels() {
		labels[l] = struct{}{}
	}
	if len(labels) != 4 {
		t.Fatalf("labels got: %v, expected 4 distinct", m.Labels())
	}
	for k := 1; k <= m.Len(); k++ {
		got, err := m.Classify(NewQuery(map[string]interface{}{"x": float64(k % 9), "kind": "k1"}), k)
		if err != nil {
			t.Fatalf("classify k=%d: %v", k, err)
		}
		if _, ok := labels[got]; !ok {
			t.Errorf("classify k=%d returned unknown label %q", k, got)
		}
	}
}

func TestModel_TieBreak(t *testing.T) {
	t.Parallel()
	records := []Record{
		{Label: "b", Attributes: map[string]interface{}{"x": 0}},
		{Label: "a", Attributes: map[string]interface{}{"x": 1}},
	}
	q := NewQuery(map[string]interface{}{"x": 0.5})
	tests := []struct {
		name     string
		opts     []Option
		expected string
	}{
		{name: "lowest_label", opts: []Option{WithTieBreak(TieBreakLowestLabel)}, expected: "a"},
		{name: "random_first", opts: []Option{WithSource(fixedSource(0))}, expected: "a"},
		{name: "random_second", opts: []Option{WithSource(fixedSource(1))}, expected: "b"},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			m, err := New(records, test.opts...)
			if err != nil {
				t.Fatalf("new: %v", err)
			}
			for i := 0; i < 10; i++ {
				got, err := m.Classify(q, 2)
				if err != nil {
					t.Fatalf("classify: %v", err)
				}
				if got != test.expected {
					t.Errorf("classify got: %q, expected: %q", got, test.expected)
				}
			}
		})
	}
}

func TestModel_RandomTieBreak(t *testing.T) {
	t.Parallel()
	records := []Record{
		{Label: "x", Attributes: map[string]interface{}{"v": 0}},
		{Label: "y", Attributes: map[string]interface{}{"v": 1}},
	}
	q := NewQuery(map[string]interface{}{"v": 0.5})

	m, err := New(records)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	seen := map[string]int{}
	for i := 0; i < 200; i++ {
		got, err := m.Classify(q, 2)
		if err != nil {
			t.Fatalf("classify: %v", err)
		}
		seen[got]++
	}
	if seen["x"] == 0 || seen["y"] == 0 {
		t.Errorf("random tie-break must pick every tied label eventually, got: %v", seen)
	}

	seq := func() []string {
		m, err := New(records, WithSeed(42))
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		var out []string
		for i := 0; i < 20; i++ {
			got, _ := m.Classify(q, 2)
			out = append(out, got)
		}
		return out
	}
	first, second := seq(), seq()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("seeded tie-break must be reproducible, got: %v and %v", first, second)
		}
	}
}

func TestModel_Votes(t *testing.T) {
	t.Parallel()
	m, err := New(petRecords)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	votes, err := m.Votes(NewQuery(map[string]interface{}{"weight": 4.5}), 3)
	if err != nil {
		t.Fatalf("votes: %v", err)
	}
	if votes["cat"] != 2 || votes["dog"] != 1 || len(votes) != 2 {
		t.Errorf("votes got: %v, expected: map[cat:2 dog:1]", votes)
	}
}

func TestModel_IgnoresUnknownQueryKeys(t *testing.T) {
	t.Parallel()
	m, err := New(petRecords)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	q := NewQuery(map[string]interface{}{"weight": 5, "owner": "alice"})
	nn, err := m.Neighbors(q, 1)
	if err != nil {
		t.Fatalf("neighbors: %v", err)
	}
	if nn[0].Index != 2 || nn[0].Distance != 0 {
		t.Errorf("keys outside the feature set must be ignored, got: %s", spew.Sdump(nn[0]))
	}
}

func TestModel_MetricOption(t *testing.T) {
	t.Parallel()
	records := []Record{
		{Label: "a", Attributes: map[string]interface{}{"x": 0, "y": 0}},
		{Label: "b", Attributes: map[string]interface{}{"x": 10, "y": 10}},
	}
	m, err := New(records, WithMetric(MetricManhattan))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	got := m.Distance(NewQuery(records[0].Attributes), NewQuery(records[1].Attributes))
	if got != 2 {
		t.Errorf("manhattan distance got: %f, expected: 2", got)
	}
}

func TestModel_NeighborsDoNotShareTrainingPoints(t *testing.T) {
	t.Parallel()
	m, err := New([]Record{
		{Label: "a", Attributes: map[string]interface{}{"w": 1}},
		{Label: "b", Attributes: map[string]interface{}{"w": 5}},
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	q := NewQuery(map[string]interface{}{"w": 1})
	nn, err := m.Neighbors(q, 1)
	if err != nil {
		t.Fatalf("neighbors: %v", err)
	}
	nn[0].Point.set("w", 100)

	got, err := m.Classify(q, 1)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if got != "a" {
		t.Errorf("classify after editing a returned neighbor got: %s, expected: a", got)
	}
}

func TestModel_NaNValue(t *testing.T) {
	t.Parallel()
	m, err := New([]Record{
		{Label: "x", Attributes: map[string]interface{}{"w": math.NaN()}},
		{Label: "a", Attributes: map[string]interface{}{"w": 1}},
		{Label: "b", Attributes: map[string]interface{}{"w": 5}},
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if f := m.Features()["w"].(*Numerical); f.Min != 1 || f.Max != 5 {
		t.Errorf("NaN must not widen the range, got: min=%f max=%f", f.Min, f.Max)
	}
	nn, err := m.Neighbors(NewQuery(map[string]interface{}{"w": 1}), 1)
	if err != nil {
		t.Fatalf("neighbors: %v", err)
	}
	if nn[0].Point.Label() != "a" || nn[0].Distance != 0 {
		t.Errorf("nearest got: %s", spew.Sdump(nn[0]))
	}
	for _, n := range mustNeighbors(t, m, NewQuery(map[string]interface{}{"w": math.NaN()}), 3) {
		if math.IsNaN(n.Distance) {
			t.Errorf("distance must not be NaN: %s", spew.Sdump(n))
		}
	}
}

func mustNeighbors(t *testing.T, m *Model, q *Point, k int) []Neighbor {
	t.Helper()
	nn, err := m.Neighbors(q, k)
	if err != nil {
		t.Fatalf("neighbors: %v", err)
	}
	return nn
}
