package knn

import (
	"encoding/json"
	"math"
	"sort"
)

// Record is a raw training row: a label and its attribute map.
type Record struct {
	Label      string                 `json:"label"`
	Attributes map[string]interface{} `json:"attributes"`
}

// Point is a labeled set of named attribute values. It is not modified once
// built.
type Point struct {
	label  string
	values map[string]interface{}
}

func NewPoint(label string, attrs map[string]interface{}) *Point {
	p := &Point{label: label, values: make(map[string]interface{}, len(attrs))}
	for k, v := range attrs {
		p.set(k, v)
	}
	return p
}

func (p *Point) clone() *Point {
	return NewPoint(p.label, p.values)
}

// NewQuery builds an unlabeled point.
func NewQuery(attrs map[string]interface{}) *Point {
	return NewPoint("", attrs)
}

func (p *Point) Label() string {
	return p.label
}

func (p *Point) Get(key string) (interface{}, bool) {
	v, ok := p.values[key]
	return v, ok
}

func (p *Point) set(key string, value interface{}) {
	p.values[key] = value
}

// Keys returns the attribute keys in sorted order.
func (p *Point) Keys() []string {
	keys := make([]string, 0, len(p.values))
	for k := range p.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (p *Point) Len() int {
	return len(p.values)
}

// Float returns the value under key as float64 when it is numeric. NaN reads
// as absent.
func (p *Point) Float(key string) (float64, bool) {
	v, ok := p.values[key]
	if !ok {
		return 0, false
	}
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// Text returns the value under key when it is a string.
func (p *Point) Text(key string) (string, bool) {
	v, ok := p.values[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
