package knn

import "sort"

// Kind is the variant of a feature.
type Kind uint8

const (
	KindUnsupported Kind = iota
	KindNumerical
	KindCategorical
)

func (k Kind) String() string {
	switch k {
	case KindNumerical:
		return "numerical"
	case KindCategorical:
		return "categorical"
	default:
		return "unsupported"
	}
}

// KindOf reports which feature variant a raw value maps to.
func KindOf(v interface{}) Kind {
	if _, ok := v.(string); ok {
		return KindCategorical
	}
	if _, ok := toFloat(v); ok {
		return KindNumerical
	}
	return KindUnsupported
}

// MissingPolicy decides what a dimension contributes when one or both points
// lack the feature key.
type MissingPolicy string

const (
	// MissingMaximal charges the feature's largest possible distance when
	// exactly one side is missing and nothing when both are.
	MissingMaximal MissingPolicy = "MAXIMAL"
	// MissingIgnore drops the dimension from the pairwise distance.
	MissingIgnore MissingPolicy = "IGNORE"
)

// Feature measures the distance between two points along one attribute.
type Feature interface {
	Key() string
	Kind() Kind
	// Observe feeds one training value into the normalization state.
	Observe(value interface{}) error
	// Distance returns the contribution of this dimension between a and b.
	Distance(a, b *Point) float64
}

// BaseFeature carries the state shared by all variants. It satisfies Feature
// on its own but refuses to measure anything; concrete variants embed it and
// override Observe and Distance.
type BaseFeature struct {
	key     string
	missing MissingPolicy
}

func NewBaseFeature(key string, missing MissingPolicy) BaseFeature {
	if missing == "" {
		missing = MissingMaximal
	}
	return BaseFeature{key: key, missing: missing}
}

func (f BaseFeature) Key() string {
	return f.key
}

func (f BaseFeature) Kind() Kind {
	return KindUnsupported
}

func (f BaseFeature) MissingPolicy() MissingPolicy {
	return f.missing
}

func (f BaseFeature) Observe(interface{}) error {
	return ErrUnimplementedFeature
}

// Distance panics: reaching it means a variant forgot to implement it.
func (f BaseFeature) Distance(_, _ *Point) float64 {
	panic(ErrUnimplementedFeature)
}

// missingDistance is used once at least one side lacks a usable value.
func (f BaseFeature) missingDistance(okA, okB bool, max float64) float64 {
	if okA == okB || f.missing == MissingIgnore {
		return 0
	}
	return max
}

// FeatureSet maps attribute keys to their features.
type FeatureSet map[string]Feature

// Keys returns the feature keys in sorted order.
func (fs FeatureSet) Keys() []string {
	keys := make([]string, 0, len(fs))
	for k := range fs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (fs FeatureSet) Get(key string) (Feature, bool) {
	f, ok := fs[key]
	return f, ok
}
