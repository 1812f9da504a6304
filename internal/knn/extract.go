package knn

import "fmt"

// ExtractFeatures infers one feature per attribute key in a single pass over
// the points. The first value seen for a key fixes its variant; a key whose
// first value is neither numeric nor a string is excluded for good.
func ExtractFeatures(points []*Point, opts ...Option) (FeatureSet, error) {
	o := defaultOptions()
	for _, f := range opts {
		f(&o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	return extractFeatures(points, o)
}

func extractFeatures(points []*Point, o options) (FeatureSet, error) {
	features := FeatureSet{}
	excluded := map[string]struct{}{}
	for i, p := range points {
		for _, key := range p.Keys() {
			if _, ok := excluded[key]; ok {
				continue
			}
			value, _ := p.Get(key)
			kind := KindOf(value)
			feature, ok := features[key]
			if !ok {
				feature = newFeature(key, kind, o)
				if feature == nil {
					excluded[key] = struct{}{}
					continue
				}
				features[key] = feature
			}
			if kind == KindUnsupported {
				continue
			}
			if err := feature.Observe(value); err != nil {
				return nil, fmt.Errorf("point %d: %w", i, err)
			}
		}
	}
	return features, nil
}

func newFeature(key string, kind Kind, o options) Feature {
	switch kind {
	case KindNumerical:
		return NewNumerical(key, o.missing)
	case KindCategorical:
		w, ok := o.weights[key]
		if !ok {
			w = DefaultWeight
		}
		return NewCategorical(key, w, o.missing)
	default:
		return nil
	}
}
