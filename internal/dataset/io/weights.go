package io

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

type weightsFile struct {
	Weights map[string]float64 `toml:"weights"`
}

// LoadWeights reads per-feature categorical weights from a TOML file:
//
//	[weights]
//	color = 2.0
func LoadWeights(path string) (map[string]float64, error) {
	var f weightsFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("unable to decode weights file %s: %w", path, err)
	}
	for k, w := range f.Weights {
		if !(w > 0) {
			return nil, fmt.Errorf("weight of %q must be positive, got %v", k, w)
		}
	}
	return f.Weights, nil
}
