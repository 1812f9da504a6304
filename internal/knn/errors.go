package knn

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyTrainingSet      = errors.New("training set is empty")
	ErrInvalidK              = errors.New("k is out of range")
	ErrUnimplementedFeature  = errors.New("feature must be implemented by a concrete type")
	ErrInconsistentValueType = errors.New("inconsistent value type")
	ErrInvalidWeight         = errors.New("feature weight must be positive")
)

// InconsistentValueTypeError is returned when a key already bound to one
// feature kind is observed with a value of the other kind.
type InconsistentValueTypeError struct {
	Key  string
	Want Kind
	Got  interface{}
}

func (e *InconsistentValueTypeError) Error() string {
	return fmt.Sprintf("%v: key %q expects %s value, got %T", ErrInconsistentValueType, e.Key, e.Want, e.Got)
}

func (e *InconsistentValueTypeError) Unwrap() error {
	return ErrInconsistentValueType
}
