package io

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/go-sod/knn/internal/knn"
	"github.com/tidwall/gjson"
)

var ErrMalformedData = errors.New("malformed training data")

// LoadRecords reads a training file of the form [[label, {attributes}], ...].
func LoadRecords(path string) ([]knn.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", path, err)
	}
	records, err := ParseRecords(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

func ParseRecords(data []byte) ([]knn.Record, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid json", ErrMalformedData)
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: top level value must be an array", ErrMalformedData)
	}
	var (
		records []knn.Record
		err     error
	)
	root.ForEach(func(idx, row gjson.Result) bool {
		var record knn.Record
		record, err = parseRow(row)
		if err != nil {
			err = fmt.Errorf("row %d: %w", idx.Int(), err)
			return false
		}
		records = append(records, record)
		return true
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ParseRow parses a single [label, {attributes}] pair.
func ParseRow(data []byte) (knn.Record, error) {
	if !gjson.ValidBytes(data) {
		return knn.Record{}, fmt.Errorf("%w: invalid json", ErrMalformedData)
	}
	return parseRow(gjson.ParseBytes(data))
}

func parseRow(row gjson.Result) (knn.Record, error) {
	if !row.IsArray() {
		return knn.Record{}, fmt.Errorf("%w: row must be a [label, attributes] pair", ErrMalformedData)
	}
	pair := row.Array()
	if len(pair) != 2 {
		return knn.Record{}, fmt.Errorf("%w: row has %d elements, expected 2", ErrMalformedData, len(pair))
	}
	label, err := parseLabel(pair[0])
	if err != nil {
		return knn.Record{}, err
	}
	attrs, err := parseAttributes(pair[1])
	if err != nil {
		return knn.Record{}, err
	}
	return knn.Record{Label: label, Attributes: attrs}, nil
}

func parseLabel(v gjson.Result) (string, error) {
	switch v.Type {
	case gjson.String:
		return v.Str, nil
	case gjson.Number:
		return strconv.FormatFloat(v.Num, 'f', -1, 64), nil
	case gjson.True, gjson.False:
		return strconv.FormatBool(v.Bool()), nil
	default:
		return "", fmt.Errorf("%w: unsupported label %s", ErrMalformedData, v.Raw)
	}
}

// ParseAttributes parses a query attribute object.
func ParseAttributes(data []byte) (map[string]interface{}, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid json", ErrMalformedData)
	}
	return parseAttributes(gjson.ParseBytes(data))
}

func parseAttributes(v gjson.Result) (map[string]interface{}, error) {
	if !v.IsObject() {
		return nil, fmt.Errorf("%w: attributes must be an object", ErrMalformedData)
	}
	attrs := map[string]interface{}{}
	v.ForEach(func(key, value gjson.Result) bool {
		attrs[key.String()] = valueOf(value)
		return true
	})
	return attrs, nil
}

// valueOf keeps numbers as float64 and strings as string; everything else is
// passed through as decoded JSON and later ignored by feature extraction.
func valueOf(v gjson.Result) interface{} {
	switch v.Type {
	case gjson.Number:
		return v.Num
	case gjson.String:
		return v.Str
	default:
		return v.Value()
	}
}
