package integration

import "fmt"

// Row is a training record in the [label, {attributes}] wire form.
type Row [2]interface{}

func NewRow(label string, attrs map[string]interface{}) Row {
	return Row{label, attrs}
}

type CollectRequest struct {
	Dataset string `json:"dataset"`
	Data    []Row  `json:"data"`
}

type ClassifyRequest struct {
	Dataset string                   `json:"dataset"`
	K       int                      `json:"k,omitempty"`
	Queries []map[string]interface{} `json:"queries"`
}

type ClassifyResponse struct {
	Dataset string   `json:"dataset"`
	K       int      `json:"k"`
	Labels  []string `json:"labels"`
}

type DatasetsResponse struct {
	Datasets []string `json:"datasets"`
}

// StatusError is returned for every non-200 answer of the service.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}
