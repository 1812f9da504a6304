package classify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-sod/knn/internal/dispatcher"
	"github.com/go-sod/knn/internal/httputil"
	"github.com/go-sod/knn/internal/knn"
)

const maxBodyBytes = 16 * 1024 * 1024

type request struct {
	Dataset string                   `json:"dataset"`
	K       int                      `json:"k"`
	Queries []map[string]interface{} `json:"queries"`
}

type response struct {
	Dataset string   `json:"dataset"`
	K       int      `json:"k,omitempty"`
	Labels  []string `json:"labels"`
}

func NewHandler(cfg *Config, classifier dispatcher.Classifier) (http.Handler, error) {
	return &handler{
		cfg:        cfg,
		classifier: classifier,
	}, nil
}

type handler struct {
	classifier dispatcher.Classifier
	cfg        *Config
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req request
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()

	if !httputil.CheckJSONPost(ctx, w, r) {
		return
	}

	defer r.Body.Close()

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	d := json.NewDecoder(r.Body)
	d.DisallowUnknownFields()
	if err := d.Decode(&req); err != nil {
		httputil.DecodeErr(ctx, w, err)
		return
	}

	if req.Dataset == "" {
		httputil.RespBadRequest(ctx, w, "dataset must not be empty")
		return
	}
	if len(req.Queries) == 0 {
		httputil.RespBadRequest(ctx, w, "queries must not be empty")
		return
	}
	if len(req.Queries) > h.cfg.MaxQueries {
		httputil.RespBadRequest(ctx, w, "queries is too large, max allowed len is %d", h.cfg.MaxQueries)
		return
	}

	labels, err := h.classifier.ClassifyMany(ctx, req.Dataset, req.Queries, req.K)
	switch {
	case errors.Is(err, dispatcher.ErrUnknownDataset):
		httputil.RespNotFound(ctx, w, "unknown dataset %s", req.Dataset)
		return
	case errors.Is(err, knn.ErrInvalidK):
		httputil.RespBadRequest(ctx, w, "%v", err)
		return
	case err != nil:
		httputil.RespInternalError(ctx, w, "classify processing error, %v", err)
		return
	}

	httputil.RespJSON(ctx, w, response{Dataset: req.Dataset, K: req.K, Labels: labels})
}
