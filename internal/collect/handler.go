package collect

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-sod/knn/internal/dataset/io"
	"github.com/go-sod/knn/internal/dispatcher"
	"github.com/go-sod/knn/internal/httputil"
	"github.com/go-sod/knn/internal/knn"
	"github.com/go-sod/knn/internal/logging"
)

const maxBodyBytes = 64 * 1024 * 1024

// Each data item is a [label, {attributes}] pair.
type request struct {
	Dataset string            `json:"dataset"`
	Data    []json.RawMessage `json:"data"`
}

func NewHandler(cfg *Config, collector dispatcher.Collector) (http.Handler, error) {
	s := &handler{
		collector: collector,
		cfg:       cfg,
	}
	return s, nil
}

type handler struct {
	collector dispatcher.Collector
	cfg       *Config
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req request
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()
	logger := logging.FromContext(ctx)

	if !httputil.CheckJSONPost(ctx, w, r) {
		return
	}

	defer r.Body.Close()

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	d := json.NewDecoder(r.Body)
	if err := d.Decode(&req); err != nil {
		httputil.DecodeErr(ctx, w, err)
		return
	}

	if req.Dataset == "" {
		httputil.RespBadRequest(ctx, w, "dataset must not be empty")
		return
	}
	if len(req.Data) > h.cfg.MaxRecords {
		httputil.RespBadRequest(ctx, w, "data items is too large, max allowed len is %d", h.cfg.MaxRecords)
		return
	}

	records := make([]knn.Record, 0, len(req.Data))
	for i, raw := range req.Data {
		record, err := io.ParseRow(raw)
		if err != nil {
			httputil.RespBadRequest(ctx, w, "data item %d: %v", i, err)
			return
		}
		records = append(records, record)
	}

	if err := h.collector.Collect(ctx, req.Dataset, records...); err != nil {
		switch {
		case errors.Is(err, knn.ErrInconsistentValueType), errors.Is(err, knn.ErrEmptyTrainingSet):
			httputil.RespBadRequest(ctx, w, "%v", err)
		default:
			httputil.RespInternalError(ctx, w, "collect processing error, %v", err)
		}
		return
	}

	logger.Infof("Collected %d records for dataset %s", len(records), req.Dataset)
	httputil.RespJSON(ctx, w, map[string]interface{}{"status": "ok", "collected": len(records)})
}
