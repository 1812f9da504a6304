package datasets

import (
	"errors"
	"net/http"

	"github.com/go-sod/knn/internal/dispatcher"
	"github.com/go-sod/knn/internal/httputil"
)

type listResponse struct {
	Datasets []string `json:"datasets"`
}

type deleteResponse struct {
	Status  string `json:"status"`
	Deleted string `json:"deleted"`
}

// NewHandler serves GET (list) and DELETE ?name= (drop) on the dataset registry.
func NewHandler(registry dispatcher.Registry) (http.Handler, error) {
	return &handler{registry: registry}, nil
}

type handler struct {
	registry dispatcher.Registry
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	switch r.Method {
	case http.MethodGet:
		httputil.RespJSON(ctx, w, listResponse{Datasets: h.registry.Datasets()})
	case http.MethodDelete:
		name := r.URL.Query().Get("name")
		if name == "" {
			httputil.RespBadRequest(ctx, w, "name must not be empty")
			return
		}
		err := h.registry.Delete(ctx, name)
		switch {
		case errors.Is(err, dispatcher.ErrUnknownDataset):
			httputil.RespNotFound(ctx, w, "unknown dataset %s", name)
		case err != nil:
			httputil.RespInternalError(ctx, w, "delete processing error, %v", err)
		default:
			httputil.RespJSON(ctx, w, deleteResponse{Status: "ok", Deleted: name})
		}
	default:
		w.Header().Set("allow", "GET, DELETE")
		httputil.RespMethodNotAllowed(ctx, w, "method %v is not allowed", r.Method)
	}
}
