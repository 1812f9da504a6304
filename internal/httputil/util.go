package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-sod/knn/internal/logging"
)

const ContentTypeJSON = "application/json"

// CheckJSONPost rejects anything but a JSON POST. It reports whether the
// request may proceed.
func CheckJSONPost(ctx context.Context, w http.ResponseWriter, r *http.Request) bool {
	logger := logging.FromContext(ctx)
	if r.Method != http.MethodPost {
		msg := fmt.Sprintf("method %v is not allowed", r.Method)
		logger.Debug(msg)
		respError(w, http.StatusMethodNotAllowed, msg)
		return false
	}

	if t := r.Header.Get("content-type"); len(t) < 16 || t[:16] != ContentTypeJSON {
		msg := "content-type is not application/json"
		logger.Debug(msg)
		respError(w, http.StatusUnsupportedMediaType, msg)
		return false
	}
	return true
}

func DecodeErr(ctx context.Context, w http.ResponseWriter, err error) {
	var (
		syntaxErr      *json.SyntaxError
		unmarshalError *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &syntaxErr):
		RespBadRequest(ctx, w, "malformed json at position %v", syntaxErr.Offset)
	case errors.Is(err, io.ErrUnexpectedEOF):
		RespBadRequest(ctx, w, "malformed json")
	case errors.As(err, &unmarshalError):
		RespBadRequest(ctx, w, "invalid value %v at position %v", unmarshalError.Field, unmarshalError.Offset)
	case strings.HasPrefix(err.Error(), "json: unknown field"):
		fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
		RespBadRequest(ctx, w, "unknown field %s", fieldName)
	case errors.Is(err, io.EOF):
		RespBadRequest(ctx, w, "body must not be empty")
	case err.Error() == "http: request body too large":
		w.WriteHeader(http.StatusRequestEntityTooLarge)
	default:
		RespInternalError(ctx, w, "failed to decode json %v", err)
	}
}

func RespJSON(ctx context.Context, w http.ResponseWriter, v interface{}) {
	bytes, err := json.Marshal(v)
	if err != nil {
		RespInternalError(ctx, w, "failed to encode output json %v", err)
		return
	}
	w.Header().Set("content-type", ContentTypeJSON)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(bytes)
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

func respError(w http.ResponseWriter, code int, msg string) {
	bytes, _ := json.Marshal(ErrorResponse{Error: msg})
	w.Header().Set("content-type", ContentTypeJSON)
	w.Header().Set("x-content-type-options", "nosniff")
	w.WriteHeader(code)
	_, _ = w.Write(bytes)
}

func RespBadRequest(ctx context.Context, w http.ResponseWriter, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logging.FromContext(ctx).Debug(msg)
	respError(w, http.StatusBadRequest, msg)
}

func RespNotFound(ctx context.Context, w http.ResponseWriter, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logging.FromContext(ctx).Debug(msg)
	respError(w, http.StatusNotFound, msg)
}

func RespMethodNotAllowed(ctx context.Context, w http.ResponseWriter, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logging.FromContext(ctx).Debug(msg)
	respError(w, http.StatusMethodNotAllowed, msg)
}

func RespInternalError(ctx context.Context, w http.ResponseWriter, format string, args ...interface{}) {
	logging.FromContext(ctx).Errorf(format, args...)
	respError(w, http.StatusInternalServerError, "internal error")
}
