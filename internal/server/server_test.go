package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHandleHealth(t *testing.T) {
	tests := []struct {
		name     string
		cancel   bool
		expected int
	}{
		{name: "running", expected: http.StatusOK},
		{name: "shutting_down", cancel: true, expected: http.StatusServiceUnavailable},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			if test.cancel {
				cancel()
			}
			rec := httptest.NewRecorder()
			HandleHealth(ctx).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
			if rec.Code != test.expected {
				t.Errorf("health status got: %d, expected: %d", rec.Code, test.expected)
			}
		})
	}
}

func TestServer_ServeHTTPHandler(t *testing.T) {
	srv, err := New("127.0.0.1:0")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.ServeHTTPHandler(ctx, HandleHealth(ctx))
	}()

	resp, err := http.Get("http://" + srv.Addr() + "/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status got: %d, expected: %d", resp.StatusCode, http.StatusOK)
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("serve must stop cleanly, got: %v", err)
	}
}
