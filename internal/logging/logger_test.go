package logging

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestFromContext(t *testing.T) {
	t.Parallel()
	if FromContext(context.Background()) != DefaultLogger() {
		t.Errorf("empty context must fall back to the default logger")
	}
	logger := zap.NewNop().Sugar()
	ctx := WithLogger(context.Background(), logger)
	if FromContext(ctx) != logger {
		t.Errorf("logger attached to the context must be returned")
	}
}

func TestLevelFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in       string
		expected zapcore.Level
	}{
		{in: "debug", expected: zapcore.DebugLevel},
		{in: " WARN ", expected: zapcore.WarnLevel},
		{in: "error", expected: zapcore.ErrorLevel},
		{in: "verbose", expected: zapcore.InfoLevel},
		{in: "", expected: zapcore.InfoLevel},
	}
	for _, test := range tests {
		if got := levelFor(test.in); got != test.expected {
			t.Errorf("level for %q got: %v, expected: %v", test.in, got, test.expected)
		}
	}
}
