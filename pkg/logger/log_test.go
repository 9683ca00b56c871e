package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestWithRequestIDAddsField(t *testing.T) {
	var buf bytes.Buffer
	SetLevel("debug")
	t.Cleanup(func() { SetLevel("info") })

	ctx := WithContext(context.Background(), New(&buf))
	ctx = WithRequestID(ctx, "req-42")
	Debug(ctx, "hello", "k", "v")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if line["request_id"] != "req-42" || line["msg"] != "hello" || line["k"] != "v" {
		t.Fatalf("unexpected log line: %v", line)
	}
}

func TestSetLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	SetLevel("warn")
	t.Cleanup(func() { SetLevel("info") })

	ctx := WithContext(context.Background(), New(&buf))
	Info(ctx, "dropped")
	if buf.Len() != 0 {
		t.Fatalf("info logged at warn level: %q", buf.String())
	}
	Warn(ctx, "kept")
	if buf.Len() == 0 {
		t.Fatal("warn not logged")
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	if FromContext(context.Background()) != defaultLogger {
		t.Fatal("expected default logger")
	}
}
