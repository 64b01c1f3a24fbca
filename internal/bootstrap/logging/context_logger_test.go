package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewRejectsUnknownSettings(t *testing.T) {
	var buf bytes.Buffer
	if _, err := New(&buf, "xml", "info"); err == nil {
		t.Fatalf("New(xml) error = nil")
	}
	if _, err := New(&buf, "text", "loud"); err == nil {
		t.Fatalf("New(level=loud) error = nil")
	}
}

func TestAttrsOverrideByKey(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "json", "debug")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := WithLogger(context.Background(), logger)
	ctx = WithComponent(ctx, "usecase.bounty")
	ctx = WithAttrs(ctx, slog.String("vault", "v1"))
	ctx = WithComponent(ctx, "transport.httpapi")
	Info(ctx, "payout executed", slog.String("vault", "v2"))

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line: %v (%s)", err, buf.String())
	}
	if line["component"] != "transport.httpapi" || line["vault"] != "v2" {
		t.Fatalf("line = %v", line)
	}
	if strings.Count(buf.String(), `"component"`) != 1 {
		t.Fatalf("component repeated: %s", buf.String())
	}
}

func TestInheritKeepsTargetContext(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "text", "warn")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	from := WithComponent(WithLogger(context.Background(), logger), "serve")

	target, cancel := context.WithCancel(context.Background())
	cancel()
	ctx := WithRequestID(Inherit(target, from), "req-7")

	if ctx.Err() == nil {
		t.Fatalf("inherited context lost cancellation")
	}
	Info(ctx, "dropped below level")
	Warn(ctx, "kept")

	out := buf.String()
	if strings.Contains(out, "dropped below level") {
		t.Fatalf("info logged at warn level: %s", out)
	}
	if !strings.Contains(out, "component=serve") || !strings.Contains(out, "request_id=req-7") {
		t.Fatalf("missing inherited attrs: %s", out)
	}
}
