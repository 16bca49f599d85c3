package actions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shaiso/Plankit/internal/pipeline"
	"github.com/shaiso/Plankit/internal/telemetry"
)

// Registry Tests

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	// Пустой реестр
	if r.Count() != 0 {
		t.Errorf("expected empty registry")
	}

	r.Register(ActionNoop, NewNoop)
	if r.Count() != 1 {
		t.Errorf("expected 1 action, got %d", r.Count())
	}

	fn, err := r.Build(ActionNoop, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := fn(context.Background()); err != nil {
		t.Errorf("noop returned %v", err)
	}

	// Несуществующее действие
	_, err = r.Build("unknown", nil)
	if !errors.Is(err, ErrUnknownAction) {
		t.Errorf("expected ErrUnknownAction, got %v", err)
	}

	if !r.Has(ActionNoop) {
		t.Error("should have noop")
	}
	if r.Has("unknown") {
		t.Error("should not have unknown")
	}

	r.Unregister(ActionNoop)
	if r.Has(ActionNoop) {
		t.Error("should not have noop after unregister")
	}
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	expected := []string{"delay", "fail", "http", "log", "noop"}
	names := r.Names()
	if len(names) != len(expected) {
		t.Fatalf("expected %d actions, got %v", len(expected), names)
	}
	for i, name := range expected {
		if names[i] != name {
			t.Errorf("names[%d] = %s, want %s", i, names[i], name)
		}
	}
}

// Delay Tests

func TestDelay(t *testing.T) {
	fn, err := NewDelay(map[string]any{"duration_ms": 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	start := time.Now()
	if err := fn(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("delay was too short: %v", elapsed)
	}
}

func TestDelay_Cancellation(t *testing.T) {
	fn, err := NewDelay(map[string]any{"duration_sec": 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = fn(ctx)
	elapsed := time.Since(start)

	if !errors.Is(err, ErrActionCancelled) {
		t.Errorf("expected ErrActionCancelled, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded in chain, got %v", err)
	}
	if elapsed > 500*time.Millisecond {
		t.Errorf("cancellation took too long: %v", elapsed)
	}
}

func TestDelay_InvalidConfig(t *testing.T) {
	_, err := NewDelay(map[string]any{})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

// HTTP Tests

func TestHTTP_GET(t *testing.T) {
	var method string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	fn, err := NewHTTP(map[string]any{"url": server.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := fn(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if method != http.MethodGet {
		t.Errorf("expected GET, got %s", method)
	}
}

func TestHTTP_POST_JSON(t *testing.T) {
	var receivedBody map[string]any
	var contentType string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		json.NewDecoder(r.Body).Decode(&receivedBody)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	fn, err := NewHTTP(map[string]any{
		"method": "post",
		"url":    server.URL,
		"body":   map[string]any{"name": "test", "value": 42},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Действие можно вызвать повторно: body не вычитывается навсегда.
	for i := 0; i < 2; i++ {
		receivedBody = nil
		if err := fn(context.Background()); err != nil {
			t.Fatalf("call %d: unexpected error: %v", i, err)
		}
		if receivedBody["name"] != "test" {
			t.Errorf("call %d: expected name 'test', got %v", i, receivedBody["name"])
		}
	}

	if contentType != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", contentType)
	}
}

func TestHTTP_WithHeaders(t *testing.T) {
	var receivedAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	fn, err := NewHTTP(map[string]any{
		"url":     server.URL,
		"headers": map[string]any{"Authorization": "Bearer secret123"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := fn(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if receivedAuth != "Bearer secret123" {
		t.Errorf("expected auth header, got %s", receivedAuth)
	}
}

func TestHTTP_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("maintenance"))
	}))
	defer server.Close()

	fn, err := NewHTTP(map[string]any{"url": server.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = fn(context.Background())

	var herr *HTTPError
	if !errors.As(err, &herr) {
		t.Fatalf("expected *HTTPError, got %v", err)
	}
	if herr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", herr.StatusCode)
	}
	if herr.Body != "maintenance" {
		t.Errorf("expected body 'maintenance', got %q", herr.Body)
	}
	if !errors.Is(err, ErrHTTPStatus) {
		t.Error("expected ErrHTTPStatus in chain")
	}
	if !IsHTTPError(err) {
		t.Error("IsHTTPError should be true")
	}
}

func TestHTTP_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  map[string]any
	}{
		{"missing url", map[string]any{}},
		{"not http", map[string]any{"url": "ftp://example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewHTTP(tt.cfg)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestHTTP_Cancellation(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()
	defer close(release)

	fn, err := NewHTTP(map[string]any{"url": server.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err = fn(ctx)
	if !errors.Is(err, ErrActionCancelled) {
		t.Errorf("expected ErrActionCancelled, got %v", err)
	}
}

// Fail / Log / Noop Tests

func TestFail(t *testing.T) {
	fn, err := NewFail(map[string]any{"message": "deploy rejected"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = fn(context.Background())
	if !errors.Is(err, ErrActionFailed) {
		t.Errorf("expected ErrActionFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "deploy rejected") {
		t.Errorf("expected message in error, got %v", err)
	}
}

func TestLog(t *testing.T) {
	var buf bytes.Buffer
	logger := telemetry.NewLogger(&buf, "DEBUG", "json")

	fn, err := NewLog(map[string]any{"message": "release started", "level": "warn"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := telemetry.WithLogger(context.Background(), logger)
	if err := fn(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid log line %q: %v", buf.String(), err)
	}
	if entry["msg"] != "release started" {
		t.Errorf("expected msg 'release started', got %v", entry["msg"])
	}
	if entry["level"] != "WARN" {
		t.Errorf("expected level WARN, got %v", entry["level"])
	}
}

func TestLog_InvalidConfig(t *testing.T) {
	if _, err := NewLog(map[string]any{}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestActionsInPlan(t *testing.T) {
	r := DefaultRegistry()

	deploy, err := r.Build(ActionFail, map[string]any{"message": "boom"})
	if err != nil {
		t.Fatal(err)
	}
	rollback, err := r.Build(ActionNoop, nil)
	if err != nil {
		t.Fatal(err)
	}

	p := pipeline.Pipe(
		pipeline.Stage("Release", pipeline.NamedAction("deploy", deploy)),
		pipeline.Recover(pipeline.Stage("Rollback", pipeline.NamedAction("rollback", rollback))),
	)

	if err := pipeline.Run(context.Background(), p); err != nil {
		t.Errorf("expected recovered run, got %v", err)
	}
}

// Helper Functions Tests

func TestGetConfigHelpers(t *testing.T) {
	config := map[string]any{
		"string_val":     "test",
		"int_val":        42,
		"float_val":      3.14,
		"bool_val":       true,
		"map_val":        map[string]any{"key": "value"},
		"string_map_val": map[string]string{"key": "value"},
	}

	if GetConfigString(config, "string_val") != "test" {
		t.Error("GetConfigString failed")
	}
	if GetConfigString(config, "missing") != "" {
		t.Error("GetConfigString should return empty for missing")
	}

	if GetConfigInt(config, "int_val") != 42 {
		t.Error("GetConfigInt failed for int")
	}
	if GetConfigInt(config, "float_val") != 3 {
		t.Error("GetConfigInt failed for float")
	}
	if GetConfigInt(config, "missing") != 0 {
		t.Error("GetConfigInt should return 0 for missing")
	}

	if !GetConfigBool(config, "bool_val", false) {
		t.Error("GetConfigBool failed")
	}
	if !GetConfigBool(config, "missing", true) {
		t.Error("GetConfigBool should return default for missing")
	}

	ms := GetConfigMapString(config, "string_map_val")
	if ms == nil || ms["key"] != "value" {
		t.Error("GetConfigMapString failed for string map")
	}
	ms = GetConfigMapString(config, "map_val")
	if ms == nil || ms["key"] != "value" {
		t.Error("GetConfigMapString failed for any map")
	}
}
