package telemetry

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/shaiso/Plankit/internal/domain"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLogger_Formats(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, "INFO", "json").Info("hello", "k", "v")
	if !strings.HasPrefix(buf.String(), "{") {
		t.Errorf("json format expected, got %q", buf.String())
	}

	buf.Reset()
	NewLogger(&buf, "INFO", "text").Info("hello", "k", "v")
	if !strings.Contains(buf.String(), "msg=hello") {
		t.Errorf("text format expected, got %q", buf.String())
	}

	buf.Reset()
	NewLogger(&buf, "WARN", "text").Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("info should be filtered at WARN, got %q", buf.String())
	}
}

func TestFromContext(t *testing.T) {
	if FromContext(context.Background()) != slog.Default() {
		t.Error("expected default logger")
	}

	logger := NewLogger(&bytes.Buffer{}, "INFO", "text")
	ctx := WithLogger(context.Background(), logger)
	if FromContext(ctx) != logger {
		t.Error("expected logger from context")
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveNode(domain.NodeKindAction, domain.NodePhaseSucceeded)
	m.ObserveNode(domain.NodeKindAction, domain.NodePhaseSucceeded)
	m.ObserveNode(domain.NodeKindAction, domain.NodePhaseFailed)
	m.ObserveRecovery()
	m.ObserveRun(domain.RunStatusSucceeded, 50*time.Millisecond)

	if got := testutil.ToFloat64(m.nodes.WithLabelValues("action", "SUCCEEDED")); got != 2 {
		t.Errorf("expected 2 succeeded actions, got %v", got)
	}
	if got := testutil.ToFloat64(m.nodes.WithLabelValues("action", "FAILED")); got != 1 {
		t.Errorf("expected 1 failed action, got %v", got)
	}
	if got := testutil.ToFloat64(m.recoveries); got != 1 {
		t.Errorf("expected 1 recovery, got %v", got)
	}
	if got := testutil.ToFloat64(m.runs.WithLabelValues("SUCCEEDED")); got != 1 {
		t.Errorf("expected 1 run, got %v", got)
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveNode(domain.NodeKindStage, domain.NodePhaseSucceeded)
	m.ObserveRecovery()
	m.ObserveRun(domain.RunStatusFailed, time.Second)
}
