package observability

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestLogger_New(t *testing.T) {
	logger := NewLogger(INFO, nil)
	if logger == nil {
		t.Fatal("Expected logger to be created")
	}
	if logger.level != INFO {
		t.Errorf("Expected log level INFO, got %v", logger.level)
	}
}

func TestLogger_WithFields(t *testing.T) {
	logger := NewLogger(INFO, nil)
	derived := logger.WithFields(map[string]interface{}{
		"graph": "freebase",
		"nodes": 123,
	})

	if len(derived.fields) != 2 {
		t.Errorf("Expected 2 fields, got %d", len(derived.fields))
	}
	if len(logger.fields) != 0 {
		t.Error("Parent logger fields must not change")
	}
}

func TestLogger_Info(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(INFO, &buf)

	logger.Info("graph loaded", map[string]interface{}{"triples": 42})

	out := buf.String()
	if !strings.Contains(out, "INFO") {
		t.Errorf("Expected INFO in output, got %q", out)
	}
	if !strings.Contains(out, "graph loaded") {
		t.Errorf("Expected message in output, got %q", out)
	}
	if !strings.Contains(out, "triples=42") {
		t.Errorf("Expected field in output, got %q", out)
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(WARN, &buf)

	logger.Debug("hidden")
	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("Expected below-level messages suppressed, got %q", buf.String())
	}

	logger.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Error("Expected WARN message to pass the filter")
	}
}

func TestLogger_SortedFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(INFO, &buf)

	logger.Info("msg", map[string]interface{}{"b": 2, "a": 1, "c": 3})

	out := buf.String()
	if strings.Index(out, "a=1") > strings.Index(out, "b=2") ||
		strings.Index(out, "b=2") > strings.Index(out, "c=3") {
		t.Errorf("Expected sorted field order, got %q", out)
	}
}

func TestLogger_LogOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(INFO, &buf)

	err := logger.LogOperation("load", func() error { return nil })
	if err != nil {
		t.Errorf("Expected nil error, got %v", err)
	}
	if !strings.Contains(buf.String(), "Operation completed: load") {
		t.Errorf("Expected completion entry, got %q", buf.String())
	}

	buf.Reset()
	wantErr := errors.New("missing file")
	err = logger.LogOperation("load", func() error { return wantErr })
	if err != wantErr {
		t.Errorf("Expected error passthrough, got %v", err)
	}
	if !strings.Contains(buf.String(), "Operation failed: load") {
		t.Errorf("Expected failure entry, got %q", buf.String())
	}
}

func TestMetrics_Default(t *testing.T) {
	m1 := Default()
	m2 := Default()
	if m1 == nil {
		t.Fatal("Expected metrics to be created")
	}
	if m1 != m2 {
		t.Error("Default must return the same instance")
	}

	// Counters must be usable without panicking
	m1.RecordRequest("GetNode", "ok", 0)
	m1.RecordError("GetNode", "not_found")
	m1.RecordGraphLoad("disk", 0, 10)
	m1.UpdateGraphSize("default", 3, 1)
	m1.CacheHits.Inc()
	m1.CacheMisses.Inc()
}
