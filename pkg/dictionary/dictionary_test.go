package dictionary

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

// TestGetIndexAssignsDenseIds tests that ids are dense and first-seen ordered
func TestGetIndexAssignsDenseIds(t *testing.T) {
	d := New()

	if idx := d.GetIndex("alpha"); idx != 0 {
		t.Errorf("Expected first id 0, got %d", idx)
	}
	if idx := d.GetIndex("beta"); idx != 1 {
		t.Errorf("Expected second id 1, got %d", idx)
	}
	if idx := d.GetIndex("alpha"); idx != 0 {
		t.Errorf("Expected repeated label to keep id 0, got %d", idx)
	}
	if d.Size() != 2 {
		t.Errorf("Expected size 2, got %d", d.Size())
	}
}

// TestGetString tests reverse lookup including unknown ids
func TestGetString(t *testing.T) {
	d := New()
	d.GetIndex("alpha")
	d.GetIndex("beta")

	if s := d.GetString(1); s != "beta" {
		t.Errorf("Expected beta, got %q", s)
	}
	if s := d.GetString(99); s != "" {
		t.Errorf("Expected empty string for unknown id, got %q", s)
	}
	if s := d.GetString(-1); s != "" {
		t.Errorf("Expected empty string for negative id, got %q", s)
	}
}

// TestHasString tests membership without allocation
func TestHasString(t *testing.T) {
	d := New()
	d.GetIndex("alpha")

	if !d.HasString("alpha") {
		t.Error("Expected alpha to be present")
	}
	if d.HasString("beta") {
		t.Error("Expected beta to be absent")
	}
	if d.Size() != 1 {
		t.Errorf("HasString must not allocate, size is %d", d.Size())
	}
}

// TestLoadAssignsLineNumbers tests that line index becomes the id
func TestLoadAssignsLineNumbers(t *testing.T) {
	d := New()
	if err := d.Load(strings.NewReader("a\nb\nc\n")); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if d.Size() != 3 {
		t.Fatalf("Expected 3 labels, got %d", d.Size())
	}
	for i, want := range []string{"a", "b", "c"} {
		if got := d.GetString(int32(i)); got != want {
			t.Errorf("Expected id %d -> %q, got %q", i, want, got)
		}
	}
}

// TestWriteLoadRoundTrip tests that Write output reloads to the same mapping
func TestWriteLoadRoundTrip(t *testing.T) {
	d := New()
	for _, label := range []string{"x", "y", "z"} {
		d.GetIndex(label)
	}

	var buf bytes.Buffer
	if err := d.Write(&buf); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	reloaded := New()
	if err := reloaded.Load(&buf); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if reloaded.Size() != d.Size() {
		t.Fatalf("Expected size %d, got %d", d.Size(), reloaded.Size())
	}
	for i := 0; i < d.Size(); i++ {
		if d.GetString(int32(i)) != reloaded.GetString(int32(i)) {
			t.Errorf("Mismatch at id %d", i)
		}
	}
}

// TestConcurrentGetIndex tests that concurrent allocation stays consistent
func TestConcurrentGetIndex(t *testing.T) {
	d := New()
	labels := []string{"a", "b", "c", "d", "e", "f", "g", "h"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, label := range labels {
				d.GetIndex(label)
			}
		}()
	}
	wg.Wait()

	if d.Size() != len(labels) {
		t.Fatalf("Expected %d labels, got %d", len(labels), d.Size())
	}
	for _, label := range labels {
		idx := d.GetIndex(label)
		if got := d.GetString(idx); got != label {
			t.Errorf("Expected %q at id %d, got %q", label, idx, got)
		}
	}
}
