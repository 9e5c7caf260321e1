// Package dictionary provides a bidirectional mapping between string labels
// and dense int32 ids. Two independent instances back a graph: one for node
// names and one for relation names.
package dictionary

import (
	"bufio"
	"fmt"
	"io"
	"sync"
)

// Dictionary maps string labels to dense ids assigned in first-seen order,
// starting at 0. All methods are safe for concurrent use.
type Dictionary struct {
	mu      sync.RWMutex
	indexes map[string]int32
	labels  []string
}

// New creates an empty dictionary.
func New() *Dictionary {
	return &Dictionary{
		indexes: make(map[string]int32),
	}
}

// GetIndex returns the id for label, allocating the next dense id if the
// label has not been seen before.
func (d *Dictionary) GetIndex(label string) int32 {
	d.mu.RLock()
	idx, ok := d.indexes[label]
	d.mu.RUnlock()
	if ok {
		return idx
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	// Re-check after acquiring the write lock
	if idx, ok := d.indexes[label]; ok {
		return idx
	}

	idx = int32(len(d.labels))
	d.indexes[label] = idx
	d.labels = append(d.labels, label)
	return idx
}

// GetString returns the label for id, or the empty string if id was never
// assigned.
func (d *Dictionary) GetString(idx int32) string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if idx < 0 || int(idx) >= len(d.labels) {
		return ""
	}
	return d.labels[idx]
}

// HasString reports whether label has already been assigned an id.
func (d *Dictionary) HasString(label string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	_, ok := d.indexes[label]
	return ok
}

// Size returns the number of assigned ids.
func (d *Dictionary) Size() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.labels)
}

// Load reads one label per line from r; the 0-based line number becomes the
// label's id. Labels already present keep their existing ids, so Load is
// normally called on an empty dictionary.
func (d *Dictionary) Load(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		d.GetIndex(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read dictionary: %w", err)
	}
	return nil
}

// Write emits one label per line in id order, the inverse of Load.
func (d *Dictionary) Write(w io.Writer) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	bw := bufio.NewWriter(w)
	for _, label := range d.labels {
		if _, err := bw.WriteString(label); err != nil {
			return fmt.Errorf("failed to write dictionary: %w", err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("failed to write dictionary: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush dictionary: %w", err)
	}
	return nil
}
