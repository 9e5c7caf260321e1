package graph

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// LoadTextEdges parses the tab-separated edge format: one edge per line,
// fields source<TAB>target<TAB>relation as non-negative decimal integers,
// exactly two tabs, no header and no trailing whitespace.
//
// The three fields are accumulated digit by digit straight from the line
// buffer, with no per-field string allocation or strconv call, to sustain
// throughput on files with tens of millions of lines. Non-digit bytes where
// a digit is expected are not detected; callers must pre-validate input if
// malformed files are a realistic threat.
func LoadTextEdges(r io.Reader, b *Builder) error {
	br := bufio.NewReaderSize(r, 1<<20)
	for {
		line, err := br.ReadSlice('\n')
		if len(line) > 0 {
			parseEdgeLine(line, b)
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read edge line: %w", err)
		}
	}
}

// parseEdgeLine accumulates the three integer fields of one line and records
// the edge. Blank lines are skipped.
func parseEdgeLine(line []byte, b *Builder) {
	var fields [3]int32
	field := 0
	seen := false
	for _, c := range line {
		switch c {
		case '\t':
			// Extra tabs fold into the last field: corrupt values for
			// corrupt input, never an out-of-range index.
			if field < 2 {
				field++
			}
		case '\n', '\r':
			// End of record
		default:
			fields[field] = fields[field]*10 + int32(c-'0')
			seen = true
		}
	}
	if !seen {
		return
	}
	b.AddEdge(fields[0], fields[1], fields[2])
}

// LoadBinaryEdges reads a flat stream of big-endian 32-bit integer triples
// in on-disk order (source, target, relation) until end of stream. EOF on a
// triple boundary is the normal terminator; EOF inside a triple is a
// truncation error.
func LoadBinaryEdges(r io.Reader, b *Builder) error {
	br := bufio.NewReaderSize(r, 1<<20)
	var buf [12]byte
	for {
		if _, err := io.ReadFull(br, buf[:]); err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("truncated edge record: %w", err)
		}
		source := int32(binary.BigEndian.Uint32(buf[0:4]))
		target := int32(binary.BigEndian.Uint32(buf[4:8]))
		relation := int32(binary.BigEndian.Uint32(buf[8:12]))
		b.AddEdge(source, target, relation)
	}
}
