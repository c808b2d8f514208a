// Package reader implements the dump reader (§4.1): a random-access parser
// over a single, multi-hundred-megabyte consolidated diagnostic dump file
// whose body is a concatenation of START_<table>/END_<table> delimited CSV
// sub-tables. A Reader indexes the file once and slices sub-tables on
// demand; it never mutates or writes the file.
package reader

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrDatasetNotFound is returned when the dump file cannot be opened.
var ErrDatasetNotFound = errors.New("dataset not found")

// ErrCorruptIndex is returned when a table name has only one edge (a START
// with no END or vice versa) or start >= end.
var ErrCorruptIndex = errors.New("corrupt index")

// TableRange is the byte/line span of one sub-table, §4.1.
type TableRange struct {
	// StartLine is the line number (0-indexed) of the "START_<name>" marker.
	StartLine int
	// EndLine is the line number of the "END_<name>" marker.
	EndLine int
}

// Rows returns the number of data rows in the table (total lines between
// the markers, minus the implicit header row).
func (t TableRange) Rows() int {
	n := t.EndLine - t.StartLine - 2
	if n < 0 {
		return 0
	}
	return n
}

// Reader is a single dump file's parsed index. It is safe for concurrent
// reads once built; the index itself never changes after NewReader
// returns, because the dump file is immutable for the dataset's lifetime
// (§3 lifecycle).
type Reader struct {
	path  string
	index map[string]TableRange
}

// NewReader scans the file once, recording the last occurrence of every
// START_/END_ marker line, then collapses them into a (start, end) range
// per table name. A table with only one edge is a corrupt index.
func NewReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, path)
		}
		return nil, fmt.Errorf("opening dump file: %w", err)
	}
	defer f.Close()

	starts := map[string]int{}
	ends := map[string]int{}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "START_"):
			name := strings.TrimPrefix(line, "START_")
			starts[name] = lineNo
		case strings.HasPrefix(line, "END_"):
			name := strings.TrimPrefix(line, "END_")
			ends[name] = lineNo
		}
		lineNo++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning dump file: %w", err)
	}

	index := make(map[string]TableRange, len(starts))
	for name, start := range starts {
		end, ok := ends[name]
		if !ok || start >= end {
			return nil, fmt.Errorf("%w: table %q", ErrCorruptIndex, name)
		}
		index[name] = TableRange{StartLine: start, EndLine: end}
	}
	for name := range ends {
		if _, ok := starts[name]; !ok {
			return nil, fmt.Errorf("%w: table %q", ErrCorruptIndex, name)
		}
	}

	return &Reader{path: path, index: index}, nil
}

// TableExists reports whether the named sub-table is present in the index.
func (r *Reader) TableExists(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Index returns the full (name -> range) map. Callers must not mutate it.
func (r *Reader) Index() map[string]TableRange {
	return r.index
}

// ReadTable seeks to the table's data and parses it as CSV per §4.1's
// dialect: quote char 0x07, comma delimiter, surrounding whitespace and
// ASCII double quotes trimmed per field, implicit header row, latin-1 bytes
// decoded to runes 1:1. NA tokens {"N/A","ERR"} stay as text here;
// model.CellFromRaw maps them to null one layer up. Latin-1 decoding maps
// each input byte to one Unicode code point in the 0-255 range, which is
// what "latin-1" means byte-for-byte.
func (r *Reader) ReadTable(name string) (Frame, error) {
	rng, ok := r.index[name]
	if !ok {
		return Frame{}, fmt.Errorf("%w: table %q", ErrTableNotFound, name)
	}

	f, err := os.Open(r.path)
	if err != nil {
		return Frame{}, fmt.Errorf("opening dump file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNo := 0
	var header []string
	var rows [][]string
	for scanner.Scan() {
		if lineNo <= rng.StartLine || lineNo >= rng.EndLine {
			lineNo++
			continue
		}
		line := latin1Decode(scanner.Bytes())
		if header == nil {
			header = splitCSVLine(line)
			lineNo++
			continue
		}
		rows = append(rows, splitCSVLine(line))
		lineNo++
		if lineNo >= rng.EndLine {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return Frame{}, fmt.Errorf("reading table %q: %w", name, err)
	}

	return Frame{Name: name, Header: header, Rows: rows}, nil
}

// ErrTableNotFound is returned by ReadTable when the name is absent from
// the index. Per §4.1, analyzers must probe TableExists first and degrade
// gracefully (return an empty result) rather than surfacing this error.
var ErrTableNotFound = errors.New("table not found")

// Frame is the raw, string-typed CSV slice returned by ReadTable. Column
// typing is left to the consumer (model.Cell coercion happens one layer
// up, in the dataset/analyzer packages) so the reader stays a pure text
// slicer, matching §4.1's "column types left as strings until a consumer
// coerces them".
type Frame struct {
	Name   string
	Header []string
	Rows   [][]string
}

// latin1Decode maps each input byte to the Unicode code point of the same
// value (the definition of latin-1/ISO-8859-1 decoding) so downstream
// string handling never mis-renders high-byte characters emitted by the
// diagnostic tool.
func latin1Decode(b []byte) string {
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}

// splitCSVLine parses one line using the dump's CSV dialect: delimiter
// ',', quote char 0x07, surrounding whitespace and then one pair of
// surrounding ASCII double quotes trimmed per field. It is a
// small hand-rolled reader rather than encoding/csv because encoding/csv
// fixes '"' as the only configurable-looking quote rune source-wide but
// does not tolerate a control-byte quote character across Go versions the
// way a field-by-field split does; the dialect here is simple enough
// (single-line records, no embedded newlines) that a manual split is both
// simpler and more obviously correct.
func splitCSVLine(line string) []string {
	var fields []string
	var cur strings.Builder
	field := func() string {
		s := strings.TrimSpace(cur.String())
		if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
			s = s[1 : len(s)-1]
		}
		return s
	}
	inQuote := false
	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == 0x07:
			inQuote = !inQuote
		case ch == ',' && !inQuote:
			fields = append(fields, field())
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}
	fields = append(fields, field())
	return fields
}

// Path returns the underlying dump file path.
func (r *Reader) Path() string { return r.path }
