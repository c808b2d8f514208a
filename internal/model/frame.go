package model

// Row is a dictionary from column name (header string, case-sensitive) to
// cell, per §3. Column order is not significant on a Row; Frame.Columns
// carries the display order.
type Row map[string]Cell

// Clone returns a shallow copy of the row (cells are values, so this is a
// full copy for practical purposes). Used by analyzers that annotate a
// borrowed row (e.g. the topology row-annotator) without mutating the
// source frame.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Get returns the cell for a column, or NullCell if the column is absent.
// Absent columns default rather than error, per §3's schema-discovery
// non-goal.
func (r Row) Get(col string) Cell {
	if r == nil {
		return NullCell
	}
	if c, ok := r[col]; ok {
		return c
	}
	return NullCell
}

// GetString returns the column's text form, or "" if absent/null.
func (r Row) GetString(col string) string {
	return r.Get(col).String()
}

// GetInt returns the column coerced to int64 via the §4.4 loose rules.
func (r Row) GetInt(col string) (int64, bool) {
	return r.Get(col).AsInt()
}

// GetFloat returns the column coerced to float64 via the §4.4 loose rules.
func (r Row) GetFloat(col string) (float64, bool) {
	return r.Get(col).AsFloat()
}

// Frame is a tabular sub-table slice: header-derived column order plus the
// data rows, per §4.1's read_table contract. Rows are byte-for-byte slices
// of the underlying dump minus markers and header, then cell-parsed.
type Frame struct {
	Name    string
	Columns []string
	Rows    []Row
}

// Empty reports whether the frame has no rows (the degrade-gracefully case
// for an absent or empty sub-table, §4.1/§4.4).
func (f Frame) Empty() bool { return len(f.Rows) == 0 }

// EmptyFrame returns a named, columnless, rowless frame — the canonical
// "table absent" result analyzers return instead of erroring (§4.1).
func EmptyFrame(name string) Frame {
	return Frame{Name: name}
}

// Truncate returns a frame capped at n rows (the `preview_row_limit`
// configuration parameter, §9), keeping row order.
func (f Frame) Truncate(n int) Frame {
	if n <= 0 || len(f.Rows) <= n {
		return f
	}
	out := f
	out.Rows = f.Rows[:n]
	return out
}
