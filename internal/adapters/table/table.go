// Package table adapts a directory of CSV files to the tabular source and
// sink used by the batch operations. Each table is one file, its first row
// holding the headers.
package table

// Table is an in-memory snapshot of one workbook table. Every row has
// exactly len(Headers) cells after Normalize.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// New creates an empty table with the given headers.
func New(name string, headers ...string) *Table {
	return &Table{Name: name, Headers: append([]string(nil), headers...)}
}

// Index returns the position of an exact header match, or -1.
func (t *Table) Index(header string) int {
	for i, h := range t.Headers {
		if h == header {
			return i
		}
	}
	return -1
}

// EnsureColumns appends the absent headers at the end, never reordering
// existing ones, and returns the index of each requested header.
func (t *Table) EnsureColumns(headers ...string) []int {
	idx := make([]int, len(headers))
	for i, h := range headers {
		j := t.Index(h)
		if j < 0 {
			t.Headers = append(t.Headers, h)
			j = len(t.Headers) - 1
		}
		idx[i] = j
	}
	t.Normalize()
	return idx
}

// Normalize pads or trims rows to the header width.
func (t *Table) Normalize() {
	w := len(t.Headers)
	for i, r := range t.Rows {
		switch {
		case len(r) < w:
			t.Rows[i] = append(r, make([]string, w-len(r))...)
		case len(r) > w:
			t.Rows[i] = r[:w]
		}
	}
}

// Cell returns the value at (row, col) or "" when out of range.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// Set writes a value, growing the row when needed.
func (t *Table) Set(row, col int, v string) {
	if row < 0 || row >= len(t.Rows) || col < 0 {
		return
	}
	if col >= len(t.Rows[row]) {
		t.Rows[row] = append(t.Rows[row], make([]string, col+1-len(t.Rows[row]))...)
	}
	t.Rows[row][col] = v
}

// Append adds a row.
func (t *Table) Append(cells ...string) {
	t.Rows = append(t.Rows, append([]string(nil), cells...))
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	c := &Table{Name: t.Name, Headers: append([]string(nil), t.Headers...)}
	c.Rows = make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		c.Rows[i] = append([]string(nil), r...)
	}
	return c
}
