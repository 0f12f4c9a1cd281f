// Package table is the canonical in-memory form of a library: an ordered
// header plus string rows, read from and written to tab-separated text.
package table

import (
	"fmt"
	"slices"
)

// Table is a column-addressed string table. Every row has exactly one cell
// per column.
type Table struct {
	cols  []string
	index map[string]int
	rows  [][]string
}

// New builds a table; rows must match the header width.
func New(cols []string, rows [][]string) (*Table, error) {
	t := &Table{cols: append([]string(nil), cols...)}
	if err := t.reindex(); err != nil {
		return nil, err
	}
	for i, r := range rows {
		if len(r) != len(cols) {
			return nil, fmt.Errorf("table: row %d has %d cells, header has %d", i+1, len(r), len(cols))
		}
	}
	t.rows = rows
	return t, nil
}

func (t *Table) reindex() error {
	t.index = make(map[string]int, len(t.cols))
	for i, c := range t.cols {
		if _, dup := t.index[c]; dup {
			return fmt.Errorf("table: duplicate column %q", c)
		}
		t.index[c] = i
	}
	return nil
}

func (t *Table) Columns() []string { return append([]string(nil), t.cols...) }
func (t *Table) Len() int          { return len(t.rows) }

func (t *Table) Has(col string) bool {
	_, ok := t.index[col]
	return ok
}

// Index returns the position of col in the header.
func (t *Table) Index(col string) (int, bool) {
	i, ok := t.index[col]
	return i, ok
}

// Row returns row i; callers must not retain it across mutations.
func (t *Table) Row(i int) []string { return t.rows[i] }

// Value returns the cell at row i, column col.
func (t *Table) Value(i int, col string) (string, bool) {
	j, ok := t.index[col]
	if !ok {
		return "", false
	}
	return t.rows[i][j], true
}

// Rename renames columns in place. Names in m that are not present are
// returned as missing and nothing is renamed.
func (t *Table) Rename(m map[string]string) (missing []string, err error) {
	for from := range m {
		if !t.Has(from) {
			missing = append(missing, from)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return missing, nil
	}
	next := t.Columns()
	for i, c := range next {
		if to, ok := m[c]; ok {
			next[i] = to
		}
	}
	prev := t.cols
	t.cols = next
	if err := t.reindex(); err != nil {
		t.cols = prev
		_ = t.reindex()
		return nil, err
	}
	return nil, nil
}

// Filter keeps the rows for which keep returns true, preserving order, and
// returns how many rows were removed.
func (t *Table) Filter(keep func(row []string) bool) int {
	out := t.rows[:0]
	for _, r := range t.rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	removed := len(t.rows) - len(out)
	clear(t.rows[len(out):])
	t.rows = out
	return removed
}

// Drop removes the named columns that are present and returns the ones
// that were not.
func (t *Table) Drop(cols ...string) (absent []string) {
	gone := make(map[int]bool, len(cols))
	for _, c := range cols {
		if i, ok := t.index[c]; ok {
			gone[i] = true
		} else {
			absent = append(absent, c)
		}
	}
	if len(gone) == 0 {
		return absent
	}
	keep := func(cells []string) []string {
		out := make([]string, 0, len(cells)-len(gone))
		for i, v := range cells {
			if !gone[i] {
				out = append(out, v)
			}
		}
		return out
	}
	t.cols = keep(t.cols)
	for i, r := range t.rows {
		t.rows[i] = keep(r)
	}
	_ = t.reindex()
	return absent
}

// Set writes fn(row) into col for every row, appending col when it does
// not exist yet.
func (t *Table) Set(col string, fn func(row []string) (string, error)) error {
	j, ok := t.index[col]
	if !ok {
		t.cols = append(t.cols, col)
		j = len(t.cols) - 1
		t.index[col] = j
		for i, r := range t.rows {
			t.rows[i] = append(r, "")
		}
	}
	for i, r := range t.rows {
		v, err := fn(r)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
		r[j] = v
	}
	return nil
}

// Fill sets every cell of col to v.
func (t *Table) Fill(col, v string) {
	_ = t.Set(col, func([]string) (string, error) { return v, nil })
}

// Reorder returns a copy whose columns follow order. Listed columns that
// are absent are skipped; unlisted columns follow in their current order.
func (t *Table) Reorder(order []string) *Table {
	var cols []string
	seen := make(map[string]bool, len(t.cols))
	for _, c := range order {
		if t.Has(c) && !seen[c] {
			cols = append(cols, c)
			seen[c] = true
		}
	}
	for _, c := range t.cols {
		if !seen[c] {
			cols = append(cols, c)
		}
	}
	src := make([]int, len(cols))
	for i, c := range cols {
		src[i] = t.index[c]
	}
	rows := make([][]string, len(t.rows))
	for i, r := range t.rows {
		nr := make([]string, len(src))
		for k, j := range src {
			nr[k] = r[j]
		}
		rows[i] = nr
	}
	out, _ := New(cols, rows)
	return out
}
