// Package schema checks that a canonical table honours the assay library
// contract before any transformation touches it.
package schema

import (
	"skyconv/internal/assay"
	"skyconv/internal/table"
)

// Validate returns t unchanged when its header is exactly the canonical
// column set (any order) and every cell parses as its column's kind. The
// first offending column is reported as an *assay.SchemaError.
//
// The pipeline runs it on the scratch table written from Record.Cells, so a
// failure there means the scratch codec and the canonical header disagree.
func Validate(t *table.Table) (*table.Table, error) {
	for _, c := range assay.Columns() {
		if !t.Has(c.Name) {
			return nil, &assay.SchemaError{Column: c.Name, Reason: "missing"}
		}
	}
	for _, name := range t.Columns() {
		if _, ok := assay.Lookup(name); !ok {
			return nil, &assay.SchemaError{Column: name, Reason: "unexpected column"}
		}
	}

	type typed struct {
		idx  int
		name string
		kind assay.Kind
	}
	var checks []typed
	for _, c := range assay.Columns() {
		if c.Kind == assay.KindString {
			continue
		}
		i, _ := t.Index(c.Name)
		checks = append(checks, typed{idx: i, name: c.Name, kind: c.Kind})
	}
	for r := 0; r < t.Len(); r++ {
		row := t.Row(r)
		for _, c := range checks {
			if err := c.kind.Check(row[c.idx]); err != nil {
				return nil, &assay.SchemaError{Column: c.name, Row: r + 1, Reason: "not a valid " + c.kind.String() + ": " + row[c.idx]}
			}
		}
	}
	return t, nil
}
