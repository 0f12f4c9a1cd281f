package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ReadTSV parses a tab-separated table with a header row. Rows whose width
// differs from the header are rejected.
func ReadTSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("tsv: empty input, no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("tsv: header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	cr.FieldsPerRecord = len(header)

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("tsv: %w", err)
		}
		rows = append(rows, rec)
	}
	return New(header, rows)
}

// WriteTSV writes the header and all rows.
func (t *Table) WriteTSV(w io.Writer) error {
	return WriteRows(w, t.cols, t.rows)
}

// WriteRows writes header and rows as tab-separated text.
func WriteRows(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}
