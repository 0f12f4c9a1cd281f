package source

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"sync"

	"skyconv/internal/assay"
	"skyconv/internal/table"
)

// Scratch is the temporary file holding the canonical intermediate table.
// Close removes it and is safe to call more than once.
type Scratch struct {
	path string
	once sync.Once
	err  error
}

func NewScratch() (*Scratch, error) {
	f, err := os.CreateTemp("", "skyconv-*.tsv")
	if err != nil {
		return nil, assay.IOError("scratch", err)
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return nil, assay.IOError("scratch", err)
	}
	return &Scratch{path: path}, nil
}

func (s *Scratch) Path() string { return s.path }

func (s *Scratch) Close() error {
	s.once.Do(func() {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.err = err
		}
	})
	return s.err
}

// WriteCanonical serializes lib into the scratch file with the canonical
// header.
func (s *Scratch) WriteCanonical(lib *assay.Library) error {
	f, err := os.Create(s.path)
	if err != nil {
		return assay.IOError("scratch", err)
	}
	w := bufio.NewWriter(f)
	rows := make([][]string, 0, lib.Len())
	for i := range lib.Records {
		rows = append(rows, lib.Records[i].Cells())
	}
	err = table.WriteRows(w, assay.ColumnNames(), rows)
	if err == nil {
		err = w.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return assay.IOError("scratch", err)
	}
	return nil
}

// ReadCanonical loads the intermediate table back from the scratch file.
func (s *Scratch) ReadCanonical() (*table.Table, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, assay.IOError("scratch", err)
	}
	defer f.Close()
	t, err := table.ReadTSV(bufio.NewReader(f))
	if err != nil {
		return nil, &assay.DecodeError{Format: "canonical", Path: s.path, Err: err}
	}
	return t, nil
}
