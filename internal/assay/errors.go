package assay

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the conversion. Concrete errors below match them
// with errors.Is.
var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrDecode            = errors.New("decode error")
	ErrSchemaViolation   = errors.New("schema violation")
	ErrMissingColumn     = errors.New("missing column")
	ErrIO                = errors.New("i/o error")
)

// DecodeError reports malformed input content.
type DecodeError struct {
	Format string
	Path   string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode %s: %v", e.Format, e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error        { return e.Err }
func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// SchemaError names the column that broke the canonical schema. Row is the
// 1-based data row for type errors and 0 for header errors.
type SchemaError struct {
	Column string
	Row    int
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("schema violation: column %q row %d: %s", e.Column, e.Row, e.Reason)
	}
	return fmt.Sprintf("schema violation: column %q: %s", e.Column, e.Reason)
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchemaViolation }

// ColumnError is returned when a transform stage needs a column the table
// does not carry.
type ColumnError struct {
	Stage  string
	Column string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("%s: missing column %q", e.Stage, e.Column)
}

func (e *ColumnError) Is(target error) bool { return target == ErrMissingColumn }

// IOError wraps err so that errors.Is(err, ErrIO) holds.
func IOError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrIO, err)
}
