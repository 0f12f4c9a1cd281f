package assay

import (
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type Kind int

const (
	KindString Kind = iota
	KindFloat
	KindInt
)

func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	default:
		return "string"
	}
}

// Check reports whether s is a valid cell of kind k. Empty cells are valid
// for every kind.
func (k Kind) Check(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	switch k {
	case KindFloat:
		_, err := ParseFloat(s)
		return err
	case KindInt:
		_, err := ParseInt(s)
		return err
	}
	return nil
}

// Column describes one canonical column and how it maps onto Record.
type Column struct {
	Name string
	Kind Kind
	get  func(*Record) string
	set  func(*Record, string) error
}

// Canonical column names referenced outside this package.
const (
	ColCompoundName            = "CompoundName"
	ColSumFormula              = "SumFormula"
	ColAdducts                 = "Adducts"
	ColAnnotation              = "Annotation"
	ColCollisionEnergy         = "CollisionEnergy"
	ColNormalizedRetentionTime = "NormalizedRetentionTime"
	ColTransitionGroupID       = "TransitionGroupId"
	ColDecoy                   = "Decoy"
)

var columns = []Column{
	floatCol("PrecursorMz", func(r *Record) *sql.NullFloat64 { return &r.PrecursorMz }),
	floatCol("ProductMz", func(r *Record) *sql.NullFloat64 { return &r.ProductMz }),
	intCol("PrecursorCharge", func(r *Record) *sql.NullInt64 { return &r.PrecursorCharge }),
	intCol("ProductCharge", func(r *Record) *sql.NullInt64 { return &r.ProductCharge }),
	floatCol("LibraryIntensity", func(r *Record) *sql.NullFloat64 { return &r.LibraryIntensity }),
	floatCol(ColNormalizedRetentionTime, func(r *Record) *sql.NullFloat64 { return &r.NormalizedRetentionTime }),
	strCol("PeptideSequence", func(r *Record) *string { return &r.PeptideSequence }),
	strCol("ModifiedPeptideSequence", func(r *Record) *string { return &r.ModifiedPeptideSequence }),
	strCol("PeptideGroupLabel", func(r *Record) *string { return &r.PeptideGroupLabel }),
	strCol("LabelType", func(r *Record) *string { return &r.LabelType }),
	strCol(ColCompoundName, func(r *Record) *string { return &r.CompoundName }),
	strCol(ColSumFormula, func(r *Record) *string { return &r.SumFormula }),
	strCol("SMILES", func(r *Record) *string { return &r.SMILES }),
	strCol(ColAdducts, func(r *Record) *string { return &r.Adducts }),
	strCol("ProteinId", func(r *Record) *string { return &r.ProteinID }),
	strCol("UniprotId", func(r *Record) *string { return &r.UniprotID }),
	strCol("GeneName", func(r *Record) *string { return &r.GeneName }),
	strCol("FragmentType", func(r *Record) *string { return &r.FragmentType }),
	intCol("FragmentSeriesNumber", func(r *Record) *sql.NullInt64 { return &r.FragmentSeriesNumber }),
	strCol(ColAnnotation, func(r *Record) *string { return &r.Annotation }),
	floatCol(ColCollisionEnergy, func(r *Record) *sql.NullFloat64 { return &r.CollisionEnergy }),
	floatCol("PrecursorIonMobility", func(r *Record) *sql.NullFloat64 { return &r.PrecursorIonMobility }),
	strCol(ColTransitionGroupID, func(r *Record) *string { return &r.TransitionGroupID }),
	strCol("TransitionId", func(r *Record) *string { return &r.TransitionID }),
	intCol(ColDecoy, func(r *Record) *sql.NullInt64 { return &r.Decoy }),
	intCol("DetectingTransition", func(r *Record) *sql.NullInt64 { return &r.DetectingTransition }),
	intCol("IdentifyingTransition", func(r *Record) *sql.NullInt64 { return &r.IdentifyingTransition }),
	intCol("QuantifyingTransition", func(r *Record) *sql.NullInt64 { return &r.QuantifyingTransition }),
	strCol("Peptidoforms", func(r *Record) *string { return &r.Peptidoforms }),
}

var byName = func() map[string]Column {
	m := make(map[string]Column, len(columns))
	for _, c := range columns {
		m[c.Name] = c
	}
	return m
}()

// Columns returns the canonical schema in header order.
func Columns() []Column {
	return append([]Column(nil), columns...)
}

// ColumnNames returns the canonical header.
func ColumnNames() []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = c.Name
	}
	return out
}

// Lookup returns the canonical column called name.
func Lookup(name string) (Column, bool) {
	c, ok := byName[name]
	return c, ok
}

func strCol(name string, field func(*Record) *string) Column {
	return Column{
		Name: name,
		Kind: KindString,
		get:  func(r *Record) string { return *field(r) },
		set: func(r *Record, s string) error {
			*field(r) = s
			return nil
		},
	}
}

func floatCol(name string, field func(*Record) *sql.NullFloat64) Column {
	return Column{
		Name: name,
		Kind: KindFloat,
		get: func(r *Record) string {
			v := field(r)
			if !v.Valid {
				return ""
			}
			return FormatFloat(v.Float64)
		},
		set: func(r *Record, s string) error {
			if strings.TrimSpace(s) == "" {
				*field(r) = sql.NullFloat64{}
				return nil
			}
			f, err := ParseFloat(s)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			*field(r) = Float(f)
			return nil
		},
	}
}

func intCol(name string, field func(*Record) *sql.NullInt64) Column {
	return Column{
		Name: name,
		Kind: KindInt,
		get: func(r *Record) string {
			v := field(r)
			if !v.Valid {
				return ""
			}
			return strconv.FormatInt(v.Int64, 10)
		},
		set: func(r *Record, s string) error {
			if strings.TrimSpace(s) == "" {
				*field(r) = sql.NullInt64{}
				return nil
			}
			n, err := ParseInt(s)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			*field(r) = Int(n)
			return nil
		},
	}
}

// FormatFloat renders v as the shortest decimal that parses back to v,
// never in exponent form.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func ParseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// float64 bounds of int64; 2^63 itself does not fit.
const (
	minInt64      float64 = -(1 << 63)
	maxInt64Bound float64 = 1 << 63
)

// ParseInt accepts integral values written in float form ("1.0") as
// spreadsheet round-trips tend to produce them.
func ParseInt(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	if f < minInt64 || f >= maxInt64Bound {
		return 0, fmt.Errorf("%q is out of int64 range", s)
	}
	return int64(f), nil
}
