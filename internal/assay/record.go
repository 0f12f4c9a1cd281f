// Package assay holds the canonical assay-library model shared by every
// input decoder: the record type, the ordered column schema and the error
// kinds of the conversion.
package assay

import "database/sql"

// Record is one transition of an assay library. Numeric fields are nullable
// so a value that is absent in the source stays absent in every encoding.
type Record struct {
	PrecursorMz             sql.NullFloat64
	ProductMz               sql.NullFloat64
	PrecursorCharge         sql.NullInt64
	ProductCharge           sql.NullInt64
	LibraryIntensity        sql.NullFloat64
	NormalizedRetentionTime sql.NullFloat64
	PeptideSequence         string
	ModifiedPeptideSequence string
	PeptideGroupLabel       string
	LabelType               string
	CompoundName            string
	SumFormula              string
	SMILES                  string
	Adducts                 string
	ProteinID               string
	UniprotID               string
	GeneName                string
	FragmentType            string
	FragmentSeriesNumber    sql.NullInt64
	Annotation              string
	CollisionEnergy         sql.NullFloat64
	PrecursorIonMobility    sql.NullFloat64
	TransitionGroupID       string
	TransitionID            string
	Decoy                   sql.NullInt64
	DetectingTransition     sql.NullInt64
	IdentifyingTransition   sql.NullInt64
	QuantifyingTransition   sql.NullInt64
	Peptidoforms            string
}

// NewRecord returns a record carrying the transition-flag defaults OpenMS
// assumes when a library does not state them.
func NewRecord() Record {
	return Record{
		DetectingTransition:   sql.NullInt64{Int64: 1, Valid: true},
		IdentifyingTransition: sql.NullInt64{Int64: 0, Valid: true},
		QuantifyingTransition: sql.NullInt64{Int64: 1, Valid: true},
	}
}

// Cells renders r in canonical column order.
func (r *Record) Cells() []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = c.get(r)
	}
	return out
}

// Set parses value into the field backing the named canonical column.
func (r *Record) Set(column, value string) error {
	c, ok := byName[column]
	if !ok {
		return &SchemaError{Column: column, Reason: "not a canonical column"}
	}
	return c.set(r, value)
}

// Library is an ordered, read-only collection of records sharing the
// canonical schema.
type Library struct {
	Format  string
	Records []Record
}

func (l *Library) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Records)
}

// Int returns a valid NullInt64.
func Int(v int64) sql.NullInt64 { return sql.NullInt64{Int64: v, Valid: true} }

// Float returns a valid NullFloat64.
func Float(v float64) sql.NullFloat64 { return sql.NullFloat64{Float64: v, Valid: true} }
