// Package pqp decodes OpenMS PQP assay libraries. A PQP file is a SQLite
// database; one record is produced per TRANSITION row, ordered by ID.
package pqp

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"skyconv/internal/assay"
	"skyconv/source"
)

const Format = "pqp"

type Driver struct{}

func (Driver) Format() string { return Format }

func (Driver) Decode(ctx context.Context, path string) (*assay.Library, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, assay.IOError("pqp", err)
	}
	dsn, err := readOnlyDSN(path)
	if err != nil {
		return nil, assay.IOError("pqp", err)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, assay.IOError("pqp", err)
	}
	defer db.Close()

	lib, err := read(ctx, db)
	if err != nil {
		return nil, &assay.DecodeError{Format: Format, Path: path, Err: err}
	}
	return lib, nil
}

// readOnlyDSN returns a read-only SQLite URI for path. The path is escaped
// because SQLite treats '?', '#' and '%' in a file: URI as syntax.
func readOnlyDSN(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p // C:/x -> /C:/x
	}
	u := url.URL{Scheme: "file", Path: p, RawQuery: "mode=ro"}
	return u.String(), nil
}

func read(ctx context.Context, db *sql.DB) (*assay.Library, error) {
	s, err := inspect(ctx, db)
	if err != nil {
		return nil, err
	}
	q, err := s.query()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lib := &assay.Library{Format: Format}
	for rows.Next() {
		var (
			rec                                   = assay.NewRecord()
			pepSeq, modSeq, groupLabel            sql.NullString
			name, formula, smiles, adducts        sql.NullString
			proteins, genes, fragType, annotation sql.NullString
			groupID, transitionID                 sql.NullString
			detecting, identifying, quantifying   sql.NullInt64
		)
		err := rows.Scan(
			&rec.PrecursorMz, &rec.ProductMz, &rec.PrecursorCharge, &rec.ProductCharge,
			&rec.LibraryIntensity, &rec.NormalizedRetentionTime,
			&pepSeq, &modSeq, &groupLabel,
			&name, &formula, &smiles, &adducts,
			&proteins, &genes,
			&fragType, &rec.FragmentSeriesNumber, &annotation,
			&rec.CollisionEnergy, &rec.PrecursorIonMobility,
			&groupID, &transitionID, &rec.Decoy,
			&detecting, &identifying, &quantifying,
		)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", len(lib.Records)+1, err)
		}
		rec.PeptideSequence = pepSeq.String
		rec.ModifiedPeptideSequence = modSeq.String
		rec.PeptideGroupLabel = groupLabel.String
		rec.CompoundName = name.String
		rec.SumFormula = formula.String
		rec.SMILES = smiles.String
		rec.Adducts = adducts.String
		rec.ProteinID = proteins.String
		rec.GeneName = genes.String
		rec.FragmentType = fragType.String
		rec.Annotation = annotation.String
		rec.TransitionGroupID = groupID.String
		rec.TransitionID = transitionID.String
		if detecting.Valid {
			rec.DetectingTransition = detecting
		}
		if identifying.Valid {
			rec.IdentifyingTransition = identifying
		}
		if quantifying.Valid {
			rec.QuantifyingTransition = quantifying
		}
		lib.Records = append(lib.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lib, nil
}

// schema records which tables and columns of the PQP layout are present;
// OpenMS versions differ in the optional ones.
type schema struct {
	tables map[string]map[string]bool
}

func inspect(ctx context.Context, db *sql.DB) (*schema, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table'`)
	if err != nil {
		return nil, err
	}
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			rows.Close()
			return nil, err
		}
		names = append(names, strings.ToUpper(n))
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	s := &schema{tables: make(map[string]map[string]bool, len(names))}
	for _, n := range names {
		cols, err := tableColumns(ctx, db, n)
		if err != nil {
			return nil, err
		}
		s.tables[n] = cols
	}
	return s, nil
}

func tableColumns(ctx context.Context, db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	cols := map[string]bool{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		cols[strings.ToUpper(c)] = true
	}
	return cols, rows.Err()
}

func (s *schema) has(table string) bool { return s.tables[table] != nil }

func (s *schema) col(table, column string) string {
	if s.tables[table][column] {
		return table + "." + column
	}
	return "NULL"
}

func (s *schema) query() (string, error) {
	for _, t := range []string{"TRANSITION", "TRANSITION_PRECURSOR_MAPPING", "PRECURSOR"} {
		if !s.has(t) {
			return "", fmt.Errorf("not a PQP library: table %s missing", t)
		}
	}
	compound := s.has("COMPOUND") && s.has("PRECURSOR_COMPOUND_MAPPING")
	peptide := s.has("PEPTIDE") && s.has("PRECURSOR_PEPTIDE_MAPPING")

	or := func(ok bool, expr string) string {
		if ok {
			return expr
		}
		return "NULL"
	}
	ce := s.col("TRANSITION", "COLLISION_ENERGY")
	if pce := s.col("PRECURSOR", "COLLISION_ENERGY"); pce != "NULL" {
		ce = "COALESCE(" + ce + ", " + pce + ")"
	}

	proteins := "NULL"
	if peptide && s.has("PROTEIN") && s.has("PEPTIDE_PROTEIN_MAPPING") {
		proteins = `(SELECT GROUP_CONCAT(PROTEIN.PROTEIN_ACCESSION, ';') FROM PEPTIDE_PROTEIN_MAPPING
			JOIN PROTEIN ON PROTEIN.ID = PEPTIDE_PROTEIN_MAPPING.PROTEIN_ID
			WHERE PEPTIDE_PROTEIN_MAPPING.PEPTIDE_ID = PEPTIDE.ID)`
	}
	genes := "NULL"
	if peptide && s.has("GENE") && s.has("PEPTIDE_GENE_MAPPING") {
		genes = `(SELECT GROUP_CONCAT(GENE.GENE_NAME, ';') FROM PEPTIDE_GENE_MAPPING
			JOIN GENE ON GENE.ID = PEPTIDE_GENE_MAPPING.GENE_ID
			WHERE PEPTIDE_GENE_MAPPING.PEPTIDE_ID = PEPTIDE.ID)`
	}

	sel := []string{
		s.col("PRECURSOR", "PRECURSOR_MZ"),
		s.col("TRANSITION", "PRODUCT_MZ"),
		s.col("PRECURSOR", "CHARGE"),
		s.col("TRANSITION", "CHARGE"),
		s.col("TRANSITION", "LIBRARY_INTENSITY"),
		s.col("PRECURSOR", "LIBRARY_RT"),
		or(peptide, s.col("PEPTIDE", "UNMODIFIED_SEQUENCE")),
		or(peptide, s.col("PEPTIDE", "MODIFIED_SEQUENCE")),
		s.col("PRECURSOR", "GROUP_LABEL"),
		or(compound, s.col("COMPOUND", "COMPOUND_NAME")),
		or(compound, s.col("COMPOUND", "SUM_FORMULA")),
		or(compound, s.col("COMPOUND", "SMILES")),
		or(compound, s.col("COMPOUND", "ADDUCTS")),
		proteins,
		genes,
		s.col("TRANSITION", "TYPE"),
		s.col("TRANSITION", "ORDINAL"),
		s.col("TRANSITION", "ANNOTATION"),
		ce,
		s.col("PRECURSOR", "LIBRARY_DRIFT_TIME"),
		s.col("PRECURSOR", "TRAML_ID"),
		s.col("TRANSITION", "TRAML_ID"),
		s.col("TRANSITION", "DECOY"),
		s.col("TRANSITION", "DETECTING"),
		s.col("TRANSITION", "IDENTIFYING"),
		s.col("TRANSITION", "QUANTIFYING"),
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(sel, ",\n\t"))
	b.WriteString(`
FROM TRANSITION
JOIN TRANSITION_PRECURSOR_MAPPING ON TRANSITION_PRECURSOR_MAPPING.TRANSITION_ID = TRANSITION.ID
JOIN PRECURSOR ON PRECURSOR.ID = TRANSITION_PRECURSOR_MAPPING.PRECURSOR_ID`)
	if compound {
		b.WriteString(`
LEFT JOIN PRECURSOR_COMPOUND_MAPPING ON PRECURSOR_COMPOUND_MAPPING.PRECURSOR_ID = PRECURSOR.ID
LEFT JOIN COMPOUND ON COMPOUND.ID = PRECURSOR_COMPOUND_MAPPING.COMPOUND_ID`)
	}
	if peptide {
		b.WriteString(`
LEFT JOIN PRECURSOR_PEPTIDE_MAPPING ON PRECURSOR_PEPTIDE_MAPPING.PRECURSOR_ID = PRECURSOR.ID
LEFT JOIN PEPTIDE ON PEPTIDE.ID = PRECURSOR_PEPTIDE_MAPPING.PEPTIDE_ID`)
	}
	b.WriteString("\nORDER BY TRANSITION.ID")
	return b.String(), nil
}

func init() {
	source.Register(Format, func() source.Adapter { return Driver{} })
}
