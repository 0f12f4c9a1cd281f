// Package testutil writes the same small assay library in every supported
// input encoding so tests can compare decoders against each other.
package testutil

import (
	"database/sql"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// Assay is one transition of a fixture library. Transitions sharing a Group
// belong to the same compound/precursor.
type Assay struct {
	Group        string
	TransitionID string
	Name         string
	Formula      string
	SMILES       string
	Adduct       string
	Annotation   string
	PrecursorMz  float64
	ProductMz    float64
	Charge       int
	RT           float64
	CE           float64
	Intensity    float64
	Decoy        int
}

// Scenario returns three single-transition compounds, the second of which
// is a decoy, with retention times 30, 60 and 90 seconds.
func Scenario() []Assay {
	return []Assay{
		{Group: "0_Caffeine_[M+H]+", TransitionID: "0", Name: "Caffeine", Formula: "C8H10N4O2", SMILES: "CN1C=NC2=C1C(=O)N(C(=O)N2C)C",
			Adduct: "M+H+", Annotation: "C8H11N4O2+", PrecursorMz: 195.0877, ProductMz: 138.0662, Charge: 1, RT: 30, CE: 20, Intensity: 100},
		{Group: "1_Decoy_[M+H]+_decoy", TransitionID: "1", Name: "Caffeine_decoy", Formula: "C8H10N4O2", SMILES: "",
			Adduct: "M+H+", Annotation: "C8H11N4O2+", PrecursorMz: 195.0877, ProductMz: 110.0713, Charge: 1, RT: 60, CE: 20, Intensity: 40, Decoy: 1},
		{Group: "2_Theobromine_[M+H]+", TransitionID: "2", Name: "Theobromine", Formula: "C7H8N4O2", SMILES: "CN1C=NC2=C1C(=O)NC(=O)N2C",
			Adduct: "M+H+", Annotation: "C5H4N3O+", PrecursorMz: 181.072, ProductMz: 138.0662, Charge: 1, RT: 90, CE: 20, Intensity: 55.5},
	}
}

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// TSVHeader is the OpenMS transition list header written by WriteTSV.
var TSVHeader = []string{
	"PrecursorMz", "ProductMz", "PrecursorCharge", "ProductCharge", "LibraryIntensity",
	"NormalizedRetentionTime", "PeptideSequence", "ModifiedPeptideSequence", "PeptideGroupLabel",
	"LabelType", "CompoundName", "SumFormula", "SMILES", "Adducts", "ProteinId", "UniprotId",
	"GeneName", "FragmentType", "FragmentSeriesNumber", "Annotation", "CollisionEnergy",
	"PrecursorIonMobility", "TransitionGroupId", "TransitionId", "Decoy", "DetectingTransition",
	"IdentifyingTransition", "QuantifyingTransition", "Peptidoforms",
}

// TSVRow renders a in TSVHeader order.
func TSVRow(a Assay) []string {
	return []string{
		ftoa(a.PrecursorMz), ftoa(a.ProductMz), strconv.Itoa(a.Charge), "1", ftoa(a.Intensity),
		ftoa(a.RT), "", "", "",
		"", a.Name, a.Formula, a.SMILES, a.Adduct, "", "",
		"", "", "", a.Annotation, ftoa(a.CE),
		"", a.Group, a.TransitionID, strconv.Itoa(a.Decoy), "1",
		"0", "1", "",
	}
}

// WriteTSV writes assays as an OpenMS TSV transition list named name in dir.
func WriteTSV(t *testing.T, dir, name string, assays []Assay) string {
	t.Helper()
	var b strings.Builder
	b.WriteString(strings.Join(TSVHeader, "\t"))
	b.WriteByte('\n')
	for _, a := range assays {
		b.WriteString(strings.Join(TSVRow(a), "\t"))
		b.WriteByte('\n')
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

type xCV struct {
	Accession string `xml:"accession,attr"`
	Name      string `xml:"name,attr"`
	Value     string `xml:"value,attr,omitempty"`
}

type xUser struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type xRT struct {
	CV []xCV `xml:"cvParam"`
}

type xCompound struct {
	ID   string  `xml:"id,attr"`
	CV   []xCV   `xml:"cvParam"`
	User []xUser `xml:"userParam"`
	RT   []xRT   `xml:"RetentionTimeList>RetentionTime"`
}

type xTransition struct {
	ID          string `xml:"id,attr"`
	CompoundRef string `xml:"compoundRef,attr"`
	Precursor   struct {
		CV []xCV `xml:"cvParam"`
	} `xml:"Precursor"`
	Product struct {
		CV []xCV `xml:"cvParam"`
	} `xml:"Product"`
	CV   []xCV   `xml:"cvParam"`
	User []xUser `xml:"userParam"`
}

type xTraML struct {
	XMLName     xml.Name      `xml:"TraML"`
	Xmlns       string        `xml:"xmlns,attr"`
	Version     string        `xml:"version,attr"`
	Compounds   []xCompound   `xml:"CompoundList>Compound"`
	Transitions []xTransition `xml:"TransitionList>Transition"`
}

// WriteTraML writes assays as a TraML document named name in dir.
func WriteTraML(t *testing.T, dir, name string, assays []Assay) string {
	t.Helper()
	doc := xTraML{Xmlns: "http://psi.hupo.org/ms/traml", Version: "1.0.0"}
	seen := map[string]bool{}
	for _, a := range assays {
		if !seen[a.Group] {
			seen[a.Group] = true
			c := xCompound{
				ID: a.Group,
				CV: []xCV{
					{Accession: "MS:1000041", Name: "charge state", Value: strconv.Itoa(a.Charge)},
					{Accession: "MS:1000866", Name: "molecular formula", Value: a.Formula},
				},
				User: []xUser{{Name: "CompoundName", Value: a.Name}, {Name: "Adducts", Value: a.Adduct}},
				RT:   []xRT{{CV: []xCV{{Accession: "MS:1000896", Name: "normalized retention time", Value: ftoa(a.RT)}}}},
			}
			if a.SMILES != "" {
				c.CV = append(c.CV, xCV{Accession: "MS:1000868", Name: "SMILES formula", Value: a.SMILES})
			}
			doc.Compounds = append(doc.Compounds, c)
		}
		tr := xTransition{ID: a.TransitionID, CompoundRef: a.Group}
		tr.Precursor.CV = []xCV{{Accession: "MS:1000827", Name: "isolation window target m/z", Value: ftoa(a.PrecursorMz)}}
		tr.Product.CV = []xCV{
			{Accession: "MS:1000827", Name: "isolation window target m/z", Value: ftoa(a.ProductMz)},
			{Accession: "MS:1000041", Name: "charge state", Value: "1"},
		}
		decoy := xCV{Accession: "MS:1002008", Name: "target SRM transition"}
		if a.Decoy == 1 {
			decoy = xCV{Accession: "MS:1002007", Name: "decoy SRM transition"}
		}
		tr.CV = []xCV{
			{Accession: "MS:1001226", Name: "product ion intensity", Value: ftoa(a.Intensity)},
			{Accession: "MS:1000045", Name: "collision energy", Value: ftoa(a.CE)},
			decoy,
		}
		tr.User = []xUser{
			{Name: "annotation", Value: a.Annotation},
			{Name: "detecting_transition", Value: "true"},
			{Name: "identifying_transition", Value: "false"},
			{Name: "quantifying_transition", Value: "true"},
		}
		doc.Transitions = append(doc.Transitions, tr)
	}
	out, err := xml.MarshalIndent(doc, "", "  ")
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, append([]byte(xml.Header), out...), 0o644))
	return path
}

// pqpSchema is the OpenMS PQP layout, with the optional COLLISION_ENERGY
// column on TRANSITION.
var pqpSchema = []string{
	`CREATE TABLE VERSION(ID INT NOT NULL)`,
	`CREATE TABLE GENE(ID INT PRIMARY KEY NOT NULL, GENE_NAME TEXT NOT NULL, DECOY INT NOT NULL)`,
	`CREATE TABLE PEPTIDE_GENE_MAPPING(PEPTIDE_ID INT NOT NULL, GENE_ID INT NOT NULL)`,
	`CREATE TABLE PROTEIN(ID INT PRIMARY KEY NOT NULL, PROTEIN_ACCESSION TEXT NOT NULL, DECOY INT NOT NULL)`,
	`CREATE TABLE PEPTIDE_PROTEIN_MAPPING(PEPTIDE_ID INT NOT NULL, PROTEIN_ID INT NOT NULL)`,
	`CREATE TABLE PEPTIDE(ID INT PRIMARY KEY NOT NULL, UNMODIFIED_SEQUENCE TEXT NOT NULL, MODIFIED_SEQUENCE TEXT NOT NULL, DECOY INT NOT NULL)`,
	`CREATE TABLE PRECURSOR_PEPTIDE_MAPPING(PRECURSOR_ID INT NOT NULL, PEPTIDE_ID INT NOT NULL)`,
	`CREATE TABLE COMPOUND(ID INT PRIMARY KEY NOT NULL, COMPOUND_NAME TEXT NOT NULL, SUM_FORMULA TEXT NOT NULL, SMILES TEXT NOT NULL, ADDUCTS TEXT NOT NULL, DECOY INT NOT NULL)`,
	`CREATE TABLE PRECURSOR_COMPOUND_MAPPING(PRECURSOR_ID INT NOT NULL, COMPOUND_ID INT NOT NULL)`,
	`CREATE TABLE PRECURSOR(ID INT PRIMARY KEY NOT NULL, TRAML_ID TEXT NULL, GROUP_LABEL TEXT NULL, PRECURSOR_MZ REAL NOT NULL, CHARGE INT NULL, LIBRARY_INTENSITY REAL NULL, LIBRARY_RT REAL NULL, LIBRARY_DRIFT_TIME REAL NULL, DECOY INT NOT NULL)`,
	`CREATE TABLE TRANSITION_PRECURSOR_MAPPING(TRANSITION_ID INT NOT NULL, PRECURSOR_ID INT NOT NULL)`,
	`CREATE TABLE TRANSITION_PEPTIDE_MAPPING(TRANSITION_ID INT NOT NULL, PEPTIDE_ID INT NOT NULL)`,
	`CREATE TABLE TRANSITION(ID INT PRIMARY KEY NOT NULL, TRAML_ID TEXT NULL, PRODUCT_MZ REAL NOT NULL, CHARGE INT NULL, TYPE CHAR(255) NULL, ANNOTATION CHAR(255) NULL, ORDINAL INT NULL, DETECTING INT NOT NULL, IDENTIFYING INT NOT NULL, QUANTIFYING INT NOT NULL, LIBRARY_INTENSITY REAL NULL, DECOY INT NOT NULL, COLLISION_ENERGY REAL NULL)`,
}

// WritePQP writes assays as an OpenMS PQP (SQLite) library named name in dir.
func WritePQP(t *testing.T, dir, name string, assays []Assay) string {
	t.Helper()
	path := filepath.Join(dir, name)
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	for _, stmt := range pqpSchema {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}
	_, err = db.Exec(`INSERT INTO VERSION(ID) VALUES (3)`)
	require.NoError(t, err)

	groups := map[string]int{}
	for i, a := range assays {
		pid, ok := groups[a.Group]
		if !ok {
			pid = len(groups)
			groups[a.Group] = pid
			mustExec(t, db, `INSERT INTO COMPOUND VALUES (?, ?, ?, ?, ?, ?)`, pid, a.Name, a.Formula, a.SMILES, a.Adduct, a.Decoy)
			mustExec(t, db, `INSERT INTO PRECURSOR VALUES (?, ?, NULL, ?, ?, NULL, ?, NULL, ?)`, pid, a.Group, a.PrecursorMz, a.Charge, a.RT, a.Decoy)
			mustExec(t, db, `INSERT INTO PRECURSOR_COMPOUND_MAPPING VALUES (?, ?)`, pid, pid)
		}
		mustExec(t, db, `INSERT INTO TRANSITION VALUES (?, ?, ?, 1, NULL, ?, NULL, 1, 0, 1, ?, ?, ?)`,
			i, a.TransitionID, a.ProductMz, a.Annotation, a.Intensity, a.Decoy, a.CE)
		mustExec(t, db, `INSERT INTO TRANSITION_PRECURSOR_MAPPING VALUES (?, ?)`, i, pid)
	}
	return path
}

func mustExec(t *testing.T, db *sql.DB, q string, args ...any) {
	t.Helper()
	_, err := db.Exec(q, args...)
	require.NoError(t, err, fmt.Sprintf("%s %v", q, args))
}
