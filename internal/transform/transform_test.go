package transform

import (
	"database/sql"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skyconv/internal/assay"
	"skyconv/internal/spec"
	"skyconv/internal/table"
)

type row struct {
	name   string
	rt     float64
	adduct string
	decoy  sql.NullInt64
}

func canonical(t *testing.T, rows ...row) *table.Table {
	t.Helper()
	var cells [][]string
	for i, r := range rows {
		rec := assay.NewRecord()
		rec.CompoundName = r.name
		rec.SumFormula = "C2H5NO2"
		rec.Adducts = r.adduct
		rec.Annotation = "C2H6NO2+"
		rec.CollisionEnergy = assay.Float(15)
		rec.NormalizedRetentionTime = assay.Float(r.rt)
		rec.TransitionGroupID = "grp_" + r.name
		rec.TransitionID = strconv.Itoa(i)
		rec.PrecursorCharge = assay.Int(1)
		rec.ProductCharge = assay.Int(3)
		rec.Decoy = r.decoy
		cells = append(cells, rec.Cells())
	}
	tb, err := table.New(assay.ColumnNames(), cells)
	require.NoError(t, err)
	return tb
}

func mapping(t *testing.T) spec.Mapping {
	t.Helper()
	m, err := spec.Skyline()
	require.NoError(t, err)
	return m
}

func column(t *testing.T, tb *table.Table, col string) []string {
	t.Helper()
	j, ok := tb.Index(col)
	require.True(t, ok, "column %s", col)
	out := make([]string, tb.Len())
	for i := range out {
		out[i] = tb.Row(i)[j]
	}
	return out
}

type countingObserver struct {
	decoys  int
	suspect []string
	stages  []string
}

func (c *countingObserver) StageDone(s string, _ time.Duration) { c.stages = append(c.stages, s) }
func (c *countingObserver) DecoysRemoved(n int)                 { c.decoys += n }
func (c *countingObserver) AdductSuspect(a string)              { c.suspect = append(c.suspect, a) }

func TestTransform_EndToEndScenario(t *testing.T) {
	in := canonical(t,
		row{name: "A", rt: 30, adduct: "M+H+", decoy: assay.Int(0)},
		row{name: "B", rt: 60, adduct: "M+H+", decoy: assay.Int(1)},
		row{name: "C", rt: 90, adduct: "M+H+", decoy: assay.Int(0)},
	)
	obs := &countingObserver{}
	out, err := Transform(in, mapping(t), Options{RTWindow: 0.6, Observer: obs})
	require.NoError(t, err)

	require.Equal(t, 2, out.Len())
	assert.Equal(t, []string{"A", "C"}, column(t, out, "PrecursorName"))
	assert.Equal(t, []string{"0.5", "1.5"}, column(t, out, "PrecursorRT"))
	assert.Equal(t, []string{"[M+H]", "[M+H]"}, column(t, out, "PrecursorAdduct"))
	assert.Equal(t, []string{"[M+H]", "[M+H]"}, column(t, out, "ProductAdduct"))
	assert.Equal(t, []string{"0.6", "0.6"}, column(t, out, "PrecursorRTWindow"))
	assert.Equal(t, []string{"1", "1"}, column(t, out, "ProductCharge"))
	assert.Equal(t, []string{"grp_A", "grp_C"}, column(t, out, "Note"))
	assert.Equal(t, 1, obs.decoys)
	assert.Len(t, obs.stages, 8)

	assert.Equal(t, []string{
		"PrecursorName", "PrecursorFormula", "ProductFormula", "PrecursorCharge", "ProductCharge",
		"PrecursorAdduct", "ProductAdduct", "PrecursorRT", "PrecursorRTWindow", "PrecursorCE", "Note",
		"PrecursorMz", "ProductMz", "LabelType", "SMILES",
	}, out.Columns())
}

func TestTransform_NoWindowColumnWhenZero(t *testing.T) {
	in := canonical(t, row{name: "A", rt: 30, adduct: "M+H+"})
	out, err := Transform(in, mapping(t), Options{})
	require.NoError(t, err)
	assert.False(t, out.Has("PrecursorRTWindow"))
}

func TestTransform_PrunedColumnsNeverInOutput(t *testing.T) {
	m := mapping(t)
	in := canonical(t, row{name: "A", rt: 30, adduct: "M+H+"})
	out, err := Transform(in, m, Options{RTWindow: 1})
	require.NoError(t, err)
	for _, c := range m.Prune {
		assert.False(t, out.Has(c), "pruned column %s present", c)
	}
	for _, r := range m.Rename {
		assert.False(t, out.Has(r.From), "renamed source %s present", r.From)
	}
}

func TestDropDecoys_ExactlyOne(t *testing.T) {
	in := canonical(t,
		row{name: "zero", decoy: assay.Int(0)},
		row{name: "one", decoy: assay.Int(1)},
		row{name: "missing"},
		row{name: "two", decoy: assay.Int(2)},
		row{name: "minus", decoy: assay.Int(-1)},
	)
	require.NoError(t, DropDecoys("Decoy", nil).Apply(in))
	assert.Equal(t, []string{"zero", "missing", "two", "minus"}, column(t, in, "CompoundName"))
}

func TestReformatAdduct(t *testing.T) {
	cases := []struct {
		in, out string
		ok      bool
	}{
		{"M+H+", "[M+H]", true},
		{"M+Na+", "[M+Na]", true},
		{"M-H-", "[M-H]", true},
		{"M+NH4+", "[M+NH4]", true},
		{"M+2H2", "[M+2H]", false},
		{"", "", true},
	}
	for _, c := range cases {
		out, ok := ReformatAdduct(c.in)
		assert.Equal(t, c.out, out, c.in)
		assert.Equal(t, c.ok, ok, c.in)
	}
}

func TestReformatAdducts_ReportsSuspect(t *testing.T) {
	in := canonical(t, row{name: "A", adduct: "M+H1"}, row{name: "B", adduct: "M+H1"})
	obs := &countingObserver{}
	require.NoError(t, ReformatAdducts("Adducts", obs).Apply(in))
	assert.Equal(t, []string{"[M+H]", "[M+H]"}, column(t, in, "Adducts"))
	assert.Equal(t, []string{"M+H1", "M+H1"}, obs.suspect)
}

func TestRescale_ExactDivision(t *testing.T) {
	rts := []float64{45.7, 1, 0, 123.456, 3600}
	var rows []row
	for _, r := range rts {
		rows = append(rows, row{name: "x", rt: r})
	}
	in := canonical(t, rows...)
	require.NoError(t, Rescale("NormalizedRetentionTime", 60).Apply(in))
	for i, got := range column(t, in, "NormalizedRetentionTime") {
		v, err := strconv.ParseFloat(got, 64)
		require.NoError(t, err)
		assert.Equal(t, rts[i]/60, v)
	}
}

func TestRescale_EmptyStaysEmpty(t *testing.T) {
	tb, err := table.New([]string{"RT"}, [][]string{{""}, {"120"}})
	require.NoError(t, err)
	require.NoError(t, Rescale("RT", 60).Apply(tb))
	assert.Equal(t, []string{"", "2"}, column(t, tb, "RT"))
}

func TestPrune_Policies(t *testing.T) {
	tb, err := table.New([]string{"A", "B"}, [][]string{{"1", "2"}})
	require.NoError(t, err)
	require.NoError(t, Prune([]string{"B", "Gone"}, false).Apply(tb))
	assert.Equal(t, []string{"A"}, tb.Columns())

	tb, err = table.New([]string{"A", "B"}, [][]string{{"1", "2"}})
	require.NoError(t, err)
	err = Prune([]string{"B", "Gone"}, true).Apply(tb)
	require.Error(t, err)
	assert.True(t, errors.Is(err, assay.ErrMissingColumn))
}

func TestStages_MissingColumn(t *testing.T) {
	stages := []Stage{
		Rename(map[string]string{"Nope": "X"}),
		DropDecoys("Nope", nil),
		ReformatAdducts("Nope", nil),
		CopyColumn("Nope", "X"),
		Rescale("Nope", 60),
	}
	for _, s := range stages {
		tb, err := table.New([]string{"A"}, [][]string{{"1"}})
		require.NoError(t, err)
		err = s.Apply(tb)
		require.Error(t, err, s.Name())
		assert.True(t, errors.Is(err, assay.ErrMissingColumn), s.Name())
	}
}

func TestRun_WrapsStageName(t *testing.T) {
	tb, err := table.New([]string{"A"}, [][]string{{"1"}})
	require.NoError(t, err)
	_, err = Run(tb, []Stage{DropDecoys("Decoy", nil)}, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transform decoys")
}
