package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skyconv/internal/assay"
	"skyconv/internal/config"
	"skyconv/internal/table"
	"skyconv/internal/testutil"
	"skyconv/source"
)

var wantScenario = strings.Join([]string{
	"PrecursorName\tPrecursorFormula\tProductFormula\tPrecursorCharge\tProductCharge\tPrecursorAdduct\tProductAdduct\tPrecursorRT\tPrecursorRTWindow\tPrecursorCE\tNote\tPrecursorMz\tProductMz\tLabelType\tSMILES",
	"Caffeine\tC8H10N4O2\tC8H11N4O2+\t1\t1\t[M+H]\t[M+H]\t0.5\t0.6\t20\t0_Caffeine_[M+H]+\t195.0877\t138.0662\t\tCN1C=NC2=C1C(=O)N(C(=O)N2C)C",
	"Theobromine\tC7H8N4O2\tC5H4N3O+\t1\t1\t[M+H]\t[M+H]\t1.5\t0.6\t20\t2_Theobromine_[M+H]+\t181.072\t138.0662\t\tCN1C=NC2=C1C(=O)NC(=O)N2C",
	"",
}, "\n")

// isolate points os.TempDir at a fresh directory so scratch files can be
// counted.
func isolate(t *testing.T) (work, tmp string) {
	t.Helper()
	work, tmp = t.TempDir(), t.TempDir()
	t.Setenv("TMPDIR", tmp)
	return work, tmp
}

func assertNoScratch(t *testing.T, tmp string) {
	t.Helper()
	left, err := filepath.Glob(filepath.Join(tmp, "skyconv-*.tsv"))
	require.NoError(t, err)
	assert.Empty(t, left, "scratch files left behind")
}

func TestRun_ScenarioAllFormats(t *testing.T) {
	writers := map[string]func(*testing.T, string, string, []testutil.Assay) string{
		"lib.tsv":   testutil.WriteTSV,
		"lib.traML": testutil.WriteTraML,
		"lib.pqp":   testutil.WritePQP,
	}
	for name, write := range writers {
		t.Run(name, func(t *testing.T) {
			work, tmp := isolate(t)
			in := write(t, work, name, testutil.Scenario())
			out := filepath.Join(work, "skyline.tsv")

			r, err := Compile(config.Config{Input: in, Output: out, RTWindow: 0.6}, nil)
			require.NoError(t, err)
			res, err := r.Run(context.Background(), in)
			require.NoError(t, err)
			require.NoError(t, r.Close())

			assert.Equal(t, 3, res.RecordsRead)
			assert.Equal(t, 2, res.Written)
			raw, err := os.ReadFile(out)
			require.NoError(t, err)
			assert.Equal(t, wantScenario, string(raw))
			assertNoScratch(t, tmp)
		})
	}
}

func TestRun_NoWindowColumnByDefault(t *testing.T) {
	work, _ := isolate(t)
	in := testutil.WriteTSV(t, work, "lib.tsv", testutil.Scenario())
	out := filepath.Join(work, "skyline.tsv")

	r, err := Compile(config.Config{Input: in, Output: out}, nil)
	require.NoError(t, err)
	_, err = r.Run(context.Background(), in)
	require.NoError(t, err)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	tb, err := table.ReadTSV(f)
	require.NoError(t, err)
	assert.False(t, tb.Has("PrecursorRTWindow"))
	assert.Equal(t, 2, tb.Len())
}

func TestRun_FailureLeavesOutputAndCleansScratch(t *testing.T) {
	work, tmp := isolate(t)
	in := filepath.Join(work, "broken.traML")
	require.NoError(t, os.WriteFile(in, []byte("<TraML><TransitionList>"), 0o644))
	out := filepath.Join(work, "skyline.tsv")
	require.NoError(t, os.WriteFile(out, []byte("previous\n"), 0o644))

	r, err := Compile(config.Config{Input: in, Output: out}, nil)
	require.NoError(t, err)
	_, err = r.Run(context.Background(), in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, assay.ErrDecode))
	assert.True(t, strings.HasPrefix(err.Error(), "normalize:"), err.Error())

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "previous\n", string(raw))
	assertNoScratch(t, tmp)
}

func TestRun_SchemaViolationFromTSV(t *testing.T) {
	work, tmp := isolate(t)
	in := filepath.Join(work, "lib.tsv")
	require.NoError(t, os.WriteFile(in, []byte("PrecursorMz\tCompoundName\n1\tx\n"), 0o644))

	r, err := Compile(config.Config{Input: in, Output: filepath.Join(work, "o.tsv")}, nil)
	require.NoError(t, err)
	_, err = r.Run(context.Background(), in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, assay.ErrSchemaViolation))
	assertNoScratch(t, tmp)
}

func TestRun_MissingInputIsIOError(t *testing.T) {
	work, _ := isolate(t)
	in := filepath.Join(work, "absent.pqp")
	r, err := Compile(config.Config{Input: in, Output: filepath.Join(work, "o.tsv")}, nil)
	require.NoError(t, err)
	_, err = r.Run(context.Background(), in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, assay.ErrIO))
}

func TestRun_UnsupportedFormatWithoutFallback(t *testing.T) {
	work, _ := isolate(t)
	in := testutil.WriteTSV(t, work, "lib.csv", testutil.Scenario())
	r, err := Compile(config.Config{Input: in, Output: filepath.Join(work, "o.tsv")}, nil)
	require.NoError(t, err)
	r.sources = source.NewRegistry()

	_, err = r.Run(context.Background(), in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, assay.ErrUnsupportedFormat))
}

// The transition list is not itself a valid assay library; feeding it back
// in is expected to fail schema checks.
func TestRun_OutputIsNotAValidInput(t *testing.T) {
	work, _ := isolate(t)
	in := testutil.WriteTSV(t, work, "lib.tsv", testutil.Scenario())
	out := filepath.Join(work, "skyline.tsv")
	r, err := Compile(config.Config{Input: in, Output: out, RTWindow: 0.6}, nil)
	require.NoError(t, err)
	_, err = r.Run(context.Background(), in)
	require.NoError(t, err)

	again, err := Compile(config.Config{Input: out, Output: filepath.Join(work, "again.tsv"), RTWindow: 0.6}, nil)
	require.NoError(t, err)
	_, err = again.Run(context.Background(), out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, assay.ErrSchemaViolation))
}
