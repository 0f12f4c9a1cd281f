package tsv

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skyconv/internal/assay"
)

func write(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "lib.tsv")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestDecode_AliasesAndDefaults(t *testing.T) {
	p := write(t, "Q1\tQ3\tRelativeFragmentIntensity\tRetentionTime\tCompoundName\ttransition_group_id\tExtra\n"+
		"100.5\t50.25\t10\t42\tAlanine\tg1\tignored\n")
	lib, err := Driver{}.Decode(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, 1, lib.Len())

	r := lib.Records[0]
	assert.Equal(t, assay.Float(100.5), r.PrecursorMz)
	assert.Equal(t, assay.Float(50.25), r.ProductMz)
	assert.Equal(t, assay.Float(42), r.NormalizedRetentionTime)
	assert.Equal(t, "Alanine", r.CompoundName)
	assert.Equal(t, "g1", r.TransitionGroupID)
	assert.False(t, r.Decoy.Valid, "decoy stays missing")
	assert.Equal(t, assay.Int(1), r.DetectingTransition)
	assert.Equal(t, assay.Int(0), r.IdentifyingTransition)
	assert.Equal(t, assay.Int(1), r.QuantifyingTransition)
}

func TestDecode_MissingRequiredColumn(t *testing.T) {
	p := write(t, "PrecursorMz\tProductMz\tLibraryIntensity\n1\t2\t3\n")
	_, err := Driver{}.Decode(context.Background(), p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, assay.ErrSchemaViolation))

	var se *assay.SchemaError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, assay.ColNormalizedRetentionTime, se.Column)
}

func TestDecode_BadNumber(t *testing.T) {
	p := write(t, "PrecursorMz\tProductMz\tLibraryIntensity\tNormalizedRetentionTime\n1\tabc\t3\t4\n")
	_, err := Driver{}.Decode(context.Background(), p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, assay.ErrDecode))
}

func TestDecode_RaggedRow(t *testing.T) {
	p := write(t, "PrecursorMz\tProductMz\tLibraryIntensity\tNormalizedRetentionTime\n1\t2\t3\n")
	_, err := Driver{}.Decode(context.Background(), p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, assay.ErrDecode))
}

func TestDecode_MissingFile(t *testing.T) {
	_, err := Driver{}.Decode(context.Background(), filepath.Join(t.TempDir(), "nope.tsv"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, assay.ErrIO))
}
