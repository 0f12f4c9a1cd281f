package traml

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
	p := filepath.Join(t.TempDir(), "lib.traML")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

const peptideDoc = `<?xml version="1.0" encoding="UTF-8"?>
<TraML version="1.0.0" xmlns="http://psi.hupo.org/ms/traml">
  <ProteinList><Protein id="P1"/></ProteinList>
  <CompoundList>
    <Peptide id="PEP_2" sequence="PEPTIDE">
      <cvParam accession="MS:1000041" name="charge state" value="2"/>
      <userParam name="full_peptide_name" value="PEPT(Phospho)IDE"/>
      <ProteinRef ref="P1"/>
      <RetentionTimeList><RetentionTime>
        <cvParam accession="MS:1000895" name="local retention time" value="123.4"/>
      </RetentionTime></RetentionTimeList>
    </Peptide>
  </CompoundList>
  <TransitionList>
    <Transition id="t1" peptideRef="PEP_2">
      <Precursor><cvParam accession="MS:1000827" name="isolation window target m/z" value="400.2"/></Precursor>
      <Product>
        <cvParam accession="MS:1000827" name="isolation window target m/z" value="500.3"/>
        <InterpretationList><Interpretation>
          <cvParam accession="MS:1001220" name="frag: y ion"/>
          <cvParam accession="MS:1000903" name="product ion series ordinal" value="4"/>
        </Interpretation></InterpretationList>
      </Product>
      <cvParam accession="MS:1002007" name="decoy SRM transition"/>
      <userParam name="identifying_transition" value="1"/>
    </Transition>
  </TransitionList>
</TraML>`

func TestDecode_Peptide(t *testing.T) {
	lib, err := Driver{}.Decode(context.Background(), write(t, peptideDoc))
	require.NoError(t, err)
	require.Equal(t, 1, lib.Len())
	r := lib.Records[0]
	assert.Equal(t, "PEPTIDE", r.PeptideSequence)
	assert.Equal(t, "PEPT(Phospho)IDE", r.ModifiedPeptideSequence)
	assert.Equal(t, "P1", r.ProteinID)
	assert.Equal(t, "PEP_2", r.TransitionGroupID)
	assert.Equal(t, assay.Int(2), r.PrecursorCharge)
	assert.Equal(t, assay.Float(123.4), r.NormalizedRetentionTime)
	assert.Equal(t, assay.Float(400.2), r.PrecursorMz)
	assert.Equal(t, "y", r.FragmentType)
	assert.Equal(t, assay.Int(4), r.FragmentSeriesNumber)
	assert.Equal(t, assay.Int(1), r.Decoy)
	assert.Equal(t, assay.Int(1), r.IdentifyingTransition)
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Driver{}.Decode(context.Background(), write(t, `<TraML><CompoundList>`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, assay.ErrDecode))
}

func TestDecode_WrongRoot(t *testing.T) {
	_, err := Driver{}.Decode(context.Background(), write(t, `<mzML/>`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, assay.ErrDecode))
}

func TestDecode_DanglingCompoundRef(t *testing.T) {
	doc := `<TraML><TransitionList><Transition id="t" compoundRef="nope"/></TransitionList></TraML>`
	_, err := Driver{}.Decode(context.Background(), write(t, doc))
	require.Error(t, err)
	assert.True(t, errors.Is(err, assay.ErrDecode))
	assert.Contains(t, err.Error(), "nope")
}

func TestDecode_BadNumericParam(t *testing.T) {
	doc := `<TraML><CompoundList><Compound id="c"/></CompoundList><TransitionList>
<Transition id="t" compoundRef="c"><Precursor><cvParam accession="MS:1000827" value="x"/></Precursor></Transition>
</TransitionList></TraML>`
	_, err := Driver{}.Decode(context.Background(), write(t, doc))
	require.Error(t, err)
	assert.True(t, errors.Is(err, assay.ErrDecode))
}

func TestDecode_ProteinAccessions(t *testing.T) {
	doc := `<TraML>
  <ProteinList>
    <Protein id="prot_0"><cvParam accession="MS:1000885" name="protein accession" value="sp|P69905|HBA_HUMAN"/></Protein>
    <Protein id="P2"/>
  </ProteinList>
  <CompoundList>
    <Peptide id="pep" sequence="VLSPADK">
      <ProteinRef ref="prot_0"/><ProteinRef ref="P2"/><ProteinRef ref="P3"/>
    </Peptide>
  </CompoundList>
  <TransitionList><Transition id="t" peptideRef="pep"/></TransitionList>
</TraML>`
	lib, err := Driver{}.Decode(context.Background(), write(t, doc))
	require.NoError(t, err)
	require.Equal(t, 1, lib.Len())
	assert.Equal(t, "sp|P69905|HBA_HUMAN;P2;P3", lib.Records[0].ProteinID)
}
