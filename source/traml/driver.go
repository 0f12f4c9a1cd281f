// Package traml decodes TraML (HUPO-PSI transition exchange XML) assay
// libraries as written by OpenMS.
package traml

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/xml"
	"fmt"
	"os"
	"strconv"
	"strings"

	"skyconv/internal/assay"
	"skyconv/source"
)

const Format = "traml"

type Driver struct{}

func (Driver) Format() string { return Format }

func (Driver) Decode(ctx context.Context, path string) (*assay.Library, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, assay.IOError("traml", err)
	}
	defer f.Close()

	var doc document
	if err := xml.NewDecoder(bufio.NewReader(f)).Decode(&doc); err != nil {
		return nil, &assay.DecodeError{Format: Format, Path: path, Err: err}
	}
	lib, err := doc.library()
	if err != nil {
		return nil, &assay.DecodeError{Format: Format, Path: path, Err: err}
	}
	return lib, nil
}

func (d *document) library() (*assay.Library, error) {
	compounds := make(map[string]*compound, len(d.Compounds))
	for i := range d.Compounds {
		compounds[d.Compounds[i].ID] = &d.Compounds[i]
	}
	proteins := make(map[string]string, len(d.Proteins))
	for i := range d.Proteins {
		proteins[d.Proteins[i].ID] = d.Proteins[i].accession()
	}
	peptides := make(map[string]*peptide, len(d.Peptides))
	for i := range d.Peptides {
		peptides[d.Peptides[i].ID] = &d.Peptides[i]
	}

	lib := &assay.Library{Format: Format, Records: make([]assay.Record, 0, len(d.Transitions))}
	for i := range d.Transitions {
		t := &d.Transitions[i]
		rec := assay.NewRecord()
		var err error
		switch {
		case t.CompoundRef != "":
			c, ok := compounds[t.CompoundRef]
			if !ok {
				return nil, fmt.Errorf("transition %q: unknown compoundRef %q", t.ID, t.CompoundRef)
			}
			err = c.fill(&rec)
		case t.PeptideRef != "":
			p, ok := peptides[t.PeptideRef]
			if !ok {
				return nil, fmt.Errorf("transition %q: unknown peptideRef %q", t.ID, t.PeptideRef)
			}
			err = p.fill(&rec, proteins)
		default:
			return nil, fmt.Errorf("transition %q: neither compoundRef nor peptideRef set", t.ID)
		}
		if err == nil {
			err = t.fill(&rec)
		}
		if err != nil {
			return nil, fmt.Errorf("transition %q: %w", t.ID, err)
		}
		lib.Records = append(lib.Records, rec)
	}
	return lib, nil
}

func (c *compound) fill(rec *assay.Record) error {
	rec.TransitionGroupID = c.ID
	rec.CompoundName = firstUser(c.params, "CompoundName")
	if rec.CompoundName == "" {
		rec.CompoundName = c.ID
	}
	rec.SumFormula = cvOrUser(c.params, accMolecularFormula, "SumFormula")
	rec.SMILES = cvOrUser(c.params, accSMILES, "SMILES")
	rec.Adducts = firstUser(c.params, "Adducts")
	rec.LabelType = firstUser(c.params, "LabelType")
	return fillAnalyte(rec, c.params, c.RetentionTimes)
}

// fill resolves ProteinRefs through proteins; a ref with no Protein entry
// is kept as written.
func (p *peptide) fill(rec *assay.Record, proteins map[string]string) error {
	rec.TransitionGroupID = p.ID
	rec.PeptideSequence = p.Sequence
	rec.ModifiedPeptideSequence = firstUser(p.params, "full_peptide_name")
	rec.PeptideGroupLabel = firstUser(p.params, "peptide_group_label")
	rec.GeneName = firstUser(p.params, "GeneName")
	rec.LabelType = firstUser(p.params, "LabelType")
	refs := make([]string, 0, len(p.ProteinRefs))
	for _, r := range p.ProteinRefs {
		if acc, ok := proteins[r.Ref]; ok {
			refs = append(refs, acc)
			continue
		}
		refs = append(refs, r.Ref)
	}
	rec.ProteinID = strings.Join(refs, ";")
	return fillAnalyte(rec, p.params, p.RetentionTimes)
}

// fillAnalyte reads what compounds and peptides share: charge, retention
// time and ion mobility.
func fillAnalyte(rec *assay.Record, p params, rts []params) error {
	var err error
	if rec.PrecursorCharge, err = cvInt(p, accChargeState); err != nil {
		return err
	}
	if rec.NormalizedRetentionTime, err = retentionTime(rts); err != nil {
		return err
	}
	rec.PrecursorIonMobility, err = cvFloat(p, accDriftTime, accInverseMobility)
	return err
}

// retentionTime prefers normalized over local over iRT values.
func retentionTime(rts []params) (sql.NullFloat64, error) {
	for _, acc := range []string{accNormalizedRT, accLocalRT, accIRT} {
		for _, rt := range rts {
			if v, ok := rt.cv(acc); ok {
				return parseFloat(acc, v)
			}
		}
	}
	return sql.NullFloat64{}, nil
}

func (t *transition) fill(rec *assay.Record) error {
	var err error
	rec.TransitionID = t.ID
	if rec.PrecursorMz, err = cvFloat(t.Precursor, accTargetMz); err != nil {
		return err
	}
	if charge, err := cvInt(t.Precursor, accChargeState); err != nil {
		return err
	} else if charge.Valid {
		rec.PrecursorCharge = charge
	}
	if im, err := cvFloat(t.Precursor, accDriftTime, accInverseMobility); err != nil {
		return err
	} else if im.Valid {
		rec.PrecursorIonMobility = im
	}
	if rec.ProductMz, err = cvFloat(t.Product.params, accTargetMz); err != nil {
		return err
	}
	if rec.ProductCharge, err = cvInt(t.Product.params, accChargeState); err != nil {
		return err
	}
	if rec.LibraryIntensity, err = cvFloat(t.params, accProductIntensity); err != nil {
		return err
	}
	if rec.CollisionEnergy, err = cvFloat(t.params, accCollisionEnergy); err != nil {
		return err
	}
	if !rec.CollisionEnergy.Valid {
		if rec.CollisionEnergy, err = cvFloat(t.Precursor, accCollisionEnergy); err != nil {
			return err
		}
	}
	rec.Annotation = firstUser(t.params, "annotation")
	if rec.Annotation == "" {
		rec.Annotation = firstUser(t.Product.params, "annotation")
	}
	rec.Peptidoforms = firstUser(t.params, "Peptidoforms")

	if len(t.Product.Interpretations) > 0 {
		in := t.Product.Interpretations[0]
		if rec.FragmentSeriesNumber, err = cvInt(in, accSeriesOrdinal); err != nil {
			return err
		}
		for _, c := range in.CV {
			if ft, ok := fragmentTypes[c.Accession]; ok {
				rec.FragmentType = ft
				break
			}
		}
	}

	switch {
	case has(t.params, accDecoyTransition):
		rec.Decoy = assay.Int(1)
	case has(t.params, accTargetTransition):
		rec.Decoy = assay.Int(0)
	default:
		if v, ok := t.user("decoy"); ok {
			if rec.Decoy, err = parseFlag("decoy", v); err != nil {
				return err
			}
		}
	}

	flags := []struct {
		name string
		dst  *sql.NullInt64
	}{
		{"detecting_transition", &rec.DetectingTransition},
		{"identifying_transition", &rec.IdentifyingTransition},
		{"quantifying_transition", &rec.QuantifyingTransition},
	}
	for _, f := range flags {
		if v, ok := t.user(f.name); ok {
			if *f.dst, err = parseFlag(f.name, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func has(p params, accession string) bool {
	_, ok := p.cv(accession)
	return ok
}

func firstUser(p params, name string) string {
	v, _ := p.user(name)
	return v
}

func cvOrUser(p params, accession, name string) string {
	if v, ok := p.cv(accession); ok {
		return v
	}
	return firstUser(p, name)
}

func cvFloat(p params, accessions ...string) (sql.NullFloat64, error) {
	for _, acc := range accessions {
		if v, ok := p.cv(acc); ok {
			return parseFloat(acc, v)
		}
	}
	return sql.NullFloat64{}, nil
}

func parseFloat(acc, v string) (sql.NullFloat64, error) {
	if strings.TrimSpace(v) == "" {
		return sql.NullFloat64{}, nil
	}
	f, err := assay.ParseFloat(v)
	if err != nil {
		return sql.NullFloat64{}, fmt.Errorf("cvParam %s: %w", acc, err)
	}
	return assay.Float(f), nil
}

func cvInt(p params, accession string) (sql.NullInt64, error) {
	v, ok := p.cv(accession)
	if !ok || strings.TrimSpace(v) == "" {
		return sql.NullInt64{}, nil
	}
	n, err := assay.ParseInt(v)
	if err != nil {
		return sql.NullInt64{}, fmt.Errorf("cvParam %s: %w", accession, err)
	}
	return assay.Int(n), nil
}

// parseFlag accepts xsd:boolean spellings as well as 0/1.
func parseFlag(name, v string) (sql.NullInt64, error) {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return sql.NullInt64{}, fmt.Errorf("userParam %s: %w", name, err)
	}
	if b {
		return assay.Int(1), nil
	}
	return assay.Int(0), nil
}

func init() {
	source.Register(Format, func() source.Adapter { return Driver{} })
}
