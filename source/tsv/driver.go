// Package tsv decodes OpenMS transition lists in tab-separated form. It is
// registered as the fallback decoder for every extension without a driver
// of its own.
package tsv

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"skyconv/internal/assay"
	"skyconv/internal/logging"
	"skyconv/internal/table"
	"skyconv/source"
)

const Format = "tsv"

// Columns OpenMS refuses to read a transition list without.
var required = []string{"PrecursorMz", "ProductMz", "LibraryIntensity", assay.ColNormalizedRetentionTime}

// aliases maps alternative OpenMS / spectraST header spellings to canonical
// column names.
var aliases = map[string]string{
	"Q1":                           "PrecursorMz",
	"Q3":                           "ProductMz",
	"FragmentMz":                   "ProductMz",
	"FragmentCharge":               "ProductCharge",
	"RelativeFragmentIntensity":    "LibraryIntensity",
	"RetentionTime":                assay.ColNormalizedRetentionTime,
	"Tr_recalibrated":              assay.ColNormalizedRetentionTime,
	"iRT":                          assay.ColNormalizedRetentionTime,
	"RetentionTimeCalculatorScore": assay.ColNormalizedRetentionTime,
	"Sequence":                     "PeptideSequence",
	"StrippedSequence":             "PeptideSequence",
	"FullUniModPeptideName":        "ModifiedPeptideSequence",
	"FullPeptideName":              "ModifiedPeptideSequence",
	"ModifiedSequence":             "ModifiedPeptideSequence",
	"peptide_group_label":          "PeptideGroupLabel",
	"label_type":                   "LabelType",
	"CompoundId":                   assay.ColCompoundName,
	"ProteinName":                  "ProteinId",
	"UniProtID":                    "UniprotId",
	"FragmentIonType":              "FragmentType",
	"FragmentNumber":               "FragmentSeriesNumber",
	"CE":                           assay.ColCollisionEnergy,
	"IonMobility":                  "PrecursorIonMobility",
	"drift_time":                   "PrecursorIonMobility",
	"transition_group_id":          assay.ColTransitionGroupID,
	"transition_name":              "TransitionId",
	"decoy":                        assay.ColDecoy,
	"IsDecoy":                      assay.ColDecoy,
	"detecting_transition":         "DetectingTransition",
	"identifying_transition":       "IdentifyingTransition",
	"quantifying_transition":       "QuantifyingTransition",
}

type Driver struct{}

func (Driver) Format() string { return Format }

func (Driver) Decode(ctx context.Context, path string) (*assay.Library, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, assay.IOError("tsv", err)
	}
	defer f.Close()

	t, err := table.ReadTSV(bufio.NewReader(f))
	if err != nil {
		return nil, &assay.DecodeError{Format: Format, Path: path, Err: err}
	}
	return FromTable(t, path)
}

// FromTable maps an already parsed table onto canonical records.
func FromTable(t *table.Table, path string) (*assay.Library, error) {
	header := t.Columns()
	target := make([]string, len(header))
	seen := map[string]bool{}
	for i, h := range header {
		name := resolve(h)
		if name == "" {
			logging.L().Debug("tsv: ignoring unknown column", "column", h, "path", path)
			continue
		}
		if seen[name] {
			logging.L().Debug("tsv: duplicate column, first one wins", "column", h, "canonical", name)
			continue
		}
		seen[name] = true
		target[i] = name
	}
	for _, c := range required {
		if !seen[c] {
			return nil, &assay.SchemaError{Column: c, Reason: "required column missing from " + path}
		}
	}

	lib := &assay.Library{Format: Format, Records: make([]assay.Record, 0, t.Len())}
	for i := 0; i < t.Len(); i++ {
		rec := assay.NewRecord()
		for j, cell := range t.Row(i) {
			if target[j] == "" {
				continue
			}
			if err := rec.Set(target[j], cell); err != nil {
				return nil, &assay.DecodeError{Format: Format, Path: path, Err: fmt.Errorf("row %d: %w", i+1, err)}
			}
		}
		lib.Records = append(lib.Records, rec)
	}
	return lib, nil
}

func resolve(h string) string {
	h = strings.TrimSpace(h)
	if _, ok := assay.Lookup(h); ok {
		return h
	}
	return aliases[h]
}

func init() {
	source.Register("", func() source.Adapter { return Driver{} })
	source.Register(Format, func() source.Adapter { return Driver{} })
}
