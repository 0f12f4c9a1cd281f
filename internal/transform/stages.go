package transform

import (
	"fmt"
	"unicode/utf8"

	"skyconv/internal/assay"
	"skyconv/internal/logging"
	"skyconv/internal/table"
)

func missing(stage, col string) error {
	return &assay.ColumnError{Stage: stage, Column: col}
}

// Rename maps canonical names onto output names. Every source column must
// be present.
func Rename(m map[string]string) Stage {
	return stageFunc{name: "rename", fn: func(t *table.Table) error {
		absent, err := t.Rename(m)
		if err != nil {
			return err
		}
		if len(absent) > 0 {
			return missing("rename", absent[0])
		}
		return nil
	}}
}

// DropDecoys removes rows whose decoy flag is exactly 1. Missing or other
// values are kept.
func DropDecoys(col string, obs Observer) Stage {
	obs = orNop(obs)
	return stageFunc{name: "decoys", fn: func(t *table.Table) error {
		j, ok := t.Index(col)
		if !ok {
			return missing("decoys", col)
		}
		n := t.Filter(func(row []string) bool {
			v, err := assay.ParseFloat(row[j])
			return err != nil || v != 1
		})
		obs.DecoysRemoved(n)
		if n > 0 {
			logging.L().Info("removed decoys", "count", n)
		}
		return nil
	}}
}

// Prune drops cols. Absent columns are ignored unless strict is set.
func Prune(cols []string, strict bool) Stage {
	return stageFunc{name: "prune", fn: func(t *table.Table) error {
		absent := t.Drop(cols...)
		if len(absent) == 0 {
			return nil
		}
		if strict {
			return missing("prune", absent[0])
		}
		logging.L().Debug("prune: columns already absent", "columns", absent)
		return nil
	}}
}

// FixedFill sets col to v on every row, adding the column if needed.
func FixedFill(col, v string) Stage {
	return stageFunc{name: "fill " + col, fn: func(t *table.Table) error {
		t.Fill(col, v)
		return nil
	}}
}

// ReformatAdducts rewrites OpenMS adducts (M+H+) into Skyline's bracket form
// ([M+H]).
func ReformatAdducts(col string, obs Observer) Stage {
	obs = orNop(obs)
	return stageFunc{name: "adducts", fn: func(t *table.Table) error {
		j, ok := t.Index(col)
		if !ok {
			return missing("adducts", col)
		}
		warned := map[string]bool{}
		return t.Set(col, func(row []string) (string, error) {
			in := row[j]
			out, ok := ReformatAdduct(in)
			if !ok {
				obs.AdductSuspect(in)
				if !warned[in] {
					warned[in] = true
					logging.L().Warn("adduct does not end in a charge sign", "adduct", in, "reformatted", out)
				}
			}
			return out, nil
		})
	}}
}

// ReformatAdduct strips exactly the final character and brackets the rest.
// ok is false when that character was not a '+' or '-' charge sign, in which
// case the result is likely malformed. Empty input stays empty.
func ReformatAdduct(s string) (out string, ok bool) {
	if s == "" {
		return "", true
	}
	last, size := utf8.DecodeLastRuneInString(s)
	return "[" + s[:len(s)-size] + "]", last == '+' || last == '-'
}

// CopyColumn copies src into dst verbatim.
func CopyColumn(src, dst string) Stage {
	return stageFunc{name: "copy " + dst, fn: func(t *table.Table) error {
		j, ok := t.Index(src)
		if !ok {
			return missing("copy "+dst, src)
		}
		return t.Set(dst, func(row []string) (string, error) { return row[j], nil })
	}}
}

// Rescale divides every numeric value of col by div. Empty cells stay
// empty.
func Rescale(col string, div float64) Stage {
	return stageFunc{name: "rescale " + col, fn: func(t *table.Table) error {
		j, ok := t.Index(col)
		if !ok {
			return missing("rescale "+col, col)
		}
		return t.Set(col, func(row []string) (string, error) {
			if row[j] == "" {
				return "", nil
			}
			v, err := assay.ParseFloat(row[j])
			if err != nil {
				return "", fmt.Errorf("%s: %w", col, err)
			}
			return assay.FormatFloat(v / div), nil
		})
	}}
}

// Window adds col holding minutes on every row, or nothing when minutes is
// zero.
func Window(col string, minutes float64) Stage {
	return stageFunc{name: "window", fn: func(t *table.Table) error {
		if minutes == 0 {
			return nil
		}
		t.Fill(col, assay.FormatFloat(minutes))
		return nil
	}}
}
