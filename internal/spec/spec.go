// Package spec holds the declarative mapping from the assay library schema
// onto the Skyline transition list schema. The mapping ships embedded in the
// binary; it is not user configurable.
package spec

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

const SupportedSchema = "v1"

//go:embed skyline.yml
var skylineYAML []byte

type RenameRule struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

type columnNames struct {
	PrecursorAdduct string `yaml:"precursor_adduct"`
	ProductAdduct   string `yaml:"product_adduct"`
	ProductCharge   string `yaml:"product_charge"`
	PrecursorRT     string `yaml:"precursor_rt"`
	RTWindow        string `yaml:"rt_window"`
}

type Mapping struct {
	SchemaVersion string `yaml:"schema_version"`

	// Applied in order, before any other stage.
	Rename []RenameRule `yaml:"rename"`

	DecoyColumn   string      `yaml:"decoy_column"`
	Prune         []string    `yaml:"prune"`
	ProductCharge int         `yaml:"product_charge"`
	RTDivisor     float64     `yaml:"rt_divisor"`
	Columns       columnNames `yaml:"columns"`
	OutputOrder   []string    `yaml:"output_order"`
}

// RenameMap returns Rename as a lookup table.
func (m Mapping) RenameMap() map[string]string {
	out := make(map[string]string, len(m.Rename))
	for _, r := range m.Rename {
		out[r.From] = r.To
	}
	return out
}

// Parse decodes and checks a mapping document.
func Parse(raw []byte) (Mapping, error) {
	var m Mapping
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return m, err
	}
	if m.SchemaVersion == "" {
		m.SchemaVersion = SupportedSchema
	}
	if m.SchemaVersion != SupportedSchema {
		return m, fmt.Errorf("mapping schema_version %q not supported (want %q)", m.SchemaVersion, SupportedSchema)
	}
	if m.RTDivisor == 0 {
		return m, fmt.Errorf("mapping: rt_divisor must be non-zero")
	}
	seen := map[string]bool{}
	for _, r := range m.Rename {
		if r.From == "" || r.To == "" {
			return m, fmt.Errorf("mapping: incomplete rename rule %+v", r)
		}
		if seen[r.To] {
			return m, fmt.Errorf("mapping: %q is the target of two rename rules", r.To)
		}
		seen[r.To] = true
	}
	return m, nil
}

var skyline = sync.OnceValues(func() (Mapping, error) { return Parse(skylineYAML) })

// Skyline returns the embedded OpenMS -> Skyline mapping.
func Skyline() (Mapping, error) { return skyline() }
