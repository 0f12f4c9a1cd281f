package sink

import (
	"fmt"

	"skyconv/internal/table"
)

// Adapter is the common behaviour every exporter exposes.
type Adapter interface {
	Configure(any) error           // driver-specific config struct
	Write(list *table.Table) error // header plus rows, column order as given
	Close() error                  // idempotent
}

/*──────── registry ───────*/

type factory = func() Adapter

var reg = map[string]factory{}

func Register(name string, f factory) { reg[name] = f }

func NewAdapter(name string) (Adapter, error) {
	if f, ok := reg[name]; ok {
		return f(), nil
	}
	return nil, fmt.Errorf("unknown sink %q", name)
}

// ForPath names the sink serving an output path: "-" is stdout, anything
// else a file.
func ForPath(path string) string {
	if path == "-" {
		return "stdout"
	}
	return "tsv"
}
