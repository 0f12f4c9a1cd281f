// Package stdout prints the transition list instead of writing a file; it
// serves `-skylinelib -`.
package stdout

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"

	"skyconv/internal/assay"
	"skyconv/internal/table"
	"skyconv/sink"
)

/* ────────── config ────────── */
type Config struct {
	// Out defaults to os.Stdout.
	Out io.Writer
}

/* ────────── driver ────────── */
type driver struct {
	mu  sync.Mutex
	out *bufio.Writer
}

/* ────────── sink.Adapter ────────── */
func (d *driver) Configure(raw any) error {
	c, ok := raw.(Config)
	if !ok {
		return fmt.Errorf("stdout-sink: expected Config, got %T", raw)
	}
	if c.Out == nil {
		c.Out = os.Stdout
	}
	d.out = bufio.NewWriter(c.Out)
	return nil
}

func (d *driver) Write(list *table.Table) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := list.WriteTSV(d.out); err != nil {
		return assay.IOError("stdout", err)
	}
	if err := d.out.Flush(); err != nil {
		return assay.IOError("stdout", err)
	}
	return nil
}

func (d *driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.out == nil {
		return nil
	}
	return d.out.Flush()
}

/* ────────── auto-register ────────── */
func init() {
	sink.Register("stdout", func() sink.Adapter { return &driver{} })
}
