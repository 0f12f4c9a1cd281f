// Package tsv writes the transition list to a file. The file is replaced
// atomically: rows go to a temporary sibling that is renamed over the
// destination only after a successful flush and sync.
package tsv

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"skyconv/internal/assay"
	"skyconv/internal/table"
	"skyconv/sink"
)

type Config struct {
	Path string `koanf:"path"`
	// Mode of the created file; zero means 0644.
	Mode os.FileMode `koanf:"mode"`
}

type driver struct {
	cfg Config
}

func (d *driver) Configure(raw any) error {
	c, ok := raw.(Config)
	if !ok {
		return fmt.Errorf("tsv-sink: expected Config, got %T", raw)
	}
	if c.Path == "" {
		return fmt.Errorf("tsv-sink: empty output path")
	}
	if c.Mode == 0 {
		c.Mode = 0o644
	}
	d.cfg = c
	return nil
}

func (d *driver) Write(list *table.Table) (err error) {
	dir, base := filepath.Split(d.cfg.Path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+"-*.tmp")
	if err != nil {
		return assay.IOError("write "+d.cfg.Path, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := bufio.NewWriter(tmp)
	if err = list.WriteTSV(w); err != nil {
		return assay.IOError("write "+d.cfg.Path, err)
	}
	if err = w.Flush(); err != nil {
		return assay.IOError("write "+d.cfg.Path, err)
	}
	if err = tmp.Sync(); err != nil {
		return assay.IOError("write "+d.cfg.Path, err)
	}
	if err = tmp.Chmod(d.cfg.Mode); err != nil {
		return assay.IOError("write "+d.cfg.Path, err)
	}
	if err = tmp.Close(); err != nil {
		return assay.IOError("write "+d.cfg.Path, err)
	}
	if err = os.Rename(tmp.Name(), d.cfg.Path); err != nil {
		return assay.IOError("write "+d.cfg.Path, err)
	}
	return nil
}

func (d *driver) Close() error { return nil }

/* ────────── auto-register ────────── */
func init() {
	sink.Register("tsv", func() sink.Adapter { return &driver{} })
}
