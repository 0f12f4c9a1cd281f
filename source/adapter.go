package source

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"skyconv/internal/assay"
)

// Adapter decodes one input encoding into the canonical library.
type Adapter interface {
	Format() string
	Decode(ctx context.Context, path string) (*assay.Library, error)
}

// Factory builds an Adapter (pqp, traml, tsv, …).
type Factory func() Adapter

// Registry maps lower-cased file extensions to decoders. The fallback
// serves every extension that has no entry of its own.
type Registry struct {
	mu       sync.RWMutex
	byExt    map[string]Factory
	fallback Factory
}

func NewRegistry() *Registry { return &Registry{byExt: map[string]Factory{}} }

// Register binds ext (with or without the dot, any casing) to f. An empty
// ext installs the fallback.
func (r *Registry) Register(ext string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ext = normExt(ext)
	if ext == "" {
		r.fallback = f
		return
	}
	r.byExt[ext] = f
}

// For returns the adapter for path, chosen by extension only.
func (r *Registry) For(path string) (Adapter, error) {
	ext := normExt(filepath.Ext(path))
	r.mu.RLock()
	f, ok := r.byExt[ext]
	if !ok {
		f = r.fallback
	}
	r.mu.RUnlock()
	if f == nil {
		return nil, fmt.Errorf("source: %w: extension %q of %s", assay.ErrUnsupportedFormat, filepath.Ext(path), path)
	}
	return f(), nil
}

func normExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

var registry = NewRegistry()

// Register is called from each driver's init().
func Register(ext string, f Factory) { registry.Register(ext, f) }

// Default returns the process-wide registry populated by driver init().
func Default() *Registry { return registry }
