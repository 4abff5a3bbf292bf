// Package file opens raw exports from the local disk.
package file

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// Local is a filesystem source bound to one path. Paths ending in .gz are
// decompressed transparently.
type Local struct{ path string }

func NewLocal(path string) *Local { return &Local{path: path} }

// Path returns the bound path.
func (l *Local) Path() string { return l.path }

// Open returns ctx.Err() without touching the disk when ctx is already done.
// Filesystem errors keep their cause for errors.Is(err, os.ErrNotExist).
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	adviseSequential(f)
	if !strings.HasSuffix(strings.ToLower(l.path), ".gz") {
		return f, nil
	}
	zr, err := gzip.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("gunzip %s: %w", l.path, err)
	}
	return &gzipFile{Reader: zr, f: f}, nil
}

type gzipFile struct {
	*gzip.Reader
	f *os.File
}

func (g *gzipFile) Close() error {
	zerr := g.Reader.Close()
	if err := g.f.Close(); err != nil {
		return err
	}
	return zerr
}
