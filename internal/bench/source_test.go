package bench

import (
	"bytes"
	"context"
	"io"
)

type memSource []byte

func sourceOf(b []byte) memSource { return memSource(b) }

func (m memSource) Open(context.Context) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(m)), nil
}
