// Package datasource opens the byte stream behind a raw bookings export. A
// location is either a local path or an http(s) URL.
package datasource

import (
	"context"
	"io"
	"strings"

	"github.com/sebamyu/Mini-Project-AIE321/internal/datasource/file"
	"github.com/sebamyu/Mini-Project-AIE321/internal/datasource/httpds"
)

type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// For returns the Source for location. URLs with an http or https scheme are
// fetched with httpCfg; anything else is treated as a local path.
func For(location string, httpCfg httpds.Config) Source {
	lower := strings.ToLower(location)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return httpds.New(location, httpCfg)
	}
	return file.NewLocal(location)
}
