package table

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/zeebo/xxh3"
)

// Fingerprint returns an xxh3 digest over the canonical encoding of t:
// column names and kinds followed by every value in row order. Two tables
// with identical schema and contents always produce the same fingerprint,
// which is what the run summary relies on to show that a re-run on unchanged
// input replaced the destination with identical data.
func Fingerprint(t Table) uint64 {
	h := xxh3.New()
	var buf [8]byte

	writeStr := func(s string) {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(s)))
		_, _ = h.Write(buf[:])
		_, _ = h.WriteString(s)
	}
	writeU64 := func(u uint64) {
		binary.LittleEndian.PutUint64(buf[:], u)
		_, _ = h.Write(buf[:])
	}

	writeU64(uint64(len(t.Columns)))
	for _, c := range t.Columns {
		writeStr(c.Name)
		writeU64(uint64(c.Kind))
	}

	writeU64(uint64(len(t.Rows)))
	for _, r := range t.Rows {
		for _, v := range r {
			switch x := v.(type) {
			case nil:
				_, _ = h.Write([]byte{0})
			case int64:
				_, _ = h.Write([]byte{1})
				writeU64(uint64(x))
			case float64:
				_, _ = h.Write([]byte{2})
				writeU64(math.Float64bits(x))
			case string:
				_, _ = h.Write([]byte{3})
				writeStr(x)
			case bool:
				if x {
					_, _ = h.Write([]byte{4, 1})
				} else {
					_, _ = h.Write([]byte{4, 0})
				}
			case time.Time:
				_, _ = h.Write([]byte{5})
				writeU64(uint64(x.UTC().UnixNano()))
			default:
				_, _ = h.Write([]byte{6})
				writeStr(stringOf(x))
			}
		}
	}
	return h.Sum64()
}

func stringOf(v any) string {
	s, err := Normalize(String, v)
	if err != nil {
		return ""
	}
	return s.(string)
}
