// Package sqlite implements a SQLite-backed storage.Store.
//
// Namespaces map onto attached databases: namespace "production" next to a
// main database file /data/hotel.db is the file /data/production.db, attached
// as "production". When the main database is in memory, namespaces are
// in-memory databases too.
package sqlite

// Config holds SQLite store configuration derived from storage.Config.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.:
	//   "file:/data/hotel.db?_pragma=busy_timeout(5000)"
	//   "hotel.db"
	//   ":memory:"
	DSN string

	// BatchSize bounds the rows per insert batch; zero uses the default.
	BatchSize int
}
