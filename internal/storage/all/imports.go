// Package all wires all built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) runs the init functions of each backend, which register their
// factories with the storage package. The following kinds become available:
//
//   - "postgres" (internal/storage/postgres)
//   - "mysql"    (internal/storage/mysql)
//   - "mssql"    (internal/storage/mssql)
//   - "sqlite"   (internal/storage/sqlite)
//
// Typical usage (in cmd/hoteletl or a similar wiring layer):
//
//	import _ "github.com/sebamyu/Mini-Project-AIE321/internal/storage/all"
//
//	st, err := storage.New(ctx, storage.Config{Kind: cfg.Storage.Kind, DSN: dsn})
//	if err != nil {
//	    // handle error
//	}
//	defer st.Close()
//
// A binary that needs only a subset of backends can blank-import the backend
// packages it wants instead.
package all

import (
	_ "github.com/sebamyu/Mini-Project-AIE321/internal/storage/mssql"
	_ "github.com/sebamyu/Mini-Project-AIE321/internal/storage/mysql"
	_ "github.com/sebamyu/Mini-Project-AIE321/internal/storage/postgres"
	_ "github.com/sebamyu/Mini-Project-AIE321/internal/storage/sqlite"
)
