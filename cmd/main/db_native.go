//go:build !cgo_sqlite

package main

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

const sqlDriver = "sqlite"

func openDB(dataSource string) (*sql.DB, error) {
	return sql.Open(sqlDriver, dataSource)
}
