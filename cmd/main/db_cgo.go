//go:build cgo_sqlite

package main

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

const sqlDriver = "sqlite3"

func openDB(dataSource string) (*sql.DB, error) {
	return sql.Open(sqlDriver, dataSource)
}
