//go:build cgo_sqlite
// +build cgo_sqlite

package library

// Compiled when building with CGO and the cgo_sqlite tag:
//
//   CGO_ENABLED=1 go build -tags cgo_sqlite ./...
//
// Uses the C SQLite driver for faster imports on large libraries.

import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	driverName = "sqlite3"
	buildMode  = "cgo"
)
