//go:build !cgo_sqlite
// +build !cgo_sqlite

package library

// Default build: pure Go SQLite, no C compiler required.
//
//   CGO_ENABLED=0 go build ./...

import (
	_ "modernc.org/sqlite"
)

const (
	driverName = "sqlite"
	buildMode  = "purego"
)
