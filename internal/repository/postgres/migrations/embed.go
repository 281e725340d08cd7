// Package migrations holds the Postgres schema for the expense store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
