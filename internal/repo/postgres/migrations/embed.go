package migrations

import "embed"

// Migrations holds the goose SQL migrations applied on startup.
//
//go:embed *.sql
var Migrations embed.FS
