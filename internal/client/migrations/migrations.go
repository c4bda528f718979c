// Package migrations embeds the goose migrations of the local bill catalog.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
