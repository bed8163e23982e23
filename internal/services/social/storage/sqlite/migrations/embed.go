// Package migrations embeds the social SQLite schema.
package migrations

import "embed"

// FS holds the schema for users, rooms, memberships and messages.
//
//go:embed *.sql
var FS embed.FS
