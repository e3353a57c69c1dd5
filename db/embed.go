// Package db ships the execution-log schema migrations.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS
