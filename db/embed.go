// Package db provides the embedded schema migrations.
package db

import "embed"

// Migrations holds the goose migration files, rooted at the migrations
// directory.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations that holds the files.
const MigrationsDir = "migrations"
