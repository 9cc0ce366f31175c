// Package db provides the embedded database schemas. Seed data under
// db/seed is read from disk by cmd/seed-db.
package db

import _ "embed"

// PostgresSchema contains the DDL statements for PostgreSQL.
//
//go:embed migrations/postgres/001_schema.sql
var PostgresSchema string

// SQLiteSchema contains the DDL statements for SQLite.
//
//go:embed migrations/sqlite/001_schema.sql
var SQLiteSchema string
