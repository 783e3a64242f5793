// Package gormdb implements the store interfaces with gorm. It supports
// PostgreSQL (through pgx) for deployments and SQLite (the ncruces wasm
// build) for local development and tests. Driver errors are mapped onto the
// store package's sentinel errors so callers never see dialect details.
package gormdb
