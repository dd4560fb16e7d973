// Package postgres provides PostgreSQL-specific implementations for the data
// storage interfaces defined in the internal/store package, together with the
// goose migration runner for the schema they rely on.
package postgres
