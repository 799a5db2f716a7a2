// Package sqlerr specifically handles database driver errors.
//
// It turns engine-specific driver errors (pgx, modernc sqlite, go-mssqldb)
// into one diagnostic shape and converts them into user-friendly HTTP
// errors (e.g., a unique violation becomes a "Bad Request").
package sqlerr
