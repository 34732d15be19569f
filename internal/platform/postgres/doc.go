// Package postgres provides the PostgreSQL-backed session area.
//
// Sessions are stored as one row per (browser key, field) in
// client_session_fields, mirroring the flat key/value layout of the browser's
// local storage. The schema is managed by goose migrations embedded in the
// binary (see Migrate). Connections go through the pgx stdlib driver, and
// PostgreSQL errors are mapped onto the store error taxonomy by MapError.
package postgres
