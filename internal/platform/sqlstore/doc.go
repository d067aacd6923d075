// Package sqlstore implements the store interfaces on top of database/sql via sqlx.
//
// Queries are written with '?' placeholders and rebound for the connected driver,
// so the same stores run against PostgreSQL (pgx) in production and SQLite
// (modernc.org/sqlite) for local development and tests. Schema migrations for both
// dialects are embedded and applied with goose.
package sqlstore
