// Package postgres registers the "postgres" docstore driver. Documents live
// in a single JSONB table managed by the embedded goose migrations, and all
// reads and conditional writes go through the shared sqldoc backend.
package postgres
