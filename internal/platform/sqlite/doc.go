// Package sqlite registers the "sqlite" docstore driver, an embedded
// single-file backend built on the pure Go modernc.org/sqlite driver. It is
// meant for local tools and tests; writes are serialised on one connection.
package sqlite
