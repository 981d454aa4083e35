// Package sqldoc stores versioned JSON documents in a single SQL table. It
// implements docstore.Backend for any database/sql driver; the postgres and
// sqlite packages supply the dialect, the migrations and the error mapping.
//
// Every commit runs in one transaction. Writes are conditional on the
// expected version: inserts skip existing rows, updates and deletes match
// on (collection, id, version). A write that touches no row is a
// concurrency conflict and rolls the whole batch back.
package sqldoc
