//go:build integration

// Package testdb provides helpers for tests that need a live PostgreSQL or
// Redis server.
//
// Tests that use it carry the integration build tag and skip themselves when
// the server is not configured:
//
//	func TestSomething(t *testing.T) {
//	    db := testdb.GetTestDBWithT(t) // skips without a database URL
//	    backend := sqldoc.New(db, postgres.Dialect, nil)
//	    ...
//	}
//
// # Environment Variables
//
// - IDSTORE_TEST_DB_URL: PostgreSQL connection string for tests
// - DATABASE_URL: fallback PostgreSQL connection string
// - IDSTORE_TEST_REDIS_ADDR: Redis address for tests
// - REDIS_ADDR: fallback Redis address
//
// Documents written by tests are isolated by collection name rather than by
// transaction, since backends commit their own transactions. Use
// CleanupCollections to remove them.
package testdb
