// Package mocks provides centralized mock implementations for testing.
//
// MockBackend is a docstore.Backend whose methods can be overridden one at a
// time; anything not overridden is served by an in-memory backend, so tests
// only script the call they care about:
//
//	backend := mocks.NewMockBackend(
//	    mocks.WithCommitError(errors.New("disk full")),
//	)
//
// TestifyMockBackend is the testify/mock flavour for tests that want to set
// expectations and assert on arguments.
package mocks
