// Package docstore is a small document session in the style of document
// database clients. A Backend persists JSON documents with a per-document
// version; a Session layered on top keeps an identity map of the entities it
// has loaded or stored, detects changes by comparing against load-time
// snapshots, and commits all pending writes atomically in SaveChanges with a
// version check on every document (optimistic concurrency).
//
// Sessions are meant to live for one logical request and are not safe for
// concurrent use. Backends are shared and safe for concurrent use.
package docstore
