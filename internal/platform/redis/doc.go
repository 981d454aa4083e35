// Package redis registers the "redis" docstore driver. Each document is a
// hash holding its JSON and version, and each collection keeps a set of its
// document ids. Commits use WATCH/MULTI so a batch applies only if none of
// its documents changed since their versions were checked.
package redis
