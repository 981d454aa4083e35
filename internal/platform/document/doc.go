// Package document implements the identity user and role stores over a
// docstore.Session. The stores translate identity operations into session
// calls (Store, Delete, Load, Query, SaveChanges); the only decisions they
// make are rotating concurrency stamps on update and turning concurrency
// conflicts from the session into failed results.
//
// A store is bound to one session and is meant to live for one logical
// request, like the session itself.
package document
