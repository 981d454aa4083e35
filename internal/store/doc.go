// Package store defines the capability-set contract that identity stores
// satisfy: a group of narrow interfaces (user CRUD, claims, logins, role
// membership, lockout, email, phone, two-factor, tokens) that an identity
// framework type-asserts against, plus the error taxonomy, operation results
// and key codecs shared by every implementation.
package store
