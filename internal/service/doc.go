// Package service contains the identity use cases that sit on top of the
// stores: the user and role managers and the per-request scope that binds
// stores to one document session.
//
// The managers play the part an identity framework plays for the stores.
// They normalize names and emails, validate entities, enforce uniqueness
// rules that need a lookup, and apply lockout policy. Every persistence
// step is delegated to the store interfaces in internal/store, so the
// managers never depend on a concrete backend.
//
// Key components:
//
// 1. Registry and Scope:
//   - Registry holds explicit factories for the user and role stores of one key type
//   - Scope is one session with its stores, opened per logical request
//
// 2. Managers:
//   - UserManager covers users, claims, logins, roles, tokens and lockout
//   - RoleManager covers roles and role claims
//
// 3. Error Handling:
//   - Expected failures (duplicates, conflicts, membership) come back as store.Result
//   - Unexpected failures are returned as wrapped errors
package service
