// Package domain contains the identity entities persisted by the document
// stores: users, roles, the claims and external logins attached to them, and
// the authentication tokens issued for users. Entities are generic over their
// key type so that the same model serves string, UUID and integer keys.
package domain
