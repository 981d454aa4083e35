package domain

import "github.com/google/uuid"

// RolesCollection is the document collection holding roles.
const RolesCollection = "Roles"

// UserRole is the role-side shape of a membership record. Membership is
// owned by the user's RoleRef links; Role.Users is kept so role documents
// have the same shape as those written by other identity stores, and no
// store operation writes it.
type UserRole[K comparable] struct {
	UserID K `json:"user_id"`
	RoleID K `json:"role_id"`
}

// Role is an identity role document.
type Role[K comparable] struct {
	ID               K             `json:"id"`
	Name             string        `json:"name" validate:"required,max=256"`
	NormalizedName   string        `json:"normalized_name"`
	ConcurrencyStamp string        `json:"concurrency_stamp"`
	Claims           []Claim       `json:"claims"`
	Users            []UserRole[K] `json:"users"`
}

// NewRole creates a role with the given key and name and a fresh
// concurrency stamp.
func NewRole[K comparable](id K, name string) *Role[K] {
	return &Role[K]{
		ID:               id,
		Name:             name,
		ConcurrencyStamp: uuid.NewString(),
		Claims:           []Claim{},
		Users:            []UserRole[K]{},
	}
}

// NewIdentityRole creates a string-keyed role whose key is a random UUID.
func NewIdentityRole(name string) *Role[string] {
	return NewRole(uuid.NewString(), name)
}

// CollectionName places roles in the Roles collection.
func (Role[K]) CollectionName() string { return RolesCollection }

// String returns the role name.
func (r *Role[K]) String() string { return r.Name }

// Validate checks the role name.
func (r *Role[K]) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fieldErrors(err, map[string]error{"Name": ErrInvalidRoleName})
	}
	return nil
}
