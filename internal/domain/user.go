package domain

import (
	"time"

	"github.com/google/uuid"
)

// UsersCollection is the document collection holding users.
const UsersCollection = "Users"

// RoleRef is a by-reference link from a user to a role document. RoleID is
// the reference, so renaming a role never touches its users. Name records
// the role name when the link was made and is only used once the role
// document is gone.
type RoleRef[K comparable] struct {
	RoleID K      `json:"role_id"`
	Name   string `json:"name"`
}

// User is an identity user document. The key type K is fixed per
// application (string, uuid.UUID, int64, ...).
type User[K comparable] struct {
	ID                   K            `json:"id"`
	UserName             string       `json:"user_name" validate:"required,max=256"`
	NormalizedUserName   string       `json:"normalized_user_name"`
	Email                string       `json:"email,omitempty" validate:"omitempty,email,max=256"`
	NormalizedEmail      string       `json:"normalized_email,omitempty"`
	EmailConfirmed       bool         `json:"email_confirmed"`
	PasswordHash         string       `json:"password_hash,omitempty"`
	SecurityStamp        string       `json:"security_stamp,omitempty"`
	ConcurrencyStamp     string       `json:"concurrency_stamp"`
	PhoneNumber          string       `json:"phone_number,omitempty"`
	PhoneNumberConfirmed bool         `json:"phone_number_confirmed"`
	TwoFactorEnabled     bool         `json:"two_factor_enabled"`
	LockoutEnd           *time.Time   `json:"lockout_end,omitempty"`
	LockoutEnabled       bool         `json:"lockout_enabled"`
	AccessFailedCount    int          `json:"access_failed_count"`
	Roles                []RoleRef[K] `json:"roles"`
	Claims               []Claim      `json:"claims"`
	Logins               []Login      `json:"logins"`
}

// NewUser creates a user with the given key and user name and a fresh
// concurrency stamp. Collections start empty rather than nil so that the
// persisted document always carries them.
func NewUser[K comparable](id K, userName string) *User[K] {
	return &User[K]{
		ID:               id,
		UserName:         userName,
		ConcurrencyStamp: uuid.NewString(),
		Roles:            []RoleRef[K]{},
		Claims:           []Claim{},
		Logins:           []Login{},
	}
}

// NewIdentityUser creates a string-keyed user whose key is a random UUID.
func NewIdentityUser(userName string) *User[string] {
	return NewUser(uuid.NewString(), userName)
}

// CollectionName places users in the Users collection.
func (User[K]) CollectionName() string { return UsersCollection }

// String returns the user name.
func (u *User[K]) String() string { return u.UserName }

// Validate checks the user name and email shape. It does not check
// uniqueness, which needs the store.
func (u *User[K]) Validate() error {
	if err := validate.Struct(u); err != nil {
		return fieldErrors(err, map[string]error{
			"UserName": ErrInvalidUserName,
			"Email":    ErrInvalidEmail,
		})
	}
	return nil
}

// IsLockedOut reports whether lockout is enabled and the lockout end lies
// after now.
func (u *User[K]) IsLockedOut(now time.Time) bool {
	return u.LockoutEnabled && u.LockoutEnd != nil && u.LockoutEnd.After(now)
}
