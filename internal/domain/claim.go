package domain

import "strings"

// Claim is a (type, value) assertion attached to a user or a role.
// Claims are values: two claims are the same claim when both fields match
// exactly, so == is the equality used by every claim lookup.
type Claim struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// NewClaim returns a claim with the given type and value.
func NewClaim(claimType, value string) Claim {
	return Claim{Type: claimType, Value: value}
}

// Validate reports ErrEmptyClaimType for a claim without a type.
func (c Claim) Validate() error {
	if strings.TrimSpace(c.Type) == "" {
		return ErrEmptyClaimType
	}
	return nil
}

// String renders the claim as type=value.
func (c Claim) String() string {
	return c.Type + "=" + c.Value
}

// Login links a user to an account at an external login provider.
type Login struct {
	LoginProvider       string `json:"login_provider"`
	ProviderKey         string `json:"provider_key"`
	ProviderDisplayName string `json:"provider_display_name,omitempty"`
}

// Matches reports whether the login is the (provider, key) pair given.
// The display name does not take part in identity.
func (l Login) Matches(loginProvider, providerKey string) bool {
	return l.LoginProvider == loginProvider && l.ProviderKey == providerKey
}

// Validate checks that both halves of the login identity are present.
func (l Login) Validate() error {
	if l.LoginProvider == "" || l.ProviderKey == "" {
		return ErrInvalidLogin
	}
	return nil
}
