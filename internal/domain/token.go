package domain

import "strings"

// TokensCollection is the document collection holding user tokens.
const TokensCollection = "UserTokens"

// Token is an authentication token stored for a user, identified by the
// composite key (user id, login provider, token name).
type Token[K comparable] struct {
	ID            string `json:"id"`
	UserID        K      `json:"user_id"`
	LoginProvider string `json:"login_provider"`
	Name          string `json:"name"`
	Value         string `json:"value"`
}

// TokenID builds the document id of a token from the encoded user key and
// the provider/name pair. Each part is escaped before joining with '/', so
// distinct triples always map to distinct ids.
func TokenID(encodedUserID, loginProvider, name string) string {
	return strings.Join([]string{
		TokensCollection,
		escapeIDPart(encodedUserID),
		escapeIDPart(loginProvider),
		escapeIDPart(name),
	}, "/")
}

// CollectionName places tokens in the UserTokens collection.
func (Token[K]) CollectionName() string { return TokensCollection }

// Matches reports whether the token belongs to the provider/name pair.
func (t *Token[K]) Matches(loginProvider, name string) bool {
	return t.LoginProvider == loginProvider && t.Name == name
}

var idPartEscaper = strings.NewReplacer("%", "%25", "/", "%2F")

func escapeIDPart(s string) string {
	return idPartEscaper.Replace(s)
}
