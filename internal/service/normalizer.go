package service

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalize returns the lookup form of a user name, email or role name:
// trimmed and upper-cased with language-neutral rules. Stores compare the
// normalized fields exactly, so every write and lookup goes through here.
func Normalize(name string) string {
	return cases.Upper(language.Und).String(strings.TrimSpace(name))
}
