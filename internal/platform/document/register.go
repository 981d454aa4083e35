package document

import (
	"github.com/ar0311/identity-docstore/internal/docstore"
	"github.com/ar0311/identity-docstore/internal/service"
	"github.com/ar0311/identity-docstore/internal/store"
)

// AddStores installs the document-backed user and role stores in reg.
// The key type is chosen by the caller's K and keys encodes it; no
// reflection is involved in picking the implementation.
func AddStores[K comparable](reg *service.Registry[K], keys store.KeyCodec[K], opts Options) *service.Registry[K] {
	if reg == nil {
		panic("document: nil registry")
	}
	reg.NewUserStore = func(session *docstore.Session) store.UserStore[K] {
		return NewUserStore(session, keys, opts)
	}
	reg.NewRoleStore = func(session *docstore.Session) store.RoleStore[K] {
		return NewRoleStore(session, keys, opts)
	}
	return reg
}
