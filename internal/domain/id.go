package domain

import (
	"fmt"

	"github.com/google/uuid"
)

type idKind uint8

const (
	idKindZero idKind = iota
	idKindTemporary
	idKindPersisted
)

// ItemID is a tagged union over the two identity namespaces an item can live
// in: a client-generated temporary token (before the first successful create
// call) and a server-assigned ID (after promotion). The two namespaces never
// compare equal, so identity-kind dispatch is exhaustive rather than
// string-matched.
//
// ItemID is comparable and safe to use as a map key.
type ItemID struct {
	kind  idKind
	value string
}

// NewTemporaryID mints a fresh temporary identity for a not-yet-persisted item.
func NewTemporaryID() ItemID {
	return ItemID{kind: idKindTemporary, value: uuid.NewString()}
}

// TemporaryID wraps an existing token as a temporary identity.
func TemporaryID(token string) ItemID {
	return ItemID{kind: idKindTemporary, value: token}
}

// PersistedID wraps a server-assigned identifier.
func PersistedID(serverID string) ItemID {
	return ItemID{kind: idKindPersisted, value: serverID}
}

// IsTemporary reports whether the identity has not been promoted yet.
func (id ItemID) IsTemporary() bool { return id.kind == idKindTemporary }

// IsPersisted reports whether the identity is server-assigned.
func (id ItemID) IsPersisted() bool { return id.kind == idKindPersisted }

// IsZero reports whether the identity is unset.
func (id ItemID) IsZero() bool { return id.kind == idKindZero }

// Value returns the raw token or server identifier.
func (id ItemID) Value() string { return id.value }

// String renders the identity with its namespace, for logs only. The raw
// value for wire use is Value.
func (id ItemID) String() string {
	switch id.kind {
	case idKindTemporary:
		return fmt.Sprintf("temporary(%s)", id.value)
	case idKindPersisted:
		return fmt.Sprintf("persisted(%s)", id.value)
	default:
		return "zero"
	}
}
