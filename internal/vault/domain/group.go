package domain

import (
	"time"

	"github.com/google/uuid"
)

// Principal is the authenticated actor performing an operation. Identity
// resolution happens in the surrounding layer; the core only receives the
// resolved principal.
type Principal struct {
	ID    uuid.UUID
	Email string
}

// Group is a sharing and ownership boundary for records with its own master key.
type Group struct {
	// ID is the unique identifier (UUIDv7).
	ID uuid.UUID
	// Name is unique per owner.
	Name string
	// Description is optional free text.
	Description string
	// OwnerID is the principal who owns the group. The owner holds full rights
	// implicitly and is the only one who may delete the group.
	OwnerID uuid.UUID
	// IsPersonal marks the undeletable personal vault group.
	IsPersonal bool
	// WrappedKey is the group master key in wrapped (encrypted) form. It is
	// generated once at group creation and never changes; the plaintext key
	// exists only transiently in memory.
	WrappedKey []byte
	// CreatedAt is the UTC timestamp when the group was created.
	CreatedAt time.Time
	// UpdatedAt is the UTC timestamp of the last metadata change.
	UpdatedAt time.Time
}

// Membership is a user's role-scoped association with a group.
// Uniqueness holds on (UserID, GroupID); exactly one membership per group has
// RoleOwner, and it belongs to the group's owner.
type Membership struct {
	ID      uuid.UUID
	UserID  uuid.UUID
	GroupID uuid.UUID
	Role    Role
	// AddedBy is the principal who added this member (nil for the owner's
	// bootstrap membership).
	AddedBy  *uuid.UUID
	JoinedAt time.Time
}

// Directory organizes records within a group into a hierarchy. Parent, when
// set, belongs to the same group; the ancestor chain never contains the
// directory itself.
type Directory struct {
	ID          uuid.UUID
	Name        string
	Description string
	ParentID    *uuid.UUID
	GroupID     uuid.UUID
	CreatedBy   uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
