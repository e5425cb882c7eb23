package domain

import (
	"github.com/passkeep/passkeep/internal/errors"
)

// Vault-specific error definitions. All wrap the standard sentinels from
// internal/errors so callers can match with errors.Is.
var (
	// ErrGroupNotFound indicates the group does not exist or is not visible.
	ErrGroupNotFound = errors.Wrap(errors.ErrNotFound, "group not found")

	// ErrRecordNotFound indicates the record is absent, soft-deleted, or the
	// principal has no right to learn that it exists.
	ErrRecordNotFound = errors.Wrap(errors.ErrNotFound, "record not found")

	// ErrDirectoryNotFound indicates the directory does not exist in the group.
	ErrDirectoryNotFound = errors.Wrap(errors.ErrNotFound, "directory not found")

	// ErrMembershipNotFound indicates the membership row does not exist.
	ErrMembershipNotFound = errors.Wrap(errors.ErrNotFound, "membership not found")

	// ErrAccessDenied indicates the principal lacks the capability for the operation.
	ErrAccessDenied = errors.Wrap(errors.ErrForbidden, "access denied")

	// ErrDuplicateGroupName indicates the owner already has a group with this name.
	ErrDuplicateGroupName = errors.Wrap(errors.ErrConflict, "group name already in use")

	// ErrDuplicateMembership indicates the user is already a member of the group.
	ErrDuplicateMembership = errors.Wrap(errors.ErrConflict, "user is already a member")

	// ErrDuplicateDirectoryName indicates a sibling directory with the same name exists.
	ErrDuplicateDirectoryName = errors.Wrap(errors.ErrConflict, "directory name already in use")

	// ErrDirectoryCycle indicates the directory would appear in its own ancestor chain.
	ErrDirectoryCycle = errors.Wrap(errors.ErrConflict, "directory cycle")

	// ErrDirectoryGroupMismatch indicates the parent directory belongs to another group.
	ErrDirectoryGroupMismatch = errors.Wrap(errors.ErrConflict, "parent directory belongs to another group")

	// ErrPersonalGroup indicates the operation is not allowed on a personal vault group.
	ErrPersonalGroup = errors.Wrap(errors.ErrConflict, "personal groups cannot be deleted")

	// ErrOwnerMembership indicates an attempt to add, remove or re-role the
	// group owner's membership. The owner role is bound to group ownership.
	ErrOwnerMembership = errors.Wrap(errors.ErrConflict, "owner membership cannot be modified")
)
