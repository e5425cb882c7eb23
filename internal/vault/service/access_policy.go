// Package service provides vault domain services: role-scoped access policy
// evaluation and the password generation/strength utilities.
package service

import (
	"github.com/google/uuid"

	vaultDomain "github.com/passkeep/passkeep/internal/vault/domain"
)

// AccessPolicy evaluates whether a principal may perform an action on a group
// or record.
//
// Evaluation order matters: the group owner holds full rights implicitly and is
// checked before any membership row is consulted. The owner membership row that
// group creation writes is bookkeeping, not the source of the owner's rights.
// The second standing rule is the creator override: a record's creator always
// retains edit and delete rights on it regardless of role.
//
// The policy is pure: callers load the group and the principal's membership
// (nil when none exists) and pass them in. It never touches storage.
type AccessPolicy struct{}

// NewAccessPolicy creates a new AccessPolicy.
func NewAccessPolicy() *AccessPolicy {
	return &AccessPolicy{}
}

// RoleIn resolves the principal's effective role in the group. The owner is
// RoleOwner even without a membership row. The second return is false for
// non-members.
func (p *AccessPolicy) RoleIn(
	principal uuid.UUID,
	group *vaultDomain.Group,
	membership *vaultDomain.Membership,
) (vaultDomain.Role, bool) {
	if group.OwnerID == principal {
		return vaultDomain.RoleOwner, true
	}
	if membership != nil {
		return membership.Role, true
	}
	return "", false
}

// CanViewGroup reports whether the principal may see the group and enumerate
// its contents: owner or any member.
func (p *AccessPolicy) CanViewGroup(
	principal uuid.UUID,
	group *vaultDomain.Group,
	membership *vaultDomain.Membership,
) bool {
	_, ok := p.RoleIn(principal, group, membership)
	return ok
}

// CanCreateRecord reports whether the principal may create records in the
// group. All roles can; non-members cannot.
func (p *AccessPolicy) CanCreateRecord(
	principal uuid.UUID,
	group *vaultDomain.Group,
	membership *vaultDomain.Membership,
) bool {
	role, ok := p.RoleIn(principal, group, membership)
	return ok && role.CanCreateRecords()
}

// CanViewRecord reports whether the principal may view the record: its
// creator, the group owner, or any member of the record's group.
func (p *AccessPolicy) CanViewRecord(
	principal uuid.UUID,
	record *vaultDomain.Record,
	group *vaultDomain.Group,
	membership *vaultDomain.Membership,
) bool {
	if record.CreatedBy == principal {
		return true
	}
	return p.CanViewGroup(principal, group, membership)
}

// CanEditRecord reports whether the principal may edit or delete the record:
// its creator, the group owner, or a group admin. Plain members may only edit
// records they created.
func (p *AccessPolicy) CanEditRecord(
	principal uuid.UUID,
	record *vaultDomain.Record,
	group *vaultDomain.Group,
	membership *vaultDomain.Membership,
) bool {
	if record.CreatedBy == principal {
		return true
	}
	role, ok := p.RoleIn(principal, group, membership)
	return ok && role.CanEditAnyRecord()
}

// CanManageMembers reports whether the principal may add, remove or re-role
// group members: owner or admin.
func (p *AccessPolicy) CanManageMembers(
	principal uuid.UUID,
	group *vaultDomain.Group,
	membership *vaultDomain.Membership,
) bool {
	role, ok := p.RoleIn(principal, group, membership)
	return ok && role.CanManageMembers()
}

// CanDeleteGroup reports whether the principal may delete the group. Only the
// owner can; the personal-group restriction is an invariant enforced at the
// store level, not a policy decision.
func (p *AccessPolicy) CanDeleteGroup(principal uuid.UUID, group *vaultDomain.Group) bool {
	return group.OwnerID == principal
}

// CanEditGroup reports whether the principal may rename the group or change
// its description: owner or admin.
func (p *AccessPolicy) CanEditGroup(
	principal uuid.UUID,
	group *vaultDomain.Group,
	membership *vaultDomain.Membership,
) bool {
	return p.CanManageMembers(principal, group, membership)
}
