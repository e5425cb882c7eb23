// Package domain defines the core vault entities: groups, memberships,
// directories, encrypted records and their audit trail.
//
// Access control is role-scoped per group. The group owner holds full rights
// implicitly, without needing a membership row; the owner rule is always
// evaluated before the membership table is consulted.
package domain

// Role defines a member's capability set within a group.
type Role string

const (
	// RoleOwner is held by exactly one membership per group: the group's owner.
	RoleOwner Role = "owner"

	// RoleAdmin can manage members and edit any record in the group.
	RoleAdmin Role = "admin"

	// RoleMember can create records and edit only records it created.
	RoleMember Role = "member"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}

// CanManageMembers reports whether this role may add, remove or re-role members.
func (r Role) CanManageMembers() bool {
	return r == RoleOwner || r == RoleAdmin
}

// CanEditAnyRecord reports whether this role may edit records created by others.
func (r Role) CanEditAnyRecord() bool {
	return r == RoleOwner || r == RoleAdmin
}

// CanCreateRecords reports whether this role may create records in the group.
// All membership roles can.
func (r Role) CanCreateRecords() bool {
	return r.Valid()
}

// Priority classifies how critical a record is.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Valid reports whether the priority is one of the known levels.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// ExpiresSoonDays is the lookahead window, in days, for the expires-soon
// search filter.
const ExpiresSoonDays = 30

// ChangeKind identifies what a history entry records.
type ChangeKind string

const (
	ChangeCreated       ChangeKind = "created"
	ChangeUpdated       ChangeKind = "updated"
	ChangeSecretChanged ChangeKind = "secret_changed"
	ChangeDeleted       ChangeKind = "deleted"
	ChangeRestored      ChangeKind = "restored"
)
