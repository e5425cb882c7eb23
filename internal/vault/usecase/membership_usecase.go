package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/passkeep/passkeep/internal/database"
	apperrors "github.com/passkeep/passkeep/internal/errors"
	"github.com/passkeep/passkeep/internal/vault/domain"
	vaultService "github.com/passkeep/passkeep/internal/vault/service"
)

// MembershipUseCase defines the interface for group membership business logic operations
type MembershipUseCase interface {
	AddMember(ctx context.Context, principal, groupID, userID uuid.UUID, role domain.Role) (*domain.Membership, error)
	RemoveMember(ctx context.Context, principal, groupID, userID uuid.UUID) error
	ChangeMemberRole(ctx context.Context, principal, groupID, userID uuid.UUID, role domain.Role) error
	ListMembers(ctx context.Context, principal, groupID uuid.UUID) ([]*domain.Membership, error)
}

// MembershipService handles membership business logic. Mutations run under
// serializable transactions so concurrent role changes cannot interleave into
// a state that violates the single-owner rule.
type MembershipService struct {
	txManager      database.TxManager
	groupRepo      GroupRepository
	membershipRepo MembershipRepository
	policy         *vaultService.AccessPolicy
}

// NewMembershipService creates a new MembershipService.
func NewMembershipService(
	txManager database.TxManager,
	groupRepo GroupRepository,
	membershipRepo MembershipRepository,
	policy *vaultService.AccessPolicy,
) MembershipUseCase {
	return &MembershipService{
		txManager:      txManager,
		groupRepo:      groupRepo,
		membershipRepo: membershipRepo,
		policy:         policy,
	}
}

// AddMember adds a user to a group with the given role. Owner or admin only.
// The owner role is never assignable and personal groups cannot be shared.
func (m *MembershipService) AddMember(
	ctx context.Context,
	principal, groupID, userID uuid.UUID,
	role domain.Role,
) (*domain.Membership, error) {
	if !role.Valid() || role == domain.RoleOwner {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "role must be admin or member")
	}

	var membership *domain.Membership
	err := m.txManager.WithSerializableTx(ctx, func(ctx context.Context) error {
		group, err := m.authorizeManage(ctx, principal, groupID)
		if err != nil {
			return err
		}
		if group.IsPersonal {
			return domain.ErrPersonalGroup
		}
		if userID == group.OwnerID {
			return domain.ErrOwnerMembership
		}

		existing, err := membershipOrNil(ctx, m.membershipRepo, userID, groupID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicateMembership
		}

		membership = &domain.Membership{
			ID:       uuid.Must(uuid.NewV7()),
			UserID:   userID,
			GroupID:  groupID,
			Role:     role,
			AddedBy:  &principal,
			JoinedAt: time.Now().UTC(),
		}
		return m.membershipRepo.Create(ctx, membership)
	})
	if err != nil {
		return nil, err
	}

	return membership, nil
}

// RemoveMember removes a user from a group. Owner or admin only; members may
// also remove themselves. The owner's membership is not removable.
func (m *MembershipService) RemoveMember(ctx context.Context, principal, groupID, userID uuid.UUID) error {
	return m.txManager.WithSerializableTx(ctx, func(ctx context.Context) error {
		group, err := m.groupRepo.Get(ctx, groupID)
		if err != nil {
			return err
		}
		principalMembership, err := membershipOrNil(ctx, m.membershipRepo, principal, groupID)
		if err != nil {
			return err
		}
		if !m.policy.CanViewGroup(principal, group, principalMembership) {
			return domain.ErrGroupNotFound
		}

		selfRemoval := principal == userID
		if !selfRemoval && !m.policy.CanManageMembers(principal, group, principalMembership) {
			return domain.ErrAccessDenied
		}
		if userID == group.OwnerID {
			return domain.ErrOwnerMembership
		}

		membership, err := m.membershipRepo.GetByUserAndGroup(ctx, userID, groupID)
		if err != nil {
			return err
		}
		return m.membershipRepo.Delete(ctx, membership.ID)
	})
}

// ChangeMemberRole changes a member's role between admin and member. Owner or
// admin only. The owner's role never changes and ownership is not transferable
// through this path.
func (m *MembershipService) ChangeMemberRole(
	ctx context.Context,
	principal, groupID, userID uuid.UUID,
	role domain.Role,
) error {
	if !role.Valid() || role == domain.RoleOwner {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "role must be admin or member")
	}

	return m.txManager.WithSerializableTx(ctx, func(ctx context.Context) error {
		group, err := m.authorizeManage(ctx, principal, groupID)
		if err != nil {
			return err
		}
		if userID == group.OwnerID {
			return domain.ErrOwnerMembership
		}

		membership, err := m.membershipRepo.GetByUserAndGroup(ctx, userID, groupID)
		if err != nil {
			return err
		}
		if membership.Role == role {
			return nil
		}
		return m.membershipRepo.UpdateRole(ctx, membership.ID, role)
	})
}

// ListMembers returns all memberships of a group the principal can view.
func (m *MembershipService) ListMembers(
	ctx context.Context,
	principal, groupID uuid.UUID,
) ([]*domain.Membership, error) {
	group, err := m.groupRepo.Get(ctx, groupID)
	if err != nil {
		return nil, err
	}
	membership, err := membershipOrNil(ctx, m.membershipRepo, principal, groupID)
	if err != nil {
		return nil, err
	}
	if !m.policy.CanViewGroup(principal, group, membership) {
		return nil, domain.ErrGroupNotFound
	}

	return m.membershipRepo.ListByGroup(ctx, groupID)
}

// authorizeManage loads the group and checks the principal may manage its
// members. Non-viewers get ErrGroupNotFound, viewers without the capability
// get ErrAccessDenied.
func (m *MembershipService) authorizeManage(
	ctx context.Context,
	principal, groupID uuid.UUID,
) (*domain.Group, error) {
	group, err := m.groupRepo.Get(ctx, groupID)
	if err != nil {
		return nil, err
	}
	membership, err := membershipOrNil(ctx, m.membershipRepo, principal, groupID)
	if err != nil {
		return nil, err
	}
	if !m.policy.CanViewGroup(principal, group, membership) {
		return nil, domain.ErrGroupNotFound
	}
	if !m.policy.CanManageMembers(principal, group, membership) {
		return nil, domain.ErrAccessDenied
	}
	return group, nil
}
