package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/passkeep/passkeep/internal/crypto/domain"
	cryptoService "github.com/passkeep/passkeep/internal/crypto/service"
	"github.com/passkeep/passkeep/internal/database"
	apperrors "github.com/passkeep/passkeep/internal/errors"
	"github.com/passkeep/passkeep/internal/vault/domain"
	vaultService "github.com/passkeep/passkeep/internal/vault/service"
)

// PersonalGroupName is the reserved name of every user's personal vault group.
const PersonalGroupName = "Personal"

// GroupUseCase defines the interface for group business logic operations
type GroupUseCase interface {
	CreateGroup(ctx context.Context, principal uuid.UUID, input domain.GroupInput) (*domain.Group, error)
	GetGroup(ctx context.Context, principal, groupID uuid.UUID) (*domain.Group, error)
	UpdateGroup(ctx context.Context, principal, groupID uuid.UUID, input domain.GroupInput) (*domain.Group, error)
	DeleteGroup(ctx context.Context, principal, groupID uuid.UUID) error
	ListGroups(ctx context.Context, principal uuid.UUID) ([]*domain.Group, error)
	EnsurePersonalGroup(ctx context.Context, principal uuid.UUID) (*domain.Group, error)
}

// GroupService handles group lifecycle business logic. Every group gets its
// own master key at creation, wrapped before it touches storage; the plaintext
// key is zeroed before the call returns.
type GroupService struct {
	txManager      database.TxManager
	groupRepo      GroupRepository
	membershipRepo MembershipRepository
	groupKeys      cryptoService.GroupKeyService
	policy         *vaultService.AccessPolicy
	limits         domain.Limits
}

// NewGroupService creates a new GroupService.
func NewGroupService(
	txManager database.TxManager,
	groupRepo GroupRepository,
	membershipRepo MembershipRepository,
	groupKeys cryptoService.GroupKeyService,
	policy *vaultService.AccessPolicy,
	limits domain.Limits,
) GroupUseCase {
	return &GroupService{
		txManager:      txManager,
		groupRepo:      groupRepo,
		membershipRepo: membershipRepo,
		groupKeys:      groupKeys,
		policy:         policy,
		limits:         limits,
	}
}

// CreateGroup creates a group owned by the principal, together with the
// owner's bookkeeping membership and a freshly generated wrapped master key.
func (g *GroupService) CreateGroup(
	ctx context.Context,
	principal uuid.UUID,
	input domain.GroupInput,
) (*domain.Group, error) {
	return g.createGroup(ctx, principal, input, false)
}

// EnsurePersonalGroup returns the principal's personal vault group, creating
// it on first use. The personal group cannot be deleted or shared.
func (g *GroupService) EnsurePersonalGroup(ctx context.Context, principal uuid.UUID) (*domain.Group, error) {
	group, err := g.groupRepo.GetByOwnerAndName(ctx, principal, PersonalGroupName)
	if err == nil {
		return group, nil
	}
	if !apperrors.Is(err, domain.ErrGroupNotFound) {
		return nil, err
	}

	return g.createGroup(ctx, principal, domain.GroupInput{
		Name:        PersonalGroupName,
		Description: "Personal vault",
	}, true)
}

func (g *GroupService) createGroup(
	ctx context.Context,
	principal uuid.UUID,
	input domain.GroupInput,
	personal bool,
) (*domain.Group, error) {
	if err := input.Validate(g.limits); err != nil {
		return nil, err
	}

	if _, err := g.groupRepo.GetByOwnerAndName(ctx, principal, input.Name); err == nil {
		return nil, domain.ErrDuplicateGroupName
	} else if !apperrors.Is(err, domain.ErrGroupNotFound) {
		return nil, err
	}

	plainKey, wrappedKey, err := g.groupKeys.Generate(ctx)
	if err != nil {
		return nil, err
	}
	// The plaintext group key is not needed at creation time, only its
	// wrapped form is persisted.
	cryptoDomain.Zero(plainKey)

	now := time.Now().UTC()
	group := &domain.Group{
		ID:          uuid.Must(uuid.NewV7()),
		Name:        input.Name,
		Description: input.Description,
		OwnerID:     principal,
		IsPersonal:  personal,
		WrappedKey:  wrappedKey,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	ownerMembership := &domain.Membership{
		ID:       uuid.Must(uuid.NewV7()),
		UserID:   principal,
		GroupID:  group.ID,
		Role:     domain.RoleOwner,
		JoinedAt: now,
	}

	err = g.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := g.groupRepo.Create(ctx, group); err != nil {
			return err
		}
		return g.membershipRepo.Create(ctx, ownerMembership)
	})
	if err != nil {
		return nil, err
	}

	return group, nil
}

// GetGroup retrieves a group the principal can view. Non-members receive
// ErrGroupNotFound so group existence is not leaked.
func (g *GroupService) GetGroup(ctx context.Context, principal, groupID uuid.UUID) (*domain.Group, error) {
	group, membership, err := g.loadGroup(ctx, principal, groupID)
	if err != nil {
		return nil, err
	}
	if !g.policy.CanViewGroup(principal, group, membership) {
		return nil, domain.ErrGroupNotFound
	}
	return group, nil
}

// UpdateGroup renames a group or changes its description. Owner or admin only.
func (g *GroupService) UpdateGroup(
	ctx context.Context,
	principal, groupID uuid.UUID,
	input domain.GroupInput,
) (*domain.Group, error) {
	if err := input.Validate(g.limits); err != nil {
		return nil, err
	}

	group, membership, err := g.loadGroup(ctx, principal, groupID)
	if err != nil {
		return nil, err
	}
	if !g.policy.CanViewGroup(principal, group, membership) {
		return nil, domain.ErrGroupNotFound
	}
	if !g.policy.CanEditGroup(principal, group, membership) {
		return nil, domain.ErrAccessDenied
	}
	if group.IsPersonal && input.Name != group.Name {
		return nil, domain.ErrPersonalGroup
	}

	if input.Name != group.Name {
		if _, err := g.groupRepo.GetByOwnerAndName(ctx, group.OwnerID, input.Name); err == nil {
			return nil, domain.ErrDuplicateGroupName
		} else if !apperrors.Is(err, domain.ErrGroupNotFound) {
			return nil, err
		}
	}

	group.Name = input.Name
	group.Description = input.Description
	group.UpdatedAt = time.Now().UTC()

	if err := g.groupRepo.Update(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// DeleteGroup permanently removes a group and everything in it. Only the owner
// can delete a group, and personal groups can never be deleted.
func (g *GroupService) DeleteGroup(ctx context.Context, principal, groupID uuid.UUID) error {
	group, membership, err := g.loadGroup(ctx, principal, groupID)
	if err != nil {
		return err
	}
	if !g.policy.CanViewGroup(principal, group, membership) {
		return domain.ErrGroupNotFound
	}
	if !g.policy.CanDeleteGroup(principal, group) {
		return domain.ErrAccessDenied
	}
	if group.IsPersonal {
		return domain.ErrPersonalGroup
	}

	return g.groupRepo.Delete(ctx, group.ID)
}

// ListGroups returns all groups the principal owns or is a member of.
func (g *GroupService) ListGroups(ctx context.Context, principal uuid.UUID) ([]*domain.Group, error) {
	return g.groupRepo.ListAccessible(ctx, principal)
}

func (g *GroupService) loadGroup(
	ctx context.Context,
	principal, groupID uuid.UUID,
) (*domain.Group, *domain.Membership, error) {
	group, err := g.groupRepo.Get(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	membership, err := membershipOrNil(ctx, g.membershipRepo, principal, groupID)
	if err != nil {
		return nil, nil, err
	}
	return group, membership, nil
}
