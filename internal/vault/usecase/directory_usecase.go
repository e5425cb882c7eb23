package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/passkeep/passkeep/internal/database"
	"github.com/passkeep/passkeep/internal/vault/domain"
	vaultService "github.com/passkeep/passkeep/internal/vault/service"
)

// DirectoryUseCase defines the interface for directory business logic operations
type DirectoryUseCase interface {
	CreateDirectory(ctx context.Context, principal, groupID uuid.UUID, input domain.DirectoryInput) (*domain.Directory, error)
	UpdateDirectory(ctx context.Context, principal, directoryID uuid.UUID, input domain.DirectoryInput) (*domain.Directory, error)
	DeleteDirectory(ctx context.Context, principal, directoryID uuid.UUID) error
	ListDirectories(ctx context.Context, principal, groupID uuid.UUID) ([]*domain.Directory, error)
}

// DirectoryService handles directory tree business logic. Directories never
// cross group boundaries and the ancestor chain is kept acyclic on every move.
type DirectoryService struct {
	txManager      database.TxManager
	groupRepo      GroupRepository
	membershipRepo MembershipRepository
	directoryRepo  DirectoryRepository
	policy         *vaultService.AccessPolicy
	limits         domain.Limits
}

// NewDirectoryService creates a new DirectoryService.
func NewDirectoryService(
	txManager database.TxManager,
	groupRepo GroupRepository,
	membershipRepo MembershipRepository,
	directoryRepo DirectoryRepository,
	policy *vaultService.AccessPolicy,
	limits domain.Limits,
) DirectoryUseCase {
	return &DirectoryService{
		txManager:      txManager,
		groupRepo:      groupRepo,
		membershipRepo: membershipRepo,
		directoryRepo:  directoryRepo,
		policy:         policy,
		limits:         limits,
	}
}

// CreateDirectory creates a directory in a group. Any member can create
// directories; the name must be unique among its siblings and the parent, if
// set, must belong to the same group.
func (d *DirectoryService) CreateDirectory(
	ctx context.Context,
	principal, groupID uuid.UUID,
	input domain.DirectoryInput,
) (*domain.Directory, error) {
	if err := input.Validate(d.limits); err != nil {
		return nil, err
	}

	group, membership, err := d.loadGroup(ctx, principal, groupID)
	if err != nil {
		return nil, err
	}
	if !d.policy.CanViewGroup(principal, group, membership) {
		return nil, domain.ErrGroupNotFound
	}
	if !d.policy.CanCreateRecord(principal, group, membership) {
		return nil, domain.ErrAccessDenied
	}

	var directory *domain.Directory
	err = d.txManager.WithTx(ctx, func(ctx context.Context) error {
		if input.ParentID != nil {
			parent, err := d.directoryRepo.Get(ctx, *input.ParentID)
			if err != nil {
				return err
			}
			if parent.GroupID != groupID {
				return domain.ErrDirectoryGroupMismatch
			}
		}

		exists, err := d.directoryRepo.ExistsSibling(ctx, groupID, input.ParentID, input.Name)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrDuplicateDirectoryName
		}

		now := time.Now().UTC()
		directory = &domain.Directory{
			ID:          uuid.Must(uuid.NewV7()),
			Name:        input.Name,
			Description: input.Description,
			ParentID:    input.ParentID,
			GroupID:     groupID,
			CreatedBy:   principal,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return d.directoryRepo.Create(ctx, directory)
	})
	if err != nil {
		return nil, err
	}

	return directory, nil
}

// UpdateDirectory renames a directory or moves it under a new parent. Moving
// to a parent inside the directory's own subtree is rejected.
func (d *DirectoryService) UpdateDirectory(
	ctx context.Context,
	principal, directoryID uuid.UUID,
	input domain.DirectoryInput,
) (*domain.Directory, error) {
	if err := input.Validate(d.limits); err != nil {
		return nil, err
	}

	var directory *domain.Directory
	err := d.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		directory, err = d.authorizeDirectory(ctx, principal, directoryID)
		if err != nil {
			return err
		}

		if input.ParentID != nil {
			if err := d.checkMoveTarget(ctx, directory, *input.ParentID); err != nil {
				return err
			}
		}

		nameChanged := input.Name != directory.Name
		parentChanged := !uuidPtrEqual(input.ParentID, directory.ParentID)
		if nameChanged || parentChanged {
			exists, err := d.directoryRepo.ExistsSibling(ctx, directory.GroupID, input.ParentID, input.Name)
			if err != nil {
				return err
			}
			if exists {
				return domain.ErrDuplicateDirectoryName
			}
		}

		directory.Name = input.Name
		directory.Description = input.Description
		directory.ParentID = input.ParentID
		directory.UpdatedAt = time.Now().UTC()
		return d.directoryRepo.Update(ctx, directory)
	})
	if err != nil {
		return nil, err
	}

	return directory, nil
}

// DeleteDirectory removes a directory. Child directories cascade and the
// records inside fall back to the group root.
func (d *DirectoryService) DeleteDirectory(ctx context.Context, principal, directoryID uuid.UUID) error {
	return d.txManager.WithTx(ctx, func(ctx context.Context) error {
		directory, err := d.authorizeDirectory(ctx, principal, directoryID)
		if err != nil {
			return err
		}
		return d.directoryRepo.Delete(ctx, directory.ID)
	})
}

// ListDirectories returns all directories of a group the principal can view.
func (d *DirectoryService) ListDirectories(
	ctx context.Context,
	principal, groupID uuid.UUID,
) ([]*domain.Directory, error) {
	group, membership, err := d.loadGroup(ctx, principal, groupID)
	if err != nil {
		return nil, err
	}
	if !d.policy.CanViewGroup(principal, group, membership) {
		return nil, domain.ErrGroupNotFound
	}

	return d.directoryRepo.ListByGroup(ctx, groupID)
}

// checkMoveTarget validates a new parent: same group, not the directory
// itself, and not inside the directory's subtree. The walk follows the
// ancestor chain upward, which terminates because the stored tree is acyclic.
func (d *DirectoryService) checkMoveTarget(
	ctx context.Context,
	directory *domain.Directory,
	parentID uuid.UUID,
) error {
	if parentID == directory.ID {
		return domain.ErrDirectoryCycle
	}

	parent, err := d.directoryRepo.Get(ctx, parentID)
	if err != nil {
		return err
	}
	if parent.GroupID != directory.GroupID {
		return domain.ErrDirectoryGroupMismatch
	}

	for ancestor := parent; ancestor.ParentID != nil; {
		if *ancestor.ParentID == directory.ID {
			return domain.ErrDirectoryCycle
		}
		ancestor, err = d.directoryRepo.Get(ctx, *ancestor.ParentID)
		if err != nil {
			return err
		}
	}
	return nil
}

// authorizeDirectory loads a directory and checks the principal is a member
// of its group. Non-members get ErrDirectoryNotFound.
func (d *DirectoryService) authorizeDirectory(
	ctx context.Context,
	principal, directoryID uuid.UUID,
) (*domain.Directory, error) {
	directory, err := d.directoryRepo.Get(ctx, directoryID)
	if err != nil {
		return nil, err
	}
	group, membership, err := d.loadGroup(ctx, principal, directory.GroupID)
	if err != nil {
		return nil, err
	}
	if !d.policy.CanViewGroup(principal, group, membership) {
		return nil, domain.ErrDirectoryNotFound
	}
	return directory, nil
}

func (d *DirectoryService) loadGroup(
	ctx context.Context,
	principal, groupID uuid.UUID,
) (*domain.Group, *domain.Membership, error) {
	group, err := d.groupRepo.Get(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	membership, err := membershipOrNil(ctx, d.membershipRepo, principal, groupID)
	if err != nil {
		return nil, nil, err
	}
	return group, membership, nil
}

// uuidPtrEqual compares two optional UUIDs, treating nil as equal only to nil.
func uuidPtrEqual(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
