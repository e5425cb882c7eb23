package usecase

import (
	"context"

	"github.com/google/uuid"

	apperrors "github.com/passkeep/passkeep/internal/errors"
	"github.com/passkeep/passkeep/internal/vault/domain"
)

// membershipOrNil loads the principal's membership in a group, treating a
// missing membership as nil rather than an error. Access policies take nil to
// mean "not a member".
func membershipOrNil(
	ctx context.Context,
	repo MembershipRepository,
	userID, groupID uuid.UUID,
) (*domain.Membership, error) {
	membership, err := repo.GetByUserAndGroup(ctx, userID, groupID)
	if err != nil {
		if apperrors.Is(err, domain.ErrMembershipNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return membership, nil
}
