package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/passkeep/passkeep/internal/errors"
	"github.com/passkeep/passkeep/internal/vault/domain"
)

func TestGroupService_CreateGroup(t *testing.T) {
	ctx := context.Background()

	t.Run("creates group with owner membership and wrapped key", func(t *testing.T) {
		f := newFixture()
		owner := uuid.Must(uuid.NewV7())

		group, err := f.groups.CreateGroup(ctx, owner, domain.GroupInput{
			Name:        "Engineering",
			Description: "Shared credentials",
		})
		require.NoError(t, err)
		assert.Equal(t, "Engineering", group.Name)
		assert.Equal(t, owner, group.OwnerID)
		assert.False(t, group.IsPersonal)
		assert.NotEmpty(t, group.WrappedKey)

		memberships, err := f.memberships.ListMembers(ctx, owner, group.ID)
		require.NoError(t, err)
		require.Len(t, memberships, 1)
		assert.Equal(t, owner, memberships[0].UserID)
		assert.Equal(t, domain.RoleOwner, memberships[0].Role)
	})

	t.Run("each group gets its own wrapped key", func(t *testing.T) {
		f := newFixture()
		owner := uuid.Must(uuid.NewV7())

		group1, err := f.groups.CreateGroup(ctx, owner, domain.GroupInput{Name: "One"})
		require.NoError(t, err)
		group2, err := f.groups.CreateGroup(ctx, owner, domain.GroupInput{Name: "Two"})
		require.NoError(t, err)

		assert.NotEqual(t, group1.WrappedKey, group2.WrappedKey)
	})

	t.Run("duplicate name for the same owner", func(t *testing.T) {
		f := newFixture()
		owner := uuid.Must(uuid.NewV7())

		_, err := f.groups.CreateGroup(ctx, owner, domain.GroupInput{Name: "Engineering"})
		require.NoError(t, err)

		_, err = f.groups.CreateGroup(ctx, owner, domain.GroupInput{Name: "Engineering"})
		assert.ErrorIs(t, err, domain.ErrDuplicateGroupName)
	})

	t.Run("same name under different owners is fine", func(t *testing.T) {
		f := newFixture()

		_, err := f.groups.CreateGroup(ctx, uuid.Must(uuid.NewV7()), domain.GroupInput{Name: "Engineering"})
		require.NoError(t, err)
		_, err = f.groups.CreateGroup(ctx, uuid.Must(uuid.NewV7()), domain.GroupInput{Name: "Engineering"})
		assert.NoError(t, err)
	})

	t.Run("invalid input", func(t *testing.T) {
		f := newFixture()

		_, err := f.groups.CreateGroup(ctx, uuid.Must(uuid.NewV7()), domain.GroupInput{Name: "  "})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestGroupService_EnsurePersonalGroup(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the personal group on first use", func(t *testing.T) {
		f := newFixture()
		owner := uuid.Must(uuid.NewV7())

		group, err := f.groups.EnsurePersonalGroup(ctx, owner)
		require.NoError(t, err)
		assert.Equal(t, PersonalGroupName, group.Name)
		assert.True(t, group.IsPersonal)
		assert.Equal(t, owner, group.OwnerID)
	})

	t.Run("is idempotent", func(t *testing.T) {
		f := newFixture()
		owner := uuid.Must(uuid.NewV7())

		group1, err := f.groups.EnsurePersonalGroup(ctx, owner)
		require.NoError(t, err)
		group2, err := f.groups.EnsurePersonalGroup(ctx, owner)
		require.NoError(t, err)

		assert.Equal(t, group1.ID, group2.ID)
	})
}

func TestGroupService_GetGroup(t *testing.T) {
	ctx := context.Background()

	t.Run("owner and members can view", func(t *testing.T) {
		f := newFixture()
		owner := uuid.Must(uuid.NewV7())
		member := uuid.Must(uuid.NewV7())

		group, err := f.groups.CreateGroup(ctx, owner, domain.GroupInput{Name: "Engineering"})
		require.NoError(t, err)
		_, err = f.memberships.AddMember(ctx, owner, group.ID, member, domain.RoleMember)
		require.NoError(t, err)

		got, err := f.groups.GetGroup(ctx, owner, group.ID)
		require.NoError(t, err)
		assert.Equal(t, group.ID, got.ID)

		got, err = f.groups.GetGroup(ctx, member, group.ID)
		require.NoError(t, err)
		assert.Equal(t, group.ID, got.ID)
	})

	t.Run("non-member gets not found", func(t *testing.T) {
		f := newFixture()
		owner := uuid.Must(uuid.NewV7())
		outsider := uuid.Must(uuid.NewV7())

		group, err := f.groups.CreateGroup(ctx, owner, domain.GroupInput{Name: "Engineering"})
		require.NoError(t, err)

		_, err = f.groups.GetGroup(ctx, outsider, group.ID)
		assert.ErrorIs(t, err, domain.ErrGroupNotFound)
	})

	t.Run("unknown group", func(t *testing.T) {
		f := newFixture()

		_, err := f.groups.GetGroup(ctx, uuid.Must(uuid.NewV7()), uuid.Must(uuid.NewV7()))
		assert.ErrorIs(t, err, domain.ErrGroupNotFound)
	})
}

func TestGroupService_UpdateGroup(t *testing.T) {
	ctx := context.Background()

	t.Run("owner renames the group", func(t *testing.T) {
		f := newFixture()
		owner := uuid.Must(uuid.NewV7())

		group, err := f.groups.CreateGroup(ctx, owner, domain.GroupInput{Name: "Engineering"})
		require.NoError(t, err)

		updated, err := f.groups.UpdateGroup(ctx, owner, group.ID, domain.GroupInput{
			Name:        "Platform",
			Description: "Renamed",
		})
		require.NoError(t, err)
		assert.Equal(t, "Platform", updated.Name)
		assert.Equal(t, "Renamed", updated.Description)
		assert.Equal(t, group.WrappedKey, updated.WrappedKey)
	})

	t.Run("member cannot edit the group", func(t *testing.T) {
		f := newFixture()
		owner := uuid.Must(uuid.NewV7())
		member := uuid.Must(uuid.NewV7())

		group, err := f.groups.CreateGroup(ctx, owner, domain.GroupInput{Name: "Engineering"})
		require.NoError(t, err)
		_, err = f.memberships.AddMember(ctx, owner, group.ID, member, domain.RoleMember)
		require.NoError(t, err)

		_, err = f.groups.UpdateGroup(ctx, member, group.ID, domain.GroupInput{Name: "Hijacked"})
		assert.ErrorIs(t, err, domain.ErrAccessDenied)
	})

	t.Run("rename to an existing name", func(t *testing.T) {
		f := newFixture()
		owner := uuid.Must(uuid.NewV7())

		_, err := f.groups.CreateGroup(ctx, owner, domain.GroupInput{Name: "One"})
		require.NoError(t, err)
		group2, err := f.groups.CreateGroup(ctx, owner, domain.GroupInput{Name: "Two"})
		require.NoError(t, err)

		_, err = f.groups.UpdateGroup(ctx, owner, group2.ID, domain.GroupInput{Name: "One"})
		assert.ErrorIs(t, err, domain.ErrDuplicateGroupName)
	})

	t.Run("personal group cannot be renamed", func(t *testing.T) {
		f := newFixture()
		owner := uuid.Must(uuid.NewV7())

		group, err := f.groups.EnsurePersonalGroup(ctx, owner)
		require.NoError(t, err)

		_, err = f.groups.UpdateGroup(ctx, owner, group.ID, domain.GroupInput{Name: "Not personal"})
		assert.ErrorIs(t, err, domain.ErrPersonalGroup)
	})

	t.Run("personal group description can change", func(t *testing.T) {
		f := newFixture()
		owner := uuid.Must(uuid.NewV7())

		group, err := f.groups.EnsurePersonalGroup(ctx, owner)
		require.NoError(t, err)

		updated, err := f.groups.UpdateGroup(ctx, owner, group.ID, domain.GroupInput{
			Name:        group.Name,
			Description: "My private vault",
		})
		require.NoError(t, err)
		assert.Equal(t, "My private vault", updated.Description)
	})
}

func TestGroupService_DeleteGroup(t *testing.T) {
	ctx := context.Background()

	t.Run("owner deletes the group", func(t *testing.T) {
		f := newFixture()
		owner := uuid.Must(uuid.NewV7())

		group, err := f.groups.CreateGroup(ctx, owner, domain.GroupInput{Name: "Engineering"})
		require.NoError(t, err)

		require.NoError(t, f.groups.DeleteGroup(ctx, owner, group.ID))

		_, err = f.groups.GetGroup(ctx, owner, group.ID)
		assert.ErrorIs(t, err, domain.ErrGroupNotFound)
	})

	t.Run("admin cannot delete the group", func(t *testing.T) {
		f := newFixture()
		owner := uuid.Must(uuid.NewV7())
		admin := uuid.Must(uuid.NewV7())

		group, err := f.groups.CreateGroup(ctx, owner, domain.GroupInput{Name: "Engineering"})
		require.NoError(t, err)
		_, err = f.memberships.AddMember(ctx, owner, group.ID, admin, domain.RoleAdmin)
		require.NoError(t, err)

		err = f.groups.DeleteGroup(ctx, admin, group.ID)
		assert.ErrorIs(t, err, domain.ErrAccessDenied)
	})

	t.Run("personal group cannot be deleted", func(t *testing.T) {
		f := newFixture()
		owner := uuid.Must(uuid.NewV7())

		group, err := f.groups.EnsurePersonalGroup(ctx, owner)
		require.NoError(t, err)

		err = f.groups.DeleteGroup(ctx, owner, group.ID)
		assert.ErrorIs(t, err, domain.ErrPersonalGroup)
	})
}

func TestGroupService_ListGroups(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	owner := uuid.Must(uuid.NewV7())
	member := uuid.Must(uuid.NewV7())

	owned, err := f.groups.CreateGroup(ctx, owner, domain.GroupInput{Name: "Owned"})
	require.NoError(t, err)
	shared, err := f.groups.CreateGroup(ctx, member, domain.GroupInput{Name: "Shared"})
	require.NoError(t, err)
	_, err = f.memberships.AddMember(ctx, member, shared.ID, owner, domain.RoleMember)
	require.NoError(t, err)
	// A group the owner has nothing to do with.
	_, err = f.groups.CreateGroup(ctx, uuid.Must(uuid.NewV7()), domain.GroupInput{Name: "Other"})
	require.NoError(t, err)

	groups, err := f.groups.ListGroups(ctx, owner)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	ids := []uuid.UUID{groups[0].ID, groups[1].ID}
	assert.Contains(t, ids, owned.ID)
	assert.Contains(t, ids, shared.ID)
}
