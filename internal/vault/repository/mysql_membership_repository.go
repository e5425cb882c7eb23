package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/passkeep/passkeep/internal/database"
	apperrors "github.com/passkeep/passkeep/internal/errors"
	vaultDomain "github.com/passkeep/passkeep/internal/vault/domain"
)

// MySQLMembershipRepository implements Membership persistence for MySQL databases.
type MySQLMembershipRepository struct {
	db *sql.DB
}

// NewMySQLMembershipRepository creates a new MySQL Membership repository instance.
func NewMySQLMembershipRepository(db *sql.DB) *MySQLMembershipRepository {
	return &MySQLMembershipRepository{db: db}
}

// Create inserts a new membership into the MySQL database.
func (m *MySQLMembershipRepository) Create(ctx context.Context, membership *vaultDomain.Membership) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO memberships (id, user_id, group_id, role, added_by, joined_at)
			  VALUES (?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		membership.ID,
		membership.UserID,
		membership.GroupID,
		membership.Role,
		membership.AddedBy,
		membership.JoinedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create membership")
	}
	return nil
}

// GetByUserAndGroup retrieves the membership of a user in a group.
func (m *MySQLMembershipRepository) GetByUserAndGroup(
	ctx context.Context,
	userID, groupID uuid.UUID,
) (*vaultDomain.Membership, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, user_id, group_id, role, added_by, joined_at
			  FROM memberships
			  WHERE user_id = ? AND group_id = ?`

	var membership vaultDomain.Membership
	err := querier.QueryRowContext(ctx, query, userID, groupID).Scan(
		&membership.ID,
		&membership.UserID,
		&membership.GroupID,
		&membership.Role,
		&membership.AddedBy,
		&membership.JoinedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, vaultDomain.ErrMembershipNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get membership")
	}

	return &membership, nil
}

// UpdateRole changes the role of an existing membership.
func (m *MySQLMembershipRepository) UpdateRole(
	ctx context.Context,
	id uuid.UUID,
	role vaultDomain.Role,
) error {
	querier := database.GetTx(ctx, m.db)

	_, err := querier.ExecContext(ctx, `UPDATE memberships SET role = ? WHERE id = ?`, role, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to update membership role")
	}
	return nil
}

// Delete removes a membership.
func (m *MySQLMembershipRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	_, err := querier.ExecContext(ctx, `DELETE FROM memberships WHERE id = ?`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete membership")
	}
	return nil
}

// ListByGroup returns all memberships in a group, ordered by join time.
func (m *MySQLMembershipRepository) ListByGroup(
	ctx context.Context,
	groupID uuid.UUID,
) ([]*vaultDomain.Membership, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, user_id, group_id, role, added_by, joined_at
			  FROM memberships
			  WHERE group_id = ?
			  ORDER BY joined_at`

	rows, err := querier.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list memberships")
	}
	defer rows.Close()

	var memberships []*vaultDomain.Membership
	for rows.Next() {
		var membership vaultDomain.Membership
		if err := rows.Scan(
			&membership.ID,
			&membership.UserID,
			&membership.GroupID,
			&membership.Role,
			&membership.AddedBy,
			&membership.JoinedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan membership")
		}
		memberships = append(memberships, &membership)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate memberships")
	}

	return memberships, nil
}
