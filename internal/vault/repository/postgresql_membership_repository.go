package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/passkeep/passkeep/internal/database"
	apperrors "github.com/passkeep/passkeep/internal/errors"
	vaultDomain "github.com/passkeep/passkeep/internal/vault/domain"
)

// PostgreSQLMembershipRepository implements Membership persistence for PostgreSQL databases.
type PostgreSQLMembershipRepository struct {
	db *sql.DB
}

// NewPostgreSQLMembershipRepository creates a new PostgreSQL Membership repository instance.
func NewPostgreSQLMembershipRepository(db *sql.DB) *PostgreSQLMembershipRepository {
	return &PostgreSQLMembershipRepository{db: db}
}

// Create inserts a new membership into the PostgreSQL database.
func (p *PostgreSQLMembershipRepository) Create(ctx context.Context, membership *vaultDomain.Membership) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO memberships (id, user_id, group_id, role, added_by, joined_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`

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
func (p *PostgreSQLMembershipRepository) GetByUserAndGroup(
	ctx context.Context,
	userID, groupID uuid.UUID,
) (*vaultDomain.Membership, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, user_id, group_id, role, added_by, joined_at
			  FROM memberships
			  WHERE user_id = $1 AND group_id = $2`

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
func (p *PostgreSQLMembershipRepository) UpdateRole(
	ctx context.Context,
	id uuid.UUID,
	role vaultDomain.Role,
) error {
	querier := database.GetTx(ctx, p.db)

	_, err := querier.ExecContext(ctx, `UPDATE memberships SET role = $1 WHERE id = $2`, role, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to update membership role")
	}
	return nil
}

// Delete removes a membership.
func (p *PostgreSQLMembershipRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	_, err := querier.ExecContext(ctx, `DELETE FROM memberships WHERE id = $1`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete membership")
	}
	return nil
}

// ListByGroup returns all memberships in a group, ordered by join time.
func (p *PostgreSQLMembershipRepository) ListByGroup(
	ctx context.Context,
	groupID uuid.UUID,
) ([]*vaultDomain.Membership, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, user_id, group_id, role, added_by, joined_at
			  FROM memberships
			  WHERE group_id = $1
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
