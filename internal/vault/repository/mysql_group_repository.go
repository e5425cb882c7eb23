package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/passkeep/passkeep/internal/database"
	apperrors "github.com/passkeep/passkeep/internal/errors"
	vaultDomain "github.com/passkeep/passkeep/internal/vault/domain"
)

// MySQLGroupRepository implements Group persistence for MySQL databases.
type MySQLGroupRepository struct {
	db *sql.DB
}

// NewMySQLGroupRepository creates a new MySQL Group repository instance.
func NewMySQLGroupRepository(db *sql.DB) *MySQLGroupRepository {
	return &MySQLGroupRepository{db: db}
}

// Create inserts a new group into the MySQL database.
func (m *MySQLGroupRepository) Create(ctx context.Context, group *vaultDomain.Group) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO groups (id, name, description, owner_id, is_personal, wrapped_key, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		group.ID,
		group.Name,
		group.Description,
		group.OwnerID,
		group.IsPersonal,
		group.WrappedKey,
		group.CreatedAt,
		group.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create group")
	}
	return nil
}

// Get retrieves a group by its ID.
func (m *MySQLGroupRepository) Get(ctx context.Context, id uuid.UUID) (*vaultDomain.Group, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, name, description, owner_id, is_personal, wrapped_key, created_at, updated_at
			  FROM groups
			  WHERE id = ?`

	return m.scanGroup(querier.QueryRowContext(ctx, query, id))
}

// GetByOwnerAndName retrieves a group by its owner and name (unique pair).
func (m *MySQLGroupRepository) GetByOwnerAndName(
	ctx context.Context,
	ownerID uuid.UUID,
	name string,
) (*vaultDomain.Group, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, name, description, owner_id, is_personal, wrapped_key, created_at, updated_at
			  FROM groups
			  WHERE owner_id = ? AND name = ?`

	return m.scanGroup(querier.QueryRowContext(ctx, query, ownerID, name))
}

// Update persists group metadata changes. The wrapped master key is immutable
// and deliberately not part of the update.
func (m *MySQLGroupRepository) Update(ctx context.Context, group *vaultDomain.Group) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE groups
			  SET name = ?, description = ?, updated_at = ?
			  WHERE id = ?`

	_, err := querier.ExecContext(ctx, query, group.Name, group.Description, group.UpdatedAt, group.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update group")
	}
	return nil
}

// Delete removes a group. Memberships, directories, records and their audit
// rows cascade at the schema level.
func (m *MySQLGroupRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	_, err := querier.ExecContext(ctx, `DELETE FROM groups WHERE id = ?`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete group")
	}
	return nil
}

// ListAccessible returns all groups the user owns or is a member of, ordered by name.
func (m *MySQLGroupRepository) ListAccessible(
	ctx context.Context,
	userID uuid.UUID,
) ([]*vaultDomain.Group, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT DISTINCT g.id, g.name, g.description, g.owner_id, g.is_personal, g.wrapped_key, g.created_at, g.updated_at
			  FROM groups g
			  LEFT JOIN memberships m ON m.group_id = g.id
			  WHERE g.owner_id = ? OR m.user_id = ?
			  ORDER BY g.name`

	rows, err := querier.QueryContext(ctx, query, userID, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list accessible groups")
	}
	defer rows.Close()

	var groups []*vaultDomain.Group
	for rows.Next() {
		var group vaultDomain.Group
		if err := rows.Scan(
			&group.ID,
			&group.Name,
			&group.Description,
			&group.OwnerID,
			&group.IsPersonal,
			&group.WrappedKey,
			&group.CreatedAt,
			&group.UpdatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan group")
		}
		groups = append(groups, &group)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate groups")
	}

	return groups, nil
}

func (m *MySQLGroupRepository) scanGroup(row *sql.Row) (*vaultDomain.Group, error) {
	var group vaultDomain.Group
	err := row.Scan(
		&group.ID,
		&group.Name,
		&group.Description,
		&group.OwnerID,
		&group.IsPersonal,
		&group.WrappedKey,
		&group.CreatedAt,
		&group.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, vaultDomain.ErrGroupNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get group")
	}

	return &group, nil
}
