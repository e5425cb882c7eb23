// Package repository implements data persistence for the vault entities.
// Repositories support both PostgreSQL and MySQL; writes run against the
// transaction carried in the context by database.TxManager when present.
package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/passkeep/passkeep/internal/database"
	apperrors "github.com/passkeep/passkeep/internal/errors"
	vaultDomain "github.com/passkeep/passkeep/internal/vault/domain"
)

// PostgreSQLGroupRepository implements Group persistence for PostgreSQL databases.
type PostgreSQLGroupRepository struct {
	db *sql.DB
}

// NewPostgreSQLGroupRepository creates a new PostgreSQL Group repository instance.
func NewPostgreSQLGroupRepository(db *sql.DB) *PostgreSQLGroupRepository {
	return &PostgreSQLGroupRepository{db: db}
}

// Create inserts a new group into the PostgreSQL database.
func (p *PostgreSQLGroupRepository) Create(ctx context.Context, group *vaultDomain.Group) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO groups (id, name, description, owner_id, is_personal, wrapped_key, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

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
func (p *PostgreSQLGroupRepository) Get(ctx context.Context, id uuid.UUID) (*vaultDomain.Group, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, description, owner_id, is_personal, wrapped_key, created_at, updated_at
			  FROM groups
			  WHERE id = $1`

	return p.scanGroup(querier.QueryRowContext(ctx, query, id))
}

// GetByOwnerAndName retrieves a group by its owner and name (unique pair).
func (p *PostgreSQLGroupRepository) GetByOwnerAndName(
	ctx context.Context,
	ownerID uuid.UUID,
	name string,
) (*vaultDomain.Group, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, description, owner_id, is_personal, wrapped_key, created_at, updated_at
			  FROM groups
			  WHERE owner_id = $1 AND name = $2`

	return p.scanGroup(querier.QueryRowContext(ctx, query, ownerID, name))
}

// Update persists group metadata changes. The wrapped master key is immutable
// and deliberately not part of the update.
func (p *PostgreSQLGroupRepository) Update(ctx context.Context, group *vaultDomain.Group) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE groups
			  SET name = $1, description = $2, updated_at = $3
			  WHERE id = $4`

	_, err := querier.ExecContext(ctx, query, group.Name, group.Description, group.UpdatedAt, group.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update group")
	}
	return nil
}

// Delete removes a group. Memberships, directories, records and their audit
// rows cascade at the schema level.
func (p *PostgreSQLGroupRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	_, err := querier.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete group")
	}
	return nil
}

// ListAccessible returns all groups the user owns or is a member of, ordered by name.
func (p *PostgreSQLGroupRepository) ListAccessible(
	ctx context.Context,
	userID uuid.UUID,
) ([]*vaultDomain.Group, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT DISTINCT g.id, g.name, g.description, g.owner_id, g.is_personal, g.wrapped_key, g.created_at, g.updated_at
			  FROM groups g
			  LEFT JOIN memberships m ON m.group_id = g.id
			  WHERE g.owner_id = $1 OR m.user_id = $1
			  ORDER BY g.name`

	rows, err := querier.QueryContext(ctx, query, userID)
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

func (p *PostgreSQLGroupRepository) scanGroup(row *sql.Row) (*vaultDomain.Group, error) {
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
