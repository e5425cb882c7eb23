package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/passkeep/passkeep/internal/database"
	apperrors "github.com/passkeep/passkeep/internal/errors"
	vaultDomain "github.com/passkeep/passkeep/internal/vault/domain"
)

// PostgreSQLDirectoryRepository implements Directory persistence for PostgreSQL databases.
type PostgreSQLDirectoryRepository struct {
	db *sql.DB
}

// NewPostgreSQLDirectoryRepository creates a new PostgreSQL Directory repository instance.
func NewPostgreSQLDirectoryRepository(db *sql.DB) *PostgreSQLDirectoryRepository {
	return &PostgreSQLDirectoryRepository{db: db}
}

// Create inserts a new directory into the PostgreSQL database.
func (p *PostgreSQLDirectoryRepository) Create(ctx context.Context, directory *vaultDomain.Directory) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO directories (id, name, description, parent_id, group_id, created_by, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := querier.ExecContext(
		ctx,
		query,
		directory.ID,
		directory.Name,
		directory.Description,
		directory.ParentID,
		directory.GroupID,
		directory.CreatedBy,
		directory.CreatedAt,
		directory.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create directory")
	}
	return nil
}

// Get retrieves a directory by its ID.
func (p *PostgreSQLDirectoryRepository) Get(ctx context.Context, id uuid.UUID) (*vaultDomain.Directory, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, description, parent_id, group_id, created_by, created_at, updated_at
			  FROM directories
			  WHERE id = $1`

	var directory vaultDomain.Directory
	err := querier.QueryRowContext(ctx, query, id).Scan(
		&directory.ID,
		&directory.Name,
		&directory.Description,
		&directory.ParentID,
		&directory.GroupID,
		&directory.CreatedBy,
		&directory.CreatedAt,
		&directory.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, vaultDomain.ErrDirectoryNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get directory")
	}

	return &directory, nil
}

// ExistsSibling reports whether a directory with the given name already exists
// under the same parent in the same group. A nil parent matches root-level
// directories.
func (p *PostgreSQLDirectoryRepository) ExistsSibling(
	ctx context.Context,
	groupID uuid.UUID,
	parentID *uuid.UUID,
	name string,
) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT EXISTS (
				SELECT 1 FROM directories
				WHERE group_id = $1 AND name = $2 AND parent_id IS NOT DISTINCT FROM $3
			  )`

	var exists bool
	err := querier.QueryRowContext(ctx, query, groupID, name, parentID).Scan(&exists)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to check directory name")
	}
	return exists, nil
}

// Update persists directory changes, including moves to a new parent.
func (p *PostgreSQLDirectoryRepository) Update(ctx context.Context, directory *vaultDomain.Directory) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE directories
			  SET name = $1, description = $2, parent_id = $3, updated_at = $4
			  WHERE id = $5`

	_, err := querier.ExecContext(
		ctx,
		query,
		directory.Name,
		directory.Description,
		directory.ParentID,
		directory.UpdatedAt,
		directory.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update directory")
	}
	return nil
}

// Delete removes a directory. Child directories cascade and records in the
// directory fall back to the group root at the schema level.
func (p *PostgreSQLDirectoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	_, err := querier.ExecContext(ctx, `DELETE FROM directories WHERE id = $1`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete directory")
	}
	return nil
}

// ListByGroup returns all directories in a group, ordered by name.
func (p *PostgreSQLDirectoryRepository) ListByGroup(
	ctx context.Context,
	groupID uuid.UUID,
) ([]*vaultDomain.Directory, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, description, parent_id, group_id, created_by, created_at, updated_at
			  FROM directories
			  WHERE group_id = $1
			  ORDER BY name`

	rows, err := querier.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list directories")
	}
	defer rows.Close()

	var directories []*vaultDomain.Directory
	for rows.Next() {
		var directory vaultDomain.Directory
		if err := rows.Scan(
			&directory.ID,
			&directory.Name,
			&directory.Description,
			&directory.ParentID,
			&directory.GroupID,
			&directory.CreatedBy,
			&directory.CreatedAt,
			&directory.UpdatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan directory")
		}
		directories = append(directories, &directory)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate directories")
	}

	return directories, nil
}
