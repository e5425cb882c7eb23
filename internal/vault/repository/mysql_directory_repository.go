package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/passkeep/passkeep/internal/database"
	apperrors "github.com/passkeep/passkeep/internal/errors"
	vaultDomain "github.com/passkeep/passkeep/internal/vault/domain"
)

// MySQLDirectoryRepository implements Directory persistence for MySQL databases.
type MySQLDirectoryRepository struct {
	db *sql.DB
}

// NewMySQLDirectoryRepository creates a new MySQL Directory repository instance.
func NewMySQLDirectoryRepository(db *sql.DB) *MySQLDirectoryRepository {
	return &MySQLDirectoryRepository{db: db}
}

// Create inserts a new directory into the MySQL database.
func (m *MySQLDirectoryRepository) Create(ctx context.Context, directory *vaultDomain.Directory) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO directories (id, name, description, parent_id, group_id, created_by, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

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
func (m *MySQLDirectoryRepository) Get(ctx context.Context, id uuid.UUID) (*vaultDomain.Directory, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, name, description, parent_id, group_id, created_by, created_at, updated_at
			  FROM directories
			  WHERE id = ?`

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
func (m *MySQLDirectoryRepository) ExistsSibling(
	ctx context.Context,
	groupID uuid.UUID,
	parentID *uuid.UUID,
	name string,
) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT EXISTS (
				SELECT 1 FROM directories
				WHERE group_id = ? AND name = ? AND parent_id <=> ?
			  )`

	var exists bool
	err := querier.QueryRowContext(ctx, query, groupID, name, parentID).Scan(&exists)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to check directory name")
	}
	return exists, nil
}

// Update persists directory changes, including moves to a new parent.
func (m *MySQLDirectoryRepository) Update(ctx context.Context, directory *vaultDomain.Directory) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE directories
			  SET name = ?, description = ?, parent_id = ?, updated_at = ?
			  WHERE id = ?`

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
func (m *MySQLDirectoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	_, err := querier.ExecContext(ctx, `DELETE FROM directories WHERE id = ?`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete directory")
	}
	return nil
}

// ListByGroup returns all directories in a group, ordered by name.
func (m *MySQLDirectoryRepository) ListByGroup(
	ctx context.Context,
	groupID uuid.UUID,
) ([]*vaultDomain.Directory, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, name, description, parent_id, group_id, created_by, created_at, updated_at
			  FROM directories
			  WHERE group_id = ?
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
