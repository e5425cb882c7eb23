package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/passkeep/passkeep/internal/database"
	apperrors "github.com/passkeep/passkeep/internal/errors"
	vaultDomain "github.com/passkeep/passkeep/internal/vault/domain"
)

// MySQLRecordRepository implements Record persistence for MySQL databases.
type MySQLRecordRepository struct {
	db *sql.DB
}

// NewMySQLRecordRepository creates a new MySQL Record repository instance.
func NewMySQLRecordRepository(db *sql.DB) *MySQLRecordRepository {
	return &MySQLRecordRepository{db: db}
}

// Create inserts a new record into the MySQL database.
func (m *MySQLRecordRepository) Create(ctx context.Context, record *vaultDomain.Record) error {
	querier := database.GetTx(ctx, m.db)

	customFields, tags, err := encodeRecordColumns(record)
	if err != nil {
		return err
	}

	query := `INSERT INTO records (` + recordColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		record.ID,
		record.Title,
		record.Username,
		record.EncryptedPayload,
		record.URL,
		record.Notes,
		customFields,
		tags,
		record.GroupID,
		record.DirectoryID,
		record.CreatedBy,
		record.Priority,
		record.IsFavorite,
		record.LastAccessed,
		record.AccessCount,
		record.ExpiresAt,
		record.IsDeleted,
		record.DeletedAt,
		record.DeletedBy,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create record")
	}
	return nil
}

// Get retrieves a live record by its ID. Soft-deleted records are not visible
// through this method, use GetAny for restore flows.
func (m *MySQLRecordRepository) Get(ctx context.Context, id uuid.UUID) (*vaultDomain.Record, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + recordColumns + ` FROM records WHERE id = ? AND is_deleted = FALSE`

	return scanRecordRow(querier.QueryRowContext(ctx, query, id))
}

// GetAny retrieves a record by its ID regardless of its deletion state.
func (m *MySQLRecordRepository) GetAny(ctx context.Context, id uuid.UUID) (*vaultDomain.Record, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + recordColumns + ` FROM records WHERE id = ?`

	return scanRecordRow(querier.QueryRowContext(ctx, query, id))
}

// Update persists record changes, including tombstone transitions.
func (m *MySQLRecordRepository) Update(ctx context.Context, record *vaultDomain.Record) error {
	querier := database.GetTx(ctx, m.db)

	customFields, tags, err := encodeRecordColumns(record)
	if err != nil {
		return err
	}

	query := `UPDATE records
			  SET title = ?, username = ?, encrypted_payload = ?, url = ?, notes = ?,
				  custom_fields = ?, tags = ?, directory_id = ?, priority = ?,
				  is_favorite = ?, expires_at = ?, is_deleted = ?, deleted_at = ?,
				  deleted_by = ?, updated_at = ?
			  WHERE id = ?`

	_, err = querier.ExecContext(
		ctx,
		query,
		record.Title,
		record.Username,
		record.EncryptedPayload,
		record.URL,
		record.Notes,
		customFields,
		tags,
		record.DirectoryID,
		record.Priority,
		record.IsFavorite,
		record.ExpiresAt,
		record.IsDeleted,
		record.DeletedAt,
		record.DeletedBy,
		record.UpdatedAt,
		record.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update record")
	}
	return nil
}

// Delete permanently removes a record and its audit rows via schema cascade.
func (m *MySQLRecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	_, err := querier.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete record")
	}
	return nil
}

// TouchAccess records a successful secret read by bumping the access counter
// atomically and stamping the access time.
func (m *MySQLRecordRepository) TouchAccess(ctx context.Context, id uuid.UUID, accessedAt time.Time) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE records SET last_accessed = ?, access_count = access_count + 1 WHERE id = ?`

	_, err := querier.ExecContext(ctx, query, accessedAt, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to record access")
	}
	return nil
}

// Search returns live records in the given groups matching the filter, most
// recently updated first.
func (m *MySQLRecordRepository) Search(
	ctx context.Context,
	groupIDs []uuid.UUID,
	filter vaultDomain.SearchFilter,
) ([]*vaultDomain.Record, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}

	querier := database.GetTx(ctx, m.db)

	placeholders := make([]string, len(groupIDs))
	args := make([]any, 0, len(groupIDs)+8)
	for i, id := range groupIDs {
		placeholders[i] = "?"
		args = append(args, id)
	}
	conditions := []string{
		"is_deleted = FALSE",
		"group_id IN (" + strings.Join(placeholders, ", ") + ")",
	}

	if filter.Query != "" {
		pattern := "%" + strings.ToLower(filter.Query) + "%"
		args = append(args, pattern, pattern, pattern, pattern)
		conditions = append(conditions,
			"(LOWER(title) LIKE ? OR LOWER(username) LIKE ? OR LOWER(url) LIKE ? OR LOWER(notes) LIKE ?)")
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		conditions = append(conditions, "priority = ?")
	}
	if filter.IsFavorite != nil {
		args = append(args, *filter.IsFavorite)
		conditions = append(conditions, "is_favorite = ?")
	}
	for _, tag := range filter.Tags {
		// Tags are stored as a JSON array, so matching the quoted form keeps
		// the comparison exact.
		args = append(args, `%"`+tag+`"%`)
		conditions = append(conditions, "CAST(tags AS CHAR) LIKE ?")
	}
	if filter.ExpiresSoon {
		args = append(args, time.Now().UTC().AddDate(0, 0, vaultDomain.ExpiresSoonDays))
		conditions = append(conditions, "expires_at IS NOT NULL AND expires_at <= ?")
	}

	query := `SELECT ` + recordColumns + ` FROM records WHERE ` +
		strings.Join(conditions, " AND ") + ` ORDER BY updated_at DESC`

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to search records")
	}
	defer rows.Close()

	return scanRecordRows(rows)
}

// ListDeletedByGroup returns soft-deleted records in a group, most recently
// deleted first.
func (m *MySQLRecordRepository) ListDeletedByGroup(
	ctx context.Context,
	groupID uuid.UUID,
) ([]*vaultDomain.Record, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + recordColumns + `
			  FROM records
			  WHERE group_id = ? AND is_deleted = TRUE
			  ORDER BY deleted_at DESC`

	rows, err := querier.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list deleted records")
	}
	defer rows.Close()

	return scanRecordRows(rows)
}
