package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/passkeep/passkeep/internal/database"
	apperrors "github.com/passkeep/passkeep/internal/errors"
	vaultDomain "github.com/passkeep/passkeep/internal/vault/domain"
)

const recordColumns = `id, title, username, encrypted_payload, url, notes, custom_fields, tags,
	group_id, directory_id, created_by, priority, is_favorite, last_accessed, access_count,
	expires_at, is_deleted, deleted_at, deleted_by, created_at, updated_at`

// PostgreSQLRecordRepository implements Record persistence for PostgreSQL databases.
type PostgreSQLRecordRepository struct {
	db *sql.DB
}

// NewPostgreSQLRecordRepository creates a new PostgreSQL Record repository instance.
func NewPostgreSQLRecordRepository(db *sql.DB) *PostgreSQLRecordRepository {
	return &PostgreSQLRecordRepository{db: db}
}

// Create inserts a new record into the PostgreSQL database.
func (p *PostgreSQLRecordRepository) Create(ctx context.Context, record *vaultDomain.Record) error {
	querier := database.GetTx(ctx, p.db)

	customFields, tags, err := encodeRecordColumns(record)
	if err != nil {
		return err
	}

	query := `INSERT INTO records (` + recordColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`

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
func (p *PostgreSQLRecordRepository) Get(ctx context.Context, id uuid.UUID) (*vaultDomain.Record, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + recordColumns + ` FROM records WHERE id = $1 AND is_deleted = FALSE`

	return scanRecordRow(querier.QueryRowContext(ctx, query, id))
}

// GetAny retrieves a record by its ID regardless of its deletion state.
func (p *PostgreSQLRecordRepository) GetAny(ctx context.Context, id uuid.UUID) (*vaultDomain.Record, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + recordColumns + ` FROM records WHERE id = $1`

	return scanRecordRow(querier.QueryRowContext(ctx, query, id))
}

// Update persists record changes, including tombstone transitions.
func (p *PostgreSQLRecordRepository) Update(ctx context.Context, record *vaultDomain.Record) error {
	querier := database.GetTx(ctx, p.db)

	customFields, tags, err := encodeRecordColumns(record)
	if err != nil {
		return err
	}

	query := `UPDATE records
			  SET title = $1, username = $2, encrypted_payload = $3, url = $4, notes = $5,
				  custom_fields = $6, tags = $7, directory_id = $8, priority = $9,
				  is_favorite = $10, expires_at = $11, is_deleted = $12, deleted_at = $13,
				  deleted_by = $14, updated_at = $15
			  WHERE id = $16`

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
func (p *PostgreSQLRecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	_, err := querier.ExecContext(ctx, `DELETE FROM records WHERE id = $1`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete record")
	}
	return nil
}

// TouchAccess records a successful secret read by bumping the access counter
// atomically and stamping the access time.
func (p *PostgreSQLRecordRepository) TouchAccess(ctx context.Context, id uuid.UUID, accessedAt time.Time) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE records SET last_accessed = $1, access_count = access_count + 1 WHERE id = $2`

	_, err := querier.ExecContext(ctx, query, accessedAt, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to record access")
	}
	return nil
}

// Search returns live records in the given groups matching the filter, most
// recently updated first.
func (p *PostgreSQLRecordRepository) Search(
	ctx context.Context,
	groupIDs []uuid.UUID,
	filter vaultDomain.SearchFilter,
) ([]*vaultDomain.Record, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}

	querier := database.GetTx(ctx, p.db)

	ids := make([]string, len(groupIDs))
	for i, id := range groupIDs {
		ids[i] = id.String()
	}
	conditions := []string{"is_deleted = FALSE", "group_id = ANY($1::uuid[])"}
	args := []any{pq.Array(ids)}

	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(title ILIKE $%d OR username ILIKE $%d OR url ILIKE $%d OR notes ILIKE $%d)", n, n, n, n,
		))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		conditions = append(conditions, fmt.Sprintf("priority = $%d", len(args)))
	}
	if filter.IsFavorite != nil {
		args = append(args, *filter.IsFavorite)
		conditions = append(conditions, fmt.Sprintf("is_favorite = $%d", len(args)))
	}
	for _, tag := range filter.Tags {
		// Tags are stored as a JSON array, so matching the quoted form keeps
		// the comparison exact.
		args = append(args, `%"`+tag+`"%`)
		conditions = append(conditions, fmt.Sprintf("tags::text LIKE $%d", len(args)))
	}
	if filter.ExpiresSoon {
		args = append(args, time.Now().UTC().AddDate(0, 0, vaultDomain.ExpiresSoonDays))
		conditions = append(conditions, fmt.Sprintf("expires_at IS NOT NULL AND expires_at <= $%d", len(args)))
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
func (p *PostgreSQLRecordRepository) ListDeletedByGroup(
	ctx context.Context,
	groupID uuid.UUID,
) ([]*vaultDomain.Record, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + recordColumns + `
			  FROM records
			  WHERE group_id = $1 AND is_deleted = TRUE
			  ORDER BY deleted_at DESC`

	rows, err := querier.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list deleted records")
	}
	defer rows.Close()

	return scanRecordRows(rows)
}

func encodeRecordColumns(record *vaultDomain.Record) (customFields, tags []byte, err error) {
	fields := record.CustomFields
	if fields == nil {
		fields = map[string]string{}
	}
	customFields, err = encodeJSON(fields)
	if err != nil {
		return nil, nil, err
	}

	tagList := record.Tags
	if tagList == nil {
		tagList = []string{}
	}
	tags, err = encodeJSON(tagList)
	if err != nil {
		return nil, nil, err
	}

	return customFields, tags, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*vaultDomain.Record, error) {
	var (
		record       vaultDomain.Record
		customFields []byte
		tags         []byte
	)
	err := row.Scan(
		&record.ID,
		&record.Title,
		&record.Username,
		&record.EncryptedPayload,
		&record.URL,
		&record.Notes,
		&customFields,
		&tags,
		&record.GroupID,
		&record.DirectoryID,
		&record.CreatedBy,
		&record.Priority,
		&record.IsFavorite,
		&record.LastAccessed,
		&record.AccessCount,
		&record.ExpiresAt,
		&record.IsDeleted,
		&record.DeletedAt,
		&record.DeletedBy,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := decodeJSON(customFields, &record.CustomFields); err != nil {
		return nil, err
	}
	if err := decodeJSON(tags, &record.Tags); err != nil {
		return nil, err
	}

	return &record, nil
}

func scanRecordRow(row *sql.Row) (*vaultDomain.Record, error) {
	record, err := scanRecord(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, vaultDomain.ErrRecordNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get record")
	}
	return record, nil
}

func scanRecordRows(rows *sql.Rows) ([]*vaultDomain.Record, error) {
	var records []*vaultDomain.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan record")
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate records")
	}
	return records, nil
}
