package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/passkeep/passkeep/internal/database"
	apperrors "github.com/passkeep/passkeep/internal/errors"
	vaultDomain "github.com/passkeep/passkeep/internal/vault/domain"
)

// PostgreSQLAccessLogRepository implements AccessLogEntry persistence for
// PostgreSQL databases. The access log is append-only.
type PostgreSQLAccessLogRepository struct {
	db *sql.DB
}

// NewPostgreSQLAccessLogRepository creates a new PostgreSQL AccessLogEntry repository instance.
func NewPostgreSQLAccessLogRepository(db *sql.DB) *PostgreSQLAccessLogRepository {
	return &PostgreSQLAccessLogRepository{db: db}
}

// Create appends an access log entry.
func (p *PostgreSQLAccessLogRepository) Create(ctx context.Context, entry *vaultDomain.AccessLogEntry) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO access_log (id, record_id, user_id, accessed_at, client_ip, client_agent)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := querier.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.RecordID,
		entry.UserID,
		entry.AccessedAt,
		entry.ClientIP,
		entry.ClientAgent,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create access log entry")
	}
	return nil
}

// ListByRecord returns the access log of a record, newest first, capped at limit.
func (p *PostgreSQLAccessLogRepository) ListByRecord(
	ctx context.Context,
	recordID uuid.UUID,
	limit int,
) ([]*vaultDomain.AccessLogEntry, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, record_id, user_id, accessed_at, client_ip, client_agent
			  FROM access_log
			  WHERE record_id = $1
			  ORDER BY accessed_at DESC
			  LIMIT $2`

	rows, err := querier.QueryContext(ctx, query, recordID, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list access log entries")
	}
	defer rows.Close()

	var entries []*vaultDomain.AccessLogEntry
	for rows.Next() {
		var entry vaultDomain.AccessLogEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.RecordID,
			&entry.UserID,
			&entry.AccessedAt,
			&entry.ClientIP,
			&entry.ClientAgent,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan access log entry")
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate access log entries")
	}

	return entries, nil
}
