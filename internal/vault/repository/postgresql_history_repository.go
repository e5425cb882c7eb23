package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/passkeep/passkeep/internal/database"
	apperrors "github.com/passkeep/passkeep/internal/errors"
	vaultDomain "github.com/passkeep/passkeep/internal/vault/domain"
)

// PostgreSQLHistoryRepository implements HistoryEntry persistence for
// PostgreSQL databases. The history table is append-only, there is no update
// or delete path.
type PostgreSQLHistoryRepository struct {
	db *sql.DB
}

// NewPostgreSQLHistoryRepository creates a new PostgreSQL HistoryEntry repository instance.
func NewPostgreSQLHistoryRepository(db *sql.DB) *PostgreSQLHistoryRepository {
	return &PostgreSQLHistoryRepository{db: db}
}

// Create appends a history entry.
func (p *PostgreSQLHistoryRepository) Create(ctx context.Context, entry *vaultDomain.HistoryEntry) error {
	querier := database.GetTx(ctx, p.db)

	previousValues, err := encodeJSON(entry.PreviousValues)
	if err != nil {
		return err
	}

	query := `INSERT INTO record_history (id, record_id, kind, changed_by, previous_values, summary, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = querier.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.RecordID,
		entry.Kind,
		entry.ChangedBy,
		previousValues,
		entry.Summary,
		entry.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create history entry")
	}
	return nil
}

// ListByRecord returns the history of a record, newest first.
func (p *PostgreSQLHistoryRepository) ListByRecord(
	ctx context.Context,
	recordID uuid.UUID,
) ([]*vaultDomain.HistoryEntry, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, record_id, kind, changed_by, previous_values, summary, created_at
			  FROM record_history
			  WHERE record_id = $1
			  ORDER BY created_at DESC`

	rows, err := querier.QueryContext(ctx, query, recordID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list history entries")
	}
	defer rows.Close()

	var entries []*vaultDomain.HistoryEntry
	for rows.Next() {
		var (
			entry          vaultDomain.HistoryEntry
			previousValues []byte
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.RecordID,
			&entry.Kind,
			&entry.ChangedBy,
			&previousValues,
			&entry.Summary,
			&entry.CreatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan history entry")
		}
		if err := decodeJSON(previousValues, &entry.PreviousValues); err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate history entries")
	}

	return entries, nil
}
