package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/passkeep/passkeep/internal/database"
	apperrors "github.com/passkeep/passkeep/internal/errors"
	vaultDomain "github.com/passkeep/passkeep/internal/vault/domain"
)

// MySQLHistoryRepository implements HistoryEntry persistence for MySQL
// databases. The history table is append-only, there is no update or delete
// path.
type MySQLHistoryRepository struct {
	db *sql.DB
}

// NewMySQLHistoryRepository creates a new MySQL HistoryEntry repository instance.
func NewMySQLHistoryRepository(db *sql.DB) *MySQLHistoryRepository {
	return &MySQLHistoryRepository{db: db}
}

// Create appends a history entry.
func (m *MySQLHistoryRepository) Create(ctx context.Context, entry *vaultDomain.HistoryEntry) error {
	querier := database.GetTx(ctx, m.db)

	previousValues, err := encodeJSON(entry.PreviousValues)
	if err != nil {
		return err
	}

	query := `INSERT INTO record_history (id, record_id, kind, changed_by, previous_values, summary, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

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
func (m *MySQLHistoryRepository) ListByRecord(
	ctx context.Context,
	recordID uuid.UUID,
) ([]*vaultDomain.HistoryEntry, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, record_id, kind, changed_by, previous_values, summary, created_at
			  FROM record_history
			  WHERE record_id = ?
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
