package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vaultDomain "github.com/passkeep/passkeep/internal/vault/domain"
)

var historyColumns = []string{
	"id", "record_id", "kind", "changed_by", "previous_values", "summary", "created_at",
}

func TestPostgreSQLHistoryRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLHistoryRepository(db)

	entry := &vaultDomain.HistoryEntry{
		ID:             uuid.Must(uuid.NewV7()),
		RecordID:       uuid.Must(uuid.NewV7()),
		Kind:           vaultDomain.ChangeUpdated,
		ChangedBy:      uuid.Must(uuid.NewV7()),
		PreviousValues: map[string]any{"title": "Old title"},
		Summary:        "updated title",
		CreatedAt:      time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO record_history").
		WithArgs(
			entry.ID, entry.RecordID, entry.Kind, entry.ChangedBy,
			[]byte(`{"title":"Old title"}`), entry.Summary, entry.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), entry)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLHistoryRepository_ListByRecord(t *testing.T) {
	t.Run("returns newest first with decoded snapshots", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLHistoryRepository(db)
		recordID := uuid.Must(uuid.NewV7())
		changedBy := uuid.Must(uuid.NewV7())
		now := time.Now().UTC()

		rows := sqlmock.NewRows(historyColumns).
			AddRow(
				uuid.Must(uuid.NewV7()).String(), recordID.String(),
				string(vaultDomain.ChangeSecretChanged), changedBy.String(),
				[]byte(`{"title":"Old title"}`), "secret changed", now,
			).
			AddRow(
				uuid.Must(uuid.NewV7()).String(), recordID.String(),
				string(vaultDomain.ChangeCreated), changedBy.String(),
				[]byte(`null`), "record created", now.Add(-time.Hour),
			)

		mock.ExpectQuery("(?s)SELECT (.+) FROM record_history(.+)WHERE record_id =").
			WithArgs(recordID).
			WillReturnRows(rows)

		entries, err := repo.ListByRecord(context.Background(), recordID)
		require.NoError(t, err)
		require.Len(t, entries, 2)

		assert.Equal(t, vaultDomain.ChangeSecretChanged, entries[0].Kind)
		assert.Equal(t, map[string]any{"title": "Old title"}, entries[0].PreviousValues)

		assert.Equal(t, vaultDomain.ChangeCreated, entries[1].Kind)
		assert.Nil(t, entries[1].PreviousValues)
	})

	t.Run("no history", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLHistoryRepository(db)
		recordID := uuid.Must(uuid.NewV7())

		mock.ExpectQuery("(?s)SELECT (.+) FROM record_history").
			WithArgs(recordID).
			WillReturnRows(sqlmock.NewRows(historyColumns))

		entries, err := repo.ListByRecord(context.Background(), recordID)
		assert.NoError(t, err)
		assert.Empty(t, entries)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
