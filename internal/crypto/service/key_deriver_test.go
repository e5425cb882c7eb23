package service

import (
	"crypto/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/passkeep/passkeep/internal/crypto/domain"
)

const testIterations = 1000 // keep the test suite fast

func TestNewRecordKeyDeriver(t *testing.T) {
	deriver := NewRecordKeyDeriver(testIterations)
	assert.NotNil(t, deriver)
}

func TestRecordKeyDeriver_DeriveRecordKey(t *testing.T) {
	deriver := NewRecordKeyDeriver(testIterations)
	groupKey := make([]byte, 32)
	_, err := rand.Read(groupKey)
	require.NoError(t, err)

	t.Run("derives a 32-byte key", func(t *testing.T) {
		recordID := uuid.Must(uuid.NewV7())

		key, err := deriver.DeriveRecordKey(groupKey, recordID)
		require.NoError(t, err)
		assert.Equal(t, 32, len(key))
	})

	t.Run("derivation is deterministic", func(t *testing.T) {
		recordID := uuid.Must(uuid.NewV7())

		key1, err := deriver.DeriveRecordKey(groupKey, recordID)
		require.NoError(t, err)
		key2, err := deriver.DeriveRecordKey(groupKey, recordID)
		require.NoError(t, err)

		assert.Equal(t, key1, key2)
	})

	t.Run("distinct record IDs yield distinct keys", func(t *testing.T) {
		key1, err := deriver.DeriveRecordKey(groupKey, uuid.Must(uuid.NewV7()))
		require.NoError(t, err)
		key2, err := deriver.DeriveRecordKey(groupKey, uuid.Must(uuid.NewV7()))
		require.NoError(t, err)

		assert.NotEqual(t, key1, key2)
	})

	t.Run("distinct group keys yield distinct keys", func(t *testing.T) {
		otherGroupKey := make([]byte, 32)
		_, err := rand.Read(otherGroupKey)
		require.NoError(t, err)

		recordID := uuid.Must(uuid.NewV7())

		key1, err := deriver.DeriveRecordKey(groupKey, recordID)
		require.NoError(t, err)
		key2, err := deriver.DeriveRecordKey(otherGroupKey, recordID)
		require.NoError(t, err)

		assert.NotEqual(t, key1, key2)
	})

	t.Run("iteration count changes the derived key", func(t *testing.T) {
		otherDeriver := NewRecordKeyDeriver(testIterations + 1)
		recordID := uuid.Must(uuid.NewV7())

		key1, err := deriver.DeriveRecordKey(groupKey, recordID)
		require.NoError(t, err)
		key2, err := otherDeriver.DeriveRecordKey(groupKey, recordID)
		require.NoError(t, err)

		assert.NotEqual(t, key1, key2)
	})

	t.Run("empty group key", func(t *testing.T) {
		key, err := deriver.DeriveRecordKey([]byte{}, uuid.Must(uuid.NewV7()))
		assert.ErrorIs(t, err, cryptoDomain.ErrKeyDerivationFailed)
		assert.Nil(t, key)
	})

	t.Run("nil group key", func(t *testing.T) {
		key, err := deriver.DeriveRecordKey(nil, uuid.Must(uuid.NewV7()))
		assert.ErrorIs(t, err, cryptoDomain.ErrKeyDerivationFailed)
		assert.Nil(t, key)
	})
}
