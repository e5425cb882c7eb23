package service

import (
	"crypto/sha256"

	"github.com/google/uuid"
	"golang.org/x/crypto/pbkdf2"

	cryptoDomain "github.com/passkeep/passkeep/internal/crypto/domain"
)

// RecordKeyDeriver implements KeyDeriver using PBKDF2-HMAC-SHA256.
//
// The record UUID is the salt, which guarantees distinct keys per record even
// though all records in a group share the same master secret. Derivation is
// deterministic, so decryption never requires storing per-record keys: the key
// is re-derived from the group secret and the record ID on every access.
type RecordKeyDeriver struct {
	iterations int
}

// NewRecordKeyDeriver creates a KeyDeriver with the given PBKDF2 iteration
// count. The count is fixed at startup from configuration; changing it would
// silently invalidate every stored record, so it is deliberately immutable.
func NewRecordKeyDeriver(iterations int) *RecordKeyDeriver {
	return &RecordKeyDeriver{iterations: iterations}
}

// DeriveRecordKey derives a 32-byte key for the record from the group master
// secret. Returns ErrKeyDerivationFailed when the group secret is absent or empty.
func (d *RecordKeyDeriver) DeriveRecordKey(groupKey []byte, recordID uuid.UUID) ([]byte, error) {
	if len(groupKey) == 0 {
		return nil, cryptoDomain.ErrKeyDerivationFailed
	}

	return pbkdf2.Key(groupKey, recordID[:], d.iterations, 32, sha256.New), nil
}
