// Package service provides cryptographic services for the vault core:
// AEAD ciphers (AES-256-GCM, ChaCha20-Poly1305), deterministic per-record key
// derivation and group master key wrapping.
package service

import (
	"context"

	"github.com/google/uuid"

	cryptoDomain "github.com/passkeep/passkeep/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
//
// Blobs are self-contained: the random per-call nonce is embedded in the output
// of Encrypt, so Decrypt needs no auxiliary state beyond the key.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns a self-contained blob.
	Encrypt(plaintext, aad []byte) ([]byte, error)

	// Decrypt decrypts a blob produced by Encrypt using the same AAD.
	// Fails closed with ErrDecryptionFailed on any tamper or wrong-key condition.
	Decrypt(blob, aad []byte) ([]byte, error)
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// KeyDeriver derives per-record encryption keys from a group master secret.
type KeyDeriver interface {
	// DeriveRecordKey deterministically derives a 32-byte key for the record.
	// The same (groupKey, recordID) pair always yields the same key; different
	// record IDs under the same group key yield different keys.
	DeriveRecordKey(groupKey []byte, recordID uuid.UUID) ([]byte, error)
}

// GroupKeyService generates and wraps group master keys. Group keys exist in
// plaintext only transiently; callers must zero the returned plaintext key
// after use.
type GroupKeyService interface {
	// Generate creates a fresh 32-byte group master key and returns it both in
	// plaintext (for immediate use) and wrapped (for persistence).
	Generate(ctx context.Context) (plain []byte, wrapped []byte, err error)

	// Unwrap recovers the plaintext group master key from its wrapped form.
	Unwrap(ctx context.Context, wrapped []byte) ([]byte, error)
}
