package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"

	cryptoDomain "github.com/passkeep/passkeep/internal/crypto/domain"
)

// keychainGroupKeyService wraps group master keys with a process master keychain.
//
// Wrapped blob layout: [2-byte big-endian master key ID length][master key ID]
// [AEAD blob]. The embedded ID selects the unwrapping key, so group keys wrapped
// under rotated-out master keys stay readable as long as the old key remains in
// the keychain.
type keychainGroupKeyService struct {
	keychain    *cryptoDomain.MasterKeyChain
	aeadManager AEADManager
	algorithm   cryptoDomain.Algorithm
}

// NewKeychainGroupKeyService creates a GroupKeyService backed by a master keychain.
func NewKeychainGroupKeyService(
	keychain *cryptoDomain.MasterKeyChain,
	aeadManager AEADManager,
	algorithm cryptoDomain.Algorithm,
) GroupKeyService {
	return &keychainGroupKeyService{
		keychain:    keychain,
		aeadManager: aeadManager,
		algorithm:   algorithm,
	}
}

// Generate creates a fresh 32-byte group master key and wraps it with the
// active master key.
func (s *keychainGroupKeyService) Generate(_ context.Context) ([]byte, []byte, error) {
	plain := make([]byte, 32)
	if _, err := rand.Read(plain); err != nil {
		return nil, nil, fmt.Errorf("failed to generate group key: %w", err)
	}

	activeID := s.keychain.ActiveMasterKeyID()
	masterKey, ok := s.keychain.Get(activeID)
	if !ok {
		return nil, nil, cryptoDomain.ErrActiveMasterKeyNotFound
	}

	aead, err := s.aeadManager.CreateCipher(masterKey.Key, s.algorithm)
	if err != nil {
		return nil, nil, err
	}

	blob, err := aead.Encrypt(plain, []byte(activeID))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to wrap group key: %w", err)
	}

	wrapped := make([]byte, 0, 2+len(activeID)+len(blob))
	wrapped = binary.BigEndian.AppendUint16(wrapped, uint16(len(activeID)))
	wrapped = append(wrapped, activeID...)
	wrapped = append(wrapped, blob...)

	return plain, wrapped, nil
}

// Unwrap recovers the plaintext group master key from its wrapped form using
// the master key named in the blob header.
func (s *keychainGroupKeyService) Unwrap(_ context.Context, wrapped []byte) ([]byte, error) {
	if len(wrapped) < 2 {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	idLen := int(binary.BigEndian.Uint16(wrapped))
	if len(wrapped) < 2+idLen {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	keyID := string(wrapped[2 : 2+idLen])
	blob := wrapped[2+idLen:]

	masterKey, ok := s.keychain.Get(keyID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", cryptoDomain.ErrMasterKeyNotFound, keyID)
	}

	aead, err := s.aeadManager.CreateCipher(masterKey.Key, s.algorithm)
	if err != nil {
		return nil, err
	}

	plain, err := aead.Decrypt(blob, []byte(keyID))
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	return plain, nil
}
