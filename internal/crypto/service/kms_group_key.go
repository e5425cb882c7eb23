package service

import (
	"context"
	"crypto/rand"
	"fmt"

	"gocloud.dev/secrets"

	cryptoDomain "github.com/passkeep/passkeep/internal/crypto/domain"

	// Register KMS provider drivers.
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// kmsGroupKeyService wraps group master keys with an external KMS keeper via
// gocloud.dev/secrets. Preferred over the env-based keychain in production: the
// wrapping key never enters process memory.
type kmsGroupKeyService struct {
	keeper *secrets.Keeper
}

// OpenKeeper opens a secrets.Keeper for the configured KMS provider using the
// keyURI. Supported schemes include hashivault:// and base64key:// (local).
func OpenKeeper(ctx context.Context, keyURI string) (*secrets.Keeper, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	return keeper, nil
}

// NewKMSGroupKeyService creates a GroupKeyService backed by a KMS keeper.
func NewKMSGroupKeyService(keeper *secrets.Keeper) GroupKeyService {
	return &kmsGroupKeyService{keeper: keeper}
}

// Generate creates a fresh 32-byte group master key and wraps it with the KMS.
func (s *kmsGroupKeyService) Generate(ctx context.Context) ([]byte, []byte, error) {
	plain := make([]byte, 32)
	if _, err := rand.Read(plain); err != nil {
		return nil, nil, fmt.Errorf("failed to generate group key: %w", err)
	}

	wrapped, err := s.keeper.Encrypt(ctx, plain)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to wrap group key with KMS: %w", err)
	}

	return plain, wrapped, nil
}

// Unwrap recovers the plaintext group master key through the KMS keeper.
func (s *kmsGroupKeyService) Unwrap(ctx context.Context, wrapped []byte) ([]byte, error) {
	plain, err := s.keeper.Decrypt(ctx, wrapped)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	return plain, nil
}
