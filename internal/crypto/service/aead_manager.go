package service

import (
	cryptoDomain "github.com/passkeep/passkeep/internal/crypto/domain"
)

// AEADManagerService builds AEAD cipher instances for record and group key
// encryption. It is stateless; every call constructs a fresh cipher bound to
// the given key.
type AEADManagerService struct{}

// NewAEADManager creates a new AEADManagerService.
func NewAEADManager() *AEADManagerService {
	return &AEADManagerService{}
}

// CreateCipher returns an AEAD for the algorithm, bound to a 32-byte key.
// Returns ErrInvalidKeySize for any other key length and
// ErrUnsupportedAlgorithm for algorithms outside the two supported ciphers.
func (am *AEADManagerService) CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error) {
	if len(key) != 32 {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	switch alg {
	case cryptoDomain.AESGCM:
		return NewAESGCM(key)
	case cryptoDomain.ChaCha20:
		return NewChaCha20Poly1305(key)
	default:
		return nil, cryptoDomain.ErrUnsupportedAlgorithm
	}
}
