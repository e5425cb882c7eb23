package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	cryptoDomain "github.com/passkeep/passkeep/internal/crypto/domain"
)

// AESGCMCipher implements the AEAD interface using AES-256-GCM.
//
// The cipher produces self-contained blobs: a random 12-byte nonce is generated
// per encryption and prepended to the ciphertext, which itself carries the
// 16-byte authentication tag. Nonce reuse is therefore impossible across calls
// and decryption needs nothing beyond the key and the blob.
//
// The cipher instance is stateless and safe for concurrent use from multiple
// goroutines.
type AESGCMCipher struct {
	aead cipher.AEAD
}

// NewAESGCM creates a new AES-256-GCM cipher instance.
//
// The key must be exactly 32 bytes (256 bits). Keys should be generated using
// crypto/rand or derived with the package's KeyDeriver.
func NewAESGCM(key []byte) (*AESGCMCipher, error) {
	if len(key) != 32 {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &AESGCMCipher{aead: aead}, nil
}

// Encrypt encrypts plaintext using AES-256-GCM with optional additional
// authenticated data and returns nonce || ciphertext+tag as one blob.
//
// The AAD is authenticated but not encrypted; it binds the blob to external
// context (e.g., a record ID) so a blob cannot be replayed elsewhere. Pass nil
// when no additional data needs to be authenticated.
func (a *AESGCMCipher) Encrypt(plaintext, aad []byte) ([]byte, error) {
	nonce := make([]byte, a.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return a.aead.Seal(nonce, nonce, plaintext, aad), nil
}

// Decrypt decrypts a blob produced by Encrypt with the same AAD.
//
// The authentication tag is verified before any plaintext is returned; a wrong
// key, mismatched AAD or any bit flip in the blob yields ErrDecryptionFailed
// and no partial output.
func (a *AESGCMCipher) Decrypt(blob, aad []byte) ([]byte, error) {
	nonceSize := a.aead.NonceSize()
	if len(blob) < nonceSize+a.aead.Overhead() {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	nonce, ciphertext := blob[:nonceSize], blob[nonceSize:]
	plaintext, err := a.aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	return plaintext, nil
}
