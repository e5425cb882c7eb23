package service

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/passkeep/passkeep/internal/crypto/domain"
)

func TestNewChaCha20Poly1305(t *testing.T) {
	t.Run("valid 256-bit key", func(t *testing.T) {
		key := make([]byte, 32)
		_, err := rand.Read(key)
		require.NoError(t, err)

		cipher, err := NewChaCha20Poly1305(key)
		assert.NoError(t, err)
		assert.NotNil(t, cipher)
	})

	t.Run("invalid key size", func(t *testing.T) {
		key := make([]byte, 16) // ChaCha20-Poly1305 requires 32 bytes
		_, err := rand.Read(key)
		require.NoError(t, err)

		cipher, err := NewChaCha20Poly1305(key)
		assert.Error(t, err)
		assert.Nil(t, cipher)
	})
}

func TestChaCha20Poly1305Cipher_Encrypt(t *testing.T) {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	cipher, err := NewChaCha20Poly1305(key)
	require.NoError(t, err)

	t.Run("encrypt with plaintext and AAD", func(t *testing.T) {
		plaintext := []byte("Hello, World!")
		aad := []byte("additional authenticated data")

		blob, err := cipher.Encrypt(plaintext, aad)
		assert.NoError(t, err)
		assert.NotNil(t, blob)
		assert.NotEqual(t, plaintext, blob)
		assert.Equal(t, 12+len(plaintext)+16, len(blob))
	})

	t.Run("encrypting the same plaintext twice yields different blobs", func(t *testing.T) {
		plaintext := []byte("same input")

		blob1, err := cipher.Encrypt(plaintext, nil)
		require.NoError(t, err)
		blob2, err := cipher.Encrypt(plaintext, nil)
		require.NoError(t, err)

		assert.NotEqual(t, blob1, blob2)
	})
}

func TestChaCha20Poly1305Cipher_Decrypt(t *testing.T) {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	cipher, err := NewChaCha20Poly1305(key)
	require.NoError(t, err)

	t.Run("round-trip with AAD", func(t *testing.T) {
		plaintext := []byte("super secret password")
		aad := []byte("record-context")

		blob, err := cipher.Encrypt(plaintext, aad)
		require.NoError(t, err)

		decrypted, err := cipher.Decrypt(blob, aad)
		require.NoError(t, err)
		assert.Equal(t, plaintext, decrypted)
	})

	t.Run("tampered blob fails authentication", func(t *testing.T) {
		blob, err := cipher.Encrypt([]byte("payload"), nil)
		require.NoError(t, err)

		blob[len(blob)-1] ^= 0xFF

		decrypted, err := cipher.Decrypt(blob, nil)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
		assert.Nil(t, decrypted)
	})

	t.Run("AAD mismatch fails authentication", func(t *testing.T) {
		blob, err := cipher.Encrypt([]byte("payload"), []byte("aad-one"))
		require.NoError(t, err)

		decrypted, err := cipher.Decrypt(blob, []byte("aad-two"))
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
		assert.Nil(t, decrypted)
	})

	t.Run("wrong key fails authentication", func(t *testing.T) {
		blob, err := cipher.Encrypt([]byte("payload"), nil)
		require.NoError(t, err)

		otherKey := make([]byte, 32)
		_, err = rand.Read(otherKey)
		require.NoError(t, err)

		otherCipher, err := NewChaCha20Poly1305(otherKey)
		require.NoError(t, err)

		decrypted, err := otherCipher.Decrypt(blob, nil)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
		assert.Nil(t, decrypted)
	})

	t.Run("truncated blob", func(t *testing.T) {
		decrypted, err := cipher.Decrypt([]byte{0x01, 0x02, 0x03}, nil)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
		assert.Nil(t, decrypted)
	})

	t.Run("AES-GCM blob does not decrypt under ChaCha20", func(t *testing.T) {
		aesCipher, err := NewAESGCM(key)
		require.NoError(t, err)

		blob, err := aesCipher.Encrypt([]byte("payload"), nil)
		require.NoError(t, err)

		decrypted, err := cipher.Decrypt(blob, nil)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
		assert.Nil(t, decrypted)
	})
}
