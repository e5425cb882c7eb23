package service

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/passkeep/passkeep/internal/crypto/domain"
)

func TestNewAESGCM(t *testing.T) {
	t.Run("valid 256-bit key", func(t *testing.T) {
		key := make([]byte, 32)
		_, err := rand.Read(key)
		require.NoError(t, err)

		cipher, err := NewAESGCM(key)
		assert.NoError(t, err)
		assert.NotNil(t, cipher)
	})

	t.Run("invalid key size - too short", func(t *testing.T) {
		key := make([]byte, 16)
		_, err := rand.Read(key)
		require.NoError(t, err)

		cipher, err := NewAESGCM(key)
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize)
		assert.Nil(t, cipher)
	})

	t.Run("invalid key size - too long", func(t *testing.T) {
		key := make([]byte, 64)
		_, err := rand.Read(key)
		require.NoError(t, err)

		cipher, err := NewAESGCM(key)
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize)
		assert.Nil(t, cipher)
	})

	t.Run("nil key", func(t *testing.T) {
		cipher, err := NewAESGCM(nil)
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize)
		assert.Nil(t, cipher)
	})
}

func TestAESGCMCipher_Encrypt(t *testing.T) {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	cipher, err := NewAESGCM(key)
	require.NoError(t, err)

	t.Run("encrypt with plaintext and AAD", func(t *testing.T) {
		plaintext := []byte("Hello, World!")
		aad := []byte("additional authenticated data")

		blob, err := cipher.Encrypt(plaintext, aad)
		assert.NoError(t, err)
		assert.NotNil(t, blob)
		assert.NotEqual(t, plaintext, blob)
		// 12-byte nonce + ciphertext + 16-byte tag
		assert.Equal(t, 12+len(plaintext)+16, len(blob))
	})

	t.Run("encrypt without AAD", func(t *testing.T) {
		plaintext := []byte("Hello, World!")

		blob, err := cipher.Encrypt(plaintext, nil)
		assert.NoError(t, err)
		assert.NotNil(t, blob)
	})

	t.Run("encrypt empty plaintext", func(t *testing.T) {
		blob, err := cipher.Encrypt([]byte(""), []byte("aad"))
		assert.NoError(t, err)
		assert.Equal(t, 12+16, len(blob))
	})

	t.Run("encrypting the same plaintext twice yields different blobs", func(t *testing.T) {
		plaintext := []byte("same input")

		blob1, err := cipher.Encrypt(plaintext, nil)
		require.NoError(t, err)
		blob2, err := cipher.Encrypt(plaintext, nil)
		require.NoError(t, err)

		// Fresh nonce per call
		assert.NotEqual(t, blob1, blob2)
	})
}

func TestAESGCMCipher_Decrypt(t *testing.T) {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	cipher, err := NewAESGCM(key)
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

	t.Run("round-trip without AAD", func(t *testing.T) {
		plaintext := []byte("super secret password")

		blob, err := cipher.Encrypt(plaintext, nil)
		require.NoError(t, err)

		decrypted, err := cipher.Decrypt(blob, nil)
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

	t.Run("tampered nonce fails authentication", func(t *testing.T) {
		blob, err := cipher.Encrypt([]byte("payload"), nil)
		require.NoError(t, err)

		blob[0] ^= 0x01

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

		otherCipher, err := NewAESGCM(otherKey)
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

	t.Run("empty blob", func(t *testing.T) {
		decrypted, err := cipher.Decrypt(nil, nil)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
		assert.Nil(t, decrypted)
	})
}
