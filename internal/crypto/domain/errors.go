package domain

import (
	"github.com/passkeep/passkeep/internal/errors"
)

// Cryptographic operation error definitions.
//
// These domain-specific errors wrap standard errors from internal/errors so the
// calling layer can map them with errors.Is. Decryption and key-derivation
// failures are fatal to the operation and never retried with the same inputs.
var (
	// ErrUnsupportedAlgorithm indicates the requested encryption algorithm is not
	// supported. Supported algorithms: AESGCM (AES-256-GCM) and ChaCha20
	// (ChaCha20-Poly1305).
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates the cryptographic key size is invalid.
	// All keys (master keys, group keys, derived record keys) must be exactly
	// 32 bytes (256 bits).
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrDecryptionFailed indicates a decryption operation failed.
	//
	// Causes include a wrong key, a tampered ciphertext (authentication failure)
	// or a truncated/corrupted blob. The specific cause is not disclosed to
	// prevent information leakage, and no partial plaintext is ever returned.
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "decryption failed")

	// ErrKeyDerivationFailed indicates a per-record key could not be derived,
	// typically because the group master secret is absent or empty.
	ErrKeyDerivationFailed = errors.Wrap(errors.ErrKeyDerivation, "record key derivation failed")

	// ErrMasterKeysNotSet indicates the MASTER_KEYS environment variable is not configured.
	ErrMasterKeysNotSet = errors.New("MASTER_KEYS environment variable not set")

	// ErrActiveMasterKeyIDNotSet indicates ACTIVE_MASTER_KEY_ID is not configured.
	ErrActiveMasterKeyIDNotSet = errors.New("ACTIVE_MASTER_KEY_ID environment variable not set")

	// ErrInvalidMasterKeysFormat indicates MASTER_KEYS is not in "id:base64key" format.
	ErrInvalidMasterKeysFormat = errors.New("invalid MASTER_KEYS format")

	// ErrInvalidMasterKeyBase64 indicates a master key is not valid base64.
	ErrInvalidMasterKeyBase64 = errors.New("invalid master key base64")

	// ErrActiveMasterKeyNotFound indicates the active master key ID references a
	// key that is not present in the keychain.
	ErrActiveMasterKeyNotFound = errors.New("active master key not found in keychain")

	// ErrMasterKeyNotFound indicates a wrapped group key references a master key
	// that is no longer present in the keychain.
	ErrMasterKeyNotFound = errors.Wrap(errors.ErrNotFound, "master key not found")
)
