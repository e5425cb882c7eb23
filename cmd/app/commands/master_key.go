package commands

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	cryptoDomain "github.com/passkeep/passkeep/internal/crypto/domain"
)

// RunCreateMasterKey generates a cryptographically secure 32-byte master key
// for the process keychain that wraps group master keys. If keyID is empty, a
// default ID in the format "master-key-YYYY-MM-DD" is generated.
//
// Output is the environment configuration to copy into the .env file or a
// secrets manager:
//   - MASTER_KEYS="<keyID>:<base64-encoded-key>"
//   - ACTIVE_MASTER_KEY_ID="<keyID>"
//
// When KMS_KEY_URI is configured the keychain is not used; group keys are
// wrapped by the KMS keeper directly and no master key is needed.
func RunCreateMasterKey(keyID string) error {
	if keyID == "" {
		keyID = fmt.Sprintf("master-key-%s", time.Now().Format("2006-01-02"))
	}

	masterKey := make([]byte, 32)
	if _, err := rand.Read(masterKey); err != nil {
		return fmt.Errorf("failed to generate master key: %w", err)
	}

	encodedKey := base64.StdEncoding.EncodeToString(masterKey)
	cryptoDomain.Zero(masterKey)

	fmt.Println("# Master Key Configuration")
	fmt.Println("# Copy these environment variables to your .env file or secrets manager")
	fmt.Println()
	fmt.Printf("MASTER_KEYS=\"%s:%s\"\n", keyID, encodedKey)
	fmt.Printf("ACTIVE_MASTER_KEY_ID=\"%s\"\n", keyID)
	fmt.Println()
	fmt.Println("# For multiple master keys (key rotation), append the new key and switch the active ID:")
	fmt.Printf("# MASTER_KEYS=\"%s:%s,new-key:base64-encoded-key\"\n", keyID, encodedKey)
	fmt.Println("# ACTIVE_MASTER_KEY_ID=\"new-key\"")

	return nil
}
