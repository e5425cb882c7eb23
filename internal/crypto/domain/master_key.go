// Package domain defines the core cryptographic domain models for envelope
// encryption of vault records.
//
// The key hierarchy is: master key (or KMS keeper) → group master key →
// per-record derived key → record payload. Group master keys are generated once
// per group and stored only in wrapped form; per-record keys are derived
// deterministically and never persisted at all.
package domain

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"sync"
)

// MasterKey is a process-level root key used to wrap group master keys when no
// external KMS is configured.
//
// Master keys must be 32 bytes (256 bits) and generated with a cryptographically
// secure random generator. Multiple master keys can be maintained simultaneously
// so that old wrapped group keys stay readable while new groups are wrapped with
// the active key.
type MasterKey struct {
	ID  string
	Key []byte
}

// MasterKeyChain manages a collection of master keys with one designated as active.
//
// Rotation workflow: add a new master key, mark it active, wrap new group keys
// with it, and re-wrap old group keys at leisure; old keys remain available for
// unwrapping until removed.
//
// Thread safety: the keychain uses sync.Map internally for concurrent access.
type MasterKeyChain struct {
	activeID string
	keys     sync.Map
}

// ActiveMasterKeyID returns the ID of the master key used to wrap new group keys.
func (m *MasterKeyChain) ActiveMasterKeyID() string {
	return m.activeID
}

// Get retrieves a master key from the keychain by its ID. Used to unwrap group
// keys that were wrapped with older master keys during rotation.
func (m *MasterKeyChain) Get(id string) (*MasterKey, bool) {
	if masterKey, ok := m.keys.Load(id); ok {
		return masterKey.(*MasterKey), ok
	}

	return nil, false
}

// Close zeroes all master key material and resets the keychain. Call on
// shutdown so key bytes do not linger in memory.
func (m *MasterKeyChain) Close() {
	m.keys.Range(func(_, value any) bool {
		if mk, ok := value.(*MasterKey); ok {
			Zero(mk.Key)
		}
		return true
	})
	m.activeID = ""
	m.keys.Clear()
}

// LoadMasterKeyChainFromEnv loads master keys from environment variables.
//
// Two variables are read:
//   - MASTER_KEYS: comma-separated entries in "id:base64key" format
//   - ACTIVE_MASTER_KEY_ID: ID of the key used to wrap new group keys
//
// Example:
//
//	MASTER_KEYS="key1:YWJjZGVmZ2hpamtsbW5vcHFyc3R1dnd4eXoxMjM0NTY3OA==,key2:MTIzNDU2Nzg5MGFiY2RlZmdoaWprbG1ub3BxcnN0dXZ3eA=="
//	ACTIVE_MASTER_KEY_ID="key2"
//
// Each key must decode to exactly 32 bytes. On any error the keychain is closed
// to prevent partial initialization. In production prefer a KMS keeper
// (KMS_KEY_URI) over environment variables.
func LoadMasterKeyChainFromEnv() (*MasterKeyChain, error) {
	raw := os.Getenv("MASTER_KEYS")
	if raw == "" {
		return nil, ErrMasterKeysNotSet
	}

	active := os.Getenv("ACTIVE_MASTER_KEY_ID")
	if active == "" {
		return nil, ErrActiveMasterKeyIDNotSet
	}

	mkc := &MasterKeyChain{activeID: active}

	parts := strings.SplitSeq(raw, ",")
	for part := range parts {
		p := strings.SplitN(strings.TrimSpace(part), ":", 2)
		if len(p) != 2 {
			mkc.Close()
			return nil, fmt.Errorf("%w: %q", ErrInvalidMasterKeysFormat, part)
		}
		id := p[0]
		key, err := base64.StdEncoding.DecodeString(p[1])
		if err != nil {
			mkc.Close()
			return nil, fmt.Errorf("%w for %s: %v", ErrInvalidMasterKeyBase64, id, err)
		}
		if len(key) != 32 {
			Zero(key)
			mkc.Close()
			return nil, fmt.Errorf(
				"%w: master key %s must be 32 bytes, got %d",
				ErrInvalidKeySize,
				id,
				len(key),
			)
		}
		mkc.keys.Store(id, &MasterKey{ID: id, Key: key})
	}

	if _, ok := mkc.Get(active); !ok {
		mkc.Close()
		return nil, fmt.Errorf("%w: ACTIVE_MASTER_KEY_ID=%s", ErrActiveMasterKeyNotFound, active)
	}

	return mkc, nil
}
