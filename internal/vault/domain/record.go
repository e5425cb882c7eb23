package domain

import (
	"time"

	"github.com/google/uuid"
)

// Record is an encrypted secret entry.
//
// EncryptedPayload is the only persisted form of the secret; the plaintext is
// materialized transiently in Plaintext after an authorized read and must be
// zeroed by the caller when no longer needed.
type Record struct {
	ID       uuid.UUID
	Title    string
	Username string
	// EncryptedPayload is the AEAD blob of the secret (nonce embedded).
	EncryptedPayload []byte
	// Plaintext holds the decrypted secret in memory only; never persisted.
	Plaintext []byte `json:"-"`
	URL       string
	Notes     string
	// CustomFields is a string-keyed map of bounded scalar values.
	CustomFields map[string]string
	// Tags is a set of lowercase tags.
	Tags    []string
	GroupID uuid.UUID
	// DirectoryID, when set, references a directory in the same group.
	DirectoryID *uuid.UUID
	CreatedBy   uuid.UUID
	Priority    Priority
	IsFavorite  bool
	// LastAccessed and AccessCount track successful secret reads. AccessCount
	// is monotonically non-decreasing.
	LastAccessed *time.Time
	AccessCount  uint
	ExpiresAt    *time.Time
	// Soft-delete tombstone. A deleted record stays addressable by
	// all-inclusive queries but is excluded from default enumeration.
	IsDeleted bool
	DeletedAt *time.Time
	DeletedBy *uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsExpired reports whether the record is past its expiry time.
func (r *Record) IsExpired(now time.Time) bool {
	return r.ExpiresAt != nil && now.After(*r.ExpiresAt)
}

// HistoryEntry is one append-only change record. Entries are never mutated or
// deleted by normal operations.
type HistoryEntry struct {
	ID       uuid.UUID
	RecordID uuid.UUID
	Kind     ChangeKind
	// ChangedBy is the principal who made the change.
	ChangedBy uuid.UUID
	// PreviousValues snapshots changed fields as they were before the mutation.
	PreviousValues map[string]any
	Summary        string
	CreatedAt      time.Time
}

// AccessLogEntry records one successful read of a record's secret.
type AccessLogEntry struct {
	ID         uuid.UUID
	RecordID   uuid.UUID
	UserID     uuid.UUID
	AccessedAt time.Time
	// ClientIP and ClientAgent are optional request metadata.
	ClientIP    string
	ClientAgent string
}
