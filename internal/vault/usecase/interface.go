// Package usecase implements the vault business logic: group lifecycle and
// membership management, directory trees, and the encrypted record operations
// with their tamper-evident audit trail.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/passkeep/passkeep/internal/vault/domain"
)

// GroupRepository interface defines group repository operations
type GroupRepository interface {
	Create(ctx context.Context, group *domain.Group) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Group, error)
	GetByOwnerAndName(ctx context.Context, ownerID uuid.UUID, name string) (*domain.Group, error)
	Update(ctx context.Context, group *domain.Group) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListAccessible(ctx context.Context, userID uuid.UUID) ([]*domain.Group, error)
}

// MembershipRepository interface defines membership repository operations
type MembershipRepository interface {
	Create(ctx context.Context, membership *domain.Membership) error
	GetByUserAndGroup(ctx context.Context, userID, groupID uuid.UUID) (*domain.Membership, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*domain.Membership, error)
}

// DirectoryRepository interface defines directory repository operations
type DirectoryRepository interface {
	Create(ctx context.Context, directory *domain.Directory) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Directory, error)
	ExistsSibling(ctx context.Context, groupID uuid.UUID, parentID *uuid.UUID, name string) (bool, error)
	Update(ctx context.Context, directory *domain.Directory) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*domain.Directory, error)
}

// RecordRepository interface defines record repository operations
type RecordRepository interface {
	Create(ctx context.Context, record *domain.Record) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Record, error)
	GetAny(ctx context.Context, id uuid.UUID) (*domain.Record, error)
	Update(ctx context.Context, record *domain.Record) error
	Delete(ctx context.Context, id uuid.UUID) error
	TouchAccess(ctx context.Context, id uuid.UUID, accessedAt time.Time) error
	Search(ctx context.Context, groupIDs []uuid.UUID, filter domain.SearchFilter) ([]*domain.Record, error)
	ListDeletedByGroup(ctx context.Context, groupID uuid.UUID) ([]*domain.Record, error)
}

// HistoryRepository interface defines record history repository operations
type HistoryRepository interface {
	Create(ctx context.Context, entry *domain.HistoryEntry) error
	ListByRecord(ctx context.Context, recordID uuid.UUID) ([]*domain.HistoryEntry, error)
}

// AccessLogRepository interface defines access log repository operations
type AccessLogRepository interface {
	Create(ctx context.Context, entry *domain.AccessLogEntry) error
	ListByRecord(ctx context.Context, recordID uuid.UUID, limit int) ([]*domain.AccessLogEntry, error)
}
