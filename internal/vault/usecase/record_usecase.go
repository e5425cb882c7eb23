package usecase

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/passkeep/passkeep/internal/crypto/domain"
	cryptoService "github.com/passkeep/passkeep/internal/crypto/service"
	"github.com/passkeep/passkeep/internal/database"
	apperrors "github.com/passkeep/passkeep/internal/errors"
	"github.com/passkeep/passkeep/internal/vault/domain"
	vaultService "github.com/passkeep/passkeep/internal/vault/service"
)

// defaultAccessLogLimit caps access log listings when the caller passes no limit.
const defaultAccessLogLimit = 100

// AccessMeta carries optional request metadata recorded with each secret read.
type AccessMeta struct {
	ClientIP    string
	ClientAgent string
}

// RecordUseCase defines the interface for encrypted record business logic operations
type RecordUseCase interface {
	CreateRecord(ctx context.Context, principal, groupID uuid.UUID, input domain.RecordInput) (*domain.Record, error)
	GetRecord(ctx context.Context, principal, recordID uuid.UUID) (*domain.Record, error)
	RevealSecret(ctx context.Context, principal, recordID uuid.UUID, meta AccessMeta) (*domain.Record, error)
	UpdateRecord(ctx context.Context, principal, recordID uuid.UUID, input domain.RecordUpdateInput) (*domain.Record, error)
	DeleteRecord(ctx context.Context, principal, recordID uuid.UUID) error
	PurgeRecord(ctx context.Context, principal, recordID uuid.UUID) error
	RestoreRecord(ctx context.Context, principal, recordID uuid.UUID) (*domain.Record, error)
	SearchRecords(ctx context.Context, principal uuid.UUID, filter domain.SearchFilter) ([]*domain.Record, error)
	ListDeletedRecords(ctx context.Context, principal, groupID uuid.UUID) ([]*domain.Record, error)
	GetHistory(ctx context.Context, principal, recordID uuid.UUID) ([]*domain.HistoryEntry, error)
	GetAccessLog(ctx context.Context, principal, recordID uuid.UUID, limit int) ([]*domain.AccessLogEntry, error)
}

// RecordService handles encrypted record business logic.
//
// Secrets are envelope encrypted: the group master key is unwrapped in memory,
// a per-record key is derived from it with the record ID as salt, and the
// secret is sealed under that key. Neither key ever reaches storage in
// plaintext and both are zeroed before each operation returns.
//
// Authorization is uniform: a principal who cannot view a record receives
// ErrRecordNotFound, never a permission error, so record existence is not
// leaked across group boundaries.
type RecordService struct {
	txManager      database.TxManager
	groupRepo      GroupRepository
	membershipRepo MembershipRepository
	directoryRepo  DirectoryRepository
	recordRepo     RecordRepository
	historyRepo    HistoryRepository
	accessLogRepo  AccessLogRepository
	groupKeys      cryptoService.GroupKeyService
	aeadManager    cryptoService.AEADManager
	keyDeriver     cryptoService.KeyDeriver
	algorithm      cryptoDomain.Algorithm
	policy         *vaultService.AccessPolicy
	limits         domain.Limits
}

// NewRecordService creates a new RecordService.
func NewRecordService(
	txManager database.TxManager,
	groupRepo GroupRepository,
	membershipRepo MembershipRepository,
	directoryRepo DirectoryRepository,
	recordRepo RecordRepository,
	historyRepo HistoryRepository,
	accessLogRepo AccessLogRepository,
	groupKeys cryptoService.GroupKeyService,
	aeadManager cryptoService.AEADManager,
	keyDeriver cryptoService.KeyDeriver,
	algorithm cryptoDomain.Algorithm,
	policy *vaultService.AccessPolicy,
	limits domain.Limits,
) RecordUseCase {
	return &RecordService{
		txManager:      txManager,
		groupRepo:      groupRepo,
		membershipRepo: membershipRepo,
		directoryRepo:  directoryRepo,
		recordRepo:     recordRepo,
		historyRepo:    historyRepo,
		accessLogRepo:  accessLogRepo,
		groupKeys:      groupKeys,
		aeadManager:    aeadManager,
		keyDeriver:     keyDeriver,
		algorithm:      algorithm,
		policy:         policy,
		limits:         limits,
	}
}

// CreateRecord encrypts and stores a new record in a group, appending the
// CREATED history entry in the same transaction.
func (r *RecordService) CreateRecord(
	ctx context.Context,
	principal, groupID uuid.UUID,
	input domain.RecordInput,
) (*domain.Record, error) {
	if err := input.Validate(r.limits); err != nil {
		return nil, err
	}

	group, membership, err := r.loadGroup(ctx, principal, groupID)
	if err != nil {
		return nil, err
	}
	if !r.policy.CanViewGroup(principal, group, membership) {
		return nil, domain.ErrGroupNotFound
	}
	if !r.policy.CanCreateRecord(principal, group, membership) {
		return nil, domain.ErrAccessDenied
	}

	if input.DirectoryID != nil {
		directory, err := r.directoryRepo.Get(ctx, *input.DirectoryID)
		if err != nil {
			return nil, err
		}
		if directory.GroupID != groupID {
			return nil, domain.ErrDirectoryGroupMismatch
		}
	}

	recordID := uuid.Must(uuid.NewV7())
	payload, err := r.encryptSecret(ctx, group, recordID, input.Secret)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	record := &domain.Record{
		ID:               recordID,
		Title:            input.Title,
		Username:         input.Username,
		EncryptedPayload: payload,
		URL:              input.URL,
		Notes:            input.Notes,
		CustomFields:     input.CustomFields,
		Tags:             input.Tags,
		GroupID:          groupID,
		DirectoryID:      input.DirectoryID,
		CreatedBy:        principal,
		Priority:         input.Priority,
		IsFavorite:       input.IsFavorite,
		ExpiresAt:        input.ExpiresAt,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err = r.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := r.recordRepo.Create(ctx, record); err != nil {
			return err
		}
		return r.historyRepo.Create(ctx, &domain.HistoryEntry{
			ID:        uuid.Must(uuid.NewV7()),
			RecordID:  record.ID,
			Kind:      domain.ChangeCreated,
			ChangedBy: principal,
			Summary:   "record created",
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

// GetRecord retrieves record metadata without decrypting the secret and
// without touching the access trail.
func (r *RecordService) GetRecord(ctx context.Context, principal, recordID uuid.UUID) (*domain.Record, error) {
	record, _, _, err := r.authorizeView(ctx, principal, recordID, false)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// RevealSecret decrypts a record's secret into Record.Plaintext and records
// the access: the access counter bump, the last-access stamp and the access
// log entry commit in one transaction. The caller owns the returned plaintext
// and must zero it after use.
func (r *RecordService) RevealSecret(
	ctx context.Context,
	principal, recordID uuid.UUID,
	meta AccessMeta,
) (*domain.Record, error) {
	record, group, _, err := r.authorizeView(ctx, principal, recordID, false)
	if err != nil {
		return nil, err
	}

	plaintext, err := r.decryptSecret(ctx, group, record)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	err = r.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := r.recordRepo.TouchAccess(ctx, record.ID, now); err != nil {
			return err
		}
		return r.accessLogRepo.Create(ctx, &domain.AccessLogEntry{
			ID:          uuid.Must(uuid.NewV7()),
			RecordID:    record.ID,
			UserID:      principal,
			AccessedAt:  now,
			ClientIP:    meta.ClientIP,
			ClientAgent: meta.ClientAgent,
		})
	})
	if err != nil {
		cryptoDomain.Zero(plaintext)
		return nil, err
	}

	record.Plaintext = plaintext
	record.LastAccessed = &now
	record.AccessCount++
	return record, nil
}

// UpdateRecord applies a partial update. Metadata changes append an UPDATED
// history entry carrying the previous values of every changed field; a new
// secret re-encrypts the payload and appends SECRET_CHANGED instead. Every
// successful update appends exactly one entry, even when no field changed.
func (r *RecordService) UpdateRecord(
	ctx context.Context,
	principal, recordID uuid.UUID,
	input domain.RecordUpdateInput,
) (*domain.Record, error) {
	if err := input.Validate(r.limits); err != nil {
		return nil, err
	}

	record, group, _, err := r.authorizeEdit(ctx, principal, recordID, false)
	if err != nil {
		return nil, err
	}

	if input.DirectoryID != nil {
		directory, err := r.directoryRepo.Get(ctx, *input.DirectoryID)
		if err != nil {
			return nil, err
		}
		if directory.GroupID != record.GroupID {
			return nil, domain.ErrDirectoryGroupMismatch
		}
	}

	previous := map[string]any{}
	var changed []string
	applyMetadataUpdate(record, input, previous, &changed)

	secretChanged := input.Secret != nil
	if secretChanged {
		payload, err := r.encryptSecret(ctx, group, record.ID, input.Secret)
		if err != nil {
			return nil, err
		}
		record.EncryptedPayload = payload
	}

	now := time.Now().UTC()
	record.UpdatedAt = now

	entry := &domain.HistoryEntry{
		ID:        uuid.Must(uuid.NewV7()),
		RecordID:  record.ID,
		ChangedBy: principal,
		CreatedAt: now,
	}
	if secretChanged {
		// The secret itself is never snapshotted, in either form.
		entry.Kind = domain.ChangeSecretChanged
		entry.Summary = "secret changed"
		if len(changed) > 0 {
			entry.PreviousValues = previous
			entry.Summary = fmt.Sprintf("secret changed; updated %s", strings.Join(changed, ", "))
		}
	} else {
		entry.Kind = domain.ChangeUpdated
		entry.PreviousValues = previous
		entry.Summary = "record updated"
		if len(changed) > 0 {
			entry.Summary = fmt.Sprintf("updated %s", strings.Join(changed, ", "))
		}
	}

	err = r.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := r.recordRepo.Update(ctx, record); err != nil {
			return err
		}
		return r.historyRepo.Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

// DeleteRecord soft-deletes a record. The tombstone keeps the record
// addressable for restore; the DELETED history entry commits with it.
func (r *RecordService) DeleteRecord(ctx context.Context, principal, recordID uuid.UUID) error {
	record, _, _, err := r.authorizeEdit(ctx, principal, recordID, false)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	record.IsDeleted = true
	record.DeletedAt = &now
	record.DeletedBy = &principal
	record.UpdatedAt = now

	return r.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := r.recordRepo.Update(ctx, record); err != nil {
			return err
		}
		return r.historyRepo.Create(ctx, &domain.HistoryEntry{
			ID:        uuid.Must(uuid.NewV7()),
			RecordID:  record.ID,
			Kind:      domain.ChangeDeleted,
			ChangedBy: principal,
			Summary:   "record deleted",
			CreatedAt: now,
		})
	})
}

// PurgeRecord permanently removes a record, deleted or not. Its history and
// access log cascade away with it, so purging leaves no audit trail.
func (r *RecordService) PurgeRecord(ctx context.Context, principal, recordID uuid.UUID) error {
	record, _, _, err := r.authorizeEdit(ctx, principal, recordID, true)
	if err != nil {
		return err
	}
	return r.recordRepo.Delete(ctx, record.ID)
}

// RestoreRecord clears a soft-deleted record's tombstone and appends the
// RESTORED history entry.
func (r *RecordService) RestoreRecord(
	ctx context.Context,
	principal, recordID uuid.UUID,
) (*domain.Record, error) {
	record, _, _, err := r.authorizeEdit(ctx, principal, recordID, true)
	if err != nil {
		return nil, err
	}
	if !record.IsDeleted {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "record is not deleted")
	}

	now := time.Now().UTC()
	record.IsDeleted = false
	record.DeletedAt = nil
	record.DeletedBy = nil
	record.UpdatedAt = now

	err = r.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := r.recordRepo.Update(ctx, record); err != nil {
			return err
		}
		return r.historyRepo.Create(ctx, &domain.HistoryEntry{
			ID:        uuid.Must(uuid.NewV7()),
			RecordID:  record.ID,
			Kind:      domain.ChangeRestored,
			ChangedBy: principal,
			Summary:   "record restored",
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

// SearchRecords returns live records matching the filter across every group
// the principal can view. A group filter pointing outside that set yields
// ErrGroupNotFound.
func (r *RecordService) SearchRecords(
	ctx context.Context,
	principal uuid.UUID,
	filter domain.SearchFilter,
) ([]*domain.Record, error) {
	groups, err := r.groupRepo.ListAccessible(ctx, principal)
	if err != nil {
		return nil, err
	}

	groupIDs := make([]uuid.UUID, len(groups))
	for i, group := range groups {
		groupIDs[i] = group.ID
	}

	if filter.GroupID != nil {
		if !slices.Contains(groupIDs, *filter.GroupID) {
			return nil, domain.ErrGroupNotFound
		}
		groupIDs = []uuid.UUID{*filter.GroupID}
	}

	// Stored tags are normalized, so the filter must match their form.
	filter.Tags = domain.NormalizeTags(filter.Tags)

	return r.recordRepo.Search(ctx, groupIDs, filter)
}

// ListDeletedRecords returns the soft-deleted records of a group the
// principal can view.
func (r *RecordService) ListDeletedRecords(
	ctx context.Context,
	principal, groupID uuid.UUID,
) ([]*domain.Record, error) {
	group, membership, err := r.loadGroup(ctx, principal, groupID)
	if err != nil {
		return nil, err
	}
	if !r.policy.CanViewGroup(principal, group, membership) {
		return nil, domain.ErrGroupNotFound
	}

	return r.recordRepo.ListDeletedByGroup(ctx, groupID)
}

// GetHistory returns a record's change history, newest first.
func (r *RecordService) GetHistory(
	ctx context.Context,
	principal, recordID uuid.UUID,
) ([]*domain.HistoryEntry, error) {
	record, _, _, err := r.authorizeView(ctx, principal, recordID, true)
	if err != nil {
		return nil, err
	}
	return r.historyRepo.ListByRecord(ctx, record.ID)
}

// GetAccessLog returns a record's access log, newest first.
func (r *RecordService) GetAccessLog(
	ctx context.Context,
	principal, recordID uuid.UUID,
	limit int,
) ([]*domain.AccessLogEntry, error) {
	record, _, _, err := r.authorizeView(ctx, principal, recordID, true)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultAccessLogLimit
	}
	return r.accessLogRepo.ListByRecord(ctx, record.ID, limit)
}

// encryptSecret seals plaintext under the record's derived key. The record ID
// salts the derivation, so the key is stable for the record's lifetime.
func (r *RecordService) encryptSecret(
	ctx context.Context,
	group *domain.Group,
	recordID uuid.UUID,
	plaintext []byte,
) ([]byte, error) {
	cipher, recordKey, err := r.recordCipher(ctx, group, recordID)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(recordKey)

	return cipher.Encrypt(plaintext, nil)
}

// decryptSecret opens the record's payload. Fails closed on any tamper or
// wrong-key condition.
func (r *RecordService) decryptSecret(
	ctx context.Context,
	group *domain.Group,
	record *domain.Record,
) ([]byte, error) {
	cipher, recordKey, err := r.recordCipher(ctx, group, record.ID)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(recordKey)

	return cipher.Decrypt(record.EncryptedPayload, nil)
}

// recordCipher unwraps the group master key, derives the record key and
// builds the AEAD cipher. The group key is zeroed before return, the record
// key is the caller's to zero.
func (r *RecordService) recordCipher(
	ctx context.Context,
	group *domain.Group,
	recordID uuid.UUID,
) (cryptoService.AEAD, []byte, error) {
	groupKey, err := r.groupKeys.Unwrap(ctx, group.WrappedKey)
	if err != nil {
		return nil, nil, err
	}
	defer cryptoDomain.Zero(groupKey)

	recordKey, err := r.keyDeriver.DeriveRecordKey(groupKey, recordID)
	if err != nil {
		return nil, nil, err
	}

	cipher, err := r.aeadManager.CreateCipher(recordKey, r.algorithm)
	if err != nil {
		cryptoDomain.Zero(recordKey)
		return nil, nil, err
	}
	return cipher, recordKey, nil
}

// authorizeView loads a record and checks the principal may view it.
// Non-viewers receive ErrRecordNotFound regardless of the reason.
func (r *RecordService) authorizeView(
	ctx context.Context,
	principal, recordID uuid.UUID,
	includeDeleted bool,
) (*domain.Record, *domain.Group, *domain.Membership, error) {
	var (
		record *domain.Record
		err    error
	)
	if includeDeleted {
		record, err = r.recordRepo.GetAny(ctx, recordID)
	} else {
		record, err = r.recordRepo.Get(ctx, recordID)
	}
	if err != nil {
		return nil, nil, nil, err
	}

	group, membership, err := r.loadGroup(ctx, principal, record.GroupID)
	if err != nil {
		return nil, nil, nil, err
	}
	if !r.policy.CanViewRecord(principal, record, group, membership) {
		return nil, nil, nil, domain.ErrRecordNotFound
	}
	return record, group, membership, nil
}

// authorizeEdit is authorizeView plus the edit capability: the record's
// creator, the group owner or a group admin.
func (r *RecordService) authorizeEdit(
	ctx context.Context,
	principal, recordID uuid.UUID,
	includeDeleted bool,
) (*domain.Record, *domain.Group, *domain.Membership, error) {
	record, group, membership, err := r.authorizeView(ctx, principal, recordID, includeDeleted)
	if err != nil {
		return nil, nil, nil, err
	}
	if !r.policy.CanEditRecord(principal, record, group, membership) {
		return nil, nil, nil, domain.ErrAccessDenied
	}
	return record, group, membership, nil
}

func (r *RecordService) loadGroup(
	ctx context.Context,
	principal, groupID uuid.UUID,
) (*domain.Group, *domain.Membership, error) {
	group, err := r.groupRepo.Get(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	membership, err := membershipOrNil(ctx, r.membershipRepo, principal, groupID)
	if err != nil {
		return nil, nil, err
	}
	return group, membership, nil
}

// applyMetadataUpdate applies the non-secret fields of a partial update to the
// record, recording the previous value and name of every field that actually
// changes.
func applyMetadataUpdate(
	record *domain.Record,
	input domain.RecordUpdateInput,
	previous map[string]any,
	changed *[]string,
) {
	if input.Title != nil && *input.Title != record.Title {
		previous["title"] = record.Title
		record.Title = *input.Title
		*changed = append(*changed, "title")
	}
	if input.Username != nil && *input.Username != record.Username {
		previous["username"] = record.Username
		record.Username = *input.Username
		*changed = append(*changed, "username")
	}
	if input.URL != nil && *input.URL != record.URL {
		previous["url"] = record.URL
		record.URL = *input.URL
		*changed = append(*changed, "url")
	}
	if input.Notes != nil && *input.Notes != record.Notes {
		previous["notes"] = record.Notes
		record.Notes = *input.Notes
		*changed = append(*changed, "notes")
	}
	if input.CustomFields != nil && !maps.Equal(input.CustomFields, record.CustomFields) {
		previous["custom_fields"] = record.CustomFields
		record.CustomFields = input.CustomFields
		*changed = append(*changed, "custom_fields")
	}
	if input.Tags != nil && !slices.Equal(input.Tags, record.Tags) {
		previous["tags"] = record.Tags
		record.Tags = input.Tags
		*changed = append(*changed, "tags")
	}
	if input.Priority != nil && *input.Priority != record.Priority {
		previous["priority"] = string(record.Priority)
		record.Priority = *input.Priority
		*changed = append(*changed, "priority")
	}
	if input.DirectoryID != nil && !uuidPtrEqual(input.DirectoryID, record.DirectoryID) {
		previous["directory_id"] = record.DirectoryID
		record.DirectoryID = input.DirectoryID
		*changed = append(*changed, "directory_id")
	}
	if input.IsFavorite != nil && *input.IsFavorite != record.IsFavorite {
		previous["is_favorite"] = record.IsFavorite
		record.IsFavorite = *input.IsFavorite
		*changed = append(*changed, "is_favorite")
	}
	if input.ExpiresAt != nil && !timePtrEqual(input.ExpiresAt, record.ExpiresAt) {
		previous["expires_at"] = record.ExpiresAt
		record.ExpiresAt = input.ExpiresAt
		*changed = append(*changed, "expires_at")
	}
}

// timePtrEqual compares two optional timestamps, treating nil as equal only
// to nil.
func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
