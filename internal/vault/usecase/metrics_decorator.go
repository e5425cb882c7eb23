package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/passkeep/passkeep/internal/metrics"
	"github.com/passkeep/passkeep/internal/vault/domain"
)

// recordUseCaseWithMetrics decorates RecordUseCase with metrics instrumentation.
type recordUseCaseWithMetrics struct {
	next    RecordUseCase
	metrics metrics.BusinessMetrics
}

// NewRecordUseCaseWithMetrics wraps a RecordUseCase with metrics recording.
func NewRecordUseCaseWithMetrics(useCase RecordUseCase, m metrics.BusinessMetrics) RecordUseCase {
	return &recordUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (r *recordUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	r.metrics.RecordOperation(ctx, "vault", operation, status)
	r.metrics.RecordDuration(ctx, "vault", operation, time.Since(start), status)
}

func (r *recordUseCaseWithMetrics) CreateRecord(
	ctx context.Context,
	principal, groupID uuid.UUID,
	input domain.RecordInput,
) (*domain.Record, error) {
	start := time.Now()
	record, err := r.next.CreateRecord(ctx, principal, groupID, input)
	r.record(ctx, "record_create", start, err)
	return record, err
}

func (r *recordUseCaseWithMetrics) GetRecord(
	ctx context.Context,
	principal, recordID uuid.UUID,
) (*domain.Record, error) {
	start := time.Now()
	record, err := r.next.GetRecord(ctx, principal, recordID)
	r.record(ctx, "record_get", start, err)
	return record, err
}

func (r *recordUseCaseWithMetrics) RevealSecret(
	ctx context.Context,
	principal, recordID uuid.UUID,
	meta AccessMeta,
) (*domain.Record, error) {
	start := time.Now()
	record, err := r.next.RevealSecret(ctx, principal, recordID, meta)
	r.record(ctx, "secret_reveal", start, err)
	return record, err
}

func (r *recordUseCaseWithMetrics) UpdateRecord(
	ctx context.Context,
	principal, recordID uuid.UUID,
	input domain.RecordUpdateInput,
) (*domain.Record, error) {
	start := time.Now()
	record, err := r.next.UpdateRecord(ctx, principal, recordID, input)
	r.record(ctx, "record_update", start, err)
	return record, err
}

func (r *recordUseCaseWithMetrics) DeleteRecord(ctx context.Context, principal, recordID uuid.UUID) error {
	start := time.Now()
	err := r.next.DeleteRecord(ctx, principal, recordID)
	r.record(ctx, "record_delete", start, err)
	return err
}

func (r *recordUseCaseWithMetrics) PurgeRecord(ctx context.Context, principal, recordID uuid.UUID) error {
	start := time.Now()
	err := r.next.PurgeRecord(ctx, principal, recordID)
	r.record(ctx, "record_purge", start, err)
	return err
}

func (r *recordUseCaseWithMetrics) RestoreRecord(
	ctx context.Context,
	principal, recordID uuid.UUID,
) (*domain.Record, error) {
	start := time.Now()
	record, err := r.next.RestoreRecord(ctx, principal, recordID)
	r.record(ctx, "record_restore", start, err)
	return record, err
}

func (r *recordUseCaseWithMetrics) SearchRecords(
	ctx context.Context,
	principal uuid.UUID,
	filter domain.SearchFilter,
) ([]*domain.Record, error) {
	start := time.Now()
	records, err := r.next.SearchRecords(ctx, principal, filter)
	r.record(ctx, "record_search", start, err)
	return records, err
}

func (r *recordUseCaseWithMetrics) ListDeletedRecords(
	ctx context.Context,
	principal, groupID uuid.UUID,
) ([]*domain.Record, error) {
	start := time.Now()
	records, err := r.next.ListDeletedRecords(ctx, principal, groupID)
	r.record(ctx, "record_list_deleted", start, err)
	return records, err
}

func (r *recordUseCaseWithMetrics) GetHistory(
	ctx context.Context,
	principal, recordID uuid.UUID,
) ([]*domain.HistoryEntry, error) {
	start := time.Now()
	entries, err := r.next.GetHistory(ctx, principal, recordID)
	r.record(ctx, "record_history", start, err)
	return entries, err
}

func (r *recordUseCaseWithMetrics) GetAccessLog(
	ctx context.Context,
	principal, recordID uuid.UUID,
	limit int,
) ([]*domain.AccessLogEntry, error) {
	start := time.Now()
	entries, err := r.next.GetAccessLog(ctx, principal, recordID, limit)
	r.record(ctx, "record_access_log", start, err)
	return entries, err
}
