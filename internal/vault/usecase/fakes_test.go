package usecase

import (
	"context"
	"crypto/rand"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/passkeep/passkeep/internal/crypto/domain"
	cryptoService "github.com/passkeep/passkeep/internal/crypto/service"
	"github.com/passkeep/passkeep/internal/vault/domain"
	vaultService "github.com/passkeep/passkeep/internal/vault/service"
)

// fakeTxManager runs transactional functions directly. The usecases only
// require that repository calls inside the function observe each other, which
// the in-memory store gives for free.
type fakeTxManager struct{}

func (f *fakeTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeTxManager) WithSerializableTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// memStore is a shared in-memory backing store for the fake repositories.
type memStore struct {
	groups      map[uuid.UUID]*domain.Group
	memberships map[uuid.UUID]*domain.Membership
	directories map[uuid.UUID]*domain.Directory
	records     map[uuid.UUID]*domain.Record
	history     []*domain.HistoryEntry
	accessLog   []*domain.AccessLogEntry
}

func newMemStore() *memStore {
	return &memStore{
		groups:      make(map[uuid.UUID]*domain.Group),
		memberships: make(map[uuid.UUID]*domain.Membership),
		directories: make(map[uuid.UUID]*domain.Directory),
		records:     make(map[uuid.UUID]*domain.Record),
	}
}

type fakeGroupRepo struct{ store *memStore }

func (f *fakeGroupRepo) Create(_ context.Context, group *domain.Group) error {
	g := *group
	f.store.groups[group.ID] = &g
	return nil
}

func (f *fakeGroupRepo) Get(_ context.Context, id uuid.UUID) (*domain.Group, error) {
	group, ok := f.store.groups[id]
	if !ok {
		return nil, domain.ErrGroupNotFound
	}
	g := *group
	return &g, nil
}

func (f *fakeGroupRepo) GetByOwnerAndName(
	_ context.Context,
	ownerID uuid.UUID,
	name string,
) (*domain.Group, error) {
	for _, group := range f.store.groups {
		if group.OwnerID == ownerID && group.Name == name {
			g := *group
			return &g, nil
		}
	}
	return nil, domain.ErrGroupNotFound
}

func (f *fakeGroupRepo) Update(_ context.Context, group *domain.Group) error {
	g := *group
	f.store.groups[group.ID] = &g
	return nil
}

func (f *fakeGroupRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.store.groups, id)
	for mid, membership := range f.store.memberships {
		if membership.GroupID == id {
			delete(f.store.memberships, mid)
		}
	}
	for rid, record := range f.store.records {
		if record.GroupID == id {
			delete(f.store.records, rid)
		}
	}
	return nil
}

func (f *fakeGroupRepo) ListAccessible(_ context.Context, userID uuid.UUID) ([]*domain.Group, error) {
	var groups []*domain.Group
	for _, group := range f.store.groups {
		if group.OwnerID == userID {
			g := *group
			groups = append(groups, &g)
			continue
		}
		for _, membership := range f.store.memberships {
			if membership.GroupID == group.ID && membership.UserID == userID {
				g := *group
				groups = append(groups, &g)
				break
			}
		}
	}
	return groups, nil
}

type fakeMembershipRepo struct{ store *memStore }

func (f *fakeMembershipRepo) Create(_ context.Context, membership *domain.Membership) error {
	m := *membership
	f.store.memberships[membership.ID] = &m
	return nil
}

func (f *fakeMembershipRepo) GetByUserAndGroup(
	_ context.Context,
	userID, groupID uuid.UUID,
) (*domain.Membership, error) {
	for _, membership := range f.store.memberships {
		if membership.UserID == userID && membership.GroupID == groupID {
			m := *membership
			return &m, nil
		}
	}
	return nil, domain.ErrMembershipNotFound
}

func (f *fakeMembershipRepo) UpdateRole(_ context.Context, id uuid.UUID, role domain.Role) error {
	membership, ok := f.store.memberships[id]
	if !ok {
		return domain.ErrMembershipNotFound
	}
	membership.Role = role
	return nil
}

func (f *fakeMembershipRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.store.memberships, id)
	return nil
}

func (f *fakeMembershipRepo) ListByGroup(
	_ context.Context,
	groupID uuid.UUID,
) ([]*domain.Membership, error) {
	var memberships []*domain.Membership
	for _, membership := range f.store.memberships {
		if membership.GroupID == groupID {
			m := *membership
			memberships = append(memberships, &m)
		}
	}
	return memberships, nil
}

type fakeDirectoryRepo struct{ store *memStore }

func (f *fakeDirectoryRepo) Create(_ context.Context, directory *domain.Directory) error {
	d := *directory
	f.store.directories[directory.ID] = &d
	return nil
}

func (f *fakeDirectoryRepo) Get(_ context.Context, id uuid.UUID) (*domain.Directory, error) {
	directory, ok := f.store.directories[id]
	if !ok {
		return nil, domain.ErrDirectoryNotFound
	}
	d := *directory
	return &d, nil
}

func (f *fakeDirectoryRepo) ExistsSibling(
	_ context.Context,
	groupID uuid.UUID,
	parentID *uuid.UUID,
	name string,
) (bool, error) {
	for _, directory := range f.store.directories {
		if directory.GroupID == groupID &&
			uuidPtrEqual(directory.ParentID, parentID) &&
			directory.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeDirectoryRepo) Update(_ context.Context, directory *domain.Directory) error {
	d := *directory
	f.store.directories[directory.ID] = &d
	return nil
}

func (f *fakeDirectoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.store.directories, id)
	return nil
}

func (f *fakeDirectoryRepo) ListByGroup(
	_ context.Context,
	groupID uuid.UUID,
) ([]*domain.Directory, error) {
	var directories []*domain.Directory
	for _, directory := range f.store.directories {
		if directory.GroupID == groupID {
			d := *directory
			directories = append(directories, &d)
		}
	}
	return directories, nil
}

type fakeRecordRepo struct{ store *memStore }

func (f *fakeRecordRepo) Create(_ context.Context, record *domain.Record) error {
	r := *record
	f.store.records[record.ID] = &r
	return nil
}

func (f *fakeRecordRepo) Get(_ context.Context, id uuid.UUID) (*domain.Record, error) {
	record, ok := f.store.records[id]
	if !ok || record.IsDeleted {
		return nil, domain.ErrRecordNotFound
	}
	r := *record
	return &r, nil
}

func (f *fakeRecordRepo) GetAny(_ context.Context, id uuid.UUID) (*domain.Record, error) {
	record, ok := f.store.records[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	r := *record
	return &r, nil
}

func (f *fakeRecordRepo) Update(_ context.Context, record *domain.Record) error {
	r := *record
	f.store.records[record.ID] = &r
	return nil
}

func (f *fakeRecordRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.store.records, id)
	f.store.history = slices.DeleteFunc(f.store.history, func(e *domain.HistoryEntry) bool {
		return e.RecordID == id
	})
	f.store.accessLog = slices.DeleteFunc(f.store.accessLog, func(e *domain.AccessLogEntry) bool {
		return e.RecordID == id
	})
	return nil
}

func (f *fakeRecordRepo) TouchAccess(_ context.Context, id uuid.UUID, accessedAt time.Time) error {
	record, ok := f.store.records[id]
	if !ok {
		return domain.ErrRecordNotFound
	}
	at := accessedAt
	record.LastAccessed = &at
	record.AccessCount++
	return nil
}

func (f *fakeRecordRepo) Search(
	_ context.Context,
	groupIDs []uuid.UUID,
	filter domain.SearchFilter,
) ([]*domain.Record, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}

	var records []*domain.Record
	for _, record := range f.store.records {
		if record.IsDeleted || !slices.Contains(groupIDs, record.GroupID) {
			continue
		}
		if filter.Query != "" && !matchesQuery(record, filter.Query) {
			continue
		}
		if filter.Priority != nil && record.Priority != *filter.Priority {
			continue
		}
		if filter.IsFavorite != nil && record.IsFavorite != *filter.IsFavorite {
			continue
		}
		if !hasAllTags(record.Tags, filter.Tags) {
			continue
		}
		if filter.ExpiresSoon {
			bound := time.Now().UTC().AddDate(0, 0, domain.ExpiresSoonDays)
			if record.ExpiresAt == nil || record.ExpiresAt.After(bound) {
				continue
			}
		}
		r := *record
		records = append(records, &r)
	}

	slices.SortFunc(records, func(a, b *domain.Record) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return records, nil
}

func (f *fakeRecordRepo) ListDeletedByGroup(
	_ context.Context,
	groupID uuid.UUID,
) ([]*domain.Record, error) {
	var records []*domain.Record
	for _, record := range f.store.records {
		if record.GroupID == groupID && record.IsDeleted {
			r := *record
			records = append(records, &r)
		}
	}
	return records, nil
}

func matchesQuery(record *domain.Record, query string) bool {
	q := strings.ToLower(query)
	for _, field := range []string{record.Title, record.Username, record.URL, record.Notes} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func hasAllTags(recordTags, wanted []string) bool {
	for _, tag := range wanted {
		if !slices.Contains(recordTags, tag) {
			return false
		}
	}
	return true
}

type fakeHistoryRepo struct{ store *memStore }

func (f *fakeHistoryRepo) Create(_ context.Context, entry *domain.HistoryEntry) error {
	e := *entry
	f.store.history = append(f.store.history, &e)
	return nil
}

func (f *fakeHistoryRepo) ListByRecord(
	_ context.Context,
	recordID uuid.UUID,
) ([]*domain.HistoryEntry, error) {
	var entries []*domain.HistoryEntry
	// Append order is chronological; return newest first.
	for i := len(f.store.history) - 1; i >= 0; i-- {
		if f.store.history[i].RecordID == recordID {
			e := *f.store.history[i]
			entries = append(entries, &e)
		}
	}
	return entries, nil
}

type fakeAccessLogRepo struct{ store *memStore }

func (f *fakeAccessLogRepo) Create(_ context.Context, entry *domain.AccessLogEntry) error {
	e := *entry
	f.store.accessLog = append(f.store.accessLog, &e)
	return nil
}

func (f *fakeAccessLogRepo) ListByRecord(
	_ context.Context,
	recordID uuid.UUID,
	limit int,
) ([]*domain.AccessLogEntry, error) {
	var entries []*domain.AccessLogEntry
	for i := len(f.store.accessLog) - 1; i >= 0 && len(entries) < limit; i-- {
		if f.store.accessLog[i].RecordID == recordID {
			e := *f.store.accessLog[i]
			entries = append(entries, &e)
		}
	}
	return entries, nil
}

// stubGroupKeys wraps group keys with the identity transform so tests can
// exercise the real derivation and AEAD path without a master keychain.
type stubGroupKeys struct{}

func (s *stubGroupKeys) Generate(_ context.Context) ([]byte, []byte, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, nil, err
	}
	return slices.Clone(key), key, nil
}

func (s *stubGroupKeys) Unwrap(_ context.Context, wrapped []byte) ([]byte, error) {
	return slices.Clone(wrapped), nil
}

func testLimits() domain.Limits {
	return domain.Limits{
		MaxTitleLength:  255,
		MaxFieldLength:  1024,
		MaxNotesLength:  10000,
		MaxCustomFields: 50,
		MaxTags:         50,
	}
}

// fixture wires the usecases against the in-memory store with real crypto
// services behind the stub group key wrapper.
type fixture struct {
	store       *memStore
	groups      GroupUseCase
	memberships MembershipUseCase
	directories DirectoryUseCase
	records     RecordUseCase
}

func newFixture() *fixture {
	store := newMemStore()
	txManager := &fakeTxManager{}
	groupRepo := &fakeGroupRepo{store: store}
	membershipRepo := &fakeMembershipRepo{store: store}
	directoryRepo := &fakeDirectoryRepo{store: store}
	recordRepo := &fakeRecordRepo{store: store}
	historyRepo := &fakeHistoryRepo{store: store}
	accessLogRepo := &fakeAccessLogRepo{store: store}

	groupKeys := &stubGroupKeys{}
	policy := vaultService.NewAccessPolicy()
	limits := testLimits()

	return &fixture{
		store: store,
		groups: NewGroupService(
			txManager, groupRepo, membershipRepo, groupKeys, policy, limits,
		),
		memberships: NewMembershipService(txManager, groupRepo, membershipRepo, policy),
		directories: NewDirectoryService(
			txManager, groupRepo, membershipRepo, directoryRepo, policy, limits,
		),
		records: NewRecordService(
			txManager, groupRepo, membershipRepo, directoryRepo, recordRepo,
			historyRepo, accessLogRepo, groupKeys, cryptoService.NewAEADManager(),
			cryptoService.NewRecordKeyDeriver(1000), cryptoDomain.AESGCM, policy, limits,
		),
	}
}
