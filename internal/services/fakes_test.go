package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/GregMSThompson/expenseflow/internal/errs"
	"github.com/GregMSThompson/expenseflow/internal/events"
	"github.com/GregMSThompson/expenseflow/internal/models"
	"github.com/GregMSThompson/expenseflow/internal/state"
	"github.com/GregMSThompson/expenseflow/pkg/helpers"
)

var errRemote = errors.New("remote unavailable")

// testSession is a state.Session backed by a real container.
type testSession struct {
	id *models.Identity
	c  *state.Container
}

func newGuestSession() *testSession {
	return &testSession{c: state.NewContainer(helpers.TestLogger())}
}

func newUserSession(uid, email string) *testSession {
	s := newGuestSession()
	s.id = &models.Identity{UID: uid, Email: email, DisplayName: "User " + uid}
	return s
}

func (s *testSession) Identity() *models.Identity { return s.id }
func (s *testSession) Snapshot() state.State      { return s.c.Snapshot() }
func (s *testSession) Dispatch(a state.Action)    { s.c.Dispatch(a) }

type stubTransactionStore struct {
	mu      sync.Mutex
	byOwner map[models.Owner][]models.Transaction
	added   []models.Transaction
	updated []models.Transaction
	deleted []models.TransactionRef
	nextID  int
	err     error
}

func (s *stubTransactionStore) List(_ context.Context, owner models.Owner) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.byOwner[owner], nil
}

func (s *stubTransactionStore) Add(_ context.Context, tx models.Transaction) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.nextID++
	s.added = append(s.added, tx)
	return fmt.Sprintf("srv-%d", s.nextID), nil
}

func (s *stubTransactionStore) Update(_ context.Context, tx models.Transaction) error {
	if s.err != nil {
		return s.err
	}
	s.updated = append(s.updated, tx)
	return nil
}

func (s *stubTransactionStore) Delete(_ context.Context, ref models.TransactionRef) error {
	s.deleted = append(s.deleted, ref)
	return s.err
}

type stubRecordStore[T any] struct {
	items   []T
	added   []T
	updated []string
	deleted []string
	err     error
}

func (s *stubRecordStore[T]) List(context.Context, string) ([]T, error) {
	return s.items, s.err
}

func (s *stubRecordStore[T]) Add(_ context.Context, _ string, rec T) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.added = append(s.added, rec)
	return fmt.Sprintf("rec-%d", len(s.added)), nil
}

func (s *stubRecordStore[T]) Update(_ context.Context, _, id string, _ T) error {
	if s.err != nil {
		return s.err
	}
	s.updated = append(s.updated, id)
	return nil
}

func (s *stubRecordStore[T]) Delete(_ context.Context, _, id string) error {
	s.deleted = append(s.deleted, id)
	return s.err
}

type stubPreferencesStore struct {
	settings   models.SettingsPatch
	categories []string
	found      bool
	merged     []models.SettingsPatch
	saved      [][]string
	err        error
}

func (s *stubPreferencesStore) GetSettings(context.Context, string) (models.SettingsPatch, error) {
	return s.settings, s.err
}

func (s *stubPreferencesStore) GetCategories(context.Context, string) ([]string, bool, error) {
	return s.categories, s.found, s.err
}

func (s *stubPreferencesStore) MergeSettings(_ context.Context, _ string, p models.SettingsPatch) error {
	if s.err != nil {
		return s.err
	}
	s.merged = append(s.merged, p)
	return nil
}

func (s *stubPreferencesStore) SetCategories(_ context.Context, _ string, list []string) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, list)
	return nil
}

// memoryProfiles keeps profiles in memory for sync and family tests.
type memoryProfiles struct {
	mu       sync.Mutex
	profiles map[string]models.Profile
	upserted []models.Identity
	cleared  []string
	deleted  []string
	err      error
}

func newMemoryProfiles() *memoryProfiles {
	return &memoryProfiles{profiles: map[string]models.Profile{}}
}

func (m *memoryProfiles) GetProfile(_ context.Context, uid string) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	p := m.profiles[uid]
	p.UID = uid
	return &p, nil
}

func (m *memoryProfiles) UpsertIdentity(_ context.Context, id models.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserted = append(m.upserted, id)
	return nil
}

func (m *memoryProfiles) SetFamily(_ context.Context, uid, familyID string, role models.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.profiles[uid]
	p.FamilyID, p.Role = familyID, role
	m.profiles[uid] = p
	return nil
}

func (m *memoryProfiles) ClearFamily(_ context.Context, uid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.profiles[uid]
	p.FamilyID, p.Role = "", ""
	m.profiles[uid] = p
	m.cleared = append(m.cleared, uid)
	return nil
}

func (m *memoryProfiles) DeleteAppData(_ context.Context, uid string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, uid)
	return nil
}

// memoryFamilies mirrors the Firestore family store, including deletion of
// a family whose member map becomes empty.
type memoryFamilies struct {
	mu       sync.Mutex
	families map[string]models.Family
	getErr   error
}

func newMemoryFamilies(fams ...models.Family) *memoryFamilies {
	m := &memoryFamilies{families: map[string]models.Family{}}
	for _, f := range fams {
		m.families[f.FamilyID] = f
	}
	return m
}

func copyFamily(f models.Family) *models.Family {
	out := f
	out.Members = map[string]models.Member{}
	for k, v := range f.Members {
		out.Members[k] = v
	}
	return &out
}

func (m *memoryFamilies) Get(_ context.Context, id string) (*models.Family, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	f, ok := m.families[id]
	if !ok {
		return nil, errs.NewNotFoundError("family not found")
	}
	return copyFamily(f), nil
}

func (m *memoryFamilies) Create(_ context.Context, f *models.Family) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.families[f.FamilyID]; ok {
		return errs.NewAlreadyExistsError("family already exists")
	}
	m.families[f.FamilyID] = *copyFamily(*f)
	return nil
}

func (m *memoryFamilies) Mutate(_ context.Context, id string, fn func(*models.Family) error) (*models.Family, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.families[id]
	if !ok {
		return nil, false, errs.NewNotFoundError("family not found")
	}
	f := copyFamily(cur)
	if err := fn(f); err != nil {
		return nil, false, err
	}
	if len(f.Members) == 0 {
		delete(m.families, id)
		return f, true, nil
	}
	m.families[id] = *copyFamily(*f)
	return f, false, nil
}

type memoryInvitations struct {
	mu      sync.Mutex
	items   map[string]models.Invitation
	nextID  int
	listErr error
}

func newMemoryInvitations(invs ...models.Invitation) *memoryInvitations {
	m := &memoryInvitations{items: map[string]models.Invitation{}}
	for _, inv := range invs {
		m.items[inv.ID] = inv
	}
	return m
}

func (m *memoryInvitations) Get(_ context.Context, id string) (*models.Invitation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.items[id]
	if !ok {
		return nil, errs.NewNotFoundError("invitation not found")
	}
	return &inv, nil
}

func (m *memoryInvitations) Create(_ context.Context, inv models.Invitation) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	inv.ID = fmt.Sprintf("inv-%d", m.nextID)
	m.items[inv.ID] = inv
	return inv.ID, nil
}

func (m *memoryInvitations) pending(match func(models.Invitation) bool) []models.Invitation {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Invitation{}
	for _, inv := range m.items {
		if inv.Status == models.InvitationPending && match(inv) {
			out = append(out, inv)
		}
	}
	return out
}

func (m *memoryInvitations) ListPendingForEmail(_ context.Context, email string) ([]models.Invitation, error) {
	return m.pending(func(i models.Invitation) bool { return i.InvitedEmail == email }), nil
}

func (m *memoryInvitations) ListPendingForFamily(_ context.Context, familyID string) ([]models.Invitation, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.pending(func(i models.Invitation) bool { return i.FamilyID == familyID }), nil
}

func (m *memoryInvitations) FindPending(_ context.Context, familyID, email string) (*models.Invitation, error) {
	found := m.pending(func(i models.Invitation) bool { return i.FamilyID == familyID && i.InvitedEmail == email })
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

func (m *memoryInvitations) SetStatus(_ context.Context, id string, st models.InvitationStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.items[id]
	if !ok {
		return errs.NewNotFoundError("invitation not found")
	}
	inv.Status = st
	m.items[id] = inv
	return nil
}

func (m *memoryInvitations) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

type recordingPublisher struct {
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) types() []string {
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type stubLocal struct {
	cleared int
	err     error
}

func (s *stubLocal) Clear(context.Context) error {
	s.cleared++
	return s.err
}

func fixedNow() time.Time {
	return time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
}
