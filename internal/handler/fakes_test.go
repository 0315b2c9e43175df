package handler

import (
	"context"
	"strings"
	"sync"

	"github.com/iliyamo/notes-backend/internal/model"
	"github.com/iliyamo/notes-backend/internal/repository"
)

// memUserStore is an in-memory repository.UserStore with the same
// visibility rules as the real one: soft-deleted rows read back as
// ErrNotFound, login uniqueness is enforced among live rows.
type memUserStore struct {
	mu     sync.Mutex
	nextID uint64
	users  map[uint64]model.User
	audit  *memAudit
}

func newMemUserStore(audit *memAudit) *memUserStore {
	return &memUserStore{nextID: 1, users: map[uint64]model.User{}, audit: audit}
}

func (s *memUserStore) add(u model.User) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = s.nextID
	s.nextID++
	s.users[u.ID] = u
	return u
}

func (s *memUserStore) loginTaken(login string, exceptID uint64) bool {
	for _, u := range s.users {
		if !u.Deleted && u.Login == login && u.ID != exceptID {
			return true
		}
	}
	return false
}

func (s *memUserStore) Create(_ context.Context, u *model.User, actor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loginTaken(u.Login, 0) {
		return repository.ErrLoginExists
	}
	u.ID = s.nextID
	s.nextID++
	s.users[u.ID] = *u
	s.audit.Record(context.Background(), actor, "user", "create", u.ID)
	return nil
}

func (s *memUserStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || u.Deleted {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (s *memUserStore) GetByLogin(_ context.Context, login string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if !u.Deleted && u.Login == login {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (s *memUserStore) List(_ context.Context, f repository.UserFilter, p repository.PageRequest) ([]model.User, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []model.User
	for id := uint64(1); id < s.nextID; id++ {
		u, ok := s.users[id]
		if !ok || u.Deleted {
			continue
		}
		if f.Login != "" && !strings.Contains(u.Login, f.Login) {
			continue
		}
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.Status != "" && u.Status != f.Status {
			continue
		}
		all = append(all, u)
	}
	return page(all, p), len(all), nil
}

func (s *memUserStore) Update(_ context.Context, u *model.User, actor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.users[u.ID]
	if !ok || cur.Deleted {
		return repository.ErrNotFound
	}
	if s.loginTaken(u.Login, u.ID) {
		return repository.ErrLoginExists
	}
	s.users[u.ID] = *u
	s.audit.Record(context.Background(), actor, "user", "update", u.ID)
	return nil
}

func (s *memUserStore) SoftDelete(_ context.Context, id uint64, actor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || u.Deleted {
		return repository.ErrNotFound
	}
	u.Deleted = true
	s.users[id] = u
	s.audit.Record(context.Background(), actor, "user", "delete", id)
	return nil
}

// memNoteStore is the note counterpart of memUserStore.
type memNoteStore struct {
	mu     sync.Mutex
	nextID uint64
	notes  map[uint64]model.Note
	audit  *memAudit
}

func newMemNoteStore(audit *memAudit) *memNoteStore {
	return &memNoteStore{nextID: 1, notes: map[uint64]model.Note{}, audit: audit}
}

func (s *memNoteStore) Create(_ context.Context, n *model.Note, actor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n.ID = s.nextID
	s.nextID++
	s.notes[n.ID] = *n
	s.audit.Record(context.Background(), actor, "note", "create", n.ID)
	return nil
}

func (s *memNoteStore) GetByID(_ context.Context, id uint64) (model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notes[id]
	if !ok || n.Deleted {
		return model.Note{}, repository.ErrNotFound
	}
	return n, nil
}

func (s *memNoteStore) List(_ context.Context, f repository.NoteFilter, p repository.PageRequest) ([]model.Note, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []model.Note
	for id := uint64(1); id < s.nextID; id++ {
		n, ok := s.notes[id]
		if !ok || n.Deleted {
			continue
		}
		if f.OwnerID != 0 && n.UserID != f.OwnerID {
			continue
		}
		if f.Name != "" && !strings.Contains(n.Name, f.Name) {
			continue
		}
		if f.Description != "" && !strings.Contains(n.Description, f.Description) {
			continue
		}
		all = append(all, n)
	}
	return page(all, p), len(all), nil
}

func (s *memNoteStore) Update(_ context.Context, n *model.Note, actor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.notes[n.ID]
	if !ok || cur.Deleted {
		return repository.ErrNotFound
	}
	s.notes[n.ID] = *n
	s.audit.Record(context.Background(), actor, "note", "update", n.ID)
	return nil
}

func (s *memNoteStore) SoftDelete(_ context.Context, id uint64, actor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notes[id]
	if !ok || n.Deleted {
		return repository.ErrNotFound
	}
	n.Deleted = true
	s.notes[id] = n
	s.audit.Record(context.Background(), actor, "note", "delete", id)
	return nil
}

func page[T any](all []T, p repository.PageRequest) []T {
	lo := p.Page * p.Size
	if lo >= len(all) {
		return nil
	}
	hi := lo + p.Size
	if hi > len(all) {
		hi = len(all)
	}
	return all[lo:hi]
}

// auditEntry is one recorded revision, as seen by the stores.
type auditEntry struct {
	Actor    string
	Entity   string
	Action   string
	EntityID uint64
}

// memAudit records revisions in memory so tests can assert who did what.
type memAudit struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (a *memAudit) Record(_ context.Context, actor, entity, action string, entityID uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, auditEntry{Actor: actor, Entity: entity, Action: action, EntityID: entityID})
}

func (a *memAudit) last() (auditEntry, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.entries) == 0 {
		return auditEntry{}, false
	}
	return a.entries[len(a.entries)-1], true
}
