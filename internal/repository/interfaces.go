package repository

import (
	"context"

	"github.com/iliyamo/notes-backend/internal/model"
)

// PageRequest carries list pagination.  Page is zero-based.
type PageRequest struct {
	Page int
	Size int
}

// UserFilter narrows user listings.  Login matches as a substring;
// Role and Status match exactly.  Empty fields are ignored.
type UserFilter struct {
	Login  string
	Role   string
	Status string
}

// NoteFilter narrows note listings.  Name and Description match as
// substrings.  OwnerID restricts the result to one owner's notes; zero
// means no ownership restriction (admin view).
type NoteFilter struct {
	Name        string
	Description string
	OwnerID     uint64
}

// UserStore is the persistence contract for accounts.  Mutations take
// the acting login so the store can stamp an audit revision on commit.
// Reads never return soft-deleted rows; they come back as ErrNotFound.
type UserStore interface {
	Create(ctx context.Context, u *model.User, actor string) error
	GetByID(ctx context.Context, id uint64) (model.User, error)
	GetByLogin(ctx context.Context, login string) (model.User, error)
	List(ctx context.Context, f UserFilter, p PageRequest) ([]model.User, int, error)
	Update(ctx context.Context, u *model.User, actor string) error
	SoftDelete(ctx context.Context, id uint64, actor string) error
}

// NoteStore is the persistence contract for notes.
type NoteStore interface {
	Create(ctx context.Context, n *model.Note, actor string) error
	GetByID(ctx context.Context, id uint64) (model.Note, error)
	List(ctx context.Context, f NoteFilter, p PageRequest) ([]model.Note, int, error)
	Update(ctx context.Context, n *model.Note, actor string) error
	SoftDelete(ctx context.Context, id uint64, actor string) error
}

// AuditRecorder captures one revision per committed write.  Record never
// returns an error: it runs on commit paths where a logging concern must
// not abort an otherwise-valid write, so failures are logged and
// swallowed inside the implementation.
type AuditRecorder interface {
	Record(ctx context.Context, actor, entity, action string, entityID uint64)
}
