package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/notes-backend/internal/model"
)

// NoteRepo is the MySQL-backed NoteStore.
type NoteRepo struct {
	DB    *sql.DB
	Audit AuditRecorder
}

func NewNoteRepo(db *sql.DB, audit AuditRecorder) *NoteRepo {
	return &NoteRepo{DB: db, Audit: audit}
}

const noteColumns = "id,name,description,deleted,user_id,created_at,updated_at"

func scanNote(row *sql.Row) (model.Note, error) {
	var n model.Note
	err := row.Scan(&n.ID, &n.Name, &n.Description, &n.Deleted, &n.UserID,
		&n.CreatedAt, &n.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Note{}, ErrNotFound
	}
	return n, err
}

// Create inserts a note owned by n.UserID and stamps a revision.
func (r *NoteRepo) Create(ctx context.Context, n *model.Note, actor string) error {
	now := time.Now().UTC()
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO notes (name, description, deleted, user_id, created_at, updated_at) VALUES (?,?,0,?,?,?)",
		n.Name, n.Description, n.UserID, now, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = uint64(id)
	n.CreatedAt = now
	n.UpdatedAt = now
	if r.Audit != nil {
		r.Audit.Record(ctx, actor, "note", "create", n.ID)
	}
	return nil
}

// GetByID fetches a non-deleted note by id.  Ownership is not checked
// here; the handler decides whether the caller may see the row.
func (r *NoteRepo) GetByID(ctx context.Context, id uint64) (model.Note, error) {
	return scanNote(r.DB.QueryRowContext(ctx,
		"SELECT "+noteColumns+" FROM notes WHERE id=? AND deleted=0 LIMIT 1", id))
}

// List returns a page of non-deleted notes matching the filter and the
// total match count.  A non-zero OwnerID confines the listing to that
// user's notes, which is how regular users are kept inside their own
// data on enumeration.
func (r *NoteRepo) List(ctx context.Context, f NoteFilter, p PageRequest) ([]model.Note, int, error) {
	where := "deleted=0"
	args := []interface{}{}
	if f.OwnerID != 0 {
		where += " AND user_id=?"
		args = append(args, f.OwnerID)
	}
	if f.Name != "" {
		where += " AND name LIKE ?"
		args = append(args, "%"+f.Name+"%")
	}
	if f.Description != "" {
		where += " AND description LIKE ?"
		args = append(args, "%"+f.Description+"%")
	}

	var total int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notes WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, p.Size, p.Page*p.Size)
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+noteColumns+" FROM notes WHERE "+where+" ORDER BY id LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	notes := []model.Note{}
	for rows.Next() {
		var n model.Note
		if err := rows.Scan(&n.ID, &n.Name, &n.Description, &n.Deleted, &n.UserID,
			&n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, 0, err
		}
		notes = append(notes, n)
	}
	return notes, total, rows.Err()
}

// Update persists name/description changes and stamps a revision.  The
// owner column is deliberately not part of the statement; ownership is
// immutable.
func (r *NoteRepo) Update(ctx context.Context, n *model.Note, actor string) error {
	now := time.Now().UTC()
	res, err := r.DB.ExecContext(ctx,
		"UPDATE notes SET name=?, description=?, updated_at=? WHERE id=? AND deleted=0",
		n.Name, n.Description, now, n.ID)
	if err != nil {
		return err
	}
	if rowsAffected, _ := res.RowsAffected(); rowsAffected == 0 {
		return ErrNotFound
	}
	n.UpdatedAt = now
	if r.Audit != nil {
		r.Audit.Record(ctx, actor, "note", "update", n.ID)
	}
	return nil
}

// SoftDelete flips the deleted flag on a note.
func (r *NoteRepo) SoftDelete(ctx context.Context, id uint64, actor string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE notes SET deleted=1, updated_at=? WHERE id=? AND deleted=0",
		time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if rowsAffected, _ := res.RowsAffected(); rowsAffected == 0 {
		return ErrNotFound
	}
	if r.Audit != nil {
		r.Audit.Record(ctx, actor, "note", "delete", id)
	}
	return nil
}
