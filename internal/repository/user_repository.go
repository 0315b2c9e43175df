package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/notes-backend/internal/model"
)

// UserRepo is the MySQL-backed UserStore.  Audit may be nil in tests;
// when set, every committed mutation stamps one revision.
type UserRepo struct {
	DB    *sql.DB
	Audit AuditRecorder
}

func NewUserRepo(db *sql.DB, audit AuditRecorder) *UserRepo {
	return &UserRepo{DB: db, Audit: audit}
}

var ErrLoginExists = errors.New("login already exists")

const userColumns = "id,login,password_hash,role,status,deleted,created_at,updated_at"

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Login, &u.PasswordHash, &u.Role, &u.Status,
		&u.Deleted, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// Create inserts a user and stamps a revision.  The login column uses a
// binary collation, so uniqueness is case-sensitive like the lookup.
func (r *UserRepo) Create(ctx context.Context, u *model.User, actor string) error {
	now := time.Now().UTC()
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (login, password_hash, role, status, deleted, created_at, updated_at) VALUES (?,?,?,?,0,?,?)",
		u.Login, u.PasswordHash, u.Role, u.Status, now, now)
	if err != nil {
		// MySQL duplicate-key error code 1062 on the unique login index.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrLoginExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	u.CreatedAt = now
	u.UpdatedAt = now
	if r.Audit != nil {
		r.Audit.Record(ctx, actor, "user", "create", u.ID)
	}
	return nil
}

// GetByLogin fetches a non-deleted user by exact login.  The column
// collation (utf8mb4_bin) makes the comparison case-sensitive.
func (r *UserRepo) GetByLogin(ctx context.Context, login string) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE login=? AND deleted=0 LIMIT 1", login))
}

// GetByID fetches a non-deleted user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? AND deleted=0 LIMIT 1", id))
}

// List returns a page of non-deleted users matching the filter plus the
// total match count for pagination.
func (r *UserRepo) List(ctx context.Context, f UserFilter, p PageRequest) ([]model.User, int, error) {
	where := "deleted=0"
	args := []interface{}{}
	if f.Login != "" {
		where += " AND login LIKE ?"
		args = append(args, "%"+f.Login+"%")
	}
	if f.Role != "" {
		where += " AND role=?"
		args = append(args, f.Role)
	}
	if f.Status != "" {
		where += " AND status=?"
		args = append(args, f.Status)
	}

	var total int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, p.Size, p.Page*p.Size)
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE "+where+" ORDER BY id LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Login, &u.PasswordHash, &u.Role, &u.Status,
			&u.Deleted, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

// Update persists the mutable fields of an already-loaded user and
// stamps a revision.  Soft-deleted rows are never matched.
func (r *UserRepo) Update(ctx context.Context, u *model.User, actor string) error {
	now := time.Now().UTC()
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET login=?, password_hash=?, role=?, status=?, updated_at=? WHERE id=? AND deleted=0",
		u.Login, u.PasswordHash, u.Role, u.Status, now, u.ID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrLoginExists
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	u.UpdatedAt = now
	if r.Audit != nil {
		r.Audit.Record(ctx, actor, "user", "update", u.ID)
	}
	return nil
}

// SoftDelete flips the deleted flag.  The row stays in place; nothing is
// ever hard-deleted through the API.
func (r *UserRepo) SoftDelete(ctx context.Context, id uint64, actor string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET deleted=1, updated_at=? WHERE id=? AND deleted=0",
		time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	if r.Audit != nil {
		r.Audit.Record(ctx, actor, "user", "delete", id)
	}
	return nil
}
