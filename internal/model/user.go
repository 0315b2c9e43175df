package model

import "time"

// User statuses stored in users.status.  Only ACTIVE accounts may
// authenticate; anything else is treated the same as a missing account.
const (
	StatusActive  = "ACTIVE"
	StatusBlocked = "BLOCKED"
)

// User represents an application account as stored in the `users` table.
// Each field corresponds to a column.  The json tags are omitted because
// these structs are used by the repository layer; handlers define
// separate response types with appropriate JSON tags.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Login        – unique login, matched case-sensitively (utf8mb4_bin).
//  PasswordHash – bcrypt hashed password; never leaves the server.
//  Role         – role name (USER or ADMIN).
//  Status       – account status (ACTIVE or BLOCKED).
//  Deleted      – soft-delete flag; rows are never hard-deleted.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Login        string    // users.login
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	Status       string    // users.status
	Deleted      bool      // users.deleted
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
