package model

import "time"

// Note represents a row in the `notes` table.  Every note belongs to
// exactly one user (its creator); ownership never changes after insert.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – short title of the note.
//  Description – body text.
//  Deleted     – soft-delete flag; deleted notes are invisible to the API.
//  UserID      – owner of the note (users.id).
//  CreatedAt   – timestamp of creation.
//  UpdatedAt   – timestamp of last update.
type Note struct {
	ID          uint64    // notes.id
	Name        string    // notes.name
	Description string    // notes.description
	Deleted     bool      // notes.deleted
	UserID      uint64    // notes.user_id
	CreatedAt   time.Time // notes.created_at
	UpdatedAt   time.Time // notes.updated_at
}
