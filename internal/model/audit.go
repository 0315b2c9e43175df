package model

import "time"

// AuditRevision is one row of the append-only `audit_revision` table.
// A revision is written for every committed mutation of an audited
// entity (users and notes).  Username is never empty: when no caller is
// resolvable a fixed fallback identity is stamped instead.
type AuditRevision struct {
	ID       uint64    // audit_revision.id (monotonic)
	Ts       time.Time // audit_revision.ts
	Username string    // audit_revision.username (acting login)
}
