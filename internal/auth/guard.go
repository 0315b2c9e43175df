package auth

// CanAccess is the record-level ownership predicate.  Admins can reach
// any record; a regular user only records whose owner id equals their
// own.  Route-level role checks have already run by the time this is
// consulted, so it only has to answer the per-record question.
func CanAccess(p Principal, ownerID uint64) bool {
	if p.Role == RoleAdmin {
		return true
	}
	return p.ID == ownerID
}

// IsSelf reports whether the given user id is the caller's own account.
// Deleting one's own account is rejected unconditionally, whatever the
// role, so an admin cannot lock themselves out mid-session.
func IsSelf(p Principal, userID uint64) bool {
	return p.ID == userID
}

// FallbackLogin is recorded on audit revisions when no authenticated
// caller is resolvable (bootstrap, background jobs).  Revisions must
// never carry an empty acting login.
const FallbackLogin = "admin"

// ActingLogin returns the login to stamp on an audit revision: the
// current caller's, or FallbackLogin when the request is unauthenticated.
// It never fails; audit capture runs on commit paths where an error must
// not abort the write.
func ActingLogin(p Principal, ok bool) string {
	if !ok || p.Login == "" {
		return FallbackLogin
	}
	return p.Login
}
