// Package auth holds the identity primitives shared by middleware and
// handlers: the role enumeration, the per-request principal and the
// record-level access guard.
package auth

// Role is a closed enumeration of the two account roles.  Roles are
// ordered: RoleAdmin dominates RoleUser, so an admin satisfies every
// check that asks for user-level access while the reverse never holds.
type Role uint8

const (
	RoleUser Role = iota + 1
	RoleAdmin
)

// ParseRole maps the stored string form (users.role column, JWT-free —
// the role is always re-read from the database) onto the enum.  Unknown
// strings yield ok=false so callers can fail closed.
func ParseRole(s string) (Role, bool) {
	switch s {
	case "USER":
		return RoleUser, true
	case "ADMIN":
		return RoleAdmin, true
	}
	return 0, false
}

// String returns the column/API representation of the role.
func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "ADMIN"
	case RoleUser:
		return "USER"
	}
	return "UNKNOWN"
}

// Satisfies reports whether a caller holding role r passes a check that
// requires at least min.  The ordering of the constants encodes the
// hierarchy, so a plain comparison is exhaustive.
func (r Role) Satisfies(min Role) bool {
	return r >= min
}
