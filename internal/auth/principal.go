package auth

import "github.com/labstack/echo/v4"

// principalKey is the context key under which the resolved caller is
// stored.  Echo allocates one context per in-flight request and discards
// it when the request ends, so the principal can never outlive its
// request or leak into another one; there is no shared holder to clear.
const principalKey = "principal"

// Principal is the resolved caller for one request: the identity row the
// authenticator re-read from the database, reduced to what authorization
// decisions need.
type Principal struct {
	ID    uint64
	Login string
	Role  Role
}

// SetPrincipal binds the resolved caller to the current request context.
// It is called exactly once per authenticated request, by the
// authenticator middleware.
func SetPrincipal(c echo.Context, p Principal) {
	c.Set(principalKey, p)
}

// CurrentPrincipal returns the caller bound to this request, if any.
// Handlers on protected routes can rely on ok being true because the
// authenticator rejects unauthenticated requests before they run.
func CurrentPrincipal(c echo.Context) (Principal, bool) {
	p, ok := c.Get(principalKey).(Principal)
	return p, ok
}

// ClearPrincipal removes the caller from the request context.  Logout
// uses it so the remainder of that one request runs unauthenticated;
// it has no effect on the token, which stays valid until expiry.
func ClearPrincipal(c echo.Context) {
	c.Set(principalKey, nil)
}
