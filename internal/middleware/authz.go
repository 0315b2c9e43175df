package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/notes-backend/internal/auth"
	"github.com/iliyamo/notes-backend/internal/model"
	"github.com/iliyamo/notes-backend/internal/repository"
	"github.com/iliyamo/notes-backend/internal/utils"
)

// Rule maps one route (or route prefix) and verb onto a minimum role.
// Exactly one of Path or Prefix is set: Path matches the registered echo
// route pattern exactly, Prefix matches any route under it.  An empty
// Method matches every verb.  Public rules skip authentication entirely.
type Rule struct {
	Method  string
	Path    string
	Prefix  string
	Public  bool
	MinRole auth.Role
}

// DefaultPolicy is the route security table.  Evaluation is exact rules
// first, then the longest matching prefix; anything unmatched requires
// ADMIN, so a route added without a rule is closed, not open.
func DefaultPolicy() []Rule {
	return []Rule{
		{Method: http.MethodGet, Path: "/", Public: true},
		{Method: http.MethodGet, Path: "/healthz", Public: true},
		{Prefix: "/public/", Public: true},
		{Method: http.MethodPost, Path: "/auth/logout", MinRole: auth.RoleUser},
		{Method: http.MethodGet, Path: "/users/current", MinRole: auth.RoleUser},
		{Method: http.MethodPut, Path: "/users/:id", MinRole: auth.RoleUser},
		{Prefix: "/notes", MinRole: auth.RoleUser},
	}
}

// match resolves the applicable rule for a request.  Exact path rules
// win over prefix rules; among prefix rules the longest prefix wins.
// The fallback rule requires the highest role.
func match(rules []Rule, method, path string) Rule {
	for _, r := range rules {
		if r.Path != "" && r.Path == path && (r.Method == "" || r.Method == method) {
			return r
		}
	}
	best := Rule{MinRole: auth.RoleAdmin} // fail-closed default
	bestLen := -1
	for _, r := range rules {
		if r.Prefix == "" || (r.Method != "" && r.Method != method) {
			continue
		}
		if strings.HasPrefix(path, r.Prefix) && len(r.Prefix) > bestLen {
			best = r
			bestLen = len(r.Prefix)
		}
	}
	return best
}

// Authenticate returns the middleware that guards every route.  For each
// request it resolves the policy rule, and unless the route is public:
// extracts the bearer token, verifies it, re-resolves the user by the
// token's subject id (so role or status changes take effect immediately,
// the one lookup stateless tokens cannot avoid), binds the principal to
// the request context, and finally enforces the rule's minimum role.
//
// All authentication failures are a uniform 401; only a known caller
// with an insufficient role gets a 403.  Nothing beyond that is leaked.
func Authenticate(secret string, users repository.UserStore, rules []Rule) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			rule := match(rules, req.Method, c.Path())
			if rule.Public {
				return next(c)
			}

			header := req.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			claims, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				// Malformed, tampered and expired all collapse to the
				// same response; the reason is not the client's business.
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}

			// The token proves a past login; the account is re-read so a
			// block, role change or delete since issuance is honored now.
			u, err := users.GetByID(req.Context(), claims.UserID)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}
			if u.Status != model.StatusActive {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}
			role, ok := auth.ParseRole(u.Role)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}

			p := auth.Principal{ID: u.ID, Login: u.Login, Role: role}
			auth.SetPrincipal(c, p)

			if !role.Satisfies(rule.MinRole) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
