package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/notes-backend/internal/auth"
	"github.com/iliyamo/notes-backend/internal/config"
	"github.com/iliyamo/notes-backend/internal/model"
	"github.com/iliyamo/notes-backend/internal/repository"
	"github.com/iliyamo/notes-backend/internal/utils"
)

// AuthHandler bundles dependencies for the login and logout endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users repository.UserStore
}

func NewAuthHandler(cfg config.Config, users repository.UserStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users}
}

type loginReq struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Login verifies a login/password pair and, on success, returns the
// signed access token in the Authorization response header together with
// the authenticated user's representation in the body.
//
// Every failure mode — unknown login, soft-deleted or blocked account,
// wrong password — produces the identical 401 body, so the endpoint
// cannot be used to enumerate logins.  The login comparison is exact and
// case-sensitive; no trimming or lowercasing happens here.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Login == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "login/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByLogin(ctx, req.Login)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if u.Status != model.StatusActive {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Login, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}

	c.Response().Header().Set(echo.HeaderAuthorization, "Bearer "+access.Token)
	return c.JSON(http.StatusOK, toUserResp(u))
}

// Logout drops the caller's identity for the remainder of this request.
// Tokens are stateless, so there is nothing server-side to revoke: an
// issued token stays technically valid until it expires.  This is a
// known, accepted limitation of the design, not an oversight.
func (h *AuthHandler) Logout(c echo.Context) error {
	auth.ClearPrincipal(c)
	return c.NoContent(http.StatusNoContent)
}
