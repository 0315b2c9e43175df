package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/notes-backend/internal/auth"
	"github.com/iliyamo/notes-backend/internal/config"
	"github.com/iliyamo/notes-backend/internal/model"
	"github.com/iliyamo/notes-backend/internal/repository"
	"github.com/iliyamo/notes-backend/internal/utils"
)

// UserHandler implements the /users endpoints.  Listing, fetching by
// id, creating and deleting are admin operations (enforced by the route
// policy); /users/current and updates are reachable by regular users,
// with updates additionally ownership-checked here.
type UserHandler struct {
	Cfg   config.Config
	Users repository.UserStore
}

func NewUserHandler(cfg config.Config, users repository.UserStore) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: users}
}

type userCreateReq struct {
	Login    string `json:"login"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// userUpdateReq carries a partial update.  Pointer fields distinguish
// "not provided" (nil) from an explicit value, so an omitted field never
// clobbers stored data and there is no reflection-driven merging.
type userUpdateReq struct {
	Login           *string `json:"login"`
	Role            *string `json:"role"`
	Status          *string `json:"status"`
	CurrentPassword *string `json:"current_password"`
	NewPassword     *string `json:"new_password"`
}

// List returns a page of users matching the optional login/role/status
// query filters.
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	f := repository.UserFilter{
		Login:  c.QueryParam("login"),
		Role:   c.QueryParam("role"),
		Status: c.QueryParam("status"),
	}
	p := pageRequest(c)
	users, total, err := h.Users.List(ctx, f, p)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	content := make([]userResp, 0, len(users))
	for _, u := range users {
		content = append(content, toUserResp(u))
	}
	return c.JSON(http.StatusOK, pagedResponse{Content: content, Page: p.Page, Size: p.Size, Total: total})
}

// GetByID returns one user; soft-deleted and unknown ids are both 404.
func (h *UserHandler) GetByID(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}

// Current returns the caller's own record.
func (h *UserHandler) Current(c echo.Context) error {
	p, ok := auth.CurrentPrincipal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, p.ID)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}

// Create registers a new account.  Only admins reach this handler; the
// acting admin's login is stamped on the audit revision.
func (h *UserHandler) Create(c echo.Context) error {
	var req userCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Login == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "login required"})
	}
	if !utils.ValidPassword(req.Password) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password does not meet requirements"})
	}
	role := auth.RoleUser.String()
	if req.Role != "" {
		r, ok := auth.ParseRole(req.Role)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
		}
		role = r.String()
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u := model.User{
		Login:        req.Login,
		PasswordHash: hash,
		Role:         role,
		Status:       model.StatusActive,
	}
	actor := actingLogin(c)
	if err := h.Users.Create(ctx, &u, actor); err != nil {
		if err == repository.ErrLoginExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "login already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	c.Response().Header().Set(echo.HeaderLocation, fmt.Sprintf("%s/%d", c.Request().URL.Path, u.ID))
	return c.JSON(http.StatusCreated, toUserResp(u))
}

// Update applies a partial update to a user record.  Regular users may
// only touch their own record and must prove knowledge of the current
// password to change it; admins may update anyone and set role/status.
func (h *UserHandler) Update(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	p, ok := auth.CurrentPrincipal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	// Ownership first: a user editing someone else's record is a write
	// on a foreign resource, which is forbidden rather than hidden.
	if !auth.CanAccess(p, id) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	var req userUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	isAdmin := p.Role == auth.RoleAdmin
	if (req.Role != nil || req.Status != nil) && !isAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	if req.Login != nil {
		if *req.Login == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "login must not be empty"})
		}
		u.Login = *req.Login
	}
	if req.Role != nil {
		r, ok := auth.ParseRole(*req.Role)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
		}
		u.Role = r.String()
	}
	if req.Status != nil {
		if *req.Status != model.StatusActive && *req.Status != model.StatusBlocked {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
		}
		u.Status = *req.Status
	}
	if req.NewPassword != nil {
		if !isAdmin {
			// A user rotating their own password has to prove the old
			// one; a stolen session alone must not be enough.
			if req.CurrentPassword == nil || *req.CurrentPassword == "" {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "current password required"})
			}
			if !utils.VerifyPassword(u.PasswordHash, *req.CurrentPassword) {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "current password mismatch"})
			}
		}
		if !utils.ValidPassword(*req.NewPassword) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "password does not meet requirements"})
		}
		hash, err := utils.HashPassword(*req.NewPassword, h.Cfg.BcryptCost)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash failed"})
		}
		u.PasswordHash = hash
	}

	if err := h.Users.Update(ctx, &u, actingLogin(c)); err != nil {
		switch err {
		case repository.ErrLoginExists:
			return c.JSON(http.StatusConflict, echo.Map{"error": "login already exists"})
		case repository.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}

// Delete soft-deletes a user.  Deleting the account bound to the current
// session is rejected unconditionally, whatever the role: an admin must
// not be able to lock themselves out mid-session.
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	p, ok := auth.CurrentPrincipal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if auth.IsSelf(p, id) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "cannot delete own account"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Users.SoftDelete(ctx, id, actingLogin(c)); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusAccepted)
}

// actingLogin resolves the login stamped on audit revisions for this
// request, falling back to the fixed system identity when the request is
// unauthenticated.
func actingLogin(c echo.Context) string {
	p, ok := auth.CurrentPrincipal(c)
	return auth.ActingLogin(p, ok)
}
