package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/notes-backend/internal/auth"
	"github.com/iliyamo/notes-backend/internal/model"
	"github.com/iliyamo/notes-backend/internal/repository"
)

// NoteHandler implements the /notes endpoints.  The route policy admits
// any authenticated user; the per-record decisions (who owns what) are
// made here, because ownership is a property of the row, not the route.
type NoteHandler struct {
	Notes repository.NoteStore
}

func NewNoteHandler(notes repository.NoteStore) *NoteHandler {
	return &NoteHandler{Notes: notes}
}

type noteCreateReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// noteUpdateReq is a partial update; nil means "leave the field alone".
type noteUpdateReq struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// List returns a page of notes.  Regular users only ever see their own
// notes; admins see everything.  Name and description filters apply on
// top of the ownership restriction.
func (h *NoteHandler) List(c echo.Context) error {
	p, ok := auth.CurrentPrincipal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	f := repository.NoteFilter{
		Name:        c.QueryParam("name"),
		Description: c.QueryParam("description"),
	}
	if p.Role != auth.RoleAdmin {
		f.OwnerID = p.ID
	}
	page := pageRequest(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	notes, total, err := h.Notes.List(ctx, f, page)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	content := make([]noteResp, 0, len(notes))
	for _, n := range notes {
		content = append(content, toNoteResp(n))
	}
	return c.JSON(http.StatusOK, pagedResponse{Content: content, Page: page.Page, Size: page.Size, Total: total})
}

// GetByID returns one note.  A note the caller cannot access is
// reported exactly like a missing one, so non-owners cannot probe which
// ids exist.
func (h *NoteHandler) GetByID(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	p, ok := auth.CurrentPrincipal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	n, err := h.Notes.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "note not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !auth.CanAccess(p, n.UserID) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "note not found"})
	}
	return c.JSON(http.StatusOK, toNoteResp(n))
}

// Create inserts a note owned by the caller.
func (h *NoteHandler) Create(c echo.Context) error {
	p, ok := auth.CurrentPrincipal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req noteCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	n := model.Note{
		Name:        req.Name,
		Description: req.Description,
		UserID:      p.ID,
	}
	if err := h.Notes.Create(ctx, &n, actingLogin(c)); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create note failed"})
	}

	c.Response().Header().Set(echo.HeaderLocation, fmt.Sprintf("%s/%d", c.Request().URL.Path, n.ID))
	return c.JSON(http.StatusCreated, toNoteResp(n))
}

// Update applies a partial update to a note the caller owns (or any
// note, for admins).  A foreign note that exists yields 403 — the caller
// got far enough to attempt a write, hiding it as 404 buys nothing.
func (h *NoteHandler) Update(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	p, ok := auth.CurrentPrincipal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req noteUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	n, err := h.Notes.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "note not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !auth.CanAccess(p, n.UserID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	if req.Name != nil {
		if *req.Name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name must not be empty"})
		}
		n.Name = *req.Name
	}
	if req.Description != nil {
		n.Description = *req.Description
	}

	if err := h.Notes.Update(ctx, &n, actingLogin(c)); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "note not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, toNoteResp(n))
}

// Delete soft-deletes a note the caller can access.
func (h *NoteHandler) Delete(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	p, ok := auth.CurrentPrincipal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	n, err := h.Notes.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "note not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !auth.CanAccess(p, n.UserID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	if err := h.Notes.SoftDelete(ctx, id, actingLogin(c)); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "note not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusAccepted)
}
