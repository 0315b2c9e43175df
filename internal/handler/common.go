package handler // handler defines http handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/notes-backend/internal/model"
	"github.com/iliyamo/notes-backend/internal/repository"
)

const dbTimeout = 5 * time.Second

// pagedResponse is the list envelope shared by user and note listings.
type pagedResponse struct {
	Content interface{} `json:"content"`
	Page    int         `json:"page"`
	Size    int         `json:"size"`
	Total   int         `json:"total"`
}

// userResp is the external representation of a user.  The password hash
// never appears here.
type userResp struct {
	ID      uint64    `json:"id"`
	Login   string    `json:"login"`
	Role    string    `json:"role"`
	Status  string    `json:"status"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

func toUserResp(u model.User) userResp {
	return userResp{
		ID:      u.ID,
		Login:   u.Login,
		Role:    u.Role,
		Status:  u.Status,
		Created: u.CreatedAt,
		Updated: u.UpdatedAt,
	}
}

// noteResp is the external representation of a note.
type noteResp struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	UserID      uint64    `json:"user_id"`
	Created     time.Time `json:"created"`
	Updated     time.Time `json:"updated"`
}

func toNoteResp(n model.Note) noteResp {
	return noteResp{
		ID:          n.ID,
		Name:        n.Name,
		Description: n.Description,
		UserID:      n.UserID,
		Created:     n.CreatedAt,
		Updated:     n.UpdatedAt,
	}
}

// idParam parses the :id path parameter.
func idParam(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// pageRequest reads ?page= and ?size= with sane bounds.  Page is
// zero-based; size defaults to 20 and is capped so a single request
// cannot drag the whole table.
func pageRequest(c echo.Context) repository.PageRequest {
	p := repository.PageRequest{Page: 0, Size: 20}
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v >= 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(c.QueryParam("size")); err == nil && v > 0 {
		p.Size = v
	}
	if p.Size > 100 {
		p.Size = 100
	}
	return p
}
