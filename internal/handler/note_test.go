package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/notes-backend/internal/auth"
	"github.com/iliyamo/notes-backend/internal/model"
)

type noteFixture struct {
	handler *NoteHandler
	notes   *memNoteStore
	audit   *memAudit
	e       *echo.Echo
	admin   auth.Principal
	alice   auth.Principal
	bob     auth.Principal
}

func newNoteFixture(t *testing.T) *noteFixture {
	t.Helper()
	audit := &memAudit{}
	notes := newMemNoteStore(audit)
	return &noteFixture{
		handler: NewNoteHandler(notes),
		notes:   notes,
		audit:   audit,
		e:       echo.New(),
		admin:   auth.Principal{ID: 1, Login: "root", Role: auth.RoleAdmin},
		alice:   auth.Principal{ID: 2, Login: "alice", Role: auth.RoleUser},
		bob:     auth.Principal{ID: 3, Login: "bob", Role: auth.RoleUser},
	}
}

// seedNote inserts a note owned by the given principal, bypassing the
// handler so tests control the starting state directly.
func (f *noteFixture) seedNote(t *testing.T, owner auth.Principal, name string) model.Note {
	t.Helper()
	n := model.Note{Name: name, UserID: owner.ID}
	if err := f.notes.Create(context.Background(), &n, owner.Login); err != nil {
		t.Fatalf("seed note: %v", err)
	}
	return n
}

func (f *noteFixture) callID(t *testing.T, fn echo.HandlerFunc, p auth.Principal, method, body string, id uint64) int {
	t.Helper()
	c, rec := jsonCtx(f.e, method, fmt.Sprintf("/notes/%d", id), body)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprintf("%d", id))
	auth.SetPrincipal(c, p)
	if err := fn(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	return rec.Code
}

func TestNoteCreate(t *testing.T) {
	t.Parallel()
	f := newNoteFixture(t)

	c, rec := jsonCtx(f.e, http.MethodPost, "/notes", `{"name":"groceries","description":"milk"}`)
	auth.SetPrincipal(c, f.alice)
	if err := f.handler.Create(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/notes/1" {
		t.Errorf("Location = %q, want /notes/1", loc)
	}
	var body noteResp
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	// Ownership comes from the session, never from the body.
	if body.UserID != f.alice.ID {
		t.Errorf("owner = %d, want %d", body.UserID, f.alice.ID)
	}
	if entry, ok := f.audit.last(); !ok || entry.Actor != "alice" || entry.Entity != "note" {
		t.Errorf("audit entry = %+v, want note create by alice", entry)
	}
}

func TestNoteCreateRequiresName(t *testing.T) {
	t.Parallel()
	f := newNoteFixture(t)

	c, rec := jsonCtx(f.e, http.MethodPost, "/notes", `{"description":"no name"}`)
	auth.SetPrincipal(c, f.alice)
	if err := f.handler.Create(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// TestNoteAccessMatrix walks the full non-owner story: a note created by
// one party is invisible to a reading non-owner, explicitly forbidden to
// a writing non-owner, and fully available to its owner and to admins.
func TestNoteAccessMatrix(t *testing.T) {
	t.Parallel()
	f := newNoteFixture(t)
	n := f.seedNote(t, f.admin, "admin note")

	// Non-owner reads cannot tell a foreign note from a missing one.
	if code := f.callID(t, f.handler.GetByID, f.bob, http.MethodGet, "", n.ID); code != http.StatusNotFound {
		t.Errorf("non-owner read = %d, want 404", code)
	}
	if code := f.callID(t, f.handler.GetByID, f.bob, http.MethodGet, "", 999); code != http.StatusNotFound {
		t.Errorf("missing note read = %d, want 404", code)
	}
	// Non-owner writes are overt: 403, not 404.
	if code := f.callID(t, f.handler.Update, f.bob, http.MethodPut, `{"name":"mine now"}`, n.ID); code != http.StatusForbidden {
		t.Errorf("non-owner update = %d, want 403", code)
	}
	if code := f.callID(t, f.handler.Delete, f.bob, http.MethodDelete, "", n.ID); code != http.StatusForbidden {
		t.Errorf("non-owner delete = %d, want 403", code)
	}
	// The owner and any admin read it fine.
	if code := f.callID(t, f.handler.GetByID, f.admin, http.MethodGet, "", n.ID); code != http.StatusOK {
		t.Errorf("owner read = %d, want 200", code)
	}
	// Admins access anyone's notes.
	other := f.seedNote(t, f.alice, "alice note")
	if code := f.callID(t, f.handler.GetByID, f.admin, http.MethodGet, "", other.ID); code != http.StatusOK {
		t.Errorf("admin read of foreign note = %d, want 200", code)
	}
	if code := f.callID(t, f.handler.Update, f.admin, http.MethodPut, `{"name":"edited"}`, other.ID); code != http.StatusOK {
		t.Errorf("admin update of foreign note = %d, want 200", code)
	}
}

func TestNoteUpdatePartial(t *testing.T) {
	t.Parallel()
	f := newNoteFixture(t)
	n := f.seedNote(t, f.alice, "draft")
	f.notes.notes[n.ID] = model.Note{ID: n.ID, Name: "draft", Description: "keep me", UserID: f.alice.ID}

	if code := f.callID(t, f.handler.Update, f.alice, http.MethodPut, `{"name":"final"}`, n.ID); code != http.StatusOK {
		t.Fatalf("update failed")
	}
	got, err := f.notes.GetByID(context.Background(), n.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "final" {
		t.Errorf("name = %q, want final", got.Name)
	}
	if got.Description != "keep me" {
		t.Errorf("omitted description changed to %q", got.Description)
	}
	// Blank names are rejected, nil and "" are different things.
	if code := f.callID(t, f.handler.Update, f.alice, http.MethodPut, `{"name":""}`, n.ID); code != http.StatusBadRequest {
		t.Errorf("blank name = %d, want 400", code)
	}
}

func TestNoteDelete(t *testing.T) {
	t.Parallel()
	f := newNoteFixture(t)
	n := f.seedNote(t, f.alice, "to go")

	if code := f.callID(t, f.handler.Delete, f.alice, http.MethodDelete, "", n.ID); code != http.StatusAccepted {
		t.Fatalf("delete = %d, want 202", code)
	}
	f.notes.mu.Lock()
	raw := f.notes.notes[n.ID]
	f.notes.mu.Unlock()
	if !raw.Deleted {
		t.Error("row must be flagged deleted, not removed")
	}
	if code := f.callID(t, f.handler.GetByID, f.alice, http.MethodGet, "", n.ID); code != http.StatusNotFound {
		t.Errorf("read after delete = %d, want 404", code)
	}
	if entry, ok := f.audit.last(); !ok || entry.Action != "delete" || entry.Actor != "alice" {
		t.Errorf("audit entry = %+v, want delete by alice", entry)
	}
}

func TestNoteListOwnershipScoping(t *testing.T) {
	t.Parallel()
	f := newNoteFixture(t)
	f.seedNote(t, f.alice, "alice 1")
	f.seedNote(t, f.alice, "alice 2")
	f.seedNote(t, f.bob, "bob 1")

	list := func(p auth.Principal, query string) (int, []noteResp) {
		c, rec := jsonCtx(f.e, http.MethodGet, "/notes"+query, "")
		auth.SetPrincipal(c, p)
		if err := f.handler.List(c); err != nil {
			t.Fatal(err)
		}
		var body struct {
			Content []noteResp `json:"content"`
			Total   int        `json:"total"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		return body.Total, body.Content
	}

	// A regular user sees only their own notes, whatever they ask for.
	total, rows := list(f.alice, "")
	if total != 2 {
		t.Errorf("alice total = %d, want 2", total)
	}
	for _, r := range rows {
		if r.UserID != f.alice.ID {
			t.Errorf("alice's listing leaked note %d owned by %d", r.ID, r.UserID)
		}
	}
	// Admins see the whole table.
	if total, _ := list(f.admin, ""); total != 3 {
		t.Errorf("admin total = %d, want 3", total)
	}
	// Filters stack on top of the ownership restriction.
	if total, _ := list(f.alice, "?name=bob"); total != 0 {
		t.Errorf("alice filtering for bob's note got %d rows, want 0", total)
	}
	if total, _ := list(f.admin, "?name=bob"); total != 1 {
		t.Errorf("admin filtering for bob's note got %d rows, want 1", total)
	}
}
