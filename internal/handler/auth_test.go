package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/notes-backend/internal/auth"
	"github.com/iliyamo/notes-backend/internal/config"
	"github.com/iliyamo/notes-backend/internal/model"
	"github.com/iliyamo/notes-backend/internal/utils"
)

func testConfig() config.Config {
	return config.Config{
		JWTSecret:    "handler-test-secret",
		AccessTTLMin: 15,
		BcryptCost:   4, // minimum cost keeps the suite fast
	}
}

// jsonCtx builds an echo context carrying a JSON body and returns the
// recorder capturing the response.
func jsonCtx(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func seedUser(users *memUserStore, t *testing.T, login, password, role string) model.User {
	t.Helper()
	hash, err := utils.HashPassword(password, 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return users.add(model.User{
		Login:        login,
		PasswordHash: hash,
		Role:         role,
		Status:       model.StatusActive,
	})
}

func TestLoginSuccess(t *testing.T) {
	t.Parallel()
	audit := &memAudit{}
	users := newMemUserStore(audit)
	u := seedUser(users, t, "alice", "Pass1!", "USER")

	h := NewAuthHandler(testConfig(), users)
	e := echo.New()
	c, rec := jsonCtx(e, http.MethodPost, "/public/auth/login", `{"login":"alice","password":"Pass1!"}`)

	if err := h.Login(c); err != nil {
		t.Fatalf("login: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	header := rec.Header().Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(header, "Bearer ") {
		t.Fatalf("Authorization header = %q, want Bearer token", header)
	}
	claims, err := utils.ParseAccessToken(testConfig().JWTSecret, strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if claims.UserID != u.ID || claims.Login != "alice" {
		t.Errorf("token claims = %+v, want id=%d login=alice", claims, u.ID)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body: %v", err)
	}
	if body["login"] != "alice" {
		t.Errorf("body login = %v, want alice", body["login"])
	}
	if _, leaked := body["password_hash"]; leaked {
		t.Error("response body must not carry the password hash")
	}
}

func TestLoginFailuresAreUniform(t *testing.T) {
	t.Parallel()
	audit := &memAudit{}
	users := newMemUserStore(audit)
	seedUser(users, t, "alice", "Pass1!", "USER")
	blocked := seedUser(users, t, "bob", "Pass1!", "USER")
	blocked.Status = model.StatusBlocked
	users.users[blocked.ID] = blocked

	h := NewAuthHandler(testConfig(), users)
	e := echo.New()

	cases := map[string]string{
		"unknown login":   `{"login":"nobody","password":"Pass1!"}`,
		"wrong password":  `{"login":"alice","password":"wrong"}`,
		"wrong case":      `{"login":"Alice","password":"Pass1!"}`,
		"blocked account": `{"login":"bob","password":"Pass1!"}`,
	}
	var bodies []string
	for name, body := range cases {
		c, rec := jsonCtx(e, http.MethodPost, "/public/auth/login", body)
		if err := h.Login(c); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", name, rec.Code)
		}
		if rec.Header().Get(echo.HeaderAuthorization) != "" {
			t.Errorf("%s: no token must be issued on failure", name)
		}
		bodies = append(bodies, rec.Body.String())
	}
	// Identical bodies, so responses cannot distinguish the failure modes.
	for _, b := range bodies[1:] {
		if b != bodies[0] {
			t.Errorf("failure bodies differ: %q vs %q", bodies[0], b)
		}
	}
}

func TestLoginMissingFields(t *testing.T) {
	t.Parallel()
	h := NewAuthHandler(testConfig(), newMemUserStore(&memAudit{}))
	e := echo.New()

	for name, body := range map[string]string{
		"empty login":    `{"login":"","password":"x"}`,
		"empty password": `{"login":"alice","password":""}`,
	} {
		c, rec := jsonCtx(e, http.MethodPost, "/public/auth/login", body)
		if err := h.Login(c); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", name, rec.Code)
		}
	}
}

func TestLogout(t *testing.T) {
	t.Parallel()
	h := NewAuthHandler(testConfig(), newMemUserStore(&memAudit{}))
	e := echo.New()
	c, rec := jsonCtx(e, http.MethodPost, "/auth/logout", "")
	auth.SetPrincipal(c, auth.Principal{ID: 1, Login: "alice", Role: auth.RoleUser})

	if err := h.Logout(c); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if _, ok := auth.CurrentPrincipal(c); ok {
		t.Error("principal must be cleared after logout")
	}
}
