package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/notes-backend/internal/config"
	"github.com/iliyamo/notes-backend/internal/handler"
	"github.com/iliyamo/notes-backend/internal/middleware"
	"github.com/iliyamo/notes-backend/internal/repository"
)

// Register wires every route of the API onto the Echo instance.  The
// authenticator runs as a global middleware against the route policy
// table, so each route's access level lives in one inspectable place
// (middleware.DefaultPolicy) instead of being scattered per route; the
// registrations below only bind paths to handlers.
func Register(e *echo.Echo, cfg config.Config, users repository.UserStore, notes repository.NoteStore, rdb *redis.Client) {
	a := handler.NewAuthHandler(cfg, users)
	u := handler.NewUserHandler(cfg, users)
	n := handler.NewNoteHandler(notes)

	e.Use(middleware.Authenticate(cfg.JWTSecret, users, middleware.DefaultPolicy()))

	// Public surface.
	e.GET("/", handler.Index)
	e.GET("/healthz", handler.Health)
	// Login carries a Redis token bucket so credential guessing is
	// throttled per source address; the rest of the API is gated by
	// authentication already.
	e.POST("/public/auth/login", a.Login,
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	// Session.
	e.POST("/auth/logout", a.Logout)

	// Users.  List/fetch/create/delete are admin-only via the policy
	// table; current and update admit regular users.
	e.GET("/users", u.List)
	e.GET("/users/current", u.Current)
	e.GET("/users/:id", u.GetByID)
	e.POST("/users", u.Create)
	e.PUT("/users/:id", u.Update)
	e.DELETE("/users/:id", u.Delete)

	// Notes.  Any authenticated user; per-record ownership is checked
	// in the handlers.
	e.GET("/notes", n.List)
	e.GET("/notes/:id", n.GetByID)
	e.POST("/notes", n.Create)
	e.PUT("/notes/:id", n.Update)
	e.DELETE("/notes/:id", n.Delete)
}
