package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/notes-backend/internal/auth"
	"github.com/iliyamo/notes-backend/internal/config"
	"github.com/iliyamo/notes-backend/internal/database"
	"github.com/iliyamo/notes-backend/internal/model"
	"github.com/iliyamo/notes-backend/internal/queue"
	"github.com/iliyamo/notes-backend/internal/repository"
	"github.com/iliyamo/notes-backend/internal/router"
	"github.com/iliyamo/notes-backend/internal/utils"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	if err := database.RunMigrations(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName); err != nil {
		log.Fatalf("migrations: %v", err)
	}
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	audit := repository.NewAuditRepo(db, cfg.AuditEvents)
	users := repository.NewUserRepo(db, audit)
	notes := repository.NewNoteRepo(db, audit)

	if err := bootstrapAdmin(cfg, users); err != nil {
		log.Fatalf("bootstrap admin: %v", err)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; login rate limiting disabled")
	}

	if cfg.AuditEvents {
		// Reconnecting consumer; runs for the life of the process.
		go func() {
			if err := queue.StartAuditConsumer(); err != nil {
				log.Printf("audit consumer stopped: %v", err)
			}
		}()
	}

	e := echo.New()
	router.Register(e, cfg, users, notes, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// bootstrapAdmin seeds the first administrator account from
// ADMIN_LOGIN/ADMIN_PASSWORD when it does not exist yet.  Without these
// variables nothing is seeded; the revision for the seed is stamped with
// the fallback identity since no request is in flight.
func bootstrapAdmin(cfg config.Config, users repository.UserStore) error {
	if cfg.AdminLogin == "" || cfg.AdminPassword == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := users.GetByLogin(ctx, cfg.AdminLogin); err == nil {
		return nil
	} else if err != repository.ErrNotFound {
		return err
	}

	hash, err := utils.HashPassword(cfg.AdminPassword, cfg.BcryptCost)
	if err != nil {
		return err
	}
	admin := model.User{
		Login:        cfg.AdminLogin,
		PasswordHash: hash,
		Role:         auth.RoleAdmin.String(),
		Status:       model.StatusActive,
	}
	if err := users.Create(ctx, &admin, auth.FallbackLogin); err != nil {
		return err
	}
	log.Printf("seeded bootstrap admin %q (id=%d)", admin.Login, admin.ID)
	return nil
}
