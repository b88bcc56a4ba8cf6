// seed creates a demo account and fills its organization with sample records.
// Idempotent: an existing demo user is reused and an org that already has customers is left alone.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"time"

	"smallbiz-erp/backend/internal/config"
	"smallbiz-erp/backend/internal/db"
	"smallbiz-erp/backend/internal/db/migrate"
	identityrepo "smallbiz-erp/backend/internal/identity/repository"
	identityservice "smallbiz-erp/backend/internal/identity/service"
	"smallbiz-erp/backend/internal/security"
	"smallbiz-erp/backend/internal/seed"
	"smallbiz-erp/backend/internal/server"
	sessionrepo "smallbiz-erp/backend/internal/session/repository"
	userrepo "smallbiz-erp/backend/internal/user/repository"
)

const (
	demoName     = "Demo Owner"
	demoEmail    = "demo@example.com"
	demoPassword = "password123"
)

func main() {
	runMigrations := flag.Bool("migrate", false, "Apply pending migrations before seeding")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}
	if *runMigrations {
		if err := migrate.Run(cfg.DatabaseURL, "up"); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("migrate: %v", err)
		}
	}

	conn, err := db.Open(cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	users := userrepo.NewPostgresRepository(conn)
	orgID, err := demoOrg(ctx, users, func() (*identityservice.AuthResult, error) {
		codec, err := security.NewSessionCodec([]byte(cfg.SessionSecret), cfg.SessionTTL())
		if err != nil {
			return nil, err
		}
		identities := identityrepo.NewPostgresRepository(conn)
		auth := identityservice.NewAuthService(users, identities, identities, sessionrepo.NewPostgresRepository(conn), security.NewHasher(cfg.BcryptCost), codec)
		return auth.SignUp(ctx, demoName, demoEmail, demoPassword, "127.0.0.1")
	})
	if err != nil {
		log.Fatalf("seed: demo account: %v", err)
	}

	res, err := seed.Demo(ctx, orgID, server.NewPostgresRepositories(conn))
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	if res.Skipped {
		log.Printf("seed: org %s already has data, nothing to do", orgID)
		return
	}
	log.Printf("seed: sign in as %s / %s", demoEmail, demoPassword)
}

// demoOrg returns the tenant of the demo user, signing it up first when it does not exist.
func demoOrg(ctx context.Context, users *userrepo.PostgresRepository, signUp func() (*identityservice.AuthResult, error)) (string, error) {
	u, err := users.GetByEmail(ctx, demoEmail)
	if err != nil {
		return "", err
	}
	if u != nil {
		if u.OrgID != "" {
			return u.OrgID, nil
		}
		return u.ID, nil
	}
	res, err := signUp()
	if err != nil {
		return "", err
	}
	return res.OrgID, nil
}
