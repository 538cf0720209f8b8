package main

import (
	"context"
	"errors"
	"os"

	"gorm.io/gorm"

	"showbiz/internal/auth"
	"showbiz/internal/config"
	"showbiz/internal/db"
	"showbiz/internal/logging"
	"showbiz/internal/model"
	"showbiz/internal/repository"
)

// seedAccount is an active demo account.
type seedAccount struct {
	Kind  model.Kind
	Name  string
	Email string
	Phone string
	Role  string
}

var seedAccounts = []seedAccount{
	{Kind: model.KindTalent, Name: "Demo Talent", Email: "talent@showbiz.local", Phone: "+919876543210", Role: "Actor"},
	{Kind: model.KindHirer, Name: "Demo Hirer", Email: "hirer@showbiz.local", Phone: "+919876543211", Role: "Casting Director"},
}

func main() {
	cfg := config.Load()
	logger := logging.NewLogger(logging.Config{
		ServiceName: "showbiz-seed",
		Environment: cfg.AppEnv,
		Level:       cfg.LogLevel,
	})

	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		password = "password123"
	}

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(gormDB); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	hash, err := auth.NewBcryptHasher(auth.DefaultBcryptCost).Hash(password)
	if err != nil {
		logger.Error("failed to hash password", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	accounts := repository.NewAccountRepository(gormDB)
	created, skipped := 0, 0
	for _, s := range seedAccounts {
		_, err := accounts.FindByEmail(ctx, s.Kind, s.Email)
		if err == nil {
			logger.Info("account already exists, skipping", "kind", s.Kind, "email", s.Email)
			skipped++
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("failed to look up account", "email", s.Email, "error", err)
			os.Exit(1)
		}

		account := &model.Account{
			Kind:         s.Kind,
			Name:         s.Name,
			Email:        s.Email,
			Phone:        s.Phone,
			Gender:       "Female",
			Role:         s.Role,
			PasswordHash: hash,
			IsVerified:   true,
		}
		if s.Kind.RequiresApproval() {
			account.ApprovalStatus = model.StatusApproved
		}
		if err := accounts.Create(ctx, account); err != nil {
			logger.Error("failed to create account", "email", s.Email, "error", err)
			os.Exit(1)
		}
		logger.Info("account created", "kind", s.Kind, "email", s.Email, "id", account.ID)
		created++
	}

	logger.Info("seed completed", "created", created, "skipped", skipped)
}
