package main

import (
	"context"
	"fmt"
	"os"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/pkg/config"
	"go-inventory-ledger/pkg/database"
	applog "go-inventory-ledger/pkg/logger"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

// reset-password sets a user's password and signs out every open session.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	app := &cli.App{
		Name:  "reset-password",
		Usage: "reset a user's password directly in the database",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Value: cfg.AdminEmail, Usage: "account to reset"},
			&cli.StringFlag{Name: "password", Value: cfg.AdminPassword, Usage: "new password (min 6 characters)"},
		},
		Action: func(c *cli.Context) error {
			return reset(c.Context, cfg, c.String("email"), c.String("password"))
		},
	}

	if err := app.Run(os.Args); err != nil {
		applog.LogError("reset-password", "main", "reset failed", nil, err)
		os.Exit(1)
	}
}

func reset(ctx context.Context, cfg config.Config, email, password string) error {
	if len(password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	users := repository.NewUserRepo(db)

	user, err := users.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("user %s not found: %w", email, err)
	}

	var hashed model.User
	if err := hashed.SetPassword(password); err != nil {
		return err
	}
	if err := users.UpdatePassword(ctx, user.ID, hashed.Password, uuid.New().String()); err != nil {
		return err
	}

	applog.Get().Infof("password for %s has been reset", email)
	return nil
}
