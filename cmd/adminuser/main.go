// Command adminuser creates or resets a practice administrator account.
//
//	adminuser -practice <practice-uuid> -username frontdesk -password '...'
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/wolfman30/connectient/internal/app/bootstrap"
	"github.com/wolfman30/connectient/internal/auth"
	appconfig "github.com/wolfman30/connectient/internal/config"
	"github.com/wolfman30/connectient/internal/validation"
	"github.com/wolfman30/connectient/pkg/logging"
)

func main() {
	practiceID := flag.String("practice", "", "practice id the account manages")
	username := flag.String("username", "", "login name (min 4 characters)")
	password := flag.String("password", "", "password (min 8 characters)")
	flag.Parse()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	if *practiceID == "" {
		logger.Error("-practice is required")
		os.Exit(2)
	}
	if err := validation.NewSchema().ValidateLogin(validation.LoginForm{Username: *username, Password: *password}); err != nil {
		logger.Error("invalid credentials", "error", err)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := bootstrap.BuildPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil || pool == nil {
		logger.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	db := bootstrap.OpenSQLDB(pool)
	defer db.Close()

	hash, err := auth.HashPassword(*password)
	if err != nil {
		logger.Error("hash password", "error", err)
		os.Exit(1)
	}
	user, err := auth.NewSQLUserStore(db).Upsert(ctx, *practiceID, *username, hash)
	if err != nil {
		logger.Error("save admin user", "error", err)
		os.Exit(1)
	}
	logger.Info("admin user saved", "user_id", user.ID, "username", user.Username, "practice_id", user.PracticeID)
}
