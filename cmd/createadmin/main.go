package main

import (
	"context"
	"flag"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/app"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/config"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/model"
	authService "github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/service/auth"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/pkg/auth"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/pkg/logger"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/pkg/security"
)

// createadmin seeds the first admin account so beds can be configured.
func main() {
	name := flag.String("name", "Admin", "account name")
	email := flag.String("email", "admin@example.com", "account email")
	password := flag.String("password", "admin123", "account password")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	lg := logger.Setup(logger.Config{Level: cfg.Log.Level, Console: true})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stores, err := app.OpenStores(ctx, cfg.Database, nil, lg)
	if err != nil {
		lg.Fatal().Err(err).Msg("failed to open record store")
	}
	defer stores.Close()

	svc := authService.NewService(
		stores.Accounts,
		auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour),
		security.NewBcryptHasher(security.DefaultCost),
		lg,
	)

	created, err := svc.EnsureAccount(ctx, &model.RegisterRequest{
		Name:     *name,
		Email:    *email,
		Password: *password,
	}, model.RoleAdmin)
	if err != nil {
		lg.Fatal().Err(err).Msg("failed to create admin")
	}
	if !created {
		lg.Info().Str("email", *email).Msg("admin already exists")
		return
	}
	lg.Info().Str("email", *email).Msg("admin created")
}
