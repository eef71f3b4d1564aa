// seed_admin aplica las migraciones y crea el administrador inicial en PostgreSQL.
//
// Uso: go run ./cmd/seed_admin [username]
// La contraseña sale de ADMIN_PASSWORD; el email, de ADMIN_EMAIL.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/Reagentes-api/internal/application/auth"
	"github.com/jhoicas/Reagentes-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Reagentes-api/pkg/config"
	"github.com/jhoicas/Reagentes-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel}).Component("seed_admin")

	username := cfg.Admin.Username
	if len(os.Args) > 1 {
		username = os.Args[1]
	}
	if cfg.Admin.Password == "" {
		log.Fatal().Msg("ADMIN_PASSWORD es obligatorio")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	authUC := auth.NewAuthUseCase(postgres.NewUserRepository(pool), auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	created, err := authUC.EnsureAdmin(ctx, username, cfg.Admin.Password, cfg.Admin.Email)
	if err != nil {
		log.Fatal().Err(err).Msg("crear administrador")
	}
	if !created {
		log.Info().Str("username", username).Msg("el usuario ya existe, sin cambios")
		return
	}
	log.Info().Str("username", username).Msg("administrador creado")
}
