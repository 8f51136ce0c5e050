// Package main заводит тестовых пользователей OralVis: техника и дантиста.
//
// Использует тот же конфиг, что и сервер. Уже существующие пользователи пропускаются,
// поэтому команду можно запускать повторно.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/IvanChernomyrdin/go-oralvis/internal/server/config"
	"github.com/IvanChernomyrdin/go-oralvis/internal/server/models"
	"github.com/IvanChernomyrdin/go-oralvis/internal/server/repository"
	"github.com/IvanChernomyrdin/go-oralvis/internal/server/service"
	serr "github.com/IvanChernomyrdin/go-oralvis/internal/shared/errors"
	"github.com/IvanChernomyrdin/go-oralvis/internal/shared/logger"
)

type seedUser struct {
	email string
	role  models.Role
}

func main() {
	var (
		configPath string
		techEmail  string
		dentEmail  string
		password   string
	)

	cmd := &cobra.Command{
		Use:           "seed",
		Short:         "Создать тестовых пользователей (техник и дантист)",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), configPath, password, []seedUser{
				{email: techEmail, role: models.RoleTechnician},
				{email: dentEmail, role: models.RoleDentist},
			})
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "./configs/server.yaml", "путь к конфигу сервера")
	cmd.Flags().StringVar(&techEmail, "technician", "tech@oralvis.com", "email техника")
	cmd.Flags().StringVar(&dentEmail, "dentist", "dentist@oralvis.com", "email дантиста")
	cmd.Flags().StringVar(&password, "password", "password123", "пароль для обоих пользователей")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath, password string, users []seedUser) error {
	log := logger.NewHTTPLogger(logger.Options{Console: true, Format: "console"}).Sugar()
	defer log.Sync()

	if err := godotenv.Load(); err != nil {
		log.Warnf("no .env file loaded, error: %v", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	db, err := config.OpenDB(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := config.RunMigrations(db, cfg.Migrations); err != nil {
		return err
	}

	auth := service.NewAuthService(repository.NewUsersRepository(db), cfg)

	for _, u := range users {
		created, err := auth.Register(ctx, u.email, password, u.role)
		switch {
		case errors.Is(err, serr.ErrAlreadyExists):
			log.Infow("user already exists, skipped", "email", u.email)
		case err != nil:
			return fmt.Errorf("seed %s: %w", u.email, err)
		default:
			log.Infow("user created", "email", created.Email, "role", created.Role, "id", created.ID)
		}
	}
	return nil
}
