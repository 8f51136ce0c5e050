// @title           OralVis API
// @version         1.0
// @description     Dental scan management backend (OralVis).
// @description     Technicians upload intraoral scans, dentists review them and download PDF reports.

// @contact.name   Ivan Chernomyrdin
// @contact.url    https://github.com/IvanChernomyrdin

// @host      localhost:5000
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
//
// Package main содержит точку входа серверного приложения OralVis.
//
// Пакет отвечает за инициализацию и жизненный цикл HTTP(S)-сервера, а именно:
//   - загрузку переменных окружения из файла .env (если он присутствует);
//   - загрузку конфигурации сервера из файла ./configs/server.yaml;
//   - подключение к базе данных и применение миграций;
//   - подключение к объектному хранилищу (MinIO / S3);
//   - создание репозиториев, сервисов, middleware и HTTP-обработчиков;
//   - запуск сервера с таймаутами из конфига (HTTPS, если включён tls);
//   - graceful shutdown по SIGINT, SIGTERM, SIGQUIT.
//
// Пакет не содержит бизнес-логики и не предназначен для unit-тестирования.
package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/IvanChernomyrdin/go-oralvis/internal/server/api"
	"github.com/IvanChernomyrdin/go-oralvis/internal/server/config"
	"github.com/IvanChernomyrdin/go-oralvis/internal/server/middleware"
	h "github.com/IvanChernomyrdin/go-oralvis/internal/server/net/http"
	"github.com/IvanChernomyrdin/go-oralvis/internal/server/report"
	"github.com/IvanChernomyrdin/go-oralvis/internal/server/repository"
	"github.com/IvanChernomyrdin/go-oralvis/internal/server/service"
	"github.com/IvanChernomyrdin/go-oralvis/internal/server/storage"
	"github.com/IvanChernomyrdin/go-oralvis/internal/shared/logger"
)

const configPath = "./configs/server.yaml"

func main() {
	// до загрузки конфига пишем в stderr
	boot := logger.NewHTTPLogger(logger.Options{Console: true}).Sugar()

	if err := godotenv.Load(); err != nil {
		boot.Warnf("no .env file loaded, error: %v", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		boot.Fatal(err)
	}

	httpLogger := logger.NewHTTPLogger(logger.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
		Console:    cfg.Log.Console,
	})
	defer httpLogger.Sync()
	sugar := httpLogger.Sugar()

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	// подключаем базу данных
	db, err := config.OpenDB(ctx, cfg.DB)
	if err != nil {
		sugar.Fatal(err)
	}
	defer db.Close()

	if cfg.Migrations.Enabled {
		if err := config.RunMigrations(db, cfg.Migrations); err != nil {
			sugar.Fatal(err)
		}
	}

	objects, err := storage.NewMinioStorage(ctx, cfg.Storage)
	if err != nil {
		sugar.Fatal(err)
	}

	// папка для временных файлов загрузки
	if err := os.MkdirAll(cfg.Uploads.StagingDir, 0o755); err != nil {
		sugar.Fatalf("create staging dir: %v", err)
	}

	// создаём репы
	usersRepo := repository.NewUsersRepository(db)
	scansRepo := repository.NewScansRepository(db)

	svc := service.NewServices(
		service.Repositories{Users: usersRepo, Scans: scansRepo},
		service.Collaborators{Storage: objects, Renderer: report.NewPDFRenderer(cfg.Report.Title)},
		cfg,
	)

	var registry *prometheus.Registry
	if cfg.Observability.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewDBStatsCollector(db, "oralvis"),
		)
	}

	verifier := middleware.NewJWTVerifier(svc.Auth)
	handler := api.NewHandler(svc, usersRepo, httpLogger, verifier, cfg.Uploads)
	router := h.NewRouter(handler, h.Options{
		CORS:          cfg.CORS,
		Observability: cfg.Observability,
		Registry:      registry,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		MaxHeaderBytes:    cfg.Server.MaxHeaderBytes,
	}
	if cfg.TLS.Enabled {
		server.TLSConfig = &tls.Config{MinVersion: tlsVersion(cfg.TLS.MinVersion)}
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sugar.Infow("server started", "addr", addr, "tls", cfg.TLS.Enabled, "env", cfg.Env)

		var err error
		if cfg.TLS.Enabled {
			err = server.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// graceful shutdown с таймаутом из конфига
	g.Go(func() error {
		<-ctx.Done()

		sugar.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalf("server stopped with error: %v", err)
	}
	sugar.Info("server gracefully stopped")
}

func tlsVersion(v string) uint16 {
	if v == "1.3" {
		return tls.VersionTLS13
	}
	return tls.VersionTLS12
}
