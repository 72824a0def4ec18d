package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"educonnect/internal/auth"
	"educonnect/internal/config"
	"educonnect/internal/courses"
	"educonnect/internal/db"
	"educonnect/internal/enrollments"
	"educonnect/internal/grades"
	"educonnect/internal/httpserver"
	"educonnect/internal/logging"
	"educonnect/internal/tasks"
	"educonnect/internal/users"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log)

	if err := run(cfg, logger); err != nil {
		logger.Error("educonnect stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbConn, err := db.Open(ctx, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	if err := db.RunMigrations(ctx, dbConn); err != nil {
		return err
	}

	hasher, err := auth.NewPasswordHasher(cfg.Password.Scheme, cfg.Password.HMACKey)
	if err != nil {
		return err
	}
	tokenCfg := auth.TokenConfig{
		Key:      cfg.JWT.Key,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
		Lifetime: cfg.JWT.Lifetime,
	}
	issuer, err := auth.NewIssuer(tokenCfg)
	if err != nil {
		return err
	}
	validator, err := auth.NewValidator(tokenCfg)
	if err != nil {
		return err
	}
	authSvc, err := auth.NewService(auth.NewStore(dbConn), hasher, issuer, logger)
	if err != nil {
		return err
	}
	if cfg.UsersPath != "" {
		if err := authSvc.SeedFromFile(ctx, cfg.UsersPath); err != nil {
			return err
		}
		logger.Info("users seeded", "path", cfg.UsersPath)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(dbConn, "educonnect"),
	)

	handler := httpserver.NewRouter(httpserver.Deps{
		Logger:      logger,
		Validator:   validator,
		Metrics:     httpserver.NewMetrics(registry),
		DB:          dbConn,
		CORSOrigin:  cfg.CORSOrigin,
		Auth:        &auth.Handler{Service: authSvc, Logger: logger},
		Users:       &users.Handler{Store: users.NewStore(dbConn), Logger: logger},
		Courses:     &courses.Handler{Store: courses.NewStore(dbConn), Logger: logger},
		Enrollments: &enrollments.Handler{Store: enrollments.NewStore(dbConn), Logger: logger},
		Tasks:       &tasks.Handler{Store: tasks.NewStore(dbConn), Logger: logger},
		Grades:      &grades.Handler{Store: grades.NewStore(dbConn), Logger: logger},
	})
	server := httpserver.New(cfg.HTTPAddr, handler, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
