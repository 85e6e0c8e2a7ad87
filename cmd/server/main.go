// Package main starts the JobScout reference backend: configuration,
// logging, PostgreSQL, Redis, the offer cleaner and the HTTP API.
package main

import (
	"cmp"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/JobScout/internal/config"
	"github.com/atinyakov/JobScout/internal/db"
	"github.com/atinyakov/JobScout/internal/logger"
	"github.com/atinyakov/JobScout/internal/repository"
	"github.com/atinyakov/JobScout/internal/server/handler/http"
	"github.com/atinyakov/JobScout/internal/service"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	options, err := config.ParseServer(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}
	defer postgresDB.Close()

	rdb, err := db.NewRedisClient(ctx, options.RedisURL)
	if err != nil {
		zapLogger.Fatal("cannot init redis", zap.Error(err))
	}
	defer rdb.Close()

	cleaner := db.NewOfferCleaner(postgresDB, options.OfferRetention.Duration, zapLogger)
	sched, err := cleaner.Start(ctx, options.CleanerSchedule)
	if err != nil {
		zapLogger.Fatal("cannot schedule offer cleaner", zap.Error(err))
	}
	defer sched.Stop()

	userRepo := repository.NewPostgresUserRepository(postgresDB)
	sourceRepo := repository.NewPostgresSourceRepository(postgresDB)
	offerRepo := repository.NewPostgresOfferRepository(postgresDB)

	webhooks := service.NewWebhooks(options.AnalyzeWebhookURL, options.CoverLetterWebhookURL)
	if webhooks.AnalyzeURL == "" || webhooks.CoverLetterURL == "" {
		zapLogger.Warn("processing webhooks are not fully configured",
			zap.Bool("analyze", webhooks.AnalyzeURL != ""),
			zap.Bool("cover_letter", webhooks.CoverLetterURL != ""))
	}

	userService := service.NewUserService(userRepo, webhooks)
	sourceService := service.NewSourceService(sourceRepo)
	offerService := service.NewOfferService(offerRepo, sourceRepo, service.NewRedisPublisher(rdb), webhooks, zapLogger)

	router := http.NewRouter(
		&http.UserHandler{UserService: userService},
		&http.SourceHandler{SourceService: sourceService},
		&http.OfferHandler{OfferService: offerService},
		zapLogger,
	)

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if options.TLSEnabled() {
		server.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	if options.TLSEnabled() {
		zapLogger.Info("starting HTTPS server", zap.String("addr", options.Port))
		err = server.ListenAndServeTLS(options.TLSCertFile, options.TLSKeyFile)
	} else {
		zapLogger.Info("starting HTTP server", zap.String("addr", options.Port))
		err = server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Fatal("server stopped", zap.Error(err))
	}
}
