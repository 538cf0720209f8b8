package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "showbiz/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"showbiz/internal/auth"
	"showbiz/internal/cache"
	"showbiz/internal/config"
	"showbiz/internal/db"
	"showbiz/internal/handler"
	"showbiz/internal/logging"
	"showbiz/internal/media"
	"showbiz/internal/metrics"
	"showbiz/internal/model"
	"showbiz/internal/notify"
	"showbiz/internal/repository"
	"showbiz/internal/router"
	"showbiz/internal/service"
)

const serviceName = "showbiz-accounts"

// @title Showbiz Accounts API
// @version 1.0
// @description Talent and hirer registration, OTP verification, hirer approval, profiles and casting calls.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
// @securityDefinitions.apikey AdminKey
// @in header
// @name X-Admin-Key
func main() {
	cfg := config.Load()

	logger := logging.NewLogger(logging.Config{
		ServiceName: serviceName,
		Environment: cfg.AppEnv,
		Level:       cfg.LogLevel,
	})

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		logger.Error("database init", "error", err)
		os.Exit(1)
	}

	if cfg.ResetDB {
		logger.Warn("RESET_DB=true detected, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			logger.Warn("failed to drop tables", "error", err)
		}
	}
	if err := db.Migrate(gormDB); err != nil {
		logger.Error("auto-migrate", "error", err)
		os.Exit(1)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 3*time.Second)
	if err := cacheClient.Ping(pingCtx); err != nil {
		logger.Warn("redis unavailable, running without cache and token revocation", "error", err)
	}
	cancelPing()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg, serviceName)

	var notifier notify.Notifier
	if cfg.MailEnabled {
		notifier, err = notify.NewMailNotifier(notify.MailConfig{
			Host:      cfg.MailHost,
			Port:      cfg.MailPort,
			User:      cfg.MailUser,
			Pass:      cfg.MailPass,
			FromName:  cfg.MailFromName,
			Workers:   cfg.MailWorkers,
			QueueSize: cfg.MailQueueSize,
		}, logger, m)
		if err != nil {
			logger.Error("mail init", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Warn("MAIL_ENABLED=false, outbound mail is only logged")
		notifier = notify.NewLogNotifier(logger)
	}

	var store media.Store
	if cfg.MediaEnabled() {
		s3Store, err := media.NewS3Store(context.Background(), media.S3Config{
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			BaseEndpoint: cfg.S3BaseEndpoint,
			PublicURL:    cfg.S3PublicURL,
		})
		if err != nil {
			logger.Error("media store init", "error", err)
			os.Exit(1)
		}
		store = s3Store
	} else {
		logger.Info("S3_BUCKET not set, profile image uploads are disabled")
	}

	// Initialize repositories
	accountRepo := repository.NewAccountRepository(gormDB)
	profileRepo := repository.NewProfileRepository(gormDB)
	submissionRepo := repository.NewSubmissionRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	deps := service.LifecycleDeps{
		Accounts:    accountRepo,
		Hasher:      auth.NewBcryptHasher(auth.DefaultBcryptCost),
		Codes:       auth.NewOTPIssuer(),
		Tokens:      jwtService,
		Revoker:     tokenStore,
		Notifier:    notifier,
		Cache:       cacheClient,
		Metrics:     m,
		Logger:      logger,
		ResetTTL:    cfg.ResetTokenTTL,
		PhoneRegion: cfg.PhoneRegion,
	}
	talents := service.NewLifecycle(model.KindTalent, deps)
	hirers := service.NewLifecycle(model.KindHirer, deps)
	profileService := service.NewProfileService(accountRepo, profileRepo, store, cacheClient, logger, cfg.PhoneRegion)
	directoryService := service.NewDirectoryService(accountRepo, profileRepo)
	submissionService := service.NewSubmissionService(accountRepo, submissionRepo)

	e := echo.New()
	e.HideBanner = true

	// Register routes
	router.Register(e, router.Deps{
		Config:   cfg,
		Logger:   logger,
		Metrics:  m,
		Gatherer: reg,
		JWT:      jwtService,
		Tokens:   tokenStore,
		Handlers: router.Handlers{
			TalentAuth:    handler.NewAuthHandler(talents),
			HirerAuth:     handler.NewAuthHandler(hirers),
			TalentProfile: handler.NewAccountHandler(model.KindTalent, profileService),
			HirerProfile:  handler.NewAccountHandler(model.KindHirer, profileService),
			Admin:         handler.NewAdminHandler(hirers, directoryService),
			Submissions:   handler.NewSubmissionHandler(submissionService),
			Talents:       handler.NewTalentHandler(directoryService),
		},
	})

	logger.Info("swagger documentation available", "url", swaggerURL(cfg.SwaggerHost, cfg.ServerPort))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		addr := ":" + cfg.ServerPort
		logger.Info("server starting", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server start", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := notifier.Close(); err != nil {
		logger.Error("notifier shutdown", "error", err)
	}
}

// swaggerURL accepts SWAGGER_HOST with or without a scheme.
func swaggerURL(host, port string) string {
	switch {
	case host == "":
		return "http://localhost:" + port + "/swagger/index.html"
	case strings.HasPrefix(host, "http://"), strings.HasPrefix(host, "https://"):
		return host + "/swagger/index.html"
	default:
		return "http://" + host + "/swagger/index.html"
	}
}
