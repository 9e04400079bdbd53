package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/shadowmilk/guildforms/internal/config"
	"github.com/shadowmilk/guildforms/internal/db"
	"github.com/shadowmilk/guildforms/internal/discord"
	httpHandlers "github.com/shadowmilk/guildforms/internal/http/handlers"
	httpRouter "github.com/shadowmilk/guildforms/internal/http/router"
	"github.com/shadowmilk/guildforms/internal/logger"
	"github.com/shadowmilk/guildforms/internal/repository"
	"github.com/shadowmilk/guildforms/internal/service"
	"github.com/shadowmilk/guildforms/internal/session"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	logLevel := "info"
	if cfg.Env == "development" {
		logLevel = "debug"
		logger.Init(logLevel)
		logger.SetTextFormatter()
	} else {
		logger.Init(logLevel)
	}

	// Однофайловое хранилище и идемпотентная схема.
	dbConn, err := db.NewSQLite(ctx, cfg.DatabasePath)
	if err != nil {
		log.Fatalf("main: ошибка открытия базы: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.CreateSchema(ctx, dbConn); err != nil {
		log.Fatalf("main: ошибка создания схемы: %v", err)
	}

	// Репозитории.
	templateRepo := repository.NewTemplateRepository(dbConn)
	submissionRepo := repository.NewSubmissionRepository(dbConn)
	settingsRepo := repository.NewSettingsRepository(dbConn)
	guildRepo := repository.NewGuildRepository(dbConn)

	// Клиент провайдера идентичности и OAuth.
	discordClient := discord.NewClient(cfg.DiscordAPIBase, cfg.HTTPTimeout)
	oauthConfig := discord.OAuthConfig(cfg.ClientID, cfg.ClientSecret, cfg.CallbackURL, cfg.DiscordAPIBase)

	// Сессии: подписанный cookie + хранилище в той же базе.
	sessionStore := session.NewSQLStore(dbConn)
	cookieCodec := session.NewCookieCodec(cfg.SessionSecret, cfg.SessionTTL)

	// Сервисы.
	oauthHTTPClient := &http.Client{Timeout: cfg.HTTPTimeout}
	authService := service.NewAuthService(oauthConfig, discordClient, guildRepo, sessionStore, cookieCodec, cfg.SessionTTL, oauthHTTPClient)
	applyTokens := service.NewApplyTokenManager(cfg.SessionSecret, cfg.ApplyTokenTTL)
	templateService := service.NewTemplateService(templateRepo)
	submissionService := service.NewSubmissionService(submissionRepo)
	settingsService := service.NewSettingsService(settingsRepo, templateRepo)

	// HTTP хэндлеры.
	secureCookies := cfg.Env == "production"
	authHandler := httpHandlers.NewAuthHandler(authService, secureCookies)
	dashboardHandler := httpHandlers.NewDashboardHandler(guildRepo, templateService, settingsService)
	applyHandler := httpHandlers.NewApplyHandler(templateService, submissionService, authService, applyTokens)
	reviewHandler := httpHandlers.NewReviewHandler(submissionService)
	identityHandler := httpHandlers.NewIdentityHandler(discordClient, applyTokens)
	relayHandler := httpHandlers.NewRelayHandler(cfg.RelayUpstream, cfg.HTTPTimeout)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, authService, guildRepo, authHandler, dashboardHandler, applyHandler, reviewHandler, identityHandler, relayHandler, healthHandler)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
