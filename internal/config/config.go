package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config хранит все параметры запуска приложения.
type Config struct {
	Env            string
	HTTPPort       string
	DatabasePath   string
	ClientID       string
	ClientSecret   string
	CallbackURL    string
	SessionSecret  string
	SessionTTL     time.Duration
	ProxySecret    string
	ApplyTokenTTL  time.Duration
	RelayUpstream  string
	DiscordAPIBase string
	HTTPTimeout    time.Duration
	AllowedOrigins []string
}

// Load читает переменные окружения и возвращает готовую конфигурацию.
func Load() (*Config, error) {
	// Загружаем .env только если он существует, иначе используем системные переменные.
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("config: .env не найден, используем переменные окружения: %v", err)
	}

	env := getEnv("APP_ENV", "development")

	cfg := &Config{
		Env:            env,
		HTTPPort:       getEnv("HTTP_PORT", "3000"),
		DatabasePath:   getEnv("DATABASE_PATH", "./applications.sqlite"),
		ClientID:       getEnv("DISCORD_CLIENT_ID", ""),
		ClientSecret:   getEnv("DISCORD_CLIENT_SECRET", ""),
		CallbackURL:    getEnv("OAUTH_CALLBACK_URL", "http://localhost:3000/callback"),
		RelayUpstream:  getEnv("RELAY_UPSTREAM_URL", "http://145.239.65.118:20319"),
		DiscordAPIBase: getEnv("DISCORD_API_BASE", "https://discord.com/api"),
	}

	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("config: DISCORD_CLIENT_ID и DISCORD_CLIENT_SECRET обязательны")
	}

	// Валидация секретов
	sessionSecret := getEnv("SESSION_SECRET", "")
	proxySecret := getEnv("PROXY_SECRET", "")

	if env == "production" {
		if sessionSecret == "" || len(sessionSecret) < 32 {
			return nil, fmt.Errorf("config: SESSION_SECRET обязателен и должен быть не менее 32 символов в production")
		}
		if proxySecret == "" {
			return nil, fmt.Errorf("config: PROXY_SECRET обязателен в production")
		}
	} else {
		// В development используем дефолтные значения, но предупреждаем
		if sessionSecret == "" {
			sessionSecret = "dev-secret-change-in-production-0000000000"
			log.Printf("config: WARNING - используется дефолтный SESSION_SECRET, измените в production!")
		}
		if proxySecret == "" {
			proxySecret = "dev-proxy-secret"
			log.Printf("config: WARNING - используется дефолтный PROXY_SECRET, измените в production!")
		}
	}

	cfg.SessionSecret = sessionSecret
	cfg.ProxySecret = proxySecret

	// CORS allowed origins
	originsStr := getEnv("CORS_ALLOWED_ORIGINS", "")
	if originsStr == "" {
		if env == "production" {
			return nil, fmt.Errorf("config: CORS_ALLOWED_ORIGINS обязателен в production")
		}
		cfg.AllowedOrigins = []string{"http://localhost:3000"}
	} else {
		cfg.AllowedOrigins = strings.Split(originsStr, ",")
		for i, origin := range cfg.AllowedOrigins {
			cfg.AllowedOrigins[i] = strings.TrimSpace(origin)
		}
	}

	cfg.SessionTTL = mustParseDuration(getEnv("SESSION_TTL", "168h"))
	cfg.ApplyTokenTTL = mustParseDuration(getEnv("APPLY_TOKEN_TTL", "15m"))

	// Явный таймаут на исходящие вызовы: зависший провайдер не должен
	// держать обслуживающий запрос бесконечно.
	cfg.HTTPTimeout = mustParseDuration(getEnv("HTTP_CLIENT_TIMEOUT", "10s"))

	return cfg, nil
}

// getEnv возвращает значение переменной окружения или дефолт.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// mustParseDuration безопасно парсит строку в duration.
func mustParseDuration(v string) time.Duration {
	dur, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("config: не удалось распарсить длительность %q: %v", v, err)
	}
	return dur
}
