package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shadowmilk/guildforms/internal/config"
	"github.com/shadowmilk/guildforms/internal/http/handlers"
	"github.com/shadowmilk/guildforms/internal/http/middleware"
	"github.com/shadowmilk/guildforms/internal/service"
)

// SetupRouter собирает все маршруты приложения.
func SetupRouter(
	cfg *config.Config,
	authService *service.AuthService,
	roles middleware.RoleResolver,
	authHandler *handlers.AuthHandler,
	dashboardHandler *handlers.DashboardHandler,
	applyHandler *handlers.ApplyHandler,
	reviewHandler *handlers.ReviewHandler,
	identityHandler *handlers.IdentityHandler,
	relayHandler *handlers.RelayHandler,
	healthHandler *handlers.HealthHandler,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"name": "guildforms", "login": "/login"})
	})

	// OAuth
	r.GET("/login", authHandler.Login)
	r.GET("/callback", authHandler.Callback)

	// Публичная подача заявки: GET без сессии отдаёт анкету,
	// POST принимает заявку от кого угодно.
	r.GET("/apply/:guild_id/:template_id", applyHandler.ShowForm)
	r.POST("/apply/:guild_id/:template_id", applyHandler.Submit)

	// Кабинет администратора: сессия обязательна.
	sessionGuard := middleware.SessionGuard(authService)

	r.GET("/logout", sessionGuard, authHandler.Logout)
	r.GET("/dashboard", sessionGuard, dashboardHandler.ListGuilds)

	// Маршруты конкретной гильдии дополнительно требуют роль admin
	// в синхронизированных членствах.
	adminGuard := middleware.GuildAdminGuard(roles)

	guild := r.Group("/dashboard/:guild_id")
	guild.Use(sessionGuard, adminGuard)
	{
		guild.GET("", dashboardHandler.ListTemplates)
		guild.POST("/template/create", dashboardHandler.CreateTemplate)
		guild.GET("/settings", dashboardHandler.GetSettings)
		guild.POST("/settings", dashboardHandler.UpdateSettings)
	}

	r.GET("/review/:guild_id", sessionGuard, adminGuard, reviewHandler.ListSubmissions)

	// Прокси-ручки провайдера закрыты общим секретом.
	api := r.Group("/api")
	secretGuard := middleware.SecretGuard(cfg.ProxySecret)
	{
		api.GET("/identity", secretGuard, identityHandler.Identity)
		api.GET("/guilds", secretGuard, identityHandler.Guilds)
		api.POST("/apply-token", secretGuard, identityHandler.ApplyToken)

		// Relay открыт: авторизацию решает upstream по проброшенному
		// заголовку Authorization.
		api.Any("/relay/*path", relayHandler.Forward)
	}

	return r
}
