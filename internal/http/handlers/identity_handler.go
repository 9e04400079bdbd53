package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shadowmilk/guildforms/internal/discord"
	"github.com/shadowmilk/guildforms/internal/service"
)

// UpstreamCaller описывает сырые вызовы провайдера идентичности.
type UpstreamCaller interface {
	CurrentUser(ctx context.Context, bearer string) (*discord.Upstream, error)
	CurrentGuilds(ctx context.Context, bearer string) (*discord.Upstream, error)
}

// IdentityHandler — публичный прокси к провайдеру: статус и тело ответа
// передаются вызывающему дословно. Маршруты закрыты общим секретом
// (middleware.SecretGuard), до проверки секрета исходящих вызовов нет.
type IdentityHandler struct {
	client      UpstreamCaller
	applyTokens *service.ApplyTokenManager
}

// NewIdentityHandler создаёт хэндлер.
func NewIdentityHandler(client UpstreamCaller, applyTokens *service.ApplyTokenManager) *IdentityHandler {
	return &IdentityHandler{client: client, applyTokens: applyTokens}
}

// Identity обрабатывает GET /api/identity: /users/@me по bearer токену.
func (h *IdentityHandler) Identity(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "отсутствует параметр token"})
		return
	}

	up, err := h.client.CurrentUser(c.Request.Context(), token)
	if err != nil {
		// Транспортный сбой: текст ошибки уходит вызывающему как есть,
		// ретраев нет.
		c.JSON(http.StatusBadGateway, gin.H{"error": "ошибка прокси", "details": err.Error()})
		return
	}

	c.Data(up.Status, "application/json", up.Body)
}

// Guilds обрабатывает GET /api/guilds: /users/@me/guilds по bearer токену.
func (h *IdentityHandler) Guilds(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "отсутствует параметр token"})
		return
	}

	up, err := h.client.CurrentGuilds(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "ошибка прокси", "details": err.Error()})
		return
	}

	c.Data(up.Status, "application/json", up.Body)
}

// ApplyToken обрабатывает POST /api/apply-token: бот получает подписанный
// токен для вшивания в ссылку на анкету.
func (h *IdentityHandler) ApplyToken(c *gin.Context) {
	var req struct {
		UserID  string `json:"user_id" binding:"required"`
		GuildID string `json:"guild_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.applyTokens.Issue(req.UserID, req.GuildID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
