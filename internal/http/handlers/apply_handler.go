package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shadowmilk/guildforms/internal/logger"
	"github.com/shadowmilk/guildforms/internal/repository"
	"github.com/shadowmilk/guildforms/internal/service"
	"github.com/shadowmilk/guildforms/internal/session"
)

// ApplyHandler обслуживает публичную страницу подачи заявки.
// Сессия здесь не обязательна: ссылки раздаёт бот участникам гильдии.
type ApplyHandler struct {
	templates   *service.TemplateService
	submissions *service.SubmissionService
	auth        *service.AuthService
	applyTokens *service.ApplyTokenManager
}

// NewApplyHandler создаёт хэндлер.
func NewApplyHandler(
	templates *service.TemplateService,
	submissions *service.SubmissionService,
	auth *service.AuthService,
	applyTokens *service.ApplyTokenManager,
) *ApplyHandler {
	return &ApplyHandler{
		templates:   templates,
		submissions: submissions,
		auth:        auth,
		applyTokens: applyTokens,
	}
}

// ShowForm обрабатывает GET /apply/:guild_id/:template_id.
// Промах по паре (id, guild_id) — это 404, а не ошибка хранилища.
func (h *ApplyHandler) ShowForm(c *gin.Context) {
	guildID := c.Param("guild_id")
	templateID, err := strconv.ParseInt(c.Param("template_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "анкета не найдена"})
		return
	}

	template, err := h.templates.Get(c.Request.Context(), templateID, guildID)
	if errors.Is(err, repository.ErrTemplateNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "анкета не найдена"})
		return
	}
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"template": template})
}

// Submit обрабатывает POST /apply/:guild_id/:template_id.
// Тело формы сохраняется как ответы целиком. Личность подающего берётся
// только из живой сессии или подписанного токена из ссылки бота;
// user_id из тела запроса личностью не считается.
func (h *ApplyHandler) Submit(c *gin.Context) {
	guildID := c.Param("guild_id")

	if err := c.Request.ParseForm(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "не удалось разобрать форму"})
		return
	}

	answers := make(map[string]string, len(c.Request.PostForm))
	for key, values := range c.Request.PostForm {
		if key == "token" {
			continue
		}
		if len(values) > 0 {
			answers[key] = values[0]
		}
	}

	submitterID := h.resolveSubmitter(c, guildID)

	if _, err := h.submissions.Submit(c.Request.Context(), guildID, submitterID, answers); err != nil {
		_ = c.Error(err)
		return
	}

	// Подтверждение не зависит от того, удалось ли установить личность.
	c.JSON(http.StatusOK, gin.H{"message": "заявка отправлена"})
}

// resolveSubmitter определяет проверенную личность подающего:
// сперва сессия, затем токен из ссылки. Нет ни того ни другого —
// заявка остаётся анонимной.
func (h *ApplyHandler) resolveSubmitter(c *gin.Context, guildID string) string {
	if cookie, err := c.Cookie(session.CookieName); err == nil {
		if principal, err := h.auth.Resolve(c.Request.Context(), cookie); err == nil {
			return principal.User.ID
		}
	}

	token := c.PostForm("token")
	if token == "" {
		token = c.Query("token")
	}
	if token != "" {
		userID, tokenGuildID, err := h.applyTokens.Parse(token)
		if err == nil && tokenGuildID == guildID {
			return userID
		}
		logger.WithComponent("apply").Warn("submit: токен невалиден или выписан для другой гильдии")
	}

	return ""
}
