package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shadowmilk/guildforms/internal/http/middleware"
	"github.com/shadowmilk/guildforms/internal/models"
	"github.com/shadowmilk/guildforms/internal/service"
)

// GuildLister описывает выборку гильдий пользователя по роли.
type GuildLister interface {
	ListByUser(ctx context.Context, userID, role string) ([]models.Guild, error)
}

// DashboardHandler предоставляет кабинет администратора:
// список гильдий, анкеты и настройки.
type DashboardHandler struct {
	guilds    GuildLister
	templates *service.TemplateService
	settings  *service.SettingsService
}

// NewDashboardHandler создаёт хэндлер.
func NewDashboardHandler(guilds GuildLister, templates *service.TemplateService, settings *service.SettingsService) *DashboardHandler {
	return &DashboardHandler{guilds: guilds, templates: templates, settings: settings}
}

// ListGuilds обрабатывает GET /dashboard: гильдии, которые принципал
// администрирует.
func (h *DashboardHandler) ListGuilds(c *gin.Context) {
	principal := middleware.PrincipalFromContext(c)
	if principal == nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	guilds, err := h.guilds.ListByUser(c.Request.Context(), principal.User.ID, models.MembershipRoleAdmin)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":   principal.User,
		"guilds": guilds,
	})
}

// ListTemplates обрабатывает GET /dashboard/:guild_id.
func (h *DashboardHandler) ListTemplates(c *gin.Context) {
	guildID := c.Param("guild_id")

	templates, err := h.templates.List(c.Request.Context(), guildID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"guild_id":  guildID,
		"templates": templates,
	})
}

// CreateTemplate обрабатывает POST /dashboard/:guild_id/template/create.
// Вопросы приходят одним текстовым полем и режутся по переводам строк.
// Имя и количество вопросов не валидируются.
func (h *DashboardHandler) CreateTemplate(c *gin.Context) {
	guildID := c.Param("guild_id")

	var req struct {
		Name      string `form:"name" json:"name"`
		Questions string `form:"questions" json:"questions"`
	}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.templates.Create(c.Request.Context(), guildID, req.Name, req.Questions); err != nil {
		_ = c.Error(err)
		return
	}

	c.Redirect(http.StatusFound, "/dashboard/"+guildID)
}

// GetSettings обрабатывает GET /dashboard/:guild_id/settings.
// Отдаёт настройки (или значения по умолчанию) вместе со списком анкет
// для элемента выбора анкеты по умолчанию.
func (h *DashboardHandler) GetSettings(c *gin.Context) {
	guildID := c.Param("guild_id")

	settings, templates, err := h.settings.Get(c.Request.Context(), guildID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"settings":  settings,
		"templates": templates,
	})
}

// UpdateSettings обрабатывает POST /dashboard/:guild_id/settings.
// Строка настроек заменяется целиком: последняя запись выигрывает.
func (h *DashboardHandler) UpdateSettings(c *gin.Context) {
	guildID := c.Param("guild_id")

	// Чекбокс: любое непустое значение трактуется как включено.
	autoDM := c.PostForm("auto_dm") != ""

	var defaultTemplate *int64
	if raw := c.PostForm("default_template"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "default_template должен быть числом"})
			return
		}
		defaultTemplate = &id
	}

	if err := h.settings.Update(c.Request.Context(), guildID, autoDM, defaultTemplate); err != nil {
		_ = c.Error(err)
		return
	}

	c.Redirect(http.StatusFound, "/dashboard/"+guildID+"/settings")
}
