package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shadowmilk/guildforms/internal/models"
	"github.com/shadowmilk/guildforms/internal/repository"
	"github.com/shadowmilk/guildforms/internal/service"
	"github.com/shadowmilk/guildforms/internal/session"
)

// Context ключи для gin.Context.
const (
	ContextPrincipalKey = "principal"
	ContextGuildRoleKey = "guildRole"
)

// RoleResolver описывает проверку членства пользователя в гильдии.
type RoleResolver interface {
	GetRole(ctx context.Context, guildID, userID string) (string, error)
}

// SessionGuard пускает дальше только запросы с живой сессией.
// Анонимный запрос уводится на /login, это единственная проверка
// аутентификации в системе.
func SessionGuard(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(session.CookieName)
		if err != nil {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		principal, err := auth.Resolve(c.Request.Context(), cookie)
		if err != nil {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		c.Set(ContextPrincipalKey, principal)
		c.Next()
	}
}

// GuildAdminGuard проверяет, что принципал администрирует гильдию из
// параметра :guild_id. Сессии недостаточно: членство и роль смотрятся
// по синхронизированной таблице guild_members.
func GuildAdminGuard(roles RoleResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := PrincipalFromContext(c)
		if principal == nil {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		guildID := c.Param("guild_id")
		role, err := roles.GetRole(c.Request.Context(), guildID, principal.User.ID)
		if err != nil && !errors.Is(err, repository.ErrMembershipNotFound) {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "внутренняя ошибка сервера"})
			return
		}
		if err != nil || role != models.MembershipRoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "нет прав на управление гильдией"})
			return
		}

		c.Set(ContextGuildRoleKey, role)
		c.Next()
	}
}

// PrincipalFromContext достаёт принципала, положенного SessionGuard.
func PrincipalFromContext(c *gin.Context) *models.Principal {
	value, ok := c.Get(ContextPrincipalKey)
	if !ok {
		return nil
	}
	principal, ok := value.(*models.Principal)
	if !ok {
		return nil
	}
	return principal
}
