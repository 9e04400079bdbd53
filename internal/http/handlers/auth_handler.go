package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shadowmilk/guildforms/internal/logger"
	"github.com/shadowmilk/guildforms/internal/service"
	"github.com/shadowmilk/guildforms/internal/session"
)

// stateCookieName — короткоживущий cookie с anti-CSRF state для OAuth.
const stateCookieName = "guildforms_oauth_state"

// AuthHandler предоставляет HTTP слой логина через провайдера идентичности.
type AuthHandler struct {
	auth   *service.AuthService
	secure bool
}

// NewAuthHandler создаёт хэндлер. secure включает Secure cookie (production).
func NewAuthHandler(auth *service.AuthService, secure bool) *AuthHandler {
	return &AuthHandler{auth: auth, secure: secure}
}

// Login обрабатывает GET /login: чистый редирект на страницу согласия.
func (h *AuthHandler) Login(c *gin.Context) {
	state := uuid.NewString()

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookieName, state, 300, "/", "", h.secure, true)
	c.Redirect(http.StatusFound, h.auth.LoginURL(state))
}

// Callback обрабатывает GET /callback: завершает authorization-code flow.
// Любой сбой молча уводит на главную — пользователю детали не показываются,
// подробности остаются в серверном логе.
func (h *AuthHandler) Callback(c *gin.Context) {
	expectedState, err := c.Cookie(stateCookieName)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookieName, "", -1, "/", "", h.secure, true)

	if err != nil || expectedState == "" || c.Query("state") != expectedState {
		logger.WithComponent("auth").Warn("callback: state не совпал или отсутствует")
		c.Redirect(http.StatusFound, "/")
		return
	}

	cookieValue, err := h.auth.CompleteLogin(c.Request.Context(), c.Query("code"))
	if err != nil {
		logger.WithComponent("auth").WithError(err).Error("callback: логин не завершён")
		c.Redirect(http.StatusFound, "/")
		return
	}

	maxAge := int(h.auth.CookieTTL().Seconds())
	c.SetCookie(session.CookieName, cookieValue, maxAge, "/", "", h.secure, true)
	c.Redirect(http.StatusFound, "/dashboard")
}

// Logout обрабатывает GET /logout: уничтожает сессию и чистит cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	if cookie, err := c.Cookie(session.CookieName); err == nil {
		if err := h.auth.Logout(c.Request.Context(), cookie); err != nil {
			logger.WithComponent("auth").WithError(err).Error("logout: не удалось удалить сессию")
		}
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, "", -1, "/", "", h.secure, true)
	c.Redirect(http.StatusFound, "/")
}
