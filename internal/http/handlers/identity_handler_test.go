package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shadowmilk/guildforms/internal/discord"
	"github.com/shadowmilk/guildforms/internal/http/middleware"
	"github.com/shadowmilk/guildforms/internal/service"
)

// countingUpstream считает исходящие вызовы и отдаёт фиксированный ответ.
type countingUpstream struct {
	calls    int
	upstream *discord.Upstream
}

func (c *countingUpstream) CurrentUser(ctx context.Context, bearer string) (*discord.Upstream, error) {
	c.calls++
	return c.upstream, nil
}

func (c *countingUpstream) CurrentGuilds(ctx context.Context, bearer string) (*discord.Upstream, error) {
	c.calls++
	return c.upstream, nil
}

func newIdentityRouter(upstream *countingUpstream) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	handler := NewIdentityHandler(upstream, service.NewApplyTokenManager("secret", time.Minute))
	guard := middleware.SecretGuard("s3cret")
	r.GET("/api/identity", guard, handler.Identity)
	r.GET("/api/guilds", guard, handler.Guilds)
	r.POST("/api/apply-token", guard, handler.ApplyToken)
	return r
}

func TestIdentityHandler_WrongSecret_NoUpstreamCall(t *testing.T) {
	upstream := &countingUpstream{upstream: &discord.Upstream{Status: 200, Body: []byte(`{}`)}}
	r := newIdentityRouter(upstream)

	req, _ := http.NewRequest("GET", "/api/identity?secret=wrong&token=anything", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 0, upstream.calls)
}

func TestIdentityHandler_MissingSecret(t *testing.T) {
	upstream := &countingUpstream{}
	r := newIdentityRouter(upstream)

	req, _ := http.NewRequest("GET", "/api/identity?token=anything", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 0, upstream.calls)
}

func TestIdentityHandler_SecretViaHeader(t *testing.T) {
	upstream := &countingUpstream{upstream: &discord.Upstream{Status: 200, Body: []byte(`{"id":"42"}`)}}
	r := newIdentityRouter(upstream)

	req, _ := http.NewRequest("GET", "/api/identity?token=tok", nil)
	req.Header.Set(middleware.HeaderProxySecret, "s3cret")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"id":"42"}`, w.Body.String())
	assert.Equal(t, 1, upstream.calls)
}

func TestIdentityHandler_UpstreamStatusPassedThrough(t *testing.T) {
	// Не-2xx ответ провайдера уходит вызывающему дословно.
	upstream := &countingUpstream{upstream: &discord.Upstream{Status: 401, Body: []byte(`{"message":"401: Unauthorized"}`)}}
	r := newIdentityRouter(upstream)

	req, _ := http.NewRequest("GET", "/api/guilds?secret=s3cret&token=bad", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, `{"message":"401: Unauthorized"}`, w.Body.String())
}

func TestIdentityHandler_MissingToken(t *testing.T) {
	upstream := &countingUpstream{}
	r := newIdentityRouter(upstream)

	req, _ := http.NewRequest("GET", "/api/identity?secret=s3cret", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, upstream.calls)
}

func TestIdentityHandler_ApplyToken(t *testing.T) {
	r := newIdentityRouter(&countingUpstream{})

	body := strings.NewReader(`{"user_id":"user-1","guild_id":"guild-1"}`)
	req, _ := http.NewRequest("POST", "/api/apply-token?secret=s3cret", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "token")
}
