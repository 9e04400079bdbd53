package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shadowmilk/guildforms/internal/db"
	"github.com/shadowmilk/guildforms/internal/models"
	"github.com/shadowmilk/guildforms/internal/repository"
	"github.com/shadowmilk/guildforms/internal/service"
	"github.com/shadowmilk/guildforms/internal/session"
)

// applyTestEnv собирает публичную часть приложения поверх базы в памяти.
type applyTestEnv struct {
	router      *gin.Engine
	conn        *sqlx.DB
	templates   *service.TemplateService
	submissions *repository.SubmissionRepository
	applyTokens *service.ApplyTokenManager
	sessions    session.Store
	codec       *session.CookieCodec
}

func newApplyTestEnv(t *testing.T) *applyTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, err := db.NewSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, db.CreateSchema(context.Background(), conn))

	templates := service.NewTemplateService(repository.NewTemplateRepository(conn))
	submissionRepo := repository.NewSubmissionRepository(conn)
	submissions := service.NewSubmissionService(submissionRepo)

	store := session.NewMemoryStore()
	codec := session.NewCookieCodec("test-session-secret", time.Hour)
	auth := service.NewAuthService(nil, nil, nil, store, codec, time.Hour, nil)
	applyTokens := service.NewApplyTokenManager("apply-secret", time.Minute)

	handler := NewApplyHandler(templates, submissions, auth, applyTokens)

	r := gin.New()
	r.GET("/apply/:guild_id/:template_id", handler.ShowForm)
	r.POST("/apply/:guild_id/:template_id", handler.Submit)

	return &applyTestEnv{
		router:      r,
		conn:        conn,
		templates:   templates,
		submissions: submissionRepo,
		applyTokens: applyTokens,
		sessions:    store,
		codec:       codec,
	}
}

func (e *applyTestEnv) submit(t *testing.T, path string, form url.Values, cookie string) *httptest.ResponseRecorder {
	t.Helper()
	req, _ := http.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: cookie})
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestApplyHandler_ShowForm(t *testing.T) {
	env := newApplyTestEnv(t)

	_, err := env.templates.Create(context.Background(), "42", "Staff App", "Why join?\nAge?")
	require.NoError(t, err)

	req, _ := http.NewRequest("GET", "/apply/42/1", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Staff App")
	assert.Contains(t, w.Body.String(), "Why join?")
}

func TestApplyHandler_ShowForm_NotFound(t *testing.T) {
	env := newApplyTestEnv(t)

	// Несуществующий id и нечисловой id — один и тот же структурный 404.
	for _, path := range []string{"/apply/42/999", "/apply/42/abc"} {
		req, _ := http.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.JSONEq(t, `{"error":"анкета не найдена"}`, w.Body.String(), path)
	}
}

func TestApplyHandler_ShowForm_WrongGuild(t *testing.T) {
	env := newApplyTestEnv(t)

	_, err := env.templates.Create(context.Background(), "42", "Staff App", "Why join?")
	require.NoError(t, err)

	req, _ := http.NewRequest("GET", "/apply/other-guild/1", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestApplyHandler_Submit_Anonymous(t *testing.T) {
	env := newApplyTestEnv(t)

	form := url.Values{}
	form.Set("Why join?", "I like the community")
	form.Set("Age?", "25")
	// user_id из тела запроса личностью не считается.
	form.Set("user_id", "forged-id")

	w := env.submit(t, "/apply/42/1", form, "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"заявка отправлена"}`, w.Body.String())

	saved, err := env.submissions.ListByGuild(context.Background(), "42")
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Empty(t, saved[0].UserID)
	assert.Equal(t, models.SubmissionStatusPending, saved[0].Status)
	assert.Equal(t, "I like the community", saved[0].Answers["Why join?"])
	assert.Equal(t, "25", saved[0].Answers["Age?"])
	// Поле формы сохраняется как обычный ответ, а не как личность.
	assert.Equal(t, "forged-id", saved[0].Answers["user_id"])
}

func TestApplyHandler_Submit_WithApplyToken(t *testing.T) {
	env := newApplyTestEnv(t)

	token, err := env.applyTokens.Issue("user-7", "42")
	require.NoError(t, err)

	form := url.Values{}
	form.Set("Why join?", "answer")
	form.Set("token", token)

	w := env.submit(t, "/apply/42/1", form, "")
	require.Equal(t, http.StatusOK, w.Code)

	saved, err := env.submissions.ListByGuild(context.Background(), "42")
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "user-7", saved[0].UserID)
	// Токен — служебное поле, в ответы не попадает.
	assert.NotContains(t, saved[0].Answers, "token")
}

func TestApplyHandler_Submit_TokenForOtherGuild(t *testing.T) {
	env := newApplyTestEnv(t)

	token, err := env.applyTokens.Issue("user-7", "other-guild")
	require.NoError(t, err)

	form := url.Values{}
	form.Set("Why join?", "answer")
	form.Set("token", token)

	w := env.submit(t, "/apply/42/1", form, "")
	require.Equal(t, http.StatusOK, w.Code)

	// Чужой токен не даёт личности: заявка анонимная.
	saved, err := env.submissions.ListByGuild(context.Background(), "42")
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Empty(t, saved[0].UserID)
}

func TestApplyHandler_Submit_WithSession(t *testing.T) {
	env := newApplyTestEnv(t)

	principal := &models.Principal{User: models.DiscordUser{ID: "user-42"}}
	require.NoError(t, env.sessions.Put(context.Background(), "sid", principal, time.Hour))
	cookie, err := env.codec.Encode("sid")
	require.NoError(t, err)

	form := url.Values{}
	form.Set("Why join?", "answer")

	w := env.submit(t, "/apply/42/1", form, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	saved, err := env.submissions.ListByGuild(context.Background(), "42")
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "user-42", saved[0].UserID)
}
