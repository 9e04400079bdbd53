// Package discord содержит клиент провайдера идентичности: прямые вызовы
// /users/@me и /users/@me/guilds плюс конфигурация authorization-code flow.
package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/shadowmilk/guildforms/internal/models"
)

// DefaultAPIBase — базовый адрес API Discord.
const DefaultAPIBase = "https://discord.com/api"

// Upstream — сырой ответ провайдера: статус и тело передаются дальше
// без пересериализации, чтобы публичный прокси мог вернуть их как есть.
type Upstream struct {
	Status int
	Body   []byte
}

// OK сообщает, ответил ли провайдер кодом 2xx.
func (u *Upstream) OK() bool {
	return u.Status >= 200 && u.Status < 300
}

// Client выполняет запросы к API провайдера от имени пользователя.
type Client struct {
	base string
	http *http.Client
}

// NewClient создаёт клиент. Таймаут ограничивает любой исходящий вызов:
// ретраев и кеширования нет, зависший провайдер отваливается по таймауту.
func NewClient(base string, timeout time.Duration) *Client {
	if base == "" {
		base = DefaultAPIBase
	}
	return &Client{
		base: base,
		http: &http.Client{Timeout: timeout},
	}
}

// get выполняет GET с bearer токеном и возвращает сырой ответ.
func (c *Client) get(ctx context.Context, path, bearer string) (*Upstream, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return nil, fmt.Errorf("discord client: запрос %s: %w", path, err)
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("discord client: вызов %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("discord client: чтение ответа %s: %w", path, err)
	}

	return &Upstream{Status: resp.StatusCode, Body: body}, nil
}

// CurrentUser запрашивает /users/@me.
func (c *Client) CurrentUser(ctx context.Context, bearer string) (*Upstream, error) {
	return c.get(ctx, "/users/@me", bearer)
}

// CurrentGuilds запрашивает /users/@me/guilds.
func (c *Client) CurrentGuilds(ctx context.Context, bearer string) (*Upstream, error) {
	return c.get(ctx, "/users/@me/guilds", bearer)
}

// ResolveIdentity возвращает разобранный профиль пользователя.
// Ошибка для не-2xx ответа включает текст провайдера.
func (c *Client) ResolveIdentity(ctx context.Context, bearer string) (*models.DiscordUser, error) {
	up, err := c.CurrentUser(ctx, bearer)
	if err != nil {
		return nil, err
	}
	if !up.OK() {
		return nil, fmt.Errorf("discord client: провайдер ответил %d: %s", up.Status, up.Body)
	}

	var user models.DiscordUser
	if err := json.Unmarshal(up.Body, &user); err != nil {
		return nil, fmt.Errorf("discord client: разбор профиля: %w", err)
	}
	return &user, nil
}

// ResolveGuilds возвращает разобранный список гильдий пользователя.
func (c *Client) ResolveGuilds(ctx context.Context, bearer string) ([]models.DiscordGuild, error) {
	up, err := c.CurrentGuilds(ctx, bearer)
	if err != nil {
		return nil, err
	}
	if !up.OK() {
		return nil, fmt.Errorf("discord client: провайдер ответил %d: %s", up.Status, up.Body)
	}

	var guilds []models.DiscordGuild
	if err := json.Unmarshal(up.Body, &guilds); err != nil {
		return nil, fmt.Errorf("discord client: разбор списка гильдий: %w", err)
	}
	return guilds, nil
}

// OAuthConfig собирает конфигурацию authorization-code flow
// с фиксированными скоупами identify и guilds.
func OAuthConfig(clientID, clientSecret, callbackURL, apiBase string) *oauth2.Config {
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  callbackURL,
		Scopes:       []string{"identify", "guilds"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  apiBase + "/oauth2/authorize",
			TokenURL: apiBase + "/oauth2/token",
		},
	}
}
