package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/shadowmilk/guildforms/internal/models"
	"github.com/shadowmilk/guildforms/internal/session"
)

// IdentityResolver описывает зависимость от клиента провайдера идентичности.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, bearer string) (*models.DiscordUser, error)
	ResolveGuilds(ctx context.Context, bearer string) ([]models.DiscordGuild, error)
}

// MembershipSyncer описывает зависимость от хранилища гильдий и членств.
type MembershipSyncer interface {
	SyncMemberships(ctx context.Context, userID string, guilds []models.Guild, roles map[string]string) error
}

// AuthService ведёт трёхногий authorization-code flow и серверные сессии.
type AuthService struct {
	oauth      *oauth2.Config
	identity   IdentityResolver
	guilds     MembershipSyncer
	sessions   session.Store
	cookies    *session.CookieCodec
	sessionTTL time.Duration
	httpClient *http.Client
}

// NewAuthService создаёт сервис авторизации.
func NewAuthService(
	oauth *oauth2.Config,
	identity IdentityResolver,
	guilds MembershipSyncer,
	sessions session.Store,
	cookies *session.CookieCodec,
	sessionTTL time.Duration,
	httpClient *http.Client,
) *AuthService {
	return &AuthService{
		oauth:      oauth,
		identity:   identity,
		guilds:     guilds,
		sessions:   sessions,
		cookies:    cookies,
		sessionTTL: sessionTTL,
		httpClient: httpClient,
	}
}

// LoginURL возвращает адрес страницы согласия провайдера.
func (s *AuthService) LoginURL(state string) string {
	return s.oauth.AuthCodeURL(state)
}

// CompleteLogin обменивает код на токен, разрешает личность и список гильдий,
// синхронизирует членства и создаёт серверную сессию.
// Возвращает подписанное значение сессионного cookie.
func (s *AuthService) CompleteLogin(ctx context.Context, code string) (string, error) {
	if code == "" {
		return "", fmt.Errorf("auth service: пустой код авторизации")
	}

	// Обмен кода идёт клиентом с таймаутом, см. config.HTTPTimeout.
	if s.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	}

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("auth service: обмен кода: %w", err)
	}

	user, err := s.identity.ResolveIdentity(ctx, token.AccessToken)
	if err != nil {
		return "", fmt.Errorf("auth service: разрешение личности: %w", err)
	}

	discordGuilds, err := s.identity.ResolveGuilds(ctx, token.AccessToken)
	if err != nil {
		return "", fmt.Errorf("auth service: разрешение гильдий: %w", err)
	}

	guilds := make([]models.Guild, 0, len(discordGuilds))
	roles := make(map[string]string, len(discordGuilds))
	for _, g := range discordGuilds {
		guilds = append(guilds, models.Guild{ID: g.ID, Name: g.Name, Icon: g.Icon})
		if g.CanManage() {
			roles[g.ID] = models.MembershipRoleAdmin
		} else {
			roles[g.ID] = models.MembershipRoleMember
		}
	}

	if err := s.guilds.SyncMemberships(ctx, user.ID, guilds, roles); err != nil {
		return "", fmt.Errorf("auth service: синхронизация членств: %w", err)
	}

	principal := &models.Principal{User: *user, Guilds: discordGuilds}

	sessionID := uuid.NewString()
	if err := s.sessions.Put(ctx, sessionID, principal, s.sessionTTL); err != nil {
		return "", fmt.Errorf("auth service: сохранение сессии: %w", err)
	}

	cookieValue, err := s.cookies.Encode(sessionID)
	if err != nil {
		// Сессию без cookie никто не найдёт, подчищаем сразу.
		_ = s.sessions.Delete(ctx, sessionID)
		return "", err
	}
	return cookieValue, nil
}

// Resolve возвращает личность по значению сессионного cookie.
func (s *AuthService) Resolve(ctx context.Context, cookieValue string) (*models.Principal, error) {
	sessionID, err := s.cookies.Decode(cookieValue)
	if err != nil {
		return nil, session.ErrSessionNotFound
	}
	return s.sessions.Get(ctx, sessionID)
}

// Logout уничтожает сессию, на которую указывает cookie.
// Невалидный cookie не ошибка: разлогин идемпотентен.
func (s *AuthService) Logout(ctx context.Context, cookieValue string) error {
	sessionID, err := s.cookies.Decode(cookieValue)
	if err != nil {
		return nil
	}
	return s.sessions.Delete(ctx, sessionID)
}

// CookieTTL возвращает время жизни сессионного cookie.
func (s *AuthService) CookieTTL() time.Duration {
	return s.cookies.TTL()
}
