package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ApplyTokenManager выпускает и проверяет короткоживущие токены подачи заявки.
// Токен вшивается ботом в ссылку на анкету, чтобы сервер мог привязать
// заявку к проверенному пользователю, а не к полю из тела запроса.
type ApplyTokenManager struct {
	secret []byte
	ttl    time.Duration
}

// applyClaims несёт пользователя и гильдию, для которых выписан токен.
type applyClaims struct {
	GuildID string `json:"guild_id"`
	jwt.RegisteredClaims
}

// NewApplyTokenManager создаёт менеджер токенов.
func NewApplyTokenManager(secret string, ttl time.Duration) *ApplyTokenManager {
	return &ApplyTokenManager{secret: []byte(secret), ttl: ttl}
}

// Issue выпускает токен для пользователя и гильдии.
func (m *ApplyTokenManager) Issue(userID, guildID string) (string, error) {
	if userID == "" || guildID == "" {
		return "", fmt.Errorf("apply token: user_id и guild_id обязательны")
	}

	now := time.Now()
	claims := applyClaims{
		GuildID: guildID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("apply token: подпись: %w", err)
	}
	return signed, nil
}

// Parse проверяет токен и возвращает пользователя и гильдию из него.
func (m *ApplyTokenManager) Parse(token string) (userID, guildID string, err error) {
	parsed, err := jwt.ParseWithClaims(token, &applyClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("apply token: неожиданный метод подписи %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", "", err
	}

	claims, ok := parsed.Claims.(*applyClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return "", "", jwt.ErrTokenInvalidClaims
	}
	return claims.Subject, claims.GuildID, nil
}
